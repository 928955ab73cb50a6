package core

import (
	"encoding/binary"
	"encoding/json"
)

// metaDiscoveryScanLimit bounds the linear scan for the Meta page on open,
// matching spec.md §4.4's "scan pages 1..16" bootstrap heuristic rather
// than reserving a fixed slot in the file header.
const metaDiscoveryScanLimit = 16

// PropertySchema describes the allowed property keys/types for a label.
// Nothing enforces it: AddVertex/AddEdge do not check properties against
// it, and SHOW SCHEMAS does not list it. [EXPANSION] over the base spec,
// which leaves schema unspecified.
type PropertySchema struct {
	RequiredKeys []string            `json:"required_keys,omitempty"`
	KeyTypes     map[string]valueTag `json:"key_types,omitempty"`
}

// GraphMeta is the single persisted root record for one graph: id
// counters and the page lists a fresh Open must rebuild indices from.
type GraphMeta struct {
	MetaPageID  PageID
	NextVertexID uint64
	NextEdgeID   uint64
	VertexPages  []PageID
	EdgePages    []PageID
	Schema       map[string]PropertySchema // label -> schema, may be nil
}

// metaRecord is the JSON-serializable form written into the Meta page's
// single payload record (page content is otherwise raw binary, but the
// meta record is small and schema-shaped, so JSON is the pragmatic fit
// here — mirrors the teacher's catalog.json use of JSON for directory
// metadata rather than a bespoke binary encoding).
type metaRecord struct {
	NextVertexID uint64                    `json:"next_vertex_id"`
	NextEdgeID   uint64                    `json:"next_edge_id"`
	VertexPages  []uint64                  `json:"vertex_pages"`
	EdgePages    []uint64                  `json:"edge_pages"`
	Schema       map[string]PropertySchema `json:"schema,omitempty"`
}

func (m *GraphMeta) marshal() ([]byte, error) {
	rec := metaRecord{
		NextVertexID: m.NextVertexID,
		NextEdgeID:   m.NextEdgeID,
		Schema:       m.Schema,
	}
	for _, p := range m.VertexPages {
		rec.VertexPages = append(rec.VertexPages, uint64(p))
	}
	for _, p := range m.EdgePages {
		rec.EdgePages = append(rec.EdgePages, uint64(p))
	}
	return json.Marshal(rec)
}

func unmarshalMeta(pageID PageID, buf []byte) (*GraphMeta, error) {
	var rec metaRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, wrapErr(KindIO, "unmarshal meta record", err)
	}
	m := &GraphMeta{
		MetaPageID:   pageID,
		NextVertexID: rec.NextVertexID,
		NextEdgeID:   rec.NextEdgeID,
		Schema:       rec.Schema,
	}
	for _, p := range rec.VertexPages {
		m.VertexPages = append(m.VertexPages, PageID(p))
	}
	for _, p := range rec.EdgePages {
		m.EdgePages = append(m.EdgePages, PageID(p))
	}
	return m, nil
}

// writeTo serializes m and writes it as the sole record of the Meta page
// at m.MetaPageID, replacing any previous content (Meta pages are always rewritten
// whole, never incrementally appended to).
func (m *GraphMeta) writeTo(bp *BufferPool) error {
	buf, err := m.marshal()
	if err != nil {
		return err
	}
	handle, err := bp.FetchPage(m.MetaPageID)
	if err != nil {
		return err
	}
	defer handle.Unpin(true)

	handle.Page.FreeOffset = 0
	handle.Page.ItemCount = 0
	if _, err := handle.Page.Append(buf); err != nil {
		return err
	}
	return nil
}

// findOrCreateMeta scans pages 1..metaDiscoveryScanLimit for an existing
// PageMeta page; if none is found, allocates one for a brand new graph.
func findOrCreateMeta(bp *BufferPool, disk *DiskStorage) (*GraphMeta, error) {
	limit := metaDiscoveryScanLimit
	if pc := disk.pageCountMapped(); int64(limit) > pc {
		limit = int(pc)
	}
	for id := PageID(1); id <= PageID(limit); id++ {
		page, err := disk.ReadPage(id)
		if err != nil {
			continue
		}
		if page.Type != PageMeta {
			continue
		}
		records := page.Records()
		if len(records) == 0 {
			continue
		}
		return unmarshalMeta(id, records[len(records)-1])
	}

	handle, err := bp.NewPage(PageMeta)
	if err != nil {
		return nil, err
	}
	defer handle.Unpin(true)

	meta := &GraphMeta{MetaPageID: handle.Page.ID, NextVertexID: 1, NextEdgeID: 1}
	if err := meta.writeTo(bp); err != nil {
		return nil, err
	}
	return meta, nil
}

// valueTag aliases PropertyValue's tag byte so PropertySchema.KeyTypes can
// name it here (same package, just keeping the concern separated).
type valueTag = propertyTag

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
