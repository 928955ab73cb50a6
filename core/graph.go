package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Graph is one open property graph: the page-storage, buffer-pool cache,
// and secondary indices rebuilt on Open by replaying every vertex/edge
// page. Grounded on the teacher's ledger.go open/replay/flush lifecycle,
// adapted from block-by-block WAL replay to this spec's page-scan replay.
type Graph struct {
	Name string
	dir  string

	disk *DiskStorage
	pool *BufferPool

	mu    sync.RWMutex
	meta  *GraphMeta
	vidx  *VertexIndex
	eidx  *EdgeIndex

	vertexPages map[PageID]struct{}
	edgePages   map[PageID]struct{}

	log *log.Entry
}

// GraphOptions configures Open.
type GraphOptions struct {
	Name           string
	BufferPoolSize int
	Compress       bool
}

// Open opens (creating if absent) the graph stored under dir, replaying
// its vertex/edge pages to rebuild the in-memory indices.
func Open(dir string, opts GraphOptions) (*Graph, error) {
	disk, err := OpenDiskStorage(dir, DiskStorageOptions{Compress: opts.Compress})
	if err != nil {
		return nil, err
	}
	pool := NewBufferPool(disk, opts.BufferPoolSize)

	meta, err := findOrCreateMeta(pool, disk)
	if err != nil {
		disk.Close()
		return nil, err
	}

	g := &Graph{
		Name:        opts.Name,
		dir:         dir,
		disk:        disk,
		pool:        pool,
		meta:        meta,
		vidx:        newVertexIndex(),
		eidx:        newEdgeIndex(),
		vertexPages: make(map[PageID]struct{}),
		edgePages:   make(map[PageID]struct{}),
		log:         log.WithField("graph", opts.Name),
	}
	if err := g.replay(); err != nil {
		disk.Close()
		return nil, err
	}
	g.log.WithFields(log.Fields{
		"vertices": g.vidx.count(),
		"edges":    g.eidx.count(),
	}).Info("graph opened")
	return g, nil
}

// replay scans every page recorded in the meta's page lists and rebuilds
// vidx/eidx from their records. Pages allocated after the last Flush but
// before a crash are not recoverable: spec.md's Non-goals exclude WAL/
// crash-consistency for record content, only page-allocator structure
// (file header, free list) is guaranteed durable.
func (g *Graph) replay() error {
	for _, pid := range g.meta.VertexPages {
		page, err := g.disk.ReadPage(pid)
		if err != nil {
			return err
		}
		g.vertexPages[pid] = struct{}{}
		g.indexVertexPage(page)
	}
	for _, pid := range g.meta.EdgePages {
		page, err := g.disk.ReadPage(pid)
		if err != nil {
			return err
		}
		g.edgePages[pid] = struct{}{}
		g.indexEdgePage(page)
	}
	return nil
}

func (g *Graph) indexVertexPage(page *Page) {
	var off uint16
	for _, rec := range page.Records() {
		v, err := decodeVertex(rec)
		if err == nil {
			g.vidx.put(v, recordLoc{Page: page.ID, Offset: off})
			if v.ID >= g.meta.NextVertexID {
				g.meta.NextVertexID = v.ID + 1
			}
		}
		off += uint16(4 + len(rec))
	}
}

func (g *Graph) indexEdgePage(page *Page) {
	var off uint16
	for _, rec := range page.Records() {
		e, err := decodeEdge(rec)
		if err == nil {
			if _, seen := g.eidx.locationOf(e.ID); seen {
				g.eidx.remove(e)
			}
			g.eidx.put(e, recordLoc{Page: page.ID, Offset: off})
			if e.ID >= g.meta.NextEdgeID {
				g.meta.NextEdgeID = e.ID + 1
			}
		}
		off += uint16(4 + len(rec))
	}
}

// currentVertexPage returns a handle on a vertex page with room for one
// more record, allocating a fresh one if the last is full or none exists.
func (g *Graph) currentVertexPage(need int) (*PageHandle, error) {
	if len(g.meta.VertexPages) > 0 {
		last := g.meta.VertexPages[len(g.meta.VertexPages)-1]
		h, err := g.pool.FetchPage(last)
		if err != nil {
			return nil, err
		}
		if h.Page.RemainingSpace() >= need+4 {
			return h, nil
		}
		h.Unpin(false)
	}
	h, err := g.pool.NewPage(PageVertex)
	if err != nil {
		return nil, err
	}
	g.meta.VertexPages = append(g.meta.VertexPages, h.Page.ID)
	g.vertexPages[h.Page.ID] = struct{}{}
	return h, nil
}

func (g *Graph) currentEdgePage(need int) (*PageHandle, error) {
	if len(g.meta.EdgePages) > 0 {
		last := g.meta.EdgePages[len(g.meta.EdgePages)-1]
		h, err := g.pool.FetchPage(last)
		if err != nil {
			return nil, err
		}
		if h.Page.RemainingSpace() >= need+4 {
			return h, nil
		}
		h.Unpin(false)
	}
	h, err := g.pool.NewPage(PageEdge)
	if err != nil {
		return nil, err
	}
	g.meta.EdgePages = append(g.meta.EdgePages, h.Page.ID)
	g.edgePages[h.Page.ID] = struct{}{}
	return h, nil
}

// AddVertex appends a new vertex with an auto-assigned id.
func (g *Graph) AddVertex(label VertexLabel, props map[string]PropertyValue) (*Vertex, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := &Vertex{ID: g.meta.NextVertexID, Label: label, Properties: props}
	rec := encodeVertex(v)
	h, err := g.currentVertexPage(len(rec))
	if err != nil {
		return nil, err
	}
	off, err := h.Page.Append(rec)
	h.Unpin(true)
	if err != nil {
		return nil, err
	}
	g.vidx.put(v, recordLoc{Page: h.Page.ID, Offset: off})
	g.meta.NextVertexID++
	return v, nil
}

// AddAccount is sugar over AddVertex for the well-known Account label,
// indexing it by its on-chain address.
func (g *Graph) AddAccount(addr Address, extra map[string]PropertyValue) (*Vertex, error) {
	props := cloneProps(extra)
	props["address"] = AddressValue(addr)
	return g.AddVertex(LabelAccount, props)
}

// AddContract is sugar over AddVertex for the Contract label.
func (g *Graph) AddContract(addr Address, deployer Address, extra map[string]PropertyValue) (*Vertex, error) {
	props := cloneProps(extra)
	props["address"] = AddressValue(addr)
	props["deployer"] = AddressValue(deployer)
	return g.AddVertex(LabelContract, props)
}

func cloneProps(in map[string]PropertyValue) map[string]PropertyValue {
	out := make(map[string]PropertyValue, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// AddEdge appends a new directed edge with an auto-assigned id. Both
// endpoints must already exist.
func (g *Graph) AddEdge(label EdgeLabel, src, dst uint64, props map[string]PropertyValue) (*Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.vidx.locationOf(src); !ok {
		return nil, newErr(KindNotFound, "source vertex does not exist")
	}
	if _, ok := g.vidx.locationOf(dst); !ok {
		return nil, newErr(KindNotFound, "destination vertex does not exist")
	}

	e := &Edge{ID: g.meta.NextEdgeID, Label: label, Src: src, Dst: dst, Properties: props}
	rec := encodeEdge(e)
	h, err := g.currentEdgePage(len(rec))
	if err != nil {
		return nil, err
	}
	off, err := h.Page.Append(rec)
	h.Unpin(true)
	if err != nil {
		return nil, err
	}
	g.eidx.put(e, recordLoc{Page: h.Page.ID, Offset: off})
	g.meta.NextEdgeID++
	return e, nil
}

// AddTransfer is sugar over AddEdge for the Transfer label, stamping the
// amount/block_number/tx_hash well-known properties.
func (g *Graph) AddTransfer(src, dst uint64, amount TokenAmount, blockNumber uint64, txHash Hash) (*Edge, error) {
	props := map[string]PropertyValue{
		PropAmount:      TokenAmountValue(amount),
		PropBlockNumber: BlockNumberValue(blockNumber),
		PropTxHash:      TxHashValue(txHash),
	}
	return g.AddEdge(LabelTransfer, src, dst, props)
}

// DeleteVertex removes a vertex and every edge incident to it from the
// in-memory indices only. The records stay on their pages unchanged, so
// replay on the next Open indexes them again.
func (g *Graph) DeleteVertex(id uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	loc, ok := g.vidx.locationOf(id)
	if !ok {
		return newErr(KindNotFound, "vertex not found")
	}
	h, err := g.pool.FetchPage(loc.Page)
	if err != nil {
		return err
	}
	v, err := decodeVertex(h.Page.Read(loc.Offset, recordLen(h.Page, loc.Offset)))
	h.Unpin(false)
	if err != nil {
		return err
	}

	for _, eid := range g.eidx.Incident(id) {
		if eloc, ok := g.eidx.locationOf(eid); ok {
			eh, err := g.pool.FetchPage(eloc.Page)
			if err == nil {
				e, derr := decodeEdge(eh.Page.Read(eloc.Offset, recordLen(eh.Page, eloc.Offset)))
				eh.Unpin(false)
				if derr == nil {
					g.eidx.remove(e)
				}
			}
		}
	}
	g.vidx.remove(v)
	return nil
}

// UpdateVertex merges props into a vertex's properties and appends the
// result as a new record, repointing the index at it. The earlier record
// stays on its page unreferenced; replay walks records in append order,
// so after a Flush the latest version of each id is the one reopened.
func (g *Graph) UpdateVertex(id uint64, props map[string]PropertyValue) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	loc, ok := g.vidx.locationOf(id)
	if !ok {
		return newErr(KindNotFound, "vertex not found")
	}
	h, err := g.pool.FetchPage(loc.Page)
	if err != nil {
		return err
	}
	v, err := decodeVertex(h.Page.Read(loc.Offset, recordLen(h.Page, loc.Offset)))
	h.Unpin(false)
	if err != nil {
		return err
	}
	for k, val := range props {
		v.Properties[k] = val
	}
	rec := encodeVertex(v)
	nh, err := g.currentVertexPage(len(rec))
	if err != nil {
		return err
	}
	off, err := nh.Page.Append(rec)
	nh.Unpin(true)
	if err != nil {
		return err
	}
	g.vidx.put(v, recordLoc{Page: nh.Page.ID, Offset: off})
	return nil
}

// UpdateEdge mutates the in-memory properties of an edge, appending a
// fresh record the same way UpdateVertex does.
func (g *Graph) UpdateEdge(id uint64, props map[string]PropertyValue) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	loc, ok := g.eidx.locationOf(id)
	if !ok {
		return newErr(KindNotFound, "edge not found")
	}
	h, err := g.pool.FetchPage(loc.Page)
	if err != nil {
		return err
	}
	e, err := decodeEdge(h.Page.Read(loc.Offset, recordLen(h.Page, loc.Offset)))
	h.Unpin(false)
	if err != nil {
		return err
	}
	for k, val := range props {
		e.Properties[k] = val
	}
	rec := encodeEdge(e)
	nh, err := g.currentEdgePage(len(rec))
	if err != nil {
		return err
	}
	off, err := nh.Page.Append(rec)
	nh.Unpin(true)
	if err != nil {
		return err
	}
	g.eidx.remove(e)
	g.eidx.put(e, recordLoc{Page: nh.Page.ID, Offset: off})
	return nil
}

// recordLen recovers a record's stored length from its 4-byte prefix.
func recordLen(p *Page, offset uint16) int {
	lenBuf := p.Payload[offset : offset+4]
	return int(lenBuf[0]) | int(lenBuf[1])<<8 | int(lenBuf[2])<<16 | int(lenBuf[3])<<24
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id uint64) (*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	loc, ok := g.vidx.locationOf(id)
	if !ok {
		return nil, newErr(KindNotFound, "vertex not found")
	}
	h, err := g.pool.FetchPage(loc.Page)
	if err != nil {
		return nil, err
	}
	defer h.Unpin(false)
	return decodeVertex(h.Page.Read(loc.Offset, recordLen(h.Page, loc.Offset)))
}

// VertexByAddress looks up an Account/Contract vertex by its address.
func (g *Graph) VertexByAddress(a Address) (*Vertex, error) {
	g.mu.RLock()
	id, ok := g.vidx.idByAddress(a)
	g.mu.RUnlock()
	if !ok {
		return nil, newErr(KindNotFound, "no vertex with that address")
	}
	return g.Vertex(id)
}

// Edge looks up an edge by id.
func (g *Graph) Edge(id uint64) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	loc, ok := g.eidx.locationOf(id)
	if !ok {
		return nil, newErr(KindNotFound, "edge not found")
	}
	h, err := g.pool.FetchPage(loc.Page)
	if err != nil {
		return nil, err
	}
	defer h.Unpin(false)
	return decodeEdge(h.Page.Read(loc.Offset, recordLen(h.Page, loc.Offset)))
}

// VertexIndexView and EdgeIndexView expose read-only access to the
// indices for the gql and algo packages.
func (g *Graph) VertexIndexView() *VertexIndex { return g.vidx }
func (g *Graph) EdgeIndexView() *EdgeIndex     { return g.eidx }

// VertexCount and EdgeCount report the live record counts.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.vidx.count()
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.eidx.count()
}

// Flush persists the meta record and every dirty buffer-pool frame.
func (g *Graph) Flush() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.meta.writeTo(g.pool); err != nil {
		return err
	}
	if err := g.pool.FlushAll(); err != nil {
		return err
	}
	return g.disk.Sync()
}

// Close flushes and releases the underlying disk storage.
func (g *Graph) Close() error {
	if err := g.Flush(); err != nil {
		g.log.WithError(err).Error("flush on close failed")
	}
	return g.disk.Close()
}
