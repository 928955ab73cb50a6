package core

// recordLoc pinpoints a record's physical storage location: which page it
// lives on and the payload offset Page.Read needs.
type recordLoc struct {
	Page   PageID
	Offset uint16
}

// VertexIndex is the in-memory secondary-index layer over vertex storage,
// rebuilt from the vertex pages on every Open. Grounded on the
// address/label/id lookup maps of the dd0wney-graphdb GraphStorage type,
// adapted to this spec's address-keyed account lookup.
type VertexIndex struct {
	byAddress map[Address]uint64
	byLabel   map[VertexLabel]map[uint64]struct{}
	location  map[uint64]recordLoc
}

func newVertexIndex() *VertexIndex {
	return &VertexIndex{
		byAddress: make(map[Address]uint64),
		byLabel:   make(map[VertexLabel]map[uint64]struct{}),
		location:  make(map[uint64]recordLoc),
	}
}

func (vi *VertexIndex) put(v *Vertex, loc recordLoc) {
	vi.location[v.ID] = loc
	if label, ok := vi.byLabel[v.Label]; ok {
		label[v.ID] = struct{}{}
	} else {
		vi.byLabel[v.Label] = map[uint64]struct{}{v.ID: {}}
	}
	if pv, ok := v.Properties["address"]; ok && pv.Tag == TagAddress {
		vi.byAddress[pv.AddressV] = v.ID
	}
}

func (vi *VertexIndex) remove(v *Vertex) {
	delete(vi.location, v.ID)
	if label, ok := vi.byLabel[v.Label]; ok {
		delete(label, v.ID)
	}
	if pv, ok := v.Properties["address"]; ok && pv.Tag == TagAddress {
		delete(vi.byAddress, pv.AddressV)
	}
}

func (vi *VertexIndex) idByAddress(a Address) (uint64, bool) {
	id, ok := vi.byAddress[a]
	return id, ok
}

func (vi *VertexIndex) idsByLabel(label VertexLabel) []uint64 {
	set, ok := vi.byLabel[label]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// IDsByLabel returns every vertex id carrying the given label, for the gql
// executor's NodePattern label-filtered scans.
func (vi *VertexIndex) IDsByLabel(label VertexLabel) []uint64 { return vi.idsByLabel(label) }

// AllIDs returns every known vertex id, for unlabeled NodePattern scans.
func (vi *VertexIndex) AllIDs() []uint64 {
	out := make([]uint64, 0, len(vi.location))
	for id := range vi.location {
		out = append(out, id)
	}
	return out
}

func (vi *VertexIndex) locationOf(id uint64) (recordLoc, bool) {
	loc, ok := vi.location[id]
	return loc, ok
}

func (vi *VertexIndex) count() int { return len(vi.location) }

// EdgeIndex is the in-memory secondary-index layer over edge storage:
// adjacency by source, by destination, by (source,destination) pair, and
// by label, plus the endpoint and physical-location lookups the executor
// needs for variable-length path expansion (spec.md §3.7, §4.8).
type EdgeIndex struct {
	bySrc     map[uint64][]uint64
	byDst     map[uint64][]uint64
	byPair    map[[2]uint64][]uint64
	byLabel   map[EdgeLabel]map[uint64]struct{}
	endpoints map[uint64][2]uint64 // id -> (src, dst)
	location  map[uint64]recordLoc
}

func newEdgeIndex() *EdgeIndex {
	return &EdgeIndex{
		bySrc:     make(map[uint64][]uint64),
		byDst:     make(map[uint64][]uint64),
		byPair:    make(map[[2]uint64][]uint64),
		byLabel:   make(map[EdgeLabel]map[uint64]struct{}),
		endpoints: make(map[uint64][2]uint64),
		location:  make(map[uint64]recordLoc),
	}
}

func (ei *EdgeIndex) put(e *Edge, loc recordLoc) {
	ei.location[e.ID] = loc
	ei.endpoints[e.ID] = [2]uint64{e.Src, e.Dst}
	ei.bySrc[e.Src] = append(ei.bySrc[e.Src], e.ID)
	ei.byDst[e.Dst] = append(ei.byDst[e.Dst], e.ID)
	pair := [2]uint64{e.Src, e.Dst}
	ei.byPair[pair] = append(ei.byPair[pair], e.ID)
	if set, ok := ei.byLabel[e.Label]; ok {
		set[e.ID] = struct{}{}
	} else {
		ei.byLabel[e.Label] = map[uint64]struct{}{e.ID: {}}
	}
}

func (ei *EdgeIndex) remove(e *Edge) {
	delete(ei.location, e.ID)
	delete(ei.endpoints, e.ID)
	ei.bySrc[e.Src] = removeID(ei.bySrc[e.Src], e.ID)
	ei.byDst[e.Dst] = removeID(ei.byDst[e.Dst], e.ID)
	pair := [2]uint64{e.Src, e.Dst}
	ei.byPair[pair] = removeID(ei.byPair[pair], e.ID)
	if set, ok := ei.byLabel[e.Label]; ok {
		delete(set, e.ID)
	}
}

func removeID(ids []uint64, target uint64) []uint64 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Outgoing returns edge ids whose source is v.
func (ei *EdgeIndex) Outgoing(v uint64) []uint64 { return ei.bySrc[v] }

// Incoming returns edge ids whose destination is v.
func (ei *EdgeIndex) Incoming(v uint64) []uint64 { return ei.byDst[v] }

// Incident returns every edge touching v in either direction, used by the
// permissive (non-directional) path-pattern variants.
func (ei *EdgeIndex) Incident(v uint64) []uint64 {
	out := make([]uint64, 0, len(ei.bySrc[v])+len(ei.byDst[v]))
	out = append(out, ei.bySrc[v]...)
	out = append(out, ei.byDst[v]...)
	return out
}

func (ei *EdgeIndex) Between(src, dst uint64) []uint64 {
	return ei.byPair[[2]uint64{src, dst}]
}

func (ei *EdgeIndex) idsByLabel(label EdgeLabel) []uint64 {
	set, ok := ei.byLabel[label]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// IDsByLabel returns every edge id carrying the given label, for the gql
// executor's EdgePattern label-filtered scans.
func (ei *EdgeIndex) IDsByLabel(label EdgeLabel) []uint64 { return ei.idsByLabel(label) }

// AllIDs returns every known edge id.
func (ei *EdgeIndex) AllIDs() []uint64 {
	out := make([]uint64, 0, len(ei.location))
	for id := range ei.location {
		out = append(out, id)
	}
	return out
}

func (ei *EdgeIndex) Endpoints(id uint64) ([2]uint64, bool) {
	ep, ok := ei.endpoints[id]
	return ep, ok
}

func (ei *EdgeIndex) locationOf(id uint64) (recordLoc, bool) {
	loc, ok := ei.location[id]
	return loc, ok
}

func (ei *EdgeIndex) count() int { return len(ei.location) }
