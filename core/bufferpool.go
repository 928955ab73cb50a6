package core

import (
	"container/list"
	"sync"

	log "github.com/sirupsen/logrus"
)

// frame is one slot in the BufferPool: a cached Page plus its pin count
// and an LRU list element. Grounded on tinySQL's PageFrame.
type frame struct {
	page     *Page
	pinCount int
	elem     *list.Element // position in the LRU list when pinCount == 0
}

// BufferPool is a fixed-capacity, pin-aware page cache in front of a
// DiskStorage. It never evicts a pinned frame: the replacer only considers
// the LRU list of currently-unpinned frames, mirroring tinySQL's
// PageBufferPool doubly-linked-list replacer and the teacher's
// ConnPool's "never hand out what's checked out" invariant.
type BufferPool struct {
	disk *DiskStorage

	mu        sync.Mutex
	capacity  int
	frames    map[PageID]*frame
	lru       *list.List // front = most recently used unpinned page; back = next victim
	freeSlots int

	log *log.Entry
}

// DefaultBufferPoolSize is the default frame count (spec.md §4.3).
const DefaultBufferPoolSize = 1024

// NewBufferPool creates a pool of the given capacity (frame count) over disk.
func NewBufferPool(disk *DiskStorage, capacity int) *BufferPool {
	if capacity <= 0 {
		capacity = DefaultBufferPoolSize
	}
	return &BufferPool{
		disk:      disk,
		capacity:  capacity,
		frames:    make(map[PageID]*frame, capacity),
		lru:       list.New(),
		freeSlots: capacity,
		log:       log.WithField("component", "buffer_pool"),
	}
}

// PageHandle is a RAII-style pin on a fetched page. Callers must call
// Unpin exactly once when done, mirroring the teacher's pooledConn
// checkout/return pattern.
type PageHandle struct {
	pool *BufferPool
	Page *Page
}

// Unpin decrements the handle's pin count. If markDirty is true the page
// is flagged dirty so FlushPage/FlushAll will persist it.
func (h *PageHandle) Unpin(markDirty bool) {
	h.pool.unpin(h.Page.ID, markDirty)
}

func (bp *BufferPool) unpin(id PageID, markDirty bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	fr, ok := bp.frames[id]
	if !ok || fr.pinCount == 0 {
		return
	}
	if markDirty {
		fr.page.IsDirty = true
	}
	fr.pinCount--
	if fr.pinCount == 0 {
		fr.elem = bp.lru.PushFront(id)
	}
}

// FetchPage returns a pinned handle on id, loading it from disk on a
// cache miss. Fails with KindBufferPoolFull if every frame is pinned and
// none can be evicted.
func (bp *BufferPool) FetchPage(id PageID) (*PageHandle, error) {
	bp.mu.Lock()
	if fr, ok := bp.frames[id]; ok {
		if fr.pinCount == 0 && fr.elem != nil {
			bp.lru.Remove(fr.elem)
			fr.elem = nil
		}
		fr.pinCount++
		bp.mu.Unlock()
		return &PageHandle{pool: bp, Page: fr.page}, nil
	}
	bp.mu.Unlock()

	page, err := bp.disk.ReadPage(id)
	if err != nil {
		return nil, err
	}
	return bp.installAndPin(page)
}

// NewPage allocates a fresh page on disk of the given type and returns a
// pinned handle on it, installed directly into the pool.
func (bp *BufferPool) NewPage(typ PageType) (*PageHandle, error) {
	page, err := bp.disk.AllocatePage(typ)
	if err != nil {
		return nil, err
	}
	return bp.installAndPin(page)
}

// installAndPin places page into a free or victim frame and pins it once.
func (bp *BufferPool) installAndPin(page *Page) (*PageHandle, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if existing, ok := bp.frames[page.ID]; ok {
		if existing.pinCount == 0 && existing.elem != nil {
			bp.lru.Remove(existing.elem)
			existing.elem = nil
		}
		existing.pinCount++
		return &PageHandle{pool: bp, Page: existing.page}, nil
	}

	if bp.freeSlots == 0 {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	fr := &frame{page: page, pinCount: 1}
	bp.frames[page.ID] = fr
	bp.freeSlots--
	return &PageHandle{pool: bp, Page: page}, nil
}

// evictLocked pops the LRU victim (back of the list) and, if dirty,
// flushes it to disk first. Caller must hold bp.mu. Returns
// KindBufferPoolFull if no unpinned frame exists to evict.
func (bp *BufferPool) evictLocked() error {
	back := bp.lru.Back()
	if back == nil {
		return newErr(KindBufferPoolFull, "all frames pinned")
	}
	victimID := back.Value.(PageID)
	bp.lru.Remove(back)
	victim := bp.frames[victimID]
	if victim.page.IsDirty {
		if err := bp.disk.WritePage(victim.page); err != nil {
			return err
		}
	}
	delete(bp.frames, victimID)
	bp.freeSlots++
	return nil
}

// FlushPage writes a single cached page back to disk if dirty, regardless
// of pin state (flushing a pinned page is safe; it just doesn't evict it).
func (bp *BufferPool) FlushPage(id PageID) error {
	bp.mu.Lock()
	fr, ok := bp.frames[id]
	bp.mu.Unlock()
	if !ok || !fr.page.IsDirty {
		return nil
	}
	return bp.disk.WritePage(fr.page)
}

// FlushAll writes every dirty cached page back to disk.
func (bp *BufferPool) FlushAll() error {
	bp.mu.Lock()
	dirty := make([]*Page, 0, len(bp.frames))
	for _, fr := range bp.frames {
		if fr.page.IsDirty {
			dirty = append(dirty, fr.page)
		}
	}
	bp.mu.Unlock()

	for _, p := range dirty {
		if err := bp.disk.WritePage(p); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage evicts id from the pool (flushing it as Free first via
// DiskStorage.FreePage) and refuses while it is pinned.
func (bp *BufferPool) DeletePage(id PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fr, ok := bp.frames[id]
	if ok {
		if fr.pinCount > 0 {
			return newErr(KindIO, "cannot delete a pinned page")
		}
		if fr.elem != nil {
			bp.lru.Remove(fr.elem)
		}
		delete(bp.frames, id)
		bp.freeSlots++
	}
	return bp.disk.FreePage(id)
}

// Size reports how many frames are currently occupied.
func (bp *BufferPool) Size() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.frames)
}
