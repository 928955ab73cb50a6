package core

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pierrec/lz4/v4"
	log "github.com/sirupsen/logrus"
)

const (
	fileMagic        uint64 = 0x4348_4149_4E47_5248
	fileFormatVersion uint32 = 1
	fileHeaderSize    int    = 32
	initialFileSize   int64  = 64 * 1024 * 1024
	growChunkSize     int64  = 16 * 1024 * 1024
)

// fileHeader is the 32 live bytes of page 0 (spec.md §3.2).
type fileHeader struct {
	Magic         uint64
	Version       uint32
	PageCount     uint64 // next-to-allocate
	FreePageHead  uint64 // 0 = empty free list
}

func (h *fileHeader) marshal() []byte {
	buf := make([]byte, fileHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Magic)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint64(buf[12:20], h.PageCount)
	binary.LittleEndian.PutUint64(buf[20:28], h.FreePageHead)
	return buf
}

func unmarshalFileHeader(buf []byte) (*fileHeader, error) {
	h := &fileHeader{
		Magic:        binary.LittleEndian.Uint64(buf[0:8]),
		Version:      binary.LittleEndian.Uint32(buf[8:12]),
		PageCount:    binary.LittleEndian.Uint64(buf[12:20]),
		FreePageHead: binary.LittleEndian.Uint64(buf[20:28]),
	}
	if h.Magic != fileMagic {
		return nil, newErr(KindIO, "bad file magic")
	}
	return h, nil
}

// DiskStorage owns one append-extendable data file, memory-mapped for
// read/write, with a page allocator and free-list rooted in the file
// header. Grounded on the teacher's core/storage.go disk-backed LRU cache
// shape and the tinySQL pager's allocate/free/superblock lifecycle.
type DiskStorage struct {
	path string

	fileMu sync.RWMutex // guards file handle + mapping identity (grow/re-map)
	file   *os.File
	data   mmap.MMap

	hdrMu sync.Mutex // serializes header (page_count/free_page_head) mutation
	hdr   *fileHeader

	compress    bool
	compCacheMu sync.Mutex
	compCache   *lru.Cache[PageID, []byte]

	log *log.Entry
}

// DiskStorageOptions configures DiskStorage.Open.
type DiskStorageOptions struct {
	Compress       bool
	CompCacheSize  int // entries in the compressed-page sidecar cache
}

// OpenDiskStorage opens or creates dir/data.cgd per spec.md §4.2.
func OpenDiskStorage(dir string, opts DiskStorageOptions) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapErr(KindIO, "create data dir", err)
	}
	path := filepath.Join(dir, "data.cgd")

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, wrapErr(KindIO, "open data file", err)
	}

	ds := &DiskStorage{
		path:     path,
		file:     f,
		compress: opts.Compress,
		log:      log.WithField("component", "disk_storage"),
	}

	if isNew {
		if err := f.Truncate(initialFileSize); err != nil {
			f.Close()
			return nil, wrapErr(KindIO, "grow new file", err)
		}
		ds.hdr = &fileHeader{Magic: fileMagic, Version: fileFormatVersion, PageCount: 1, FreePageHead: 0}
		if err := ds.mapFile(); err != nil {
			f.Close()
			return nil, err
		}
		copy(ds.data[:fileHeaderSize], ds.hdr.marshal())
	} else {
		if err := ds.mapFile(); err != nil {
			f.Close()
			return nil, err
		}
		hdr, err := unmarshalFileHeader(ds.data[:fileHeaderSize])
		if err != nil {
			ds.data.Unmap()
			f.Close()
			return nil, err
		}
		ds.hdr = hdr
	}

	if opts.Compress {
		size := opts.CompCacheSize
		if size <= 0 {
			size = 4096
		}
		cache, err := lru.New[PageID, []byte](size)
		if err != nil {
			return nil, wrapErr(KindIO, "init compression cache", err)
		}
		ds.compCache = cache
	}

	return ds, nil
}

// mapFile (re)establishes the memory map over the current file size. Must
// be called with fileMu held for writing by the caller when growing; the
// initial call from Open owns the struct exclusively already.
func (ds *DiskStorage) mapFile() error {
	m, err := mmap.Map(ds.file, mmap.RDWR, 0)
	if err != nil {
		return wrapErr(KindIO, "mmap data file", err)
	}
	ds.data = m
	return nil
}

// grow extends the file by growChunkSize and re-maps it. Caller must hold
// fileMu for writing. Spec.md §9 "Memory map lifetime": every grow
// invalidates outstanding slices, so this is only ever called from
// AllocatePage, which holds fileMu for the duration of the call and never
// hands out a live slice across it.
func (ds *DiskStorage) grow() error {
	if err := ds.data.Unmap(); err != nil {
		return wrapErr(KindIO, "unmap before grow", err)
	}
	info, err := ds.file.Stat()
	if err != nil {
		return wrapErr(KindIO, "stat before grow", err)
	}
	newSize := info.Size() + growChunkSize
	if err := ds.file.Truncate(newSize); err != nil {
		return wrapErr(KindIO, "truncate grow", err)
	}
	return ds.mapFile()
}

func (ds *DiskStorage) pageCount() int64 {
	info, err := ds.file.Stat()
	if err != nil {
		return 0
	}
	return info.Size() / PageSize
}

// AllocatePage returns a fresh, empty page of the requested type, recycled
// from the free list if one is available, else grown from the end of the
// file (extending it by 16MiB if necessary).
func (ds *DiskStorage) AllocatePage(typ PageType) (*Page, error) {
	ds.fileMu.Lock()
	defer ds.fileMu.Unlock()
	ds.hdrMu.Lock()
	defer ds.hdrMu.Unlock()

	var id PageID
	if ds.hdr.FreePageHead != 0 {
		id = PageID(ds.hdr.FreePageHead)
		freed, err := ds.readPageLocked(id)
		if err != nil {
			return nil, err
		}
		ds.hdr.FreePageHead = uint64(freed.NextPage)
	} else {
		id = PageID(ds.hdr.PageCount)
		ds.hdr.PageCount++
		needed := int64(id+1) * PageSize
		if needed > int64(len(ds.data)) {
			if err := ds.grow(); err != nil {
				return nil, err
			}
		}
	}
	ds.writeHeaderLocked()
	return NewPage(id, typ), nil
}

// ReadPage reads and deserializes the page at id directly from the
// memory map (no caching — BufferPool is the caching layer above this).
func (ds *DiskStorage) ReadPage(id PageID) (*Page, error) {
	ds.fileMu.RLock()
	defer ds.fileMu.RUnlock()
	return ds.readPageLocked(id)
}

func (ds *DiskStorage) readPageLocked(id PageID) (*Page, error) {
	if id == 0 {
		return nil, newErr(KindPageOutOfRange, "page 0 is the file header")
	}
	if int64(id) >= ds.pageCountMapped() {
		return nil, newErr(KindPageOutOfRange, fmt.Sprintf("page %d out of range", id))
	}

	if ds.compress {
		ds.compCacheMu.Lock()
		if raw, ok := ds.compCache.Get(id); ok {
			ds.compCacheMu.Unlock()
			plain, err := decompressPage(raw)
			if err != nil {
				return nil, wrapErr(KindIO, "decompress cached page", err)
			}
			return PageFromBytes(plain)
		}
		ds.compCacheMu.Unlock()
	}

	off := int64(id) * PageSize
	buf := make([]byte, PageSize)
	copy(buf, ds.data[off:off+PageSize])
	return PageFromBytes(buf)
}

func (ds *DiskStorage) pageCountMapped() int64 {
	return int64(len(ds.data)) / PageSize
}

// WritePage serializes and writes p into the memory map at its page id.
// When compression is enabled, the LZ4-compressed bytes are also stored in
// the in-memory sidecar cache and served on subsequent reads.
func (ds *DiskStorage) WritePage(p *Page) error {
	ds.fileMu.RLock()
	defer ds.fileMu.RUnlock()

	if int64(p.ID) >= ds.pageCountMapped() {
		return newErr(KindPageOutOfRange, fmt.Sprintf("page %d out of range", p.ID))
	}
	buf := p.ToBytes()
	off := int64(p.ID) * PageSize
	copy(ds.data[off:off+PageSize], buf)

	if ds.compress {
		compressed, err := compressPage(buf)
		if err == nil {
			ds.compCacheMu.Lock()
			ds.compCache.Add(p.ID, compressed)
			ds.compCacheMu.Unlock()
		} else {
			ds.log.WithError(err).Warn("page compression failed, serving uncompressed on next read")
		}
	}
	p.IsDirty = false
	return nil
}

// FreePage overwrites the page with a Free-typed page linking into the
// free-list head, and drops any compression-cache entry for it.
func (ds *DiskStorage) FreePage(id PageID) error {
	ds.fileMu.Lock()
	defer ds.fileMu.Unlock()
	ds.hdrMu.Lock()
	defer ds.hdrMu.Unlock()

	freed := NewPage(id, PageFree)
	freed.NextPage = PageID(ds.hdr.FreePageHead)
	buf := freed.ToBytes()
	off := int64(id) * PageSize
	copy(ds.data[off:off+PageSize], buf)

	ds.hdr.FreePageHead = uint64(id)
	ds.writeHeaderLocked()

	if ds.compress {
		ds.compCacheMu.Lock()
		ds.compCache.Remove(id)
		ds.compCacheMu.Unlock()
	}
	return nil
}

// writeHeaderLocked persists the in-memory file header into page 0. Caller
// must hold fileMu and hdrMu.
func (ds *DiskStorage) writeHeaderLocked() {
	copy(ds.data[:fileHeaderSize], ds.hdr.marshal())
}

// Sync flushes the memory map to disk.
func (ds *DiskStorage) Sync() error {
	ds.fileMu.RLock()
	defer ds.fileMu.RUnlock()
	if err := ds.data.Flush(); err != nil {
		return wrapErr(KindIO, "flush mmap", err)
	}
	return nil
}

// Close flushes and unmaps the file. Best-effort; failures are logged, not
// raised, matching spec.md §4.2's destructor contract.
func (ds *DiskStorage) Close() error {
	ds.fileMu.Lock()
	defer ds.fileMu.Unlock()
	if err := ds.data.Flush(); err != nil {
		ds.log.WithError(err).Error("final flush failed")
	}
	if err := ds.data.Unmap(); err != nil {
		ds.log.WithError(err).Error("unmap failed")
	}
	return ds.file.Close()
}

func compressPage(plain []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(plain)))
	var c lz4.Compressor
	n, err := c.CompressBlock(plain, buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible; store as-is with a sentinel length prefix of 0.
		out := make([]byte, 4+len(plain))
		binary.LittleEndian.PutUint32(out, 0)
		copy(out[4:], plain)
		return out, nil
	}
	out := make([]byte, 4+n)
	binary.LittleEndian.PutUint32(out, uint32(len(plain)))
	copy(out[4:], buf[:n])
	return out, nil
}

func decompressPage(stored []byte) ([]byte, error) {
	originalLen := binary.LittleEndian.Uint32(stored[:4])
	if originalLen == 0 {
		return stored[4:], nil
	}
	out := make([]byte, originalLen)
	n, err := lz4.UncompressBlock(stored[4:], out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
