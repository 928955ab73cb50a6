package core

import (
	"encoding/binary"
	"hash/crc32"
)

// PageSize is the fixed on-disk page size in bytes (spec.md §3.1).
const PageSize = 4096

// pageHeaderSize is the size in bytes of the fixed page header.
const pageHeaderSize = 36

// payloadSize is the usable payload area after the header.
const payloadSize = PageSize - pageHeaderSize

// PageID identifies a page within a DiskStorage file. Page 0 is reserved
// for the file header and is never a valid PageID for page content.
type PageID uint64

// PageType identifies the kind of record a page's payload holds.
type PageType uint8

const (
	PageFree PageType = iota
	PageVertex
	PageEdge
	PageVertexIndex
	PageEdgeIndex
	PageProperty
	PageOverflow
	PageMeta
)

var crcTable = crc32.MakeTable(crc32.IEEE)

// Page is the in-memory representation of one on-disk 4096-byte page: a
// 36-byte header plus a 4060-byte payload of length-prefixed records.
//
// Header layout (little-endian), matching spec.md §3.1:
//
//	offset  size  field
//	0       8     page_id
//	8       1     page_type
//	9       1     flags (reserved)
//	10      2     item_count
//	12      2     free_offset
//	14      8     next_page
//	22      8     prev_page
//	30      4     checksum (CRC32 of payload)
//	34      2     padding
type Page struct {
	ID          PageID
	Type        PageType
	Flags       uint8
	ItemCount   uint16
	FreeOffset  uint16
	NextPage    PageID
	PrevPage    PageID
	Payload     [payloadSize]byte
	IsDirty     bool
}

// NewPage allocates a fresh, empty page of the given id and type.
func NewPage(id PageID, typ PageType) *Page {
	return &Page{ID: id, Type: typ, FreeOffset: 0, IsDirty: true}
}

// Append writes a length-prefixed record to the page's payload and returns
// the byte offset the record was written at. Fails if the record would not
// fit in the remaining payload space.
func (p *Page) Append(record []byte) (uint16, error) {
	need := 4 + len(record)
	if int(p.FreeOffset)+need > payloadSize {
		return 0, newErr(KindIO, "page full")
	}
	off := p.FreeOffset
	binary.LittleEndian.PutUint32(p.Payload[off:], uint32(len(record)))
	copy(p.Payload[off+4:], record)
	p.FreeOffset = off + uint16(need)
	p.ItemCount++
	p.IsDirty = true
	return off, nil
}

// Read returns the len-many bytes stored at the given payload offset,
// skipping the 4-byte length prefix.
func (p *Page) Read(offset uint16, length int) []byte {
	out := make([]byte, length)
	copy(out, p.Payload[offset+4:int(offset)+4+length])
	return out
}

// Records iterates every length-prefixed record currently stored in the
// page's payload, in append order, up to FreeOffset. A zero-length record
// (tombstone) is skipped but still consumes its slot.
func (p *Page) Records() [][]byte {
	var out [][]byte
	var off uint16
	for off < p.FreeOffset {
		l := binary.LittleEndian.Uint32(p.Payload[off:])
		start := off + 4
		end := start + uint16(l)
		if l > 0 {
			rec := make([]byte, l)
			copy(rec, p.Payload[start:end])
			out = append(out, rec)
		}
		off = end
	}
	return out
}

// RemainingSpace returns how many more bytes can be appended (record bytes
// only; the 4-byte length prefix is additional per-record overhead).
func (p *Page) RemainingSpace() int {
	return payloadSize - int(p.FreeOffset)
}

// ToBytes serializes the page to a fixed 4096-byte slice, recomputing the
// CRC32 of the payload.
func (p *Page) ToBytes() []byte {
	buf := make([]byte, PageSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.ID))
	buf[8] = byte(p.Type)
	buf[9] = p.Flags
	binary.LittleEndian.PutUint16(buf[10:12], p.ItemCount)
	binary.LittleEndian.PutUint16(buf[12:14], p.FreeOffset)
	binary.LittleEndian.PutUint64(buf[14:22], uint64(p.NextPage))
	binary.LittleEndian.PutUint64(buf[22:30], uint64(p.PrevPage))
	copy(buf[pageHeaderSize:], p.Payload[:])
	var checksum uint32
	if p.Type != PageFree {
		checksum = crc32.Checksum(buf[pageHeaderSize:], crcTable)
	}
	binary.LittleEndian.PutUint32(buf[30:34], checksum)
	return buf
}

// PageFromBytes deserializes a 4096-byte slice into a Page, validating the
// CRC32 of the payload for all non-Free page types. A zero stored checksum
// is treated as "fresh" (never written) and accepted without comparison.
func PageFromBytes(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, newErr(KindIO, "buffer is not one page")
	}
	p := &Page{
		ID:         PageID(binary.LittleEndian.Uint64(buf[0:8])),
		Type:       PageType(buf[8]),
		Flags:      buf[9],
		ItemCount:  binary.LittleEndian.Uint16(buf[10:12]),
		FreeOffset: binary.LittleEndian.Uint16(buf[12:14]),
		NextPage:   PageID(binary.LittleEndian.Uint64(buf[14:22])),
		PrevPage:   PageID(binary.LittleEndian.Uint64(buf[22:30])),
	}
	storedCRC := binary.LittleEndian.Uint32(buf[30:34])
	copy(p.Payload[:], buf[pageHeaderSize:])

	if p.Type != PageFree && storedCRC != 0 {
		actual := crc32.Checksum(p.Payload[:], crcTable)
		if actual != storedCRC {
			return nil, &ChecksumError{PageID: uint64(p.ID), Expected: storedCRC, Actual: actual}
		}
	}
	return p, nil
}

// Equal reports deep equality over everything ToBytes round-trips:
// id, type, item count, free offset, sibling links, and payload bytes.
func (p *Page) Equal(o *Page) bool {
	if p.ID != o.ID || p.Type != o.Type || p.ItemCount != o.ItemCount ||
		p.FreeOffset != o.FreeOffset || p.NextPage != o.NextPage || p.PrevPage != o.PrevPage {
		return false
	}
	return p.Payload == o.Payload
}
