package core

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// VertexLabel is the closed-ish set of vertex kinds from spec.md §3.3.
// New labels beyond these are permitted (graphs are schema-flexible) but
// these are the well-known ones the importer and algo packages special-case.
type VertexLabel string

const (
	LabelAccount  VertexLabel = "Account"
	LabelContract VertexLabel = "Contract"
)

// propertyTag discriminates the PropertyValue tagged union.
type propertyTag uint8

const (
	TagNull propertyTag = iota
	TagBool
	TagInteger
	TagFloat
	TagString
	TagAddress
	TagTxHash
	TagTokenAmount
	TagBlockNumber
	TagBytes
	TagList
	TagMap
	TagTimestamp
)

// PropertyValue is a closed sum type for vertex/edge property values,
// grounded on spec.md §3.4. Exactly one of the typed fields is
// meaningful, selected by Tag; this mirrors the teacher's Transaction
// struct's "one struct, several optional fields" shape rather than an
// interface{}-based union, so JSON encode/decode and equality stay simple.
type PropertyValue struct {
	Tag       propertyTag
	BoolV     bool
	IntV      int64
	FloatV    float64
	StringV   string
	AddressV  Address
	HashV     Hash
	AmountV   TokenAmount
	BlockNumV uint64
	BytesV    []byte
	ListV     []PropertyValue
	MapV      map[string]PropertyValue
	TimeV     int64 // unix seconds
}

func NullValue() PropertyValue                { return PropertyValue{Tag: TagNull} }
func BoolValue(b bool) PropertyValue          { return PropertyValue{Tag: TagBool, BoolV: b} }
func IntValue(i int64) PropertyValue          { return PropertyValue{Tag: TagInteger, IntV: i} }
func FloatValue(f float64) PropertyValue      { return PropertyValue{Tag: TagFloat, FloatV: f} }
func StringValue(s string) PropertyValue      { return PropertyValue{Tag: TagString, StringV: s} }
func AddressValue(a Address) PropertyValue    { return PropertyValue{Tag: TagAddress, AddressV: a} }
func TxHashValue(h Hash) PropertyValue        { return PropertyValue{Tag: TagTxHash, HashV: h} }
func TokenAmountValue(t TokenAmount) PropertyValue {
	return PropertyValue{Tag: TagTokenAmount, AmountV: t}
}
func BlockNumberValue(n uint64) PropertyValue { return PropertyValue{Tag: TagBlockNumber, BlockNumV: n} }
func BytesValue(b []byte) PropertyValue       { return PropertyValue{Tag: TagBytes, BytesV: b} }
func ListValue(v []PropertyValue) PropertyValue {
	return PropertyValue{Tag: TagList, ListV: v}
}
func MapValue(m map[string]PropertyValue) PropertyValue {
	return PropertyValue{Tag: TagMap, MapV: m}
}
func TimestampValue(unixSeconds int64) PropertyValue {
	return PropertyValue{Tag: TagTimestamp, TimeV: unixSeconds}
}

// String renders a PropertyValue the way the GQL executor presents scalar
// results: compact, human-readable, no quoting conventions beyond strings.
func (v PropertyValue) String() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagBool:
		return fmt.Sprintf("%t", v.BoolV)
	case TagInteger:
		return fmt.Sprintf("%d", v.IntV)
	case TagFloat:
		return fmt.Sprintf("%g", v.FloatV)
	case TagString:
		return v.StringV
	case TagAddress:
		return v.AddressV.Hex()
	case TagTxHash:
		return v.HashV.Hex()
	case TagTokenAmount:
		return v.AmountV.String()
	case TagBlockNumber:
		return fmt.Sprintf("%d", v.BlockNumV)
	case TagBytes:
		return fmt.Sprintf("0x%x", v.BytesV)
	case TagTimestamp:
		return fmt.Sprintf("%d", v.TimeV)
	case TagList:
		return fmt.Sprintf("%v", v.ListV)
	case TagMap:
		return fmt.Sprintf("%v", v.MapV)
	default:
		return "?"
	}
}

// propJSON is PropertyValue's wire form, used both for on-disk record
// encoding and for JSON API responses (server package reuses this type).
type propJSON struct {
	Tag   propertyTag     `json:"tag"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements a tagged-union encoding so values round-trip
// through the HTTP API without losing their type.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	var raw interface{}
	switch v.Tag {
	case TagNull:
		raw = nil
	case TagBool:
		raw = v.BoolV
	case TagInteger:
		raw = v.IntV
	case TagFloat:
		raw = v.FloatV
	case TagString:
		raw = v.StringV
	case TagAddress:
		raw = v.AddressV.Hex()
	case TagTxHash:
		raw = v.HashV.Hex()
	case TagTokenAmount:
		raw = v.AmountV.String()
	case TagBlockNumber:
		raw = v.BlockNumV
	case TagBytes:
		raw = fmt.Sprintf("0x%x", v.BytesV)
	case TagList:
		raw = v.ListV
	case TagMap:
		raw = v.MapV
	case TagTimestamp:
		raw = v.TimeV
	}
	valBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(propJSON{Tag: v.Tag, Value: valBytes})
}

// UnmarshalJSON is MarshalJSON's inverse: it re-derives the typed field
// from propJSON.Value according to Tag, so properties round-trip through
// both on-disk records and the HTTP API without losing their type.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw propJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Tag = raw.Tag
	switch raw.Tag {
	case TagNull:
	case TagBool:
		return json.Unmarshal(raw.Value, &v.BoolV)
	case TagInteger:
		return json.Unmarshal(raw.Value, &v.IntV)
	case TagFloat:
		return json.Unmarshal(raw.Value, &v.FloatV)
	case TagString:
		return json.Unmarshal(raw.Value, &v.StringV)
	case TagAddress:
		var hex string
		if err := json.Unmarshal(raw.Value, &hex); err != nil {
			return err
		}
		addr, err := ParseAddress(hex)
		if err != nil {
			return err
		}
		v.AddressV = addr
	case TagTxHash:
		var hex string
		if err := json.Unmarshal(raw.Value, &hex); err != nil {
			return err
		}
		h, err := ParseHash(hex)
		if err != nil {
			return err
		}
		v.HashV = h
	case TagTokenAmount:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return err
		}
		amt, err := TokenAmountFromString(s)
		if err != nil {
			return err
		}
		v.AmountV = amt
	case TagBlockNumber:
		return json.Unmarshal(raw.Value, &v.BlockNumV)
	case TagBytes:
		var hex string
		if err := json.Unmarshal(raw.Value, &hex); err != nil {
			return err
		}
		b, err := bytesFromHexPrefixed(hex)
		if err != nil {
			return err
		}
		v.BytesV = b
	case TagList:
		return json.Unmarshal(raw.Value, &v.ListV)
	case TagMap:
		return json.Unmarshal(raw.Value, &v.MapV)
	case TagTimestamp:
		return json.Unmarshal(raw.Value, &v.TimeV)
	}
	return nil
}

// Vertex is one node record: spec.md §3.3.
type Vertex struct {
	ID         uint64
	Label      VertexLabel
	Properties map[string]PropertyValue
}

// encodeVertex produces the length-prefixed-field binary record appended
// to a PageVertex page's payload.
func encodeVertex(v *Vertex) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, encodeUint64(v.ID)...)
	buf = appendLPString(buf, string(v.Label))
	propsJSON, _ := json.Marshal(v.Properties)
	buf = appendLPBytes(buf, propsJSON)
	return buf
}

func decodeVertex(buf []byte) (*Vertex, error) {
	if len(buf) < 8 {
		return nil, newErr(KindIO, "truncated vertex record")
	}
	id := binary.LittleEndian.Uint64(buf[:8])
	rest := buf[8:]
	label, rest, err := readLPString(rest)
	if err != nil {
		return nil, err
	}
	propsJSON, _, err := readLPBytes(rest)
	if err != nil {
		return nil, err
	}
	var props map[string]PropertyValue
	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &props); err != nil {
			return nil, wrapErr(KindIO, "unmarshal vertex properties", err)
		}
	}
	return &Vertex{ID: id, Label: VertexLabel(label), Properties: props}, nil
}

// bytesFromHexPrefixed parses the "0x%x"-formatted string MarshalJSON
// emits for TagBytes values back into raw bytes.
func bytesFromHexPrefixed(s string) ([]byte, error) {
	s = trimHexPrefix(s)
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, wrapErr(KindIO, "decode bytes property", err)
	}
	return b, nil
}

func appendLPString(buf []byte, s string) []byte {
	return appendLPBytes(buf, []byte(s))
}

func appendLPBytes(buf []byte, b []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(b)))
	buf = append(buf, lenBuf...)
	return append(buf, b...)
}

func readLPString(buf []byte) (string, []byte, error) {
	b, rest, err := readLPBytes(buf)
	return string(b), rest, err
}

func readLPBytes(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, newErr(KindIO, "truncated length-prefixed field")
	}
	l := binary.LittleEndian.Uint32(buf[:4])
	if uint32(len(buf)-4) < l {
		return nil, nil, newErr(KindIO, "truncated length-prefixed field body")
	}
	return buf[4 : 4+l], buf[4+l:], nil
}
