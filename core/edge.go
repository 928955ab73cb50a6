package core

import (
	"encoding/binary"
	"encoding/json"
)

// EdgeLabel is the closed-ish set of edge kinds from spec.md §3.5.
type EdgeLabel string

const (
	LabelTransfer EdgeLabel = "Transfer"
	LabelCalls    EdgeLabel = "Calls"
	LabelDeploys  EdgeLabel = "Deploys"
	LabelOwns     EdgeLabel = "Owns"
)

// Well-known edge property keys.
const (
	PropAmount      = "amount"
	PropBlockNumber = "block_number"
	PropTxHash      = "tx_hash"
)

// Edge is one directed relationship record: spec.md §3.5.
type Edge struct {
	ID         uint64
	Label      EdgeLabel
	Src        uint64
	Dst        uint64
	Properties map[string]PropertyValue
}

// Weight returns the edge's flow capacity for max-flow purposes: the low
// 64 bits of its "amount" TokenAmount property, or 0 if absent/non-Transfer.
func (e *Edge) Weight() uint64 {
	pv, ok := e.Properties[PropAmount]
	if e.Label != LabelTransfer || !ok || pv.Tag != TagTokenAmount {
		return 0
	}
	return pv.AmountV.LowUint64()
}

func encodeEdge(e *Edge) []byte {
	buf := make([]byte, 0, 80)
	buf = append(buf, encodeUint64(e.ID)...)
	buf = appendLPString(buf, string(e.Label))
	buf = append(buf, encodeUint64(e.Src)...)
	buf = append(buf, encodeUint64(e.Dst)...)
	propsJSON, _ := json.Marshal(e.Properties)
	buf = appendLPBytes(buf, propsJSON)
	return buf
}

func decodeEdge(buf []byte) (*Edge, error) {
	if len(buf) < 8 {
		return nil, newErr(KindIO, "truncated edge record")
	}
	id := binary.LittleEndian.Uint64(buf[:8])
	rest := buf[8:]
	label, rest, err := readLPString(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < 16 {
		return nil, newErr(KindIO, "truncated edge record src/dst")
	}
	src := binary.LittleEndian.Uint64(rest[:8])
	dst := binary.LittleEndian.Uint64(rest[8:16])
	rest = rest[16:]
	propsJSON, _, err := readLPBytes(rest)
	if err != nil {
		return nil, err
	}
	var props map[string]PropertyValue
	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &props); err != nil {
			return nil, wrapErr(KindIO, "unmarshal edge properties", err)
		}
	}
	return &Edge{ID: id, Label: EdgeLabel(label), Src: src, Dst: dst, Properties: props}, nil
}
