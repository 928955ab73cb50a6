package core

import (
	"encoding/json"
	"testing"
)

func TestPropertyValueJSONRoundTrip(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	hash, err := ParseHash("0x000000000000000000000000000000000000000000000000000000000000bbbb")
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	amount := TokenAmountFromUint64(123456789)

	cases := []PropertyValue{
		NullValue(),
		BoolValue(true),
		IntValue(-42),
		FloatValue(3.5),
		StringValue("hello"),
		AddressValue(addr),
		TxHashValue(hash),
		TokenAmountValue(amount),
		BlockNumberValue(777),
		BytesValue([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
		ListValue([]PropertyValue{IntValue(1), StringValue("two")}),
		MapValue(map[string]PropertyValue{"k": BoolValue(false)}),
		TimestampValue(1_700_000_000),
	}

	for _, want := range cases {
		buf, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal tag %d: %v", want.Tag, err)
		}
		var got PropertyValue
		if err := json.Unmarshal(buf, &got); err != nil {
			t.Fatalf("unmarshal tag %d: %v", want.Tag, err)
		}
		if got.String() != want.String() {
			t.Fatalf("round-trip mismatch for tag %d: want %q got %q", want.Tag, want.String(), got.String())
		}
		if got.Tag != want.Tag {
			t.Fatalf("tag mismatch: want %d got %d", want.Tag, got.Tag)
		}
	}
}

func TestPropertyValueJSONRoundTripInVertexRecord(t *testing.T) {
	v := &Vertex{
		ID:    1,
		Label: LabelAccount,
		Properties: map[string]PropertyValue{
			"balance": IntValue(100),
			"name":    StringValue("alice"),
		},
	}
	buf, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal vertex: %v", err)
	}
	var got Vertex
	if err := json.Unmarshal(buf, &got); err != nil {
		t.Fatalf("unmarshal vertex: %v", err)
	}
	if got.Properties["balance"].IntV != 100 {
		t.Fatalf("expected balance 100 to survive the round trip, got %d", got.Properties["balance"].IntV)
	}
	if got.Properties["name"].StringV != "alice" {
		t.Fatalf("expected name %q to survive the round trip, got %q", "alice", got.Properties["name"].StringV)
	}
}
