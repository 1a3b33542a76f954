package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPoolEventJSONRoundTrip(t *testing.T) {
	original := PoolEvent{
		Seq:          42,
		Type:         EventSwapOut,
		PoolAddress:  "0x1111111111111111111111111111111111111111",
		Actor:        "0x2222222222222222222222222222222222222222",
		Counterparty: "0x3333333333333333333333333333333333333333",
		Asset:        "0x4444444444444444444444444444444444444444",
		Amount:       "1000000000000000000",
		Value:        "3000000000000000000",
		Timestamp:    1700000000,
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded PoolEvent
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}
