package entity

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewIDDeterministic(t *testing.T) {
	tx := common.HexToHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")

	a := NewID(tx, 7)
	b := NewID(tx, 7)
	if !bytes.Equal(a, b) {
		t.Fatalf("ids differ: %s != %s", a.Hex(), b.Hex())
	}
}

func TestNewIDLayout(t *testing.T) {
	tx := common.HexToHash("0xa16081f360e3847006db660bae1c6d1b2e17ec2a")

	id := NewID(tx, 1)
	if len(id) != common.HashLength+4 {
		t.Fatalf("id length %d", len(id))
	}
	if !bytes.Equal(id[:common.HashLength], tx.Bytes()) {
		t.Fatalf("tx hash prefix mismatch")
	}
	if !bytes.Equal(id[common.HashLength:], []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Fatalf("log index suffix mismatch: %x", id[common.HashLength:])
	}

	want := tx.Hex() + "-1"
	if id.String() != want {
		t.Fatalf("label mismatch: %s != %s", id.String(), want)
	}
	if id.TxHash() != tx || id.LogIndex() != 1 {
		t.Fatalf("components mismatch: %s %d", id.TxHash().Hex(), id.LogIndex())
	}
}

func TestNewIDUniquePerLogIndex(t *testing.T) {
	tx := common.HexToHash("0x01")
	seen := make(map[string]struct{})
	for i := uint64(0); i < 64; i++ {
		key := NewID(tx, i).Hex()
		if _, ok := seen[key]; ok {
			t.Fatalf("collision at log index %d", i)
		}
		seen[key] = struct{}{}
	}
}

func TestParseIDRoundTrip(t *testing.T) {
	id := NewID(common.HexToHash("0xbeef"), 300)

	parsed, err := ParseID(id.Hex())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(parsed, id) {
		t.Fatalf("parsed id mismatch")
	}

	if _, err := ParseID("0x1234"); err == nil {
		t.Fatalf("expected error for short id")
	}
	if _, err := ParseID("not-hex"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}
