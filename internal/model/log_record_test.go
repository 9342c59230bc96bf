package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestLogRecordJSONRoundTrip(t *testing.T) {
	original := LogRecord{
		ChainID:     1,
		BlockNumber: 12821000,
		BlockHash:   "0xabc123",
		TxHash:      "0xdef456",
		TxIndex:     7,
		LogIndex:    12,
		Address:     "0x1111111111111111111111111111111111111111",
		Topics:      []string{"0xaaa", "0xbbb"},
		Data:        "0xdeadbeef",
		Removed:     false,
		Timestamp:   1626000000,
		IngestedAt:  "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded LogRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestNewLogRecord(t *testing.T) {
	log := types.Log{
		Address:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Topics:      []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
		Data:        []byte{0xde, 0xad},
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x03"),
		TxIndex:     2,
		BlockHash:   common.HexToHash("0x04"),
		Index:       9,
	}
	ingested := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	record := NewLogRecord(1, log, 1700000000, ingested)

	if record.BlockNumber != 42 || record.LogIndex != 9 || record.TxIndex != 2 {
		t.Fatalf("position mismatch: %+v", record)
	}
	if record.Data != "0xdead" {
		t.Fatalf("data mismatch: %s", record.Data)
	}
	if record.Topic0() != common.HexToHash("0x01").Hex() || len(record.Topics) != 2 {
		t.Fatalf("topics mismatch: %v", record.Topics)
	}
	if record.IngestedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("ingested_at mismatch: %s", record.IngestedAt)
	}
	if (LogRecord{}).Topic0() != "" {
		t.Fatalf("expected empty topic0")
	}
}

func TestParseLogLineAcceptsBothLayouts(t *testing.T) {
	ingested := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rpc := types.Log{
		Address:     common.HexToAddress("0x444045c5C13C246e117eD36437303cac8E250aB0"),
		Topics:      []common.Hash{common.HexToHash("0x01")},
		Data:        []byte{0xbe, 0xef},
		BlockNumber: 12821001,
		TxHash:      common.HexToHash("0x05"),
		TxIndex:     3,
		BlockHash:   common.HexToHash("0x06"),
		Index:       4,
	}
	line, err := json.Marshal(rpc)
	if err != nil {
		t.Fatalf("marshal rpc log: %v", err)
	}
	record, err := ParseLogLine(line, ingested)
	if err != nil {
		t.Fatalf("parse rpc log: %v", err)
	}
	if want := NewLogRecord(0, rpc, 0, ingested); !reflect.DeepEqual(record, want) {
		t.Fatalf("rpc log mismatch: %+v", record)
	}

	native := LogRecord{BlockNumber: 7, TxHash: common.HexToHash("0x07").Hex(), LogIndex: 1, Topics: []string{"0x01"}}
	line, err = json.Marshal(native)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	record, err = ParseLogLine(line, ingested)
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if record.BlockNumber != 7 || record.TxHash != native.TxHash || record.IngestedAt != "" {
		t.Fatalf("record mismatch: %+v", record)
	}

	if _, err := ParseLogLine([]byte(`{"transactionHash":"0x05"}`), ingested); err == nil {
		t.Fatalf("expected error for incomplete rpc log")
	}
	if _, err := ParseLogLine([]byte(`not json`), ingested); err == nil {
		t.Fatalf("expected error for malformed line")
	}
}
