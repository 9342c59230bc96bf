package entity

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const logIndexWidth = 4

// ID identifies one entity: the transaction hash followed by the log index
// as a little-endian int32.
type ID []byte

// NewID builds the entity id for the log at logIndex in txHash.
func NewID(txHash common.Hash, logIndex uint64) ID {
	id := make([]byte, 0, common.HashLength+logIndexWidth)
	id = append(id, txHash.Bytes()...)
	return binary.LittleEndian.AppendUint32(id, uint32(int32(logIndex)))
}

// ParseID decodes the hex form produced by Hex.
func ParseID(input string) (ID, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	if len(data) != common.HashLength+logIndexWidth {
		return nil, fmt.Errorf("invalid id length %d", len(data))
	}
	return ID(data), nil
}

// Hex returns the lowercase 0x-prefixed id bytes. Stores key entities by it.
func (id ID) Hex() string {
	return hexutil.Encode(id)
}

// TxHash returns the transaction hash prefix.
func (id ID) TxHash() common.Hash {
	if len(id) < common.HashLength {
		return common.BytesToHash(id)
	}
	return common.BytesToHash(id[:common.HashLength])
}

// LogIndex returns the log index suffix.
func (id ID) LogIndex() int32 {
	if len(id) != common.HashLength+logIndexWidth {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(id[common.HashLength:]))
}

// String renders the id as <txhash>-<logIndex>.
func (id ID) String() string {
	return fmt.Sprintf("%s-%d", id.TxHash().Hex(), id.LogIndex())
}
