package entity

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind names an entity type. Each kind matches one VaultFactory event.
type Kind string

const (
	KindNewVault                   Kind = "NewVault"
	KindUpdateProtocolFeeBps       Kind = "UpdateProtocolFeeBps"
	KindUpdateProtocolFeeRecipient Kind = "UpdateProtocolFeeRecipient"
	KindUpdateCustomProtocolFee    Kind = "UpdateCustomProtocolFee"
	KindRemovedCustomProtocolFee   Kind = "RemovedCustomProtocolFee"
	KindFactoryShutdown            Kind = "FactoryShutdown"
	KindUpdateGovernance           Kind = "UpdateGovernance"
	KindNewPendingGovernance       Kind = "NewPendingGovernance"
)

// Kinds lists every entity kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindNewVault,
		KindUpdateProtocolFeeBps,
		KindUpdateProtocolFeeRecipient,
		KindUpdateCustomProtocolFee,
		KindRemovedCustomProtocolFee,
		KindFactoryShutdown,
		KindUpdateGovernance,
		KindNewPendingGovernance,
	}
}

// Entity is a projected record ready to be saved.
type Entity interface {
	Kind() Kind
	EntityID() ID
	Fields() []Field
}

// Field is one rendered attribute.
type Field struct {
	Name  string
	Value string
}

// Attributes is the name -> value form handed to a store.
type Attributes map[string]string

// AttributesOf renders an entity for storage.
func AttributesOf(e Entity) Attributes {
	fields := e.Fields()
	attrs := make(Attributes, len(fields))
	for _, f := range fields {
		attrs[f.Name] = f.Value
	}
	return attrs
}

// Provenance holds the attributes every entity carries.
type Provenance struct {
	ID              ID
	BlockNumber     uint64
	BlockTimestamp  uint64
	TransactionHash common.Hash
}

func (p Provenance) EntityID() ID {
	return p.ID
}

func (p Provenance) fields() []Field {
	return []Field{
		{Name: "blockNumber", Value: formatUint(p.BlockNumber)},
		{Name: "blockTimestamp", Value: formatUint(p.BlockTimestamp)},
		{Name: "transactionHash", Value: p.TransactionHash.Hex()},
	}
}

func formatAddress(addr common.Address) string {
	return hexutil.Encode(addr.Bytes())
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func withProvenance(p Provenance, fields ...Field) []Field {
	return append(fields, p.fields()...)
}
