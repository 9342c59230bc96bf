package mapping

import (
	"github.com/ethereum/go-ethereum/common"

	"vaultIndexer/internal/entity"
)

// Event is a decoded VaultFactory log together with its block and transaction context.
type Event struct {
	Address     common.Address
	Block       Block
	Transaction Transaction
	LogIndex    uint64
	Params      Params
}

// Block is the enclosing block metadata.
type Block struct {
	Number    uint64
	Timestamp uint64
	Hash      common.Hash
}

// Transaction is the enclosing transaction metadata.
type Transaction struct {
	Hash common.Hash
}

// Params is the event-specific payload. The set of implementations is closed.
type Params interface {
	Kind() entity.Kind
	params()
}

type NewVaultParams struct {
	VaultAddress common.Address `json:"vaultAddress"`
	Asset        common.Address `json:"asset"`
}

type UpdateProtocolFeeBpsParams struct {
	OldFeeBps uint16 `json:"oldFeeBps"`
	NewFeeBps uint16 `json:"newFeeBps"`
}

type UpdateProtocolFeeRecipientParams struct {
	OldFeeRecipient common.Address `json:"oldFeeRecipient"`
	NewFeeRecipient common.Address `json:"newFeeRecipient"`
}

type UpdateCustomProtocolFeeParams struct {
	Vault                common.Address `json:"vault"`
	NewCustomProtocolFee uint16         `json:"newCustomProtocolFee"`
}

type RemovedCustomProtocolFeeParams struct {
	Vault common.Address `json:"vault"`
}

type FactoryShutdownParams struct{}

type UpdateGovernanceParams struct {
	Governance common.Address `json:"governance"`
}

type NewPendingGovernanceParams struct {
	PendingGovernance common.Address `json:"pendingGovernance"`
}

func (NewVaultParams) Kind() entity.Kind                   { return entity.KindNewVault }
func (UpdateProtocolFeeBpsParams) Kind() entity.Kind       { return entity.KindUpdateProtocolFeeBps }
func (UpdateProtocolFeeRecipientParams) Kind() entity.Kind { return entity.KindUpdateProtocolFeeRecipient }
func (UpdateCustomProtocolFeeParams) Kind() entity.Kind    { return entity.KindUpdateCustomProtocolFee }
func (RemovedCustomProtocolFeeParams) Kind() entity.Kind   { return entity.KindRemovedCustomProtocolFee }
func (FactoryShutdownParams) Kind() entity.Kind            { return entity.KindFactoryShutdown }
func (UpdateGovernanceParams) Kind() entity.Kind           { return entity.KindUpdateGovernance }
func (NewPendingGovernanceParams) Kind() entity.Kind       { return entity.KindNewPendingGovernance }

func (NewVaultParams) params()                   {}
func (UpdateProtocolFeeBpsParams) params()       {}
func (UpdateProtocolFeeRecipientParams) params() {}
func (UpdateCustomProtocolFeeParams) params()    {}
func (RemovedCustomProtocolFeeParams) params()   {}
func (FactoryShutdownParams) params()            {}
func (UpdateGovernanceParams) params()           {}
func (NewPendingGovernanceParams) params()       {}
