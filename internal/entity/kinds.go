package entity

import "github.com/ethereum/go-ethereum/common"

// NewVault records a vault deployment.
type NewVault struct {
	Provenance
	VaultAddress common.Address
	Asset        common.Address
}

func (e NewVault) Kind() Kind { return KindNewVault }

func (e NewVault) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "vaultAddress", Value: formatAddress(e.VaultAddress)},
		Field{Name: "asset", Value: formatAddress(e.Asset)},
	)
}

// UpdateProtocolFeeBps records a change of the default protocol fee.
type UpdateProtocolFeeBps struct {
	Provenance
	OldFeeBps uint16
	NewFeeBps uint16
}

func (e UpdateProtocolFeeBps) Kind() Kind { return KindUpdateProtocolFeeBps }

func (e UpdateProtocolFeeBps) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "oldFeeBps", Value: formatUint(uint64(e.OldFeeBps))},
		Field{Name: "newFeeBps", Value: formatUint(uint64(e.NewFeeBps))},
	)
}

// UpdateProtocolFeeRecipient records a change of the protocol fee recipient.
type UpdateProtocolFeeRecipient struct {
	Provenance
	OldFeeRecipient common.Address
	NewFeeRecipient common.Address
}

func (e UpdateProtocolFeeRecipient) Kind() Kind { return KindUpdateProtocolFeeRecipient }

func (e UpdateProtocolFeeRecipient) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "oldFeeRecipient", Value: formatAddress(e.OldFeeRecipient)},
		Field{Name: "newFeeRecipient", Value: formatAddress(e.NewFeeRecipient)},
	)
}

// UpdateCustomProtocolFee records a per-vault protocol fee override.
type UpdateCustomProtocolFee struct {
	Provenance
	Vault                common.Address
	NewCustomProtocolFee uint16
}

func (e UpdateCustomProtocolFee) Kind() Kind { return KindUpdateCustomProtocolFee }

func (e UpdateCustomProtocolFee) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "vault", Value: formatAddress(e.Vault)},
		Field{Name: "newCustomProtocolFee", Value: formatUint(uint64(e.NewCustomProtocolFee))},
	)
}

// RemovedCustomProtocolFee records the removal of a per-vault override.
type RemovedCustomProtocolFee struct {
	Provenance
	Vault common.Address
}

func (e RemovedCustomProtocolFee) Kind() Kind { return KindRemovedCustomProtocolFee }

func (e RemovedCustomProtocolFee) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "vault", Value: formatAddress(e.Vault)},
	)
}

// FactoryShutdown carries provenance only.
type FactoryShutdown struct {
	Provenance
}

func (e FactoryShutdown) Kind() Kind { return KindFactoryShutdown }

func (e FactoryShutdown) Fields() []Field {
	return withProvenance(e.Provenance)
}

// UpdateGovernance records a governance hand-over.
type UpdateGovernance struct {
	Provenance
	Governance common.Address
}

func (e UpdateGovernance) Kind() Kind { return KindUpdateGovernance }

func (e UpdateGovernance) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "governance", Value: formatAddress(e.Governance)},
	)
}

// NewPendingGovernance records a proposed governance address.
type NewPendingGovernance struct {
	Provenance
	PendingGovernance common.Address
}

func (e NewPendingGovernance) Kind() Kind { return KindNewPendingGovernance }

func (e NewPendingGovernance) Fields() []Field {
	return withProvenance(e.Provenance,
		Field{Name: "pendingGovernance", Value: formatAddress(e.PendingGovernance)},
	)
}
