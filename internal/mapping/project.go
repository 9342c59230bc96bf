package mapping

import "vaultIndexer/internal/entity"

// projector turns an event of one kind into its entity. The params type
// assertion panics on a mismatched variant: decoded events are trusted.
type projector func(ev Event) entity.Entity

var projectors = map[entity.Kind]projector{
	entity.KindNewVault:                   projectNewVault,
	entity.KindUpdateProtocolFeeBps:       projectUpdateProtocolFeeBps,
	entity.KindUpdateProtocolFeeRecipient: projectUpdateProtocolFeeRecipient,
	entity.KindUpdateCustomProtocolFee:    projectUpdateCustomProtocolFee,
	entity.KindRemovedCustomProtocolFee:   projectRemovedCustomProtocolFee,
	entity.KindFactoryShutdown:            projectFactoryShutdown,
	entity.KindUpdateGovernance:           projectUpdateGovernance,
	entity.KindNewPendingGovernance:       projectNewPendingGovernance,
}

func provenance(ev Event) entity.Provenance {
	return entity.Provenance{
		ID:              entity.NewID(ev.Transaction.Hash, ev.LogIndex),
		BlockNumber:     ev.Block.Number,
		BlockTimestamp:  ev.Block.Timestamp,
		TransactionHash: ev.Transaction.Hash,
	}
}

func projectNewVault(ev Event) entity.Entity {
	p := ev.Params.(NewVaultParams)
	return entity.NewVault{
		Provenance:   provenance(ev),
		VaultAddress: p.VaultAddress,
		Asset:        p.Asset,
	}
}

func projectUpdateProtocolFeeBps(ev Event) entity.Entity {
	p := ev.Params.(UpdateProtocolFeeBpsParams)
	return entity.UpdateProtocolFeeBps{
		Provenance: provenance(ev),
		OldFeeBps:  p.OldFeeBps,
		NewFeeBps:  p.NewFeeBps,
	}
}

func projectUpdateProtocolFeeRecipient(ev Event) entity.Entity {
	p := ev.Params.(UpdateProtocolFeeRecipientParams)
	return entity.UpdateProtocolFeeRecipient{
		Provenance:      provenance(ev),
		OldFeeRecipient: p.OldFeeRecipient,
		NewFeeRecipient: p.NewFeeRecipient,
	}
}

func projectUpdateCustomProtocolFee(ev Event) entity.Entity {
	p := ev.Params.(UpdateCustomProtocolFeeParams)
	return entity.UpdateCustomProtocolFee{
		Provenance:           provenance(ev),
		Vault:                p.Vault,
		NewCustomProtocolFee: p.NewCustomProtocolFee,
	}
}

func projectRemovedCustomProtocolFee(ev Event) entity.Entity {
	p := ev.Params.(RemovedCustomProtocolFeeParams)
	return entity.RemovedCustomProtocolFee{
		Provenance: provenance(ev),
		Vault:      p.Vault,
	}
}

func projectFactoryShutdown(ev Event) entity.Entity {
	_ = ev.Params.(FactoryShutdownParams)
	return entity.FactoryShutdown{Provenance: provenance(ev)}
}

func projectUpdateGovernance(ev Event) entity.Entity {
	p := ev.Params.(UpdateGovernanceParams)
	return entity.UpdateGovernance{
		Provenance: provenance(ev),
		Governance: p.Governance,
	}
}

func projectNewPendingGovernance(ev Event) entity.Entity {
	p := ev.Params.(NewPendingGovernanceParams)
	return entity.NewPendingGovernance{
		Provenance:        provenance(ev),
		PendingGovernance: p.PendingGovernance,
	}
}
