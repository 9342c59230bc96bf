package mapping

import (
	"context"
	"errors"
	"fmt"

	"vaultIndexer/internal/entity"
)

// ErrUnknownKind is returned by Dispatch for params without a projector.
var ErrUnknownKind = errors.New("unknown event kind")

// Store is the persistence capability handlers write through.
type Store interface {
	Save(ctx context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, store Store, ev Event) error

var handlersByKind = map[entity.Kind]Handler{
	entity.KindNewVault:                   HandleNewVault,
	entity.KindUpdateProtocolFeeBps:       HandleUpdateProtocolFeeBps,
	entity.KindUpdateProtocolFeeRecipient: HandleUpdateProtocolFeeRecipient,
	entity.KindUpdateCustomProtocolFee:    HandleUpdateCustomProtocolFee,
	entity.KindRemovedCustomProtocolFee:   HandleRemovedCustomProtocolFee,
	entity.KindFactoryShutdown:            HandleFactoryShutdown,
	entity.KindUpdateGovernance:           HandleUpdateGovernance,
	entity.KindNewPendingGovernance:       HandleNewPendingGovernance,
}

// Dispatch routes ev to the handler for its params kind.
func Dispatch(ctx context.Context, store Store, ev Event) error {
	if ev.Params == nil {
		return fmt.Errorf("%w: nil params", ErrUnknownKind)
	}
	handle, ok := handlersByKind[ev.Params.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, ev.Params.Kind())
	}
	return handle(ctx, store, ev)
}

// Project returns the entity ev maps to without saving it.
func Project(ev Event) (entity.Entity, error) {
	if ev.Params == nil {
		return nil, fmt.Errorf("%w: nil params", ErrUnknownKind)
	}
	project, ok := projectors[ev.Params.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, ev.Params.Kind())
	}
	return project(ev), nil
}

func commit(ctx context.Context, store Store, e entity.Entity) error {
	if err := store.Save(ctx, e.Kind(), e.EntityID(), entity.AttributesOf(e)); err != nil {
		return fmt.Errorf("save %s %s: %w", e.Kind(), e.EntityID(), err)
	}
	return nil
}

func HandleNewVault(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectNewVault(ev))
}

func HandleUpdateProtocolFeeBps(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectUpdateProtocolFeeBps(ev))
}

func HandleUpdateProtocolFeeRecipient(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectUpdateProtocolFeeRecipient(ev))
}

func HandleUpdateCustomProtocolFee(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectUpdateCustomProtocolFee(ev))
}

func HandleRemovedCustomProtocolFee(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectRemovedCustomProtocolFee(ev))
}

func HandleFactoryShutdown(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectFactoryShutdown(ev))
}

func HandleUpdateGovernance(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectUpdateGovernance(ev))
}

func HandleNewPendingGovernance(ctx context.Context, store Store, ev Event) error {
	return commit(ctx, store, projectNewPendingGovernance(ev))
}

// HandlerBinding pairs a manifest handler name with its kind. Dispatch
// finds the handler function from the kind.
type HandlerBinding struct {
	Name string
	Kind entity.Kind
}

// Handlers returns the handler registry keyed by manifest handler name.
func Handlers() map[string]HandlerBinding {
	names := map[entity.Kind]string{
		entity.KindNewVault:                   "handleNewVault",
		entity.KindUpdateProtocolFeeBps:       "handleUpdateProtocolFeeBps",
		entity.KindUpdateProtocolFeeRecipient: "handleUpdateProtocolFeeRecipient",
		entity.KindUpdateCustomProtocolFee:    "handleUpdateCustomProtocolFee",
		entity.KindRemovedCustomProtocolFee:   "handleRemovedCustomProtocolFee",
		entity.KindFactoryShutdown:            "handleFactoryShutdown",
		entity.KindUpdateGovernance:           "handleUpdateGovernance",
		entity.KindNewPendingGovernance:       "handleNewPendingGovernance",
	}
	out := make(map[string]HandlerBinding, len(names))
	for kind, name := range names {
		out[name] = HandlerBinding{Name: name, Kind: kind}
	}
	return out
}
