package vaultfactory

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"vaultIndexer/internal/entity"
	"vaultIndexer/internal/mapping"
	"vaultIndexer/internal/model"
)

// Decoder turns raw VaultFactory logs into mapping events.
type Decoder struct {
	factoryABI  abi.ABI
	topicToKind map[string]entity.Kind
}

// NewDecoder builds a decoder covering every VaultFactory event.
func NewDecoder() (*Decoder, error) {
	factoryABI, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}

	topicToKind := make(map[string]entity.Kind, len(entity.Kinds()))
	for _, kind := range entity.Kinds() {
		event, ok := factoryABI.Events[string(kind)]
		if !ok {
			return nil, fmt.Errorf("factory abi missing event %s", kind)
		}
		topicToKind[strings.ToLower(event.ID.Hex())] = kind
	}

	return &Decoder{
		factoryABI:  factoryABI,
		topicToKind: topicToKind,
	}, nil
}

// CanDecode checks if the topic0 is a VaultFactory event.
func (d *Decoder) CanDecode(topic0 string) bool {
	_, ok := d.Kind(topic0)
	return ok
}

// Kind returns the entity kind for topic0.
func (d *Decoder) Kind(topic0 string) (entity.Kind, bool) {
	if topic0 == "" {
		return "", false
	}
	kind, ok := d.topicToKind[strings.ToLower(topic0)]
	return kind, ok
}

// Topic0 returns the event signature hash for kind.
func (d *Decoder) Topic0(kind entity.Kind) (common.Hash, bool) {
	event, ok := d.factoryABI.Events[string(kind)]
	if !ok {
		return common.Hash{}, false
	}
	return event.ID, true
}

// Decode converts a LogRecord into a mapping.Event.
func (d *Decoder) Decode(log model.LogRecord) (mapping.Event, error) {
	if log.Removed {
		return mapping.Event{}, fmt.Errorf("log removed by reorg")
	}
	if len(log.Topics) == 0 {
		return mapping.Event{}, fmt.Errorf("missing topics")
	}
	kind, ok := d.Kind(log.Topics[0])
	if !ok {
		return mapping.Event{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return mapping.Event{}, fmt.Errorf("invalid factory address: %s", log.Address)
	}

	txHash, err := parseHash(log.TxHash)
	if err != nil {
		return mapping.Event{}, fmt.Errorf("tx hash: %w", err)
	}
	var blockHash common.Hash
	if log.BlockHash != "" {
		if blockHash, err = parseHash(log.BlockHash); err != nil {
			return mapping.Event{}, fmt.Errorf("block hash: %w", err)
		}
	}

	params, err := d.decodeParams(kind, log)
	if err != nil {
		return mapping.Event{}, err
	}

	return mapping.Event{
		Address: common.HexToAddress(log.Address),
		Block: mapping.Block{
			Number:    log.BlockNumber,
			Timestamp: log.Timestamp,
			Hash:      blockHash,
		},
		Transaction: mapping.Transaction{Hash: txHash},
		LogIndex:    log.LogIndex,
		Params:      params,
	}, nil
}

func (d *Decoder) decodeParams(kind entity.Kind, log model.LogRecord) (mapping.Params, error) {
	event := d.factoryABI.Events[string(kind)]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case entity.KindNewVault:
		var indexed struct {
			VaultAddress common.Address
			Asset        common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return mapping.NewVaultParams{VaultAddress: indexed.VaultAddress, Asset: indexed.Asset}, nil

	case entity.KindUpdateProtocolFeeBps:
		if len(values) != 2 {
			return nil, fmt.Errorf("unexpected %s values: %d", kind, len(values))
		}
		oldFee, err := asUint16(values[0])
		if err != nil {
			return nil, err
		}
		newFee, err := asUint16(values[1])
		if err != nil {
			return nil, err
		}
		return mapping.UpdateProtocolFeeBpsParams{OldFeeBps: oldFee, NewFeeBps: newFee}, nil

	case entity.KindUpdateProtocolFeeRecipient:
		var indexed struct {
			OldFeeRecipient common.Address
			NewFeeRecipient common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return mapping.UpdateProtocolFeeRecipientParams{
			OldFeeRecipient: indexed.OldFeeRecipient,
			NewFeeRecipient: indexed.NewFeeRecipient,
		}, nil

	case entity.KindUpdateCustomProtocolFee:
		var indexed struct {
			Vault common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 1 {
			return nil, fmt.Errorf("unexpected %s values: %d", kind, len(values))
		}
		fee, err := asUint16(values[0])
		if err != nil {
			return nil, err
		}
		return mapping.UpdateCustomProtocolFeeParams{Vault: indexed.Vault, NewCustomProtocolFee: fee}, nil

	case entity.KindRemovedCustomProtocolFee:
		var indexed struct {
			Vault common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return mapping.RemovedCustomProtocolFeeParams{Vault: indexed.Vault}, nil

	case entity.KindFactoryShutdown:
		return mapping.FactoryShutdownParams{}, nil

	case entity.KindUpdateGovernance:
		var indexed struct {
			Governance common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return mapping.UpdateGovernanceParams{Governance: indexed.Governance}, nil

	case entity.KindNewPendingGovernance:
		var indexed struct {
			PendingGovernance common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return mapping.NewPendingGovernanceParams{PendingGovernance: indexed.PendingGovernance}, nil

	default:
		return nil, fmt.Errorf("unsupported event kind: %s", kind)
	}
}

// EventSignature renders kind the way a subgraph manifest names it,
// e.g. "NewVault(indexed address,indexed address)".
func EventSignature(kind entity.Kind) (string, error) {
	factoryABI, err := FactoryABI()
	if err != nil {
		return "", err
	}
	event, ok := factoryABI.Events[string(kind)]
	if !ok {
		return "", fmt.Errorf("unknown event kind: %s", kind)
	}
	args := make([]string, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		if input.Indexed {
			args = append(args, "indexed "+input.Type.String())
		} else {
			args = append(args, input.Type.String())
		}
	}
	return fmt.Sprintf("%s(%s)", event.RawName, strings.Join(args, ",")), nil
}

func parseHash(input string) (common.Hash, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, err
	}
	if len(data) > common.HashLength {
		return common.Hash{}, fmt.Errorf("hash length %d", len(data))
	}
	return common.BytesToHash(data), nil
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) == 0 {
		return nil, nil
	}
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := nonIndexed.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asUint16(value interface{}) (uint16, error) {
	switch v := value.(type) {
	case uint16:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 0xffff {
			return 0, fmt.Errorf("uint16 overflow: %s", v.String())
		}
		return uint16(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint16 type %T", value)
	}
}
