package vaultfactory

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const factoryABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "vaultAddress", "type": "address"},
      {"indexed": true, "name": "asset", "type": "address"}
    ],
    "name": "NewVault",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "name": "oldFeeBps", "type": "uint16"},
      {"indexed": false, "name": "newFeeBps", "type": "uint16"}
    ],
    "name": "UpdateProtocolFeeBps",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "oldFeeRecipient", "type": "address"},
      {"indexed": true, "name": "newFeeRecipient", "type": "address"}
    ],
    "name": "UpdateProtocolFeeRecipient",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "vault", "type": "address"},
      {"indexed": false, "name": "newCustomProtocolFee", "type": "uint16"}
    ],
    "name": "UpdateCustomProtocolFee",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "vault", "type": "address"}
    ],
    "name": "RemovedCustomProtocolFee",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [],
    "name": "FactoryShutdown",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "governance", "type": "address"}
    ],
    "name": "UpdateGovernance",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "pendingGovernance", "type": "address"}
    ],
    "name": "NewPendingGovernance",
    "type": "event"
  }
]`

var (
	factoryABI     abi.ABI
	factoryABIOnce sync.Once
	factoryABIErr  error
)

// FactoryABI returns the parsed VaultFactory event ABI.
func FactoryABI() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryABIErr
}
