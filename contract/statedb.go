// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the narrow state interface the launchpad engine
// contracts run against, plus an in-memory implementation used by tests and
// local wiring.
package contract

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
)

// StateDB is the slice of EVM state the engine contracts need: storage slots,
// native-currency balances, event logs, and account nonces for address
// derivation. Implementations must apply mutations immediately; callers are
// responsible for validating before mutating so a failed call never leaves
// partial state behind.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash

	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int
	SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int

	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64, reason tracing.NonceChangeReason)

	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)

	AddLog(log *types.Log)

	GetBlockNumber() uint64
}
