// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
)

// MemoryStateDB is a map-backed StateDB. It backs the package tests and any
// in-process wiring of the engine; it is not safe for concurrent use.
type MemoryStateDB struct {
	storage     map[common.Address]map[common.Hash]common.Hash
	balances    map[common.Address]*uint256.Int
	nonces      map[common.Address]uint64
	accounts    map[common.Address]struct{}
	logs        []*types.Log
	blockNumber uint64
}

var _ StateDB = (*MemoryStateDB)(nil)

func NewMemoryStateDB() *MemoryStateDB {
	return &MemoryStateDB{
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		balances: make(map[common.Address]*uint256.Int),
		nonces:   make(map[common.Address]uint64),
		accounts: make(map[common.Address]struct{}),
		logs:     make([]*types.Log, 0),
	}
}

func (m *MemoryStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if m.storage[addr] == nil {
		return common.Hash{}
	}
	return m.storage[addr][key]
}

func (m *MemoryStateDB) SetState(addr common.Address, key, value common.Hash) common.Hash {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
	prev := m.storage[addr][key]
	m.storage[addr][key] = value
	return prev
}

func (m *MemoryStateDB) GetBalance(addr common.Address) *uint256.Int {
	if bal, ok := m.balances[addr]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

func (m *MemoryStateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	if m.balances[addr] == nil {
		m.balances[addr] = uint256.NewInt(0)
	}
	prev := m.balances[addr].Clone()
	m.balances[addr] = new(uint256.Int).Add(m.balances[addr], amount)
	return *prev
}

func (m *MemoryStateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	if m.balances[addr] == nil {
		m.balances[addr] = uint256.NewInt(0)
	}
	prev := m.balances[addr].Clone()
	m.balances[addr] = new(uint256.Int).Sub(m.balances[addr], amount)
	return *prev
}

func (m *MemoryStateDB) GetNonce(addr common.Address) uint64 {
	return m.nonces[addr]
}

func (m *MemoryStateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	m.nonces[addr] = nonce
}

func (m *MemoryStateDB) Exist(addr common.Address) bool {
	_, ok := m.accounts[addr]
	return ok
}

func (m *MemoryStateDB) CreateAccount(addr common.Address) {
	m.accounts[addr] = struct{}{}
}

func (m *MemoryStateDB) AddLog(log *types.Log) {
	log.BlockNumber = m.blockNumber
	m.logs = append(m.logs, log)
}

// Logs returns every log emitted so far, in emission order.
func (m *MemoryStateDB) Logs() []*types.Log {
	return m.logs
}

// LogsFrom returns the logs emitted by a single contract address.
func (m *MemoryStateDB) LogsFrom(addr common.Address) []*types.Log {
	out := make([]*types.Log, 0)
	for _, l := range m.logs {
		if l.Address == addr {
			out = append(out, l)
		}
	}
	return out
}

func (m *MemoryStateDB) GetBlockNumber() uint64 {
	return m.blockNumber
}

// SetBlockNumber advances the simulated block height.
func (m *MemoryStateDB) SetBlockNumber(n uint64) {
	m.blockNumber = n
}
