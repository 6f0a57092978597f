// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"sync"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/geth/crypto"

	"github.com/podfun/launchpad/contract"
)

// Factory creates and indexes one pair per launch token. Pair addresses are
// derived from the factory address and its nonce, so they are deterministic
// in creation order.
type Factory struct {
	mu sync.RWMutex

	address common.Address
	pairs   map[common.Address]*Pair // token address -> pair
}

// NewFactory returns a factory at the canonical FactoryAddress.
func NewFactory(db contract.StateDB) *Factory {
	db.CreateAccount(FactoryAddress)
	return &Factory{
		address: FactoryAddress,
		pairs:   make(map[common.Address]*Pair),
	}
}

func (f *Factory) Address() common.Address { return f.address }

// GetOrCreatePool returns the pair for [tok], creating it on first call.
func (f *Factory) GetOrCreatePool(db contract.StateDB, tok Token) (*Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pair, ok := f.pairs[tok.Address()]; ok {
		return pair, nil
	}

	nonce := db.GetNonce(f.address)
	pairAddr := crypto.CreateAddress(f.address, nonce)
	db.SetNonce(f.address, nonce+1, tracing.NonceChangeContractCreator)

	pair := newPair(db, pairAddr, tok)
	f.pairs[tok.Address()] = pair

	db.AddLog(&types.Log{
		Address: f.address,
		Topics: []common.Hash{
			pairCreatedTopic,
			common.BytesToHash(tok.Address().Bytes()),
			common.BytesToHash(pairAddr.Bytes()),
		},
	})
	return pair, nil
}

// GetPair returns the pair address for [token], or the zero address if no
// pair exists yet.
func (f *Factory) GetPair(token common.Address) common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pair, ok := f.pairs[token]; ok {
		return pair.Address()
	}
	return common.Address{}
}

// Pair returns the pair engine for [token].
func (f *Factory) Pair(token common.Address) (*Pair, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	pair, ok := f.pairs[token]
	return pair, ok
}

// PairCount returns the number of pairs created so far.
func (f *Factory) PairCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.pairs)
}
