// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dex implements the permanent exchange side of a launch: a factory
// of constant-product pairs, one per launch token against the native
// currency. A pair is seeded exactly once, by the graduating curve, and
// serves unrestricted swaps afterwards.
package dex

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"
	"github.com/zeebo/blake3"

	"github.com/podfun/launchpad/contract"
)

// FactoryAddress is the fixed address of the pair factory.
var FactoryAddress = common.HexToAddress("0x0000000000000000000000000000000000009110")

// SwapFeeBps is the fee retained by a pair on its own trades.
const SwapFeeBps uint64 = 30

// BasisPoints is the fee denominator.
const BasisPoints uint64 = 10000

// Errors
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientLiquidity  = errors.New("insufficient liquidity")
	ErrSlippageExceeded       = errors.New("slippage exceeded")
	ErrPoolAlreadyInitialized = errors.New("pool already initialized")
	ErrPoolNotInitialized     = errors.New("pool not initialized")
)

// Event signatures
var (
	pairCreatedTopic    = crypto.Keccak256Hash([]byte("PairCreated(address,address)"))
	liquidityAddedTopic = crypto.Keccak256Hash([]byte("LiquidityAdded(uint256,uint256,uint256)"))
	swapTopic           = crypto.Keccak256Hash([]byte("Swap(address,uint256,uint256,bool)"))
)

// Token is the slice of a launch token a pair needs to custody and move it.
type Token interface {
	Address() common.Address
	BalanceOf(owner common.Address) *big.Int
	Transfer(db contract.StateDB, from, to common.Address, amount *big.Int) error
	TransferFrom(db contract.StateDB, spender, from, to common.Address, amount *big.Int) error
}

// PairID identifies a token/native pair. The native side has no address, so
// the id is a keyed hash of the token address alone.
func PairID(token common.Address) [32]byte {
	h := blake3.New()
	h.Write([]byte("pair"))
	h.Write(token.Bytes())
	var id [32]byte
	h.Digest().Read(id[:])
	return id
}
