// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve implements the bonding curve that prices a single launch
// token against the native currency before graduation. The curve owns the
// pre/post-graduation state machine: it serves buys and sells while Active,
// and performs the one-time hand-off of its reserves into a permanent
// constant-product pool once the graduation threshold is met.
package curve

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"

	"github.com/podfun/launchpad/contract"
)

// BasisPoints is the denominator of all fee rates.
const BasisPoints uint64 = 10000

// Canonical fee parameters of the protocol.
const (
	DefaultBuyFeeBps  uint64 = 500 // 5%
	DefaultSellFeeBps uint64 = 100 // 1%
)

// Errors
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrAlreadyGraduated      = errors.New("already graduated")
	ErrThresholdNotMet       = errors.New("graduation threshold not met")
	ErrInvalidConfig         = errors.New("invalid curve config")
)

// Event signatures
var (
	buyTopic       = crypto.Keccak256Hash([]byte("Buy(address,uint256,uint256,uint256)"))
	sellTopic      = crypto.Keccak256Hash([]byte("Sell(address,uint256,uint256,uint256)"))
	graduatedTopic = crypto.Keccak256Hash([]byte("Graduated(uint256,address,uint256,uint256)"))
)

// State is the curve's lifecycle state. The only transition is
// Active -> Graduated, taken exactly once.
type State uint8

const (
	StateActive State = iota
	StateGraduated
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateGraduated:
		return "graduated"
	default:
		return "unknown"
	}
}

// Config is the immutable pricing configuration a curve is constructed with.
type Config struct {
	// BuyFeeBps is charged on the native input of every buy.
	BuyFeeBps uint64
	// SellFeeBps is charged on the gross native output of every sell.
	SellFeeBps uint64
	// GraduationThreshold is the cumulative net native raised at which the
	// curve graduates, in wei.
	GraduationThreshold *big.Int
	// VirtualNativeReserve seeds the native side of the pricing invariant so
	// the launch opens at a finite price without any real deposit.
	VirtualNativeReserve *big.Int
}

// DefaultConfig returns the canonical parameters: 5% buy fee, 1% sell fee,
// 4 native units to graduate, 1 native unit of virtual reserve.
func DefaultConfig() Config {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return Config{
		BuyFeeBps:            DefaultBuyFeeBps,
		SellFeeBps:           DefaultSellFeeBps,
		GraduationThreshold:  new(big.Int).Mul(big.NewInt(4), one),
		VirtualNativeReserve: new(big.Int).Set(one),
	}
}

// Verify checks the config is internally consistent.
func (c Config) Verify() error {
	if c.BuyFeeBps >= BasisPoints || c.SellFeeBps >= BasisPoints {
		return ErrInvalidConfig
	}
	if c.GraduationThreshold == nil || c.GraduationThreshold.Sign() <= 0 {
		return ErrInvalidConfig
	}
	if c.VirtualNativeReserve == nil || c.VirtualNativeReserve.Sign() <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// LaunchToken is the slice of the token the curve drives: supply movement,
// balance reads, and the one-way trading gate.
type LaunchToken interface {
	Address() common.Address
	BalanceOf(owner common.Address) *big.Int
	Transfer(db contract.StateDB, from, to common.Address, amount *big.Int) error
	TransferFrom(db contract.StateDB, spender, from, to common.Address, amount *big.Int) error
	EnableTrading(db contract.StateDB, caller common.Address) error
}

// Pool is the constant-product pool a curve seeds on graduation. The
// liquidity receipt it returns is already assigned to the blackhole address;
// the launch retains no claim on it.
type Pool interface {
	Address() common.Address
	AddInitialLiquidity(db contract.StateDB, nativeAmount *uint256.Int, tokenAmount *big.Int) (*big.Int, error)
}

// PoolFactory locates or creates the pool for a launch token.
type PoolFactory interface {
	GetOrCreatePool(db contract.StateDB, tok LaunchToken) (Pool, error)
}

// GraduationNotifier is the single callback capability the curve holds into
// its registry. The registry authorizes the call by the caller address, never
// by the launch id argument alone.
type GraduationNotifier interface {
	NotifyGraduation(db contract.StateDB, caller common.Address, launchID uint64) error
}
