// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package launchpad implements the launch registry: it creates a token and
// its bonding curve atomically, collects the launch-creation fee, and is the
// sole authority over launch records, including the graduation callback only
// the owning curve may trigger.
package launchpad

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"

	"github.com/podfun/launchpad/curve"
)

// LaunchpadAddress is the fixed address of the launchpad factory.
var LaunchpadAddress = common.HexToAddress("0x0000000000000000000000000000000000009120")

// DefaultLaunchFeeBps is the canonical launch-creation fee rate, applied to
// the graduation threshold to obtain the flat fee.
const DefaultLaunchFeeBps uint64 = 400 // 4%

// Errors
var (
	ErrInsufficientFee     = errors.New("insufficient launch fee")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidName         = errors.New("invalid token name or symbol")
	ErrOnlyCurve           = errors.New("only the registered curve")
	ErrUnknownLaunch       = errors.New("unknown launch")
	ErrAlreadyGraduated    = errors.New("launch already graduated")
	ErrInvalidConfig       = errors.New("invalid launchpad config")
)

// Event signatures
var (
	launchCreatedTopic   = crypto.Keccak256Hash([]byte("LaunchCreated(uint256,address,address,address)"))
	launchGraduatedTopic = crypto.Keccak256Hash([]byte("LaunchGraduated(uint256)"))
)

// LaunchRecord is the registry's view of one launch. Once written, only the
// Graduated flag ever changes, and only through NotifyGraduation.
type LaunchRecord struct {
	ID        uint64
	Creator   common.Address
	Token     common.Address
	Curve     common.Address
	CreatedAt uint64 // block number
	Graduated bool
}

// Config is the immutable launchpad configuration. Curve parameters are
// embedded because the launchpad constructs every curve.
type Config struct {
	// LaunchFeeBps of the graduation threshold is the flat creation fee.
	LaunchFeeBps uint64
	// TokenSupply is minted to the curve of every new launch.
	TokenSupply *big.Int
	// Curve holds the pricing parameters handed to every new curve.
	Curve curve.Config
}

// DefaultConfig returns the canonical protocol parameters: a 4% launch fee
// against a 4-native-unit threshold, a supply of 1e9 whole tokens, 5%/1%
// trade fees.
func DefaultConfig() Config {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return Config{
		LaunchFeeBps: DefaultLaunchFeeBps,
		TokenSupply:  new(big.Int).Mul(big.NewInt(1_000_000_000), one),
		Curve:        curve.DefaultConfig(),
	}
}

// Verify checks the config is internally consistent.
func (c Config) Verify() error {
	if c.LaunchFeeBps >= curve.BasisPoints {
		return ErrInvalidConfig
	}
	if c.TokenSupply == nil || c.TokenSupply.Sign() <= 0 {
		return ErrInvalidConfig
	}
	return c.Curve.Verify()
}

// RequiredLaunchFee is the flat fee charged by CreateLaunch:
// threshold * LaunchFeeBps / 10000, rounded down.
func (c Config) RequiredLaunchFee() *uint256.Int {
	fee := new(big.Int).Mul(c.Curve.GraduationThreshold, new(big.Int).SetUint64(c.LaunchFeeBps))
	fee.Div(fee, new(big.Int).SetUint64(curve.BasisPoints))
	return uint256.MustFromBig(fee)
}
