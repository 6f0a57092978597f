// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package treasury implements the protocol fee sink. Fees arrive as plain
// native balance credits from the launchpad and the curves; withdrawal is
// restricted to the owner and a guardian. Both roles live in storage slots
// on the treasury's own address.
package treasury

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/geth/crypto"

	"github.com/podfun/launchpad/contract"
)

// TreasuryAddress is the fixed address of the protocol treasury.
var TreasuryAddress = common.HexToAddress("0x0000000000000000000000000000000000009130")

// Storage slot keys
var (
	ownerSlot    = crypto.Keccak256Hash([]byte("treasury.owner"))
	guardianSlot = crypto.Keccak256Hash([]byte("treasury.guardian"))
)

// Errors
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

var withdrawalTopic = crypto.Keccak256Hash([]byte("Withdrawal(address,address,uint256)"))

// Treasury is the fee sink contract. All of its state lives in the StateDB:
// the native balance it has accumulated and the two role slots.
type Treasury struct {
	address common.Address
}

// New writes the owner and guardian roles and returns the treasury handle.
func New(db contract.StateDB, owner, guardian common.Address) (*Treasury, error) {
	if owner == (common.Address{}) || guardian == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	t := &Treasury{address: TreasuryAddress}
	db.CreateAccount(t.address)
	db.SetState(t.address, ownerSlot, common.BytesToHash(owner.Bytes()))
	db.SetState(t.address, guardianSlot, common.BytesToHash(guardian.Bytes()))
	return t, nil
}

func (t *Treasury) Address() common.Address { return t.address }

func (t *Treasury) Owner(db contract.StateDB) common.Address {
	return common.BytesToAddress(db.GetState(t.address, ownerSlot).Bytes())
}

func (t *Treasury) Guardian(db contract.StateDB) common.Address {
	return common.BytesToAddress(db.GetState(t.address, guardianSlot).Bytes())
}

// Balance returns the accumulated fee balance.
func (t *Treasury) Balance(db contract.StateDB) *uint256.Int {
	return db.GetBalance(t.address)
}

// Withdraw moves [amount] of accumulated fees to [to]. Owner or guardian
// only.
func (t *Treasury) Withdraw(db contract.StateDB, caller, to common.Address, amount *uint256.Int) error {
	if caller != t.Owner(db) && caller != t.Guardian(db) {
		return ErrUnauthorized
	}
	if to == (common.Address{}) {
		return ErrInvalidAddress
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if db.GetBalance(t.address).Lt(amount) {
		return ErrInsufficientBalance
	}

	db.SubBalance(t.address, amount, tracing.BalanceChangeTransfer)
	db.AddBalance(to, amount, tracing.BalanceChangeTransfer)

	db.AddLog(&types.Log{
		Address: t.address,
		Topics: []common.Hash{
			withdrawalTopic,
			common.BytesToHash(caller.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.BigToHash(amount.ToBig()).Bytes(),
	})
	return nil
}

// SetOwner rotates the owner role. Owner only.
func (t *Treasury) SetOwner(db contract.StateDB, caller, newOwner common.Address) error {
	if caller != t.Owner(db) {
		return ErrUnauthorized
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidAddress
	}
	db.SetState(t.address, ownerSlot, common.BytesToHash(newOwner.Bytes()))
	return nil
}

// SetGuardian rotates the guardian role. Owner only.
func (t *Treasury) SetGuardian(db contract.StateDB, caller, newGuardian common.Address) error {
	if caller != t.Owner(db) {
		return ErrUnauthorized
	}
	if newGuardian == (common.Address{}) {
		return ErrInvalidAddress
	}
	db.SetState(t.address, guardianSlot, common.BytesToHash(newGuardian.Bytes()))
	return nil
}
