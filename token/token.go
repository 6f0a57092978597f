// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements the launch token: a fixed-supply ERC20-style unit
// whose transfers are gated until its bonding curve graduates. The entire
// supply is minted to the owning curve at construction; there is no mint or
// burn afterwards.
package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/math"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/geth/crypto"

	"github.com/podfun/launchpad/contract"
)

// Decimals is the fixed-point scale of all token amounts.
const Decimals = 18

// Errors
var (
	ErrTradingDisabled       = errors.New("trading disabled")
	ErrAlreadyEnabled        = errors.New("trading already enabled")
	ErrOnlyCurve             = errors.New("only the owning curve")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Event signatures
var (
	transferTopic       = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	approvalTopic       = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
	tradingEnabledTopic = crypto.Keccak256Hash([]byte("TradingEnabled()"))
)

// Token is a launch token instance. All methods take the StateDB only to
// emit event logs; balances and allowances live in the engine itself.
type Token struct {
	mu sync.RWMutex

	name    string
	symbol  string
	address common.Address
	curve   common.Address

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int

	// one-way gate, flipped by the curve during graduation
	tradingEnabled bool
}

// New mints [supply] to the owning curve address and returns the token.
// The curve address may be precomputed; the curve itself need not exist yet.
func New(db contract.StateDB, address, curve common.Address, name, symbol string, supply *big.Int) *Token {
	t := &Token{
		name:        name,
		symbol:      symbol,
		address:     address,
		curve:       curve,
		totalSupply: new(big.Int).Set(supply),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
	t.balances[curve] = new(big.Int).Set(supply)

	db.CreateAccount(address)
	t.emitTransfer(db, common.Address{}, curve, supply)
	return t
}

func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Address() common.Address { return t.address }
func (t *Token) Curve() common.Address   { return t.curve }

func (t *Token) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply)
}

func (t *Token) TradingEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tradingEnabled
}

func (t *Token) BalanceOf(owner common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if bal, ok := t.balances[owner]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if a, ok := t.allowances[owner]; ok {
		if v, ok := a[spender]; ok {
			return new(big.Int).Set(v)
		}
	}
	return new(big.Int)
}

// Approve sets [spender]'s allowance over [owner]'s balance.
func (t *Token) Approve(db contract.StateDB, owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
	t.mu.Unlock()

	t.emitApproval(db, owner, spender, amount)
	return nil
}

// Transfer moves [amount] from [from] to [to]. While the trading gate is
// closed the transfer is permitted only if one endpoint is the owning curve.
func (t *Token) Transfer(db contract.StateDB, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	if err := t.transferLocked(from, to, amount); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	t.emitTransfer(db, from, to, amount)
	return nil
}

// TransferFrom moves [amount] from [from] to [to] on behalf of [spender],
// consuming allowance unless spender == from. An allowance of MaxBig256 is
// treated as infinite and never decremented.
func (t *Token) TransferFrom(db contract.StateDB, spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	if spender != from {
		allowance := t.allowances[from][spender]
		if allowance == nil || allowance.Cmp(amount) < 0 {
			t.mu.Unlock()
			return ErrInsufficientAllowance
		}
		if allowance.Cmp(math.MaxBig256) != 0 {
			t.allowances[from][spender] = new(big.Int).Sub(allowance, amount)
		}
	}
	if err := t.transferLocked(from, to, amount); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	t.emitTransfer(db, from, to, amount)
	return nil
}

// transferLocked applies the trading gate and balance checks, then moves the
// amount. Caller holds t.mu; nothing is mutated on error.
func (t *Token) transferLocked(from, to common.Address, amount *big.Int) error {
	if !t.tradingEnabled && from != t.curve && to != t.curve {
		return ErrTradingDisabled
	}

	fromBal := t.balances[from]
	if fromBal == nil || fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	t.balances[from] = new(big.Int).Sub(fromBal, amount)
	if t.balances[to] == nil {
		t.balances[to] = new(big.Int)
	}
	t.balances[to] = new(big.Int).Add(t.balances[to], amount)
	return nil
}

// EnableTrading opens the trading gate. Only the owning curve may call it,
// and only once; the gate can never close again.
func (t *Token) EnableTrading(db contract.StateDB, caller common.Address) error {
	if caller != t.curve {
		return ErrOnlyCurve
	}

	t.mu.Lock()
	if t.tradingEnabled {
		t.mu.Unlock()
		return ErrAlreadyEnabled
	}
	t.tradingEnabled = true
	t.mu.Unlock()

	db.AddLog(&types.Log{
		Address: t.address,
		Topics:  []common.Hash{tradingEnabledTopic},
	})
	return nil
}

func (t *Token) emitTransfer(db contract.StateDB, from, to common.Address, amount *big.Int) {
	db.AddLog(&types.Log{
		Address: t.address,
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.BigToHash(amount).Bytes(),
	})
}

func (t *Token) emitApproval(db contract.StateDB, owner, spender common.Address, amount *big.Int) {
	db.AddLog(&types.Log{
		Address: t.address,
		Topics: []common.Hash{
			approvalTopic,
			common.BytesToHash(owner.Bytes()),
			common.BytesToHash(spender.Bytes()),
		},
		Data: common.BigToHash(amount).Bytes(),
	})
}
