// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"

	"github.com/podfun/launchpad/contract"
)

// Curve prices buys and sells of one launch token with a constant-product
// invariant over a virtual/real reserve pair, splits fees to the treasury,
// and executes the one-time graduation hand-off.
//
// A mutex serializes every state-mutating call, which is the engine analogue
// of the chain's global transaction order: each call sees the committed
// post-state of the previous one. All curve-local state is updated before any
// collaborator (treasury, token, pool factory, registry) is invoked, so a
// hypothetical call back into the curve observes a consistent, already
// graduated state and fails on the state check.
type Curve struct {
	mu sync.Mutex

	address  common.Address
	launchID uint64
	cfg      Config

	tok         LaunchToken
	registry    GraduationNotifier
	poolFactory PoolFactory
	treasury    common.Address

	state State

	// nativeReserve includes the virtual portion; the curve's real native
	// holdings are nativeReserve - VirtualNativeReserve.
	nativeReserve *big.Int
	tokenReserve  *big.Int

	// cumulativeRaised is the sum of fee-excluded native inflow across all
	// buys. It never decreases; sells do not touch it.
	cumulativeRaised *big.Int

	// pool is the seeded pool address, zero until graduation.
	pool common.Address
}

// New wires a curve to its token, registry callback, pool factory and
// treasury. The token's full supply must already sit at [address].
func New(
	db contract.StateDB,
	address common.Address,
	launchID uint64,
	tok LaunchToken,
	registry GraduationNotifier,
	poolFactory PoolFactory,
	treasury common.Address,
	cfg Config,
) (*Curve, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	db.CreateAccount(address)
	return &Curve{
		address:          address,
		launchID:         launchID,
		cfg:              cfg,
		tok:              tok,
		registry:         registry,
		poolFactory:      poolFactory,
		treasury:         treasury,
		state:            StateActive,
		nativeReserve:    new(big.Int).Set(cfg.VirtualNativeReserve),
		tokenReserve:     tok.BalanceOf(address),
		cumulativeRaised: new(big.Int),
	}, nil
}

func (c *Curve) Address() common.Address { return c.address }
func (c *Curve) LaunchID() uint64        { return c.launchID }
func (c *Curve) Treasury() common.Address {
	return c.treasury
}

func (c *Curve) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reserves returns copies of the (native, token) reserve pair. The native
// side includes the virtual portion.
func (c *Curve) Reserves() (*big.Int, *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.nativeReserve), new(big.Int).Set(c.tokenReserve)
}

func (c *Curve) CumulativeRaised() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.cumulativeRaised)
}

// Pool returns the seeded pool address, or the zero address before
// graduation.
func (c *Curve) Pool() common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

// QuoteBuy previews the token output and fee for a native input without
// touching state.
func (c *Curve) QuoteBuy(value *big.Int) (out, fee *big.Int, err error) {
	if value == nil || value.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return nil, nil, ErrAlreadyGraduated
	}
	fee = feeAmount(value, c.cfg.BuyFeeBps)
	vNet := new(big.Int).Sub(value, fee)
	out = c.buyOutLocked(vNet)
	return out, fee, nil
}

// Buy spends [value] of the caller's native balance on curve tokens for
// [recipient]. The buy fee is forwarded to the treasury and the fee-excluded
// remainder enters the reserve. If the cumulative net raised reaches the
// graduation threshold, graduation executes inside the same call.
func (c *Curve) Buy(db contract.StateDB, caller common.Address, value *uint256.Int, minTokensOut *big.Int, recipient common.Address) (*big.Int, error) {
	if value == nil || value.IsZero() {
		return nil, ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return nil, ErrAlreadyGraduated
	}
	if db.GetBalance(caller).Lt(value) {
		return nil, ErrInsufficientBalance
	}

	v := value.ToBig()
	fee := feeAmount(v, c.cfg.BuyFeeBps)
	vNet := new(big.Int).Sub(v, fee)
	if vNet.Sign() == 0 {
		return nil, ErrInvalidAmount
	}

	out := c.buyOutLocked(vNet)
	if out.Cmp(c.tokenReserve) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if minTokensOut != nil && out.Cmp(minTokensOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	// Effects: commit reserves and the raised counter before any value or
	// token moves.
	c.nativeReserve.Add(c.nativeReserve, vNet)
	c.tokenReserve.Sub(c.tokenReserve, out)
	c.cumulativeRaised.Add(c.cumulativeRaised, vNet)

	// Interactions: fee to treasury, net input to the curve, tokens out.
	db.SubBalance(caller, value, tracing.BalanceChangeTransfer)
	db.AddBalance(c.treasury, uint256.MustFromBig(fee), tracing.BalanceChangeTransfer)
	db.AddBalance(c.address, uint256.MustFromBig(vNet), tracing.BalanceChangeTransfer)
	if err := c.tok.Transfer(db, c.address, recipient, out); err != nil {
		return nil, err
	}

	c.emitTrade(db, buyTopic, caller, v, out, fee)

	if c.cumulativeRaised.Cmp(c.cfg.GraduationThreshold) >= 0 {
		if err := c.graduateLocked(db); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sell pulls [tokenAmountIn] from the caller (curve must be approved as
// spender), returns the fee-excluded native output to [recipient], and
// forwards the sell fee to the treasury. Selling never triggers graduation.
func (c *Curve) Sell(db contract.StateDB, caller common.Address, tokenAmountIn, minNativeOut *big.Int, recipient common.Address) (*big.Int, error) {
	if tokenAmountIn == nil || tokenAmountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return nil, ErrAlreadyGraduated
	}
	if c.tok.BalanceOf(caller).Cmp(tokenAmountIn) < 0 {
		return nil, ErrInsufficientBalance
	}

	grossOut := c.sellOutLocked(tokenAmountIn)
	fee := feeAmount(grossOut, c.cfg.SellFeeBps)
	netOut := new(big.Int).Sub(grossOut, fee)
	if minNativeOut != nil && netOut.Cmp(minNativeOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	// The pull is the only step that can fail (allowance); it runs before any
	// curve-local state is touched so a failure aborts cleanly.
	if err := c.tok.TransferFrom(db, c.address, caller, c.address, tokenAmountIn); err != nil {
		return nil, err
	}

	c.tokenReserve.Add(c.tokenReserve, tokenAmountIn)
	c.nativeReserve.Sub(c.nativeReserve, grossOut)

	db.SubBalance(c.address, uint256.MustFromBig(grossOut), tracing.BalanceChangeTransfer)
	db.AddBalance(c.treasury, uint256.MustFromBig(fee), tracing.BalanceChangeTransfer)
	db.AddBalance(recipient, uint256.MustFromBig(netOut), tracing.BalanceChangeTransfer)

	c.emitTrade(db, sellTopic, caller, tokenAmountIn, netOut, fee)
	return netOut, nil
}

// ManualGraduate graduates a curve whose threshold is already met. Anyone
// may call it; it exists so graduation does not depend on the next buy being
// the one that crosses the threshold.
func (c *Curve) ManualGraduate(db contract.StateDB, caller common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return ErrAlreadyGraduated
	}
	if c.cumulativeRaised.Cmp(c.cfg.GraduationThreshold) < 0 {
		return ErrThresholdNotMet
	}
	return c.graduateLocked(db)
}

// buyOutLocked prices a net native input against the current reserves:
// out = tokenReserve - ceil(k / (nativeReserve + vNet)). The quotient rounds
// up so the output rounds down, in the protocol's favor.
func (c *Curve) buyOutLocked(vNet *big.Int) *big.Int {
	newNative := new(big.Int).Add(c.nativeReserve, vNet)
	quot := mulDiv(c.nativeReserve, c.tokenReserve, newNative, true)
	return new(big.Int).Sub(c.tokenReserve, quot)
}

// sellOutLocked is the inverse: gross native out for a token input, again
// rounding the retained quotient up.
func (c *Curve) sellOutLocked(tokenIn *big.Int) *big.Int {
	newToken := new(big.Int).Add(c.tokenReserve, tokenIn)
	quot := mulDiv(c.nativeReserve, c.tokenReserve, newToken, true)
	return new(big.Int).Sub(c.nativeReserve, quot)
}

// graduateLocked performs the irreversible hand-off: flips the state first so
// the transition can never run twice, then seeds the pool with the curve's
// entire real native balance and remaining token reserve, burns the liquidity
// receipt, opens the token's trading gate, and notifies the registry.
func (c *Curve) graduateLocked(db contract.StateDB) error {
	if c.state != StateActive {
		return ErrAlreadyGraduated
	}
	c.state = StateGraduated

	nativeSeed := db.GetBalance(c.address)
	tokenSeed := new(big.Int).Set(c.tokenReserve)
	c.tokenReserve = new(big.Int)
	c.nativeReserve = new(big.Int)

	pool, err := c.poolFactory.GetOrCreatePool(db, c.tok)
	if err != nil {
		return err
	}

	db.SubBalance(c.address, nativeSeed, tracing.BalanceChangeTransfer)
	db.AddBalance(pool.Address(), nativeSeed, tracing.BalanceChangeTransfer)
	if err := c.tok.Transfer(db, c.address, pool.Address(), tokenSeed); err != nil {
		return err
	}
	// The receipt is minted to the blackhole inside the pool; the launch has
	// no further claim on the liquidity.
	if _, err := pool.AddInitialLiquidity(db, nativeSeed, tokenSeed); err != nil {
		return err
	}

	if err := c.tok.EnableTrading(db, c.address); err != nil {
		return err
	}
	if err := c.registry.NotifyGraduation(db, c.address, c.launchID); err != nil {
		return err
	}

	c.pool = pool.Address()

	db.AddLog(&types.Log{
		Address: c.address,
		Topics: []common.Hash{
			graduatedTopic,
			common.BigToHash(new(big.Int).SetUint64(c.launchID)),
		},
		Data: packWords(
			common.BytesToHash(pool.Address().Bytes()),
			common.BigToHash(nativeSeed.ToBig()),
			common.BigToHash(tokenSeed),
		),
	})
	return nil
}

func (c *Curve) emitTrade(db contract.StateDB, topic common.Hash, trader common.Address, amountIn, amountOut, fee *big.Int) {
	db.AddLog(&types.Log{
		Address: c.address,
		Topics: []common.Hash{
			topic,
			common.BytesToHash(trader.Bytes()),
		},
		Data: packWords(
			common.BigToHash(amountIn),
			common.BigToHash(amountOut),
			common.BigToHash(fee),
		),
	})
}

// packWords concatenates 32-byte words into ABI-shaped event data.
func packWords(words ...common.Hash) []byte {
	data := make([]byte, 0, len(words)*common.HashLength)
	for _, w := range words {
		data = append(data, w.Bytes()...)
	}
	return data
}
