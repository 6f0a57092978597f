// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"

	"github.com/podfun/launchpad/contract"
	"github.com/podfun/launchpad/modules"
)

// Pair is a native/token constant-product pool. Reserves obey x*y >= k with
// every division rounding in the pool's favor; the 30 bps swap fee stays in
// the reserves.
type Pair struct {
	mu sync.Mutex

	address common.Address
	id      [32]byte
	tok     Token

	reserveNative *big.Int
	reserveToken  *big.Int

	// Liquidity receipts. The initial mint goes to the blackhole address, so
	// the seeded liquidity is locked forever.
	totalLiquidity *big.Int
	lpBalances     map[common.Address]*big.Int
}

func newPair(db contract.StateDB, address common.Address, tok Token) *Pair {
	db.CreateAccount(address)
	return &Pair{
		address:        address,
		id:             PairID(tok.Address()),
		tok:            tok,
		reserveNative:  new(big.Int),
		reserveToken:   new(big.Int),
		totalLiquidity: new(big.Int),
		lpBalances:     make(map[common.Address]*big.Int),
	}
}

func (p *Pair) Address() common.Address { return p.address }
func (p *Pair) ID() [32]byte            { return p.id }
func (p *Pair) Token() common.Address   { return p.tok.Address() }

// Reserves returns copies of the (native, token) reserves.
func (p *Pair) Reserves() (*big.Int, *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.reserveNative), new(big.Int).Set(p.reserveToken)
}

func (p *Pair) TotalLiquidity() *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.totalLiquidity)
}

// LiquidityOf returns the liquidity receipt balance of [owner].
func (p *Pair) LiquidityOf(owner common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if bal, ok := p.lpBalances[owner]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// AddInitialLiquidity records the seed deposit. Both sides must already sit
// at the pair's address; the caller (the graduating curve) transfers them
// before calling. The minted receipt, floor(sqrt(native*token)), is assigned
// to the blackhole address and returned. One-shot.
func (p *Pair) AddInitialLiquidity(db contract.StateDB, nativeAmount *uint256.Int, tokenAmount *big.Int) (*big.Int, error) {
	if nativeAmount == nil || nativeAmount.IsZero() || tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalLiquidity.Sign() != 0 {
		return nil, ErrPoolAlreadyInitialized
	}

	native := nativeAmount.ToBig()
	if db.GetBalance(p.address).ToBig().Cmp(native) < 0 {
		return nil, ErrInsufficientBalance
	}
	if p.tok.BalanceOf(p.address).Cmp(tokenAmount) < 0 {
		return nil, ErrInsufficientBalance
	}

	p.reserveNative = new(big.Int).Set(native)
	p.reserveToken = new(big.Int).Set(tokenAmount)

	liquidity := new(big.Int).Sqrt(new(big.Int).Mul(native, tokenAmount))
	p.totalLiquidity = new(big.Int).Set(liquidity)
	p.lpBalances[modules.BlackholeAddr] = new(big.Int).Set(liquidity)

	db.AddLog(&types.Log{
		Address: p.address,
		Topics:  []common.Hash{liquidityAddedTopic},
		Data: packWords(
			common.BigToHash(native),
			common.BigToHash(tokenAmount),
			common.BigToHash(liquidity),
		),
	})
	return liquidity, nil
}

// SwapNativeForToken swaps the caller's native [value] for tokens sent to
// [recipient].
func (p *Pair) SwapNativeForToken(db contract.StateDB, caller common.Address, value *uint256.Int, minTokensOut *big.Int, recipient common.Address) (*big.Int, error) {
	if value == nil || value.IsZero() {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalLiquidity.Sign() == 0 {
		return nil, ErrPoolNotInitialized
	}
	if db.GetBalance(caller).Lt(value) {
		return nil, ErrInsufficientBalance
	}

	in := value.ToBig()
	out := swapOut(in, p.reserveNative, p.reserveToken)
	if out.Sign() <= 0 || out.Cmp(p.reserveToken) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if minTokensOut != nil && out.Cmp(minTokensOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	p.reserveNative.Add(p.reserveNative, in)
	p.reserveToken.Sub(p.reserveToken, out)

	db.SubBalance(caller, value, tracing.BalanceChangeTransfer)
	db.AddBalance(p.address, value, tracing.BalanceChangeTransfer)
	if err := p.tok.Transfer(db, p.address, recipient, out); err != nil {
		return nil, err
	}

	p.emitSwap(db, caller, in, out, true)
	return out, nil
}

// SwapTokenForNative pulls [tokenAmountIn] from the caller (pair must be
// approved as spender) and sends native out to [recipient].
func (p *Pair) SwapTokenForNative(db contract.StateDB, caller common.Address, tokenAmountIn, minNativeOut *big.Int, recipient common.Address) (*big.Int, error) {
	if tokenAmountIn == nil || tokenAmountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalLiquidity.Sign() == 0 {
		return nil, ErrPoolNotInitialized
	}

	out := swapOut(tokenAmountIn, p.reserveToken, p.reserveNative)
	if out.Sign() <= 0 || out.Cmp(p.reserveNative) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if minNativeOut != nil && out.Cmp(minNativeOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	if err := p.tok.TransferFrom(db, p.address, caller, p.address, tokenAmountIn); err != nil {
		return nil, err
	}

	p.reserveToken.Add(p.reserveToken, tokenAmountIn)
	p.reserveNative.Sub(p.reserveNative, out)

	outU := uint256.MustFromBig(out)
	db.SubBalance(p.address, outU, tracing.BalanceChangeTransfer)
	db.AddBalance(recipient, outU, tracing.BalanceChangeTransfer)

	p.emitSwap(db, caller, tokenAmountIn, out, false)
	return out, nil
}

// swapOut prices an exact input against (reserveIn, reserveOut) with the
// swap fee deducted from the input, flooring in the pool's favor:
// out = reserveOut*inFee / (reserveIn*10000 + inFee).
func swapOut(in, reserveIn, reserveOut *big.Int) *big.Int {
	inFee := new(big.Int).Mul(in, new(big.Int).SetUint64(BasisPoints-SwapFeeBps))
	num := new(big.Int).Mul(inFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, new(big.Int).SetUint64(BasisPoints))
	den.Add(den, inFee)
	return num.Div(num, den)
}

func (p *Pair) emitSwap(db contract.StateDB, trader common.Address, amountIn, amountOut *big.Int, nativeIn bool) {
	dir := common.Hash{}
	if nativeIn {
		dir = common.BigToHash(big.NewInt(1))
	}
	db.AddLog(&types.Log{
		Address: p.address,
		Topics: []common.Hash{
			swapTopic,
			common.BytesToHash(trader.Bytes()),
		},
		Data: packWords(
			common.BigToHash(amountIn),
			common.BigToHash(amountOut),
			dir,
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
