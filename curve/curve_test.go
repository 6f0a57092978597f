// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/stretchr/testify/require"

	"github.com/podfun/launchpad/contract"
	"github.com/podfun/launchpad/dex"
	"github.com/podfun/launchpad/modules"
	"github.com/podfun/launchpad/token"
)

var (
	testTokenAddr    = common.HexToAddress("0x2000000000000000000000000000000000000001")
	testCurveAddr    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testTreasuryAddr = common.HexToAddress("0x2000000000000000000000000000000000000003")
	testAlice        = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testBob          = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// smallConfig keeps every intermediate value hand-checkable: 5%/1% fees, a
// 4000-wei threshold, a 1000-wei virtual reserve, against a 1e6 supply.
func smallConfig() Config {
	return Config{
		BuyFeeBps:            500,
		SellFeeBps:           100,
		GraduationThreshold:  big.NewInt(4000),
		VirtualNativeReserve: big.NewInt(1000),
	}
}

type recordingRegistry struct {
	calls  int
	caller common.Address
	id     uint64
}

func (r *recordingRegistry) NotifyGraduation(_ contract.StateDB, caller common.Address, launchID uint64) error {
	r.calls++
	r.caller = caller
	r.id = launchID
	return nil
}

// dexPools adapts the concrete dex factory the way the launchpad does.
type dexPools struct {
	f *dex.Factory
}

func (d dexPools) GetOrCreatePool(db contract.StateDB, tok LaunchToken) (Pool, error) {
	return d.f.GetOrCreatePool(db, tok)
}

type testEnv struct {
	db       *contract.MemoryStateDB
	tok      *token.Token
	curve    *Curve
	registry *recordingRegistry
	factory  *dex.Factory
}

func newTestEnv(t *testing.T, cfg Config, supply int64) *testEnv {
	t.Helper()
	db := contract.NewMemoryStateDB()
	tok := token.New(db, testTokenAddr, testCurveAddr, "Alpha", "ALPHA", big.NewInt(supply))
	registry := &recordingRegistry{}
	factory := dex.NewFactory(db)
	c, err := New(db, testCurveAddr, 1, tok, registry, dexPools{factory}, testTreasuryAddr, cfg)
	require.NoError(t, err)

	db.AddBalance(testAlice, uint256.NewInt(100_000), tracing.BalanceChangeUnspecified)
	return &testEnv{db: db, tok: tok, curve: c, registry: registry, factory: factory}
}

func TestCurve_NewSeedsReserves(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	require.Equal(t, StateActive, env.curve.State())
	native, tokens := env.curve.Reserves()
	require.Equal(t, int64(1000), native.Int64())
	require.Equal(t, int64(1_000_000), tokens.Int64())
	require.Equal(t, int64(0), env.curve.CumulativeRaised().Int64())
	require.Equal(t, common.Address{}, env.curve.Pool())
}

func TestCurve_NewRejectsBadConfig(t *testing.T) {
	db := contract.NewMemoryStateDB()
	tok := token.New(db, testTokenAddr, testCurveAddr, "Alpha", "ALPHA", big.NewInt(1))

	for _, cfg := range []Config{
		{BuyFeeBps: BasisPoints, SellFeeBps: 100, GraduationThreshold: big.NewInt(1), VirtualNativeReserve: big.NewInt(1)},
		{BuyFeeBps: 500, SellFeeBps: 100, GraduationThreshold: big.NewInt(0), VirtualNativeReserve: big.NewInt(1)},
		{BuyFeeBps: 500, SellFeeBps: 100, GraduationThreshold: big.NewInt(1), VirtualNativeReserve: nil},
	} {
		_, err := New(db, testCurveAddr, 1, tok, &recordingRegistry{}, dexPools{dex.NewFactory(db)}, testTreasuryAddr, cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestCurve_BuyExactMath(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	// 200 in: fee 10, net 190; out = 1e6 - ceil(1000*1e6/1190) = 159663.
	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, int64(159_663), out.Int64())

	native, tokens := env.curve.Reserves()
	require.Equal(t, int64(1190), native.Int64())
	require.Equal(t, int64(840_337), tokens.Int64())
	require.Equal(t, int64(190), env.curve.CumulativeRaised().Int64())

	require.Equal(t, int64(159_663), env.tok.BalanceOf(testAlice).Int64())
	require.Equal(t, uint64(99_800), env.db.GetBalance(testAlice).Uint64())
	require.Equal(t, uint64(10), env.db.GetBalance(testTreasuryAddr).Uint64())
	// the curve holds only the real (fee-excluded, virtual-excluded) inflow
	require.Equal(t, uint64(190), env.db.GetBalance(testCurveAddr).Uint64())
}

func TestCurve_QuoteBuyMatchesBuy(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	quoteOut, quoteFee, err := env.curve.QuoteBuy(big.NewInt(200))
	require.NoError(t, err)
	require.Equal(t, int64(10), quoteFee.Int64())

	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, 0, quoteOut.Cmp(out))

	// quoting is read-only, so a second quote after the buy differs
	secondOut, _, err := env.curve.QuoteBuy(big.NewInt(200))
	require.NoError(t, err)
	require.Less(t, secondOut.Int64(), out.Int64())
}

func TestCurve_BuyValidation(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	_, err := env.curve.Buy(env.db, testAlice, nil, nil, testAlice)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.curve.Buy(env.db, testAlice, uint256.NewInt(0), nil, testAlice)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// bob holds no native balance
	_, err = env.curve.Buy(env.db, testBob, uint256.NewInt(100), nil, testBob)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCurve_BuySlippage(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	_, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), big.NewInt(159_664), testAlice)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	// a failed buy moves nothing
	native, tokens := env.curve.Reserves()
	require.Equal(t, int64(1000), native.Int64())
	require.Equal(t, int64(1_000_000), tokens.Int64())
	require.Equal(t, uint64(100_000), env.db.GetBalance(testAlice).Uint64())

	// the exact quoted output passes
	_, err = env.curve.Buy(env.db, testAlice, uint256.NewInt(200), big.NewInt(159_663), testAlice)
	require.NoError(t, err)
}

func TestCurve_BuyPriceImpact(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	// equal inputs buy strictly less as the reserve drains
	var prev *big.Int
	for i := 0; i < 3; i++ {
		out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
		require.NoError(t, err)
		if prev != nil {
			require.Less(t, out.Int64(), prev.Int64())
		}
		prev = out
	}
}

func TestCurve_SellRoundTrip(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
	require.NoError(t, err)

	require.NoError(t, env.tok.Approve(env.db, testAlice, testCurveAddr, out))

	// selling the full position back: gross 189, fee 1, net 188. The 12-wei
	// round-trip loss is the two fees plus rounding in the curve's favor.
	net, err := env.curve.Sell(env.db, testAlice, out, nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, int64(188), net.Int64())

	require.Equal(t, int64(0), env.tok.BalanceOf(testAlice).Int64())
	require.Equal(t, uint64(99_988), env.db.GetBalance(testAlice).Uint64())
	require.Equal(t, uint64(11), env.db.GetBalance(testTreasuryAddr).Uint64())

	native, tokens := env.curve.Reserves()
	require.Equal(t, int64(1001), native.Int64())
	require.Equal(t, int64(1_000_000), tokens.Int64())

	// cumulative raised is buy-only; the sell did not roll it back
	require.Equal(t, int64(190), env.curve.CumulativeRaised().Int64())
}

func TestCurve_SellValidation(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
	require.NoError(t, err)

	_, err = env.curve.Sell(env.db, testAlice, nil, nil, testAlice)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.curve.Sell(env.db, testAlice, big.NewInt(0), nil, testAlice)
	require.ErrorIs(t, err, ErrInvalidAmount)

	tooMuch := new(big.Int).Add(out, big.NewInt(1))
	_, err = env.curve.Sell(env.db, testAlice, tooMuch, nil, testAlice)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// the curve pulls via allowance; none granted yet
	_, err = env.curve.Sell(env.db, testAlice, out, nil, testAlice)
	require.ErrorIs(t, err, token.ErrInsufficientAllowance)

	require.NoError(t, env.tok.Approve(env.db, testAlice, testCurveAddr, out))
	_, err = env.curve.Sell(env.db, testAlice, out, big.NewInt(189), testAlice)
	require.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestCurve_InvariantNonDecreasing(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	k := func() *big.Int {
		native, tokens := env.curve.Reserves()
		return new(big.Int).Mul(native, tokens)
	}
	prev := k()

	step := func() {
		cur := k()
		require.GreaterOrEqual(t, cur.Cmp(prev), 0, "reserve product decreased")
		prev = cur
	}

	for _, value := range []uint64{200, 37, 991} {
		_, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(value), nil, testAlice)
		require.NoError(t, err)
		step()
	}
	held := env.tok.BalanceOf(testAlice)
	require.NoError(t, env.tok.Approve(env.db, testAlice, testCurveAddr, held))
	for _, frac := range []int64{3, 2, 1} {
		amount := new(big.Int).Div(env.tok.BalanceOf(testAlice), big.NewInt(frac))
		_, err := env.curve.Sell(env.db, testAlice, amount, nil, testAlice)
		require.NoError(t, err)
		step()
	}

	// the curve's real balance covers every future sell: native reserve never
	// dips below the virtual floor
	native, _ := env.curve.Reserves()
	require.GreaterOrEqual(t, native.Int64(), int64(1000))
}

func TestCurve_BuyTriggersGraduation(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	// 5000 in: fee 250, net 4750 >= 4000, so this buy graduates the launch.
	// out = 1e6 - ceil(1000*1e6/5750) = 826086.
	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(5000), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, int64(826_086), out.Int64())

	require.Equal(t, StateGraduated, env.curve.State())
	native, tokens := env.curve.Reserves()
	require.Equal(t, int64(0), native.Int64())
	require.Equal(t, int64(0), tokens.Int64())
	require.Equal(t, uint64(0), env.db.GetBalance(testCurveAddr).Uint64())

	// the registry heard about it exactly once, from the curve itself
	require.Equal(t, 1, env.registry.calls)
	require.Equal(t, testCurveAddr, env.registry.caller)
	require.Equal(t, uint64(1), env.registry.id)

	// trading gate opened
	require.True(t, env.tok.TradingEnabled())

	// the pool holds the real raise and the unsold tokens
	pairAddr := env.factory.GetPair(testTokenAddr)
	require.NotEqual(t, common.Address{}, pairAddr)
	require.Equal(t, pairAddr, env.curve.Pool())

	pair, ok := env.factory.Pair(testTokenAddr)
	require.True(t, ok)
	pNative, pTokens := pair.Reserves()
	require.Equal(t, int64(4750), pNative.Int64())
	require.Equal(t, int64(173_914), pTokens.Int64())
	require.Equal(t, uint64(4750), env.db.GetBalance(pairAddr).Uint64())
	require.Equal(t, int64(173_914), env.tok.BalanceOf(pairAddr).Int64())

	// seeded liquidity is locked: floor(sqrt(4750*173914)) to the blackhole
	require.Equal(t, int64(28_741), pair.LiquidityOf(modules.BlackholeAddr).Int64())
	require.Equal(t, 0, pair.TotalLiquidity().Cmp(pair.LiquidityOf(modules.BlackholeAddr)))
}

func TestCurve_SellNeverGraduates(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	// net 3800 stays below the 4000 threshold
	out, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(4000), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, StateActive, env.curve.State())

	require.NoError(t, env.tok.Approve(env.db, testAlice, testCurveAddr, out))
	_, err = env.curve.Sell(env.db, testAlice, out, nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, StateActive, env.curve.State())
	require.Equal(t, int64(3800), env.curve.CumulativeRaised().Int64())

	// cumulative raised survived the sell, so a small buy still crosses
	_, err = env.curve.Buy(env.db, testAlice, uint256.NewInt(300), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, StateGraduated, env.curve.State())
}

func TestCurve_GraduatedRejectsEverything(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)
	_, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(5000), nil, testAlice)
	require.NoError(t, err)
	require.Equal(t, StateGraduated, env.curve.State())

	_, err = env.curve.Buy(env.db, testAlice, uint256.NewInt(100), nil, testAlice)
	require.ErrorIs(t, err, ErrAlreadyGraduated)
	_, err = env.curve.Sell(env.db, testAlice, big.NewInt(100), nil, testAlice)
	require.ErrorIs(t, err, ErrAlreadyGraduated)
	_, _, err = env.curve.QuoteBuy(big.NewInt(100))
	require.ErrorIs(t, err, ErrAlreadyGraduated)
	require.ErrorIs(t, env.curve.ManualGraduate(env.db, testAlice), ErrAlreadyGraduated)

	// nothing re-seeded
	require.Equal(t, 1, env.factory.PairCount())
	require.Equal(t, 1, env.registry.calls)
}

func TestCurve_ManualGraduateThresholdNotMet(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	require.ErrorIs(t, env.curve.ManualGraduate(env.db, testAlice), ErrThresholdNotMet)

	_, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(1000), nil, testAlice)
	require.NoError(t, err)
	require.ErrorIs(t, env.curve.ManualGraduate(env.db, testAlice), ErrThresholdNotMet)
	require.Equal(t, StateActive, env.curve.State())
}

func TestCurve_EmitsEvents(t *testing.T) {
	env := newTestEnv(t, smallConfig(), 1_000_000)

	_, err := env.curve.Buy(env.db, testAlice, uint256.NewInt(200), nil, testAlice)
	require.NoError(t, err)
	held := env.tok.BalanceOf(testAlice)
	require.NoError(t, env.tok.Approve(env.db, testAlice, testCurveAddr, held))
	_, err = env.curve.Sell(env.db, testAlice, held, nil, testAlice)
	require.NoError(t, err)
	_, err = env.curve.Buy(env.db, testAlice, uint256.NewInt(5000), nil, testAlice)
	require.NoError(t, err)

	var sawBuy, sawSell, sawGraduated int
	for _, l := range env.db.LogsFrom(testCurveAddr) {
		switch l.Topics[0] {
		case buyTopic:
			sawBuy++
			require.Equal(t, common.BytesToHash(testAlice.Bytes()), l.Topics[1])
		case sellTopic:
			sawSell++
		case graduatedTopic:
			sawGraduated++
			require.Equal(t, common.BigToHash(big.NewInt(1)), l.Topics[1])
		}
	}
	require.Equal(t, 2, sawBuy)
	require.Equal(t, 1, sawSell)
	require.Equal(t, 1, sawGraduated)
}

func TestCurve_DefaultConfigGraduation(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	supply := new(big.Int).Mul(big.NewInt(1_000_000_000), one)

	db := contract.NewMemoryStateDB()
	tok := token.New(db, testTokenAddr, testCurveAddr, "Alpha", "ALPHA", supply)
	registry := &recordingRegistry{}
	factory := dex.NewFactory(db)
	c, err := New(db, testCurveAddr, 7, tok, registry, dexPools{factory}, testTreasuryAddr, DefaultConfig())
	require.NoError(t, err)

	db.AddBalance(testAlice, uint256.NewInt(10_000_000_000_000_000_000), tracing.BalanceChangeUnspecified)

	// 5 native units net to 4.75 after the 5% fee, crossing the 4-unit
	// threshold within the same call
	five := uint256.NewInt(5_000_000_000_000_000_000)
	out, err := c.Buy(db, testAlice, five, nil, testAlice)
	require.NoError(t, err)
	require.Positive(t, out.Sign())

	require.Equal(t, StateGraduated, c.State())
	require.Equal(t, uint64(7), registry.id)
	require.True(t, tok.TradingEnabled())

	pair, ok := factory.Pair(testTokenAddr)
	require.True(t, ok)
	pNative, pTokens := pair.Reserves()
	// real raise: 4.75 units; tokens: everything the buyer did not take
	wantNative := new(big.Int).Div(new(big.Int).Mul(big.NewInt(475), one), big.NewInt(100))
	require.Equal(t, 0, pNative.Cmp(wantNative))
	require.Equal(t, 0, pTokens.Cmp(new(big.Int).Sub(supply, out)))
}
