// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package launchpad

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/geth/crypto"
	log "github.com/luxfi/log"

	"github.com/podfun/launchpad/contract"
	"github.com/podfun/launchpad/curve"
	"github.com/podfun/launchpad/dex"
	"github.com/podfun/launchpad/token"
)

// Launchpad is the launch registry engine.
type Launchpad struct {
	mu sync.RWMutex

	address  common.Address
	cfg      Config
	treasury common.Address
	dexFct   *dex.Factory

	log log.Logger

	nextID   uint64
	launches map[uint64]*launchEntry
	byCurve  map[common.Address]uint64
}

// launchEntry pairs the registry record with the live engine handles.
type launchEntry struct {
	record LaunchRecord
	token  *token.Token
	curve  *curve.Curve
}

var _ curve.GraduationNotifier = (*Launchpad)(nil)

// New wires the launchpad to the dex factory and treasury. A nil logger
// falls back to a test logger.
func New(db contract.StateDB, dexFct *dex.Factory, treasuryAddr common.Address, cfg Config, logger log.Logger) (*Launchpad, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	db.CreateAccount(LaunchpadAddress)
	return &Launchpad{
		address:  LaunchpadAddress,
		cfg:      cfg,
		treasury: treasuryAddr,
		dexFct:   dexFct,
		log:      logger,
		nextID:   1,
		launches: make(map[uint64]*launchEntry),
		byCurve:  make(map[common.Address]uint64),
	}, nil
}

func (l *Launchpad) Address() common.Address  { return l.address }
func (l *Launchpad) Treasury() common.Address { return l.treasury }
func (l *Launchpad) Config() Config           { return l.cfg }

// DexFactory exposes the pair factory for pool lookups.
func (l *Launchpad) DexFactory() *dex.Factory { return l.dexFct }

// CreateLaunch deploys a token and its bonding curve atomically, collects the
// flat launch fee from [value], and registers the launch under the next id.
// The token's full supply is minted to the curve's precomputed address before
// the curve exists; the curve is then constructed around it.
func (l *Launchpad) CreateLaunch(db contract.StateDB, caller common.Address, value *uint256.Int, name, symbol string) (LaunchRecord, error) {
	if name == "" || symbol == "" {
		return LaunchRecord{}, ErrInvalidName
	}

	fee := l.cfg.RequiredLaunchFee()
	if value == nil || value.Lt(fee) {
		return LaunchRecord{}, ErrInsufficientFee
	}
	if db.GetBalance(caller).Lt(fee) {
		return LaunchRecord{}, ErrInsufficientBalance
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Fee first: forwarded to the treasury before anything is deployed.
	// Only the required fee is consumed; the rest of the attached value
	// stays with the caller.
	db.SubBalance(caller, fee, tracing.BalanceChangeTransfer)
	db.AddBalance(l.treasury, fee, tracing.BalanceChangeTransfer)

	nonce := db.GetNonce(l.address)
	tokenAddr := crypto.CreateAddress(l.address, nonce)
	curveAddr := crypto.CreateAddress(l.address, nonce+1)
	db.SetNonce(l.address, nonce+2, tracing.NonceChangeContractCreator)

	id := l.nextID
	l.nextID++

	tok := token.New(db, tokenAddr, curveAddr, name, symbol, l.cfg.TokenSupply)
	bc, err := curve.New(db, curveAddr, id, tok, l, poolFactory{l.dexFct}, l.treasury, l.cfg.Curve)
	if err != nil {
		// Config was verified at construction; a failure here means the
		// launchpad itself is misconfigured.
		return LaunchRecord{}, err
	}

	entry := &launchEntry{
		record: LaunchRecord{
			ID:        id,
			Creator:   caller,
			Token:     tokenAddr,
			Curve:     curveAddr,
			CreatedAt: db.GetBlockNumber(),
		},
		token: tok,
		curve: bc,
	}
	l.launches[id] = entry
	l.byCurve[curveAddr] = id

	db.AddLog(&types.Log{
		Address: l.address,
		Topics: []common.Hash{
			launchCreatedTopic,
			common.BigToHash(new(big.Int).SetUint64(id)),
			common.BytesToHash(caller.Bytes()),
		},
		Data: append(
			common.BytesToHash(tokenAddr.Bytes()).Bytes(),
			common.BytesToHash(curveAddr.Bytes()).Bytes()...,
		),
	})
	l.log.Info("launch created", "id", id, "creator", caller, "token", tokenAddr, "curve", curveAddr)

	return entry.record, nil
}

// NotifyGraduation marks a launch graduated. The caller must be the exact
// curve address registered for [launchID]; the id argument is never trusted
// on its own.
func (l *Launchpad) NotifyGraduation(db contract.StateDB, caller common.Address, launchID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.launches[launchID]
	if !ok {
		return ErrUnknownLaunch
	}
	if entry.record.Curve != caller {
		return ErrOnlyCurve
	}
	if entry.record.Graduated {
		return ErrAlreadyGraduated
	}
	entry.record.Graduated = true

	db.AddLog(&types.Log{
		Address: l.address,
		Topics: []common.Hash{
			launchGraduatedTopic,
			common.BigToHash(new(big.Int).SetUint64(launchID)),
		},
	})
	l.log.Info("launch graduated", "id", launchID, "curve", caller)
	return nil
}

// GetLaunch returns a copy of the record for [launchID].
func (l *Launchpad) GetLaunch(launchID uint64) (LaunchRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.launches[launchID]
	if !ok {
		return LaunchRecord{}, false
	}
	return entry.record, true
}

// LaunchByCurve resolves a curve address to its launch record.
func (l *Launchpad) LaunchByCurve(addr common.Address) (LaunchRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byCurve[addr]
	if !ok {
		return LaunchRecord{}, false
	}
	return l.launches[id].record, true
}

// TokenAt returns the token engine of [launchID].
func (l *Launchpad) TokenAt(launchID uint64) (*token.Token, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.launches[launchID]
	if !ok {
		return nil, false
	}
	return entry.token, true
}

// CurveAt returns the curve engine of [launchID].
func (l *Launchpad) CurveAt(launchID uint64) (*curve.Curve, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.launches[launchID]
	if !ok {
		return nil, false
	}
	return entry.curve, true
}

// LaunchCount returns the number of launches created.
func (l *Launchpad) LaunchCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.launches)
}

// poolFactory adapts the concrete dex factory to the curve's PoolFactory
// capability.
type poolFactory struct {
	f *dex.Factory
}

func (p poolFactory) GetOrCreatePool(db contract.StateDB, tok curve.LaunchToken) (curve.Pool, error) {
	return p.f.GetOrCreatePool(db, tok)
}
