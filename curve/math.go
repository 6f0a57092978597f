// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import "math/big"

// mulDiv computes x*y/d at full precision. When roundUp is set and the
// division leaves a remainder, the quotient is bumped by one. d must be
// non-zero; every call site divides by a reserve sum that is strictly
// positive.
func mulDiv(x, y, d *big.Int, roundUp bool) *big.Int {
	num := new(big.Int).Mul(x, y)
	quo, rem := new(big.Int).QuoRem(num, d, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// feeAmount returns amount*bps/10000, rounded down.
func feeAmount(amount *big.Int, bps uint64) *big.Int {
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return fee.Div(fee, new(big.Int).SetUint64(BasisPoints))
}
