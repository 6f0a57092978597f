// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package modules assigns and guards the fixed addresses of the launchpad's
// core infrastructure contracts (dex factory, launchpad, treasury). Launch
// tokens and curves are not modules; their addresses are derived per launch
// from the launchpad's nonce.
package modules

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/luxfi/geth/common"
)

// Module is a core contract pinned to a well-known address.
type Module struct {
	// Name is the unique config key of the module, e.g. "launchpad".
	Name string
	// Address is the fixed address the module is deployed at.
	Address common.Address
}

// AddressRange represents a continuous range of addresses
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff [addr] is contained within the (inclusive)
// range of addresses defined by [a].
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// BlackholeAddr is the address where assets are burned. Liquidity receipts
// minted on graduation are assigned here so no one can ever redeem them.
var BlackholeAddr = common.Address{
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var (
	// registeredModules is a list of Module to preserve order
	// for deterministic iteration
	registeredModules = make([]Module, 0)

	// Launchpad suite lives in the markets page at 0x0000...91xx:
	// 0x...9110 dex pair factory
	// 0x...9120 launchpad factory / launch registry
	// 0x...9130 protocol treasury
	reservedRange = AddressRange{
		Start: common.HexToAddress("0x0000000000000000000000000000000000009100"),
		End:   common.HexToAddress("0x00000000000000000000000000000000000091ff"),
	}
)

// ReservedAddress returns true if [addr] is in the range reserved for core
// launchpad contracts.
func ReservedAddress(addr common.Address) bool {
	return reservedRange.Contains(addr)
}

// RegisterModule registers a core contract module. Registration is refused
// for the blackhole address, addresses outside the reserved range, and
// duplicate names or addresses.
func RegisterModule(m Module) error {
	if m.Address == BlackholeAddr {
		return fmt.Errorf("address %s overlaps with blackhole address", m.Address)
	}
	if !ReservedAddress(m.Address) {
		return fmt.Errorf("address %s not in the reserved range", m.Address)
	}

	for _, registered := range registeredModules {
		if registered.Name == m.Name {
			return fmt.Errorf("name %s already used by a core module", m.Name)
		}
		if registered.Address == m.Address {
			return fmt.Errorf("address %s already used by a core module", m.Address)
		}
	}
	// sort by address to ensure deterministic iteration
	registeredModules = insertSortedByAddress(registeredModules, m)
	return nil
}

// GetModuleByAddress looks a registered module up by address.
func GetModuleByAddress(address common.Address) (Module, bool) {
	for _, m := range registeredModules {
		if m.Address == address {
			return m, true
		}
	}
	return Module{}, false
}

// GetModule looks a registered module up by name.
func GetModule(name string) (Module, bool) {
	for _, m := range registeredModules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// RegisteredModules returns all modules sorted by address.
func RegisteredModules() []Module {
	return registeredModules
}

func insertSortedByAddress(data []Module, m Module) []Module {
	data = append(data, m)
	sort.Slice(data, func(i, j int) bool {
		return bytes.Compare(data[i].Address[:], data[j].Address[:]) < 0
	})
	return data
}
