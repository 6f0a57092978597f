// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package treasury

import "github.com/podfun/launchpad/modules"

// ConfigKey is the module name of the protocol treasury.
const ConfigKey = "treasury"

// Module pins the treasury to its reserved address.
var Module = modules.Module{
	Name:    ConfigKey,
	Address: TreasuryAddress,
}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}
