// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "github.com/podfun/launchpad/modules"

// ConfigKey is the module name of the pair factory.
const ConfigKey = "dexfactory"

// Module pins the pair factory to its reserved address.
var Module = modules.Module{
	Name:    ConfigKey,
	Address: FactoryAddress,
}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}
