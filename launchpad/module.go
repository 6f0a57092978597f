// Copyright (C) 2026, Pod.fun Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package launchpad

import "github.com/podfun/launchpad/modules"

// ConfigKey is the module name of the launchpad factory.
const ConfigKey = "launchpad"

// Module pins the launchpad to its reserved address.
var Module = modules.Module{
	Name:    ConfigKey,
	Address: LaunchpadAddress,
}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}
