// Package virt holds the hyperv modules. They run PowerShell on the Hyper-V
// host the module is executed on.
package virt

import (
	"github.com/larivierec/infra-modules/pkg/hyperv"
	"github.com/larivierec/infra-modules/pkg/logging"
)

const collection = "hyperv."

// newExecutor builds the PowerShell runner for a module run. Tests swap in
// a hypervtest.Executor.
var newExecutor = func() hyperv.Executor { return hyperv.NewPowerShell() }

func newClient(logger logging.Logger) *hyperv.Client {
	return hyperv.NewClient(newExecutor(), logger)
}
