package module

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/params"
)

// Env carries what a run needs from the process around it.
type Env struct {
	Logger logging.Logger
}

// Module is one Ansible module: a parameter surface and a single
// lookup-then-reconcile run against a remote system.
type Module interface {
	// Name is the collection-qualified name, e.g. "powerdns_admin.zone".
	Name() string
	Description() string
	Spec() params.Spec
	Run(ctx context.Context, env Env, raw map[string]any) (Result, error)
}

// Result is what a successful run hands back to Ansible.
type Result struct {
	Changed bool
	// Key names the resource-specific field of the output, e.g. "zone".
	Key  string
	Data any
}

// Output renders r as the JSON object Ansible expects on stdout.
func (r Result) Output() map[string]any {
	out := map[string]any{"changed": r.Changed}
	if r.Key != "" {
		out[r.Key] = r.Data
	}
	return out
}

// Failure renders a failed run. No partial data is returned.
func Failure(err error) map[string]any {
	return map[string]any{
		"changed": false,
		"failed":  true,
		"msg":     err.Error(),
	}
}
