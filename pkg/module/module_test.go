package module_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
	"gotest.tools/v3/assert"
)

type stub struct{ name string }

func (s stub) Name() string        { return s.name }
func (s stub) Description() string { return "stub" }
func (s stub) Spec() params.Spec   { return nil }
func (s stub) Run(context.Context, module.Env, map[string]any) (module.Result, error) {
	return module.Result{}, nil
}

func TestRegistry_LookupByMultiCallName(t *testing.T) {
	module.Register(stub{name: "test_collection.thing"})

	assert.Equal(t, module.Get("test_collection.thing").Name(), "test_collection.thing")
	assert.Equal(t, module.Lookup("test_collection_thing").Name(), "test_collection.thing")
	assert.Equal(t, module.Lookup("test_collection_thing.exe").Name(), "test_collection.thing")
	assert.Assert(t, module.Lookup("nope") == nil)
	assert.Equal(t, module.MultiCallName("powerdns_admin.zone"), "powerdns_admin_zone")
}

func TestRegistry_LookupByAnsibleNames(t *testing.T) {
	module.Register(stub{name: "lookup_a.zone"})
	module.Register(stub{name: "lookup_a.info"})
	module.Register(stub{name: "lookup_b.info"})

	assert.Equal(t, module.Lookup("kenmoini.lookup_a.zone").Name(), "lookup_a.zone")
	assert.Equal(t, module.Lookup("zone").Name(), "lookup_a.zone")
	assert.Assert(t, module.Lookup("info") == nil, "ambiguous bare name")
	assert.Equal(t, module.Lookup("kenmoini.lookup_b.info").Name(), "lookup_b.info")
	assert.Assert(t, module.Lookup("kenmoini.lookup_c.zone") == nil)
}

func TestResult_Output(t *testing.T) {
	res := module.Result{Changed: true, Key: "zone", Data: map[string]any{"name": "example.com."}}

	assert.DeepEqual(t, res.Output(), map[string]any{
		"changed": true,
		"zone":    map[string]any{"name": "example.com."},
	})
}

func TestFailure(t *testing.T) {
	out := module.Failure(errors.New("Failed to delete zone: boom"))

	assert.Equal(t, out["failed"], true)
	assert.Equal(t, out["changed"], false)
	assert.Equal(t, out["msg"], "Failed to delete zone: boom")
}

func TestCategory(t *testing.T) {
	_, verr := params.Spec{{Name: "name", Required: true}}.Parse(map[string]any{})
	apiErr := fmt.Errorf("Failed to update zone: %w", &transport.APIError{StatusCode: 500})

	assert.Equal(t, module.Category(verr), module.ErrorUser)
	assert.Equal(t, module.Category(apiErr), module.ErrorAPI)
	assert.Equal(t, module.Category(errors.New("dial tcp: refused")), module.ErrorProvider)
}
