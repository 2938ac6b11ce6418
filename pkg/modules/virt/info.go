package virt

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
)

// infoModule reads one Hyper-V object by a single required parameter.
type infoModule struct {
	name        string
	description string
	param       string
	paramDoc    string
	key         string
	get         func(ctx context.Context, env module.Env, value string) (any, error)
}

func (m infoModule) Name() string        { return collection + m.name }
func (m infoModule) Description() string { return m.description }

func (m infoModule) Spec() params.Spec {
	return params.Spec{{Name: m.param, Required: true, Description: m.paramDoc}}
}

func (m infoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	values, err := m.Spec().Parse(raw)
	if err != nil {
		return module.Result{}, err
	}
	data, err := m.get(ctx, env, values[m.param].(string))
	if err != nil {
		return module.Result{}, err
	}
	return module.Result{Key: m.key, Data: data}, nil
}

func init() {
	module.Register(infoModule{
		name: "vm_info", description: "Read a Hyper-V virtual machine",
		param: "name", paramDoc: "Name of the VM", key: "vm",
		get: func(ctx context.Context, env module.Env, name string) (any, error) {
			return newClient(env.Logger).GetVM(ctx, name)
		},
	})
	module.Register(infoModule{
		name: "vhd_info", description: "Read a Hyper-V virtual hard disk",
		param: "path", paramDoc: "Path to the VHDX file", key: "vhd",
		get: func(ctx context.Context, env module.Env, path string) (any, error) {
			return newClient(env.Logger).GetVHD(ctx, path)
		},
	})
	module.Register(infoModule{
		name: "vmswitch_info", description: "Read a Hyper-V virtual switch",
		param: "name", paramDoc: "Name of the virtual switch", key: "vmswitch",
		get: func(ctx context.Context, env module.Env, name string) (any, error) {
			return newClient(env.Logger).GetVMSwitch(ctx, name)
		},
	})
}
