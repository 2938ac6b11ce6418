package hyperv

import (
	"context"
	"fmt"
)

const (
	SwitchExternal = "External"
	SwitchInternal = "Internal"
	SwitchPrivate  = "Private"
)

type VMSwitch struct {
	Name               string `json:"name"`
	ID                 string `json:"id"`
	SwitchType         string `json:"switch_type"`
	AdapterDescription string `json:"adapter_description"`
	AllowManagementOS  bool   `json:"allow_management_os"`
}

// VMSwitchSpec describes a switch to create. Setting AdapterName makes it an
// external switch bound to that physical adapter.
type VMSwitchSpec struct {
	Name              string
	SwitchType        string
	AdapterName       string
	AllowManagementOS bool
}

type VMSwitchSettings struct {
	SwitchType        string
	AdapterName       string
	AllowManagementOS *bool
}

// GetVMSwitch returns nil, nil when no switch carries name.
func (c *Client) GetVMSwitch(ctx context.Context, name string) (*VMSwitch, error) {
	var s script
	s.add("$sw = Get-VMSwitch -Name %s -ErrorAction SilentlyContinue", Quote(name))
	s.add("if ($sw) { [pscustomobject]@{ name = $sw.Name; id = $sw.Id.ToString(); switch_type = $sw.SwitchType.ToString(); " +
		"adapter_description = [string]$sw.NetAdapterInterfaceDescription; allow_management_os = [bool]$sw.AllowManagementOS } | ConvertTo-Json -Compress }")

	var sw VMSwitch
	found, err := c.query(ctx, s.String(), &sw)
	if err != nil {
		return nil, fmt.Errorf("failed to get vmswitch %s: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	return &sw, nil
}

func (c *Client) NewVMSwitch(ctx context.Context, spec VMSwitchSpec) error {
	var cmd string
	if spec.AdapterName != "" {
		cmd = fmt.Sprintf("New-VMSwitch -Name %s -NetAdapterName %s -AllowManagementOS %s | Out-Null",
			Quote(spec.Name), Quote(spec.AdapterName), boolLiteral(spec.AllowManagementOS))
	} else {
		cmd = fmt.Sprintf("New-VMSwitch -Name %s -SwitchType %s | Out-Null", Quote(spec.Name), spec.SwitchType)
	}
	if err := c.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to create vmswitch %s: %w", spec.Name, err)
	}
	return nil
}

func (c *Client) SetVMSwitch(ctx context.Context, name string, settings VMSwitchSettings) error {
	cmd := "Set-VMSwitch -Name " + Quote(name)
	switch {
	case settings.AdapterName != "":
		cmd += " -NetAdapterName " + Quote(settings.AdapterName)
	case settings.SwitchType != "":
		cmd += " -SwitchType " + settings.SwitchType
	}
	if settings.AllowManagementOS != nil {
		cmd += " -AllowManagementOS " + boolLiteral(*settings.AllowManagementOS)
	}
	if err := c.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to update vmswitch %s: %w", name, err)
	}
	return nil
}

func (c *Client) RemoveVMSwitch(ctx context.Context, name string) error {
	if err := c.run(ctx, "Remove-VMSwitch -Name "+Quote(name)+" -Force"); err != nil {
		return fmt.Errorf("failed to remove vmswitch %s: %w", name, err)
	}
	return nil
}
