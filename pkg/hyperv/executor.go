// Package hyperv manages Hyper-V objects by running PowerShell on the host the
// module executes on. Lookups print one compressed JSON object, or nothing
// when the object does not exist.
package hyperv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	DefaultPowerShell = "powershell.exe"
	// PowerShellEnv overrides the interpreter, e.g. "pwsh".
	PowerShellEnv = "INFRA_POWERSHELL"
)

// Executor runs one PowerShell script and returns its standard output.
type Executor interface {
	Run(ctx context.Context, script string) ([]byte, error)
}

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// PowerShell runs scripts through a local PowerShell interpreter.
type PowerShell struct {
	Path string
}

// NewPowerShell returns an executor for the interpreter named by
// INFRA_POWERSHELL, falling back to powershell.exe.
func NewPowerShell() *PowerShell {
	path := os.Getenv(PowerShellEnv)
	if path == "" {
		path = DefaultPowerShell
	}
	return &PowerShell{Path: path}
}

func (p *PowerShell) Run(ctx context.Context, script string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, p.Path, "-NoProfile", "-NonInteractive", "-Command", "$ErrorActionPreference = 'Stop'; "+script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("powershell failed: %w\nOutput: %s", err, msg)
	}
	return stdout.Bytes(), nil
}
