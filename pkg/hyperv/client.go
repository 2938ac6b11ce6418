package hyperv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/larivierec/infra-modules/pkg/logging"
)

// Client issues Hyper-V cmdlets through an Executor.
type Client struct {
	exec   Executor
	logger logging.Logger
}

func NewClient(exec Executor, logger logging.Logger) *Client {
	return &Client{exec: exec, logger: logging.OrDiscard(logger)}
}

// query runs a lookup script and decodes its output into out. It reports
// false when the script printed nothing.
func (c *Client) query(ctx context.Context, s string, out any) (bool, error) {
	c.logger.Debug("running lookup", "script", s)
	data, err := c.exec.Run(ctx, s)
	if err != nil {
		return false, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("error decoding powershell output: %w", err)
	}
	return true, nil
}

func (c *Client) run(ctx context.Context, s string) error {
	c.logger.Debug("running command", "script", s)
	_, err := c.exec.Run(ctx, s)
	return err
}
