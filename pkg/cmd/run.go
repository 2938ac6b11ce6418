package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/metrics"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// debugVerbosity is the -vvv level at which Ansible users expect debug output.
const debugVerbosity = 3

// runModule executes m once and writes its JSON result to stdout.
func runModule(ctx context.Context, m module.Module, path string, opts options, stdout, stderr io.Writer) int {
	raw, err := readArgs(path)
	if err != nil {
		metrics.IncrementRun(m.Name(), "failed")
		return writeFailure(stdout, fmt.Errorf("%s: %w", module.ErrorUser, err))
	}

	debug := opts.debug || cast.ToInt(raw["_ansible_verbosity"]) >= debugVerbosity
	logger := logging.New(stderr, m.Name(), debug)
	if values, err := m.Spec().Parse(raw); err == nil {
		logger.Debug("module arguments", "args", m.Spec().Redact(values))
	}

	res, err := m.Run(ctx, module.Env{Logger: logger}, raw)
	outcome := "ok"
	code := ExitSuccess
	if err != nil {
		outcome = "failed"
		category := module.Category(err)
		logger.Error("module failed", "category", category, "err", err)
		code = writeFailure(stdout, fmt.Errorf("%s: %w", category, err))
	} else {
		if res.Changed {
			outcome = "changed"
		}
		if werr := writeJSON(stdout, res.Output()); werr != nil {
			logger.Error("unable to write result", "err", werr)
			code = ExitFailure
		}
	}
	metrics.IncrementRun(m.Name(), outcome)

	if opts.metricsTextfile != "" {
		if err := metrics.WriteTextfile(opts.metricsTextfile); err != nil {
			logger.Warn("unable to write metrics textfile", "path", opts.metricsTextfile, "err", err)
		}
	}
	return code
}

// readArgs decodes an args file. Ansible writes JSON, which is valid YAML, so
// hand written YAML files work too.
func readArgs(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read args file: %w", err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to parse args file %s: %w", path, err)
	}
	return raw, nil
}

func writeFailure(stdout io.Writer, err error) int {
	_ = writeJSON(stdout, module.Failure(err))
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
