// Package infra is the command line of the infra binary. It runs one module
// per process, either through the run subcommand or as a multi-call binary
// installed under a module's name.
package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = 0
	ExitFailure = 1

	// MetricsTextfileEnv names a node_exporter textfile to write counters to.
	MetricsTextfileEnv = "INFRA_METRICS_TEXTFILE"
)

type options struct {
	debug           bool
	metricsTextfile string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.debug, "debug", false, "log debug lines to stderr")
	fs.StringVar(&o.metricsTextfile, "metrics-textfile", os.Getenv(MetricsTextfileEnv), "write prometheus counters to this file on exit")
}

// Execute runs the command line in args, args[0] being the program name, and
// returns the process exit code.
func Execute(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if m := module.Lookup(filepath.Base(args[0])); m != nil {
		return multiCall(ctx, m, args[1:], stdout, stderr)
	}

	root := newRootCommand(stdout, stderr)
	if len(args) == 2 && isArgsFile(root, args[1]) {
		return writeFailure(stdout, fmt.Errorf("%s: no module named %q", module.ErrorUser, filepath.Base(args[0])))
	}
	root.SetArgs(args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(stderr, "Error:", err)
		return ExitFailure
	}
	return ExitSuccess
}

// multiCall handles "<module-binary> [flags] <args-file>", the form Ansible
// invokes binary modules with.
func multiCall(ctx context.Context, m module.Module, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := pflag.NewFlagSet(module.MultiCallName(m.Name()), pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.addFlags(fs)
	if err := fs.Parse(args); err != nil {
		return writeFailure(stdout, fmt.Errorf("%s: %w", module.ErrorUser, err))
	}
	if fs.NArg() != 1 {
		return writeFailure(stdout, fmt.Errorf("%s: expected exactly one args file, got %d arguments", module.ErrorUser, fs.NArg()))
	}
	return runModule(ctx, m, fs.Arg(0), opts, stdout, stderr)
}

// isArgsFile reports whether arg looks like the args file Ansible passes to a
// module binary rather than a subcommand.
func isArgsFile(root *cobra.Command, arg string) bool {
	for _, c := range root.Commands() {
		if c.Name() == arg || c.HasAlias(arg) {
			return false
		}
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}
