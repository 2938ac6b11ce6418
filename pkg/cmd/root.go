package infra

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/spf13/cobra"
)

// exitError carries a non-zero exit code out of a command whose failure has
// already been reported on stdout.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "infra",
		Short: "Ansible binary modules for Hyper-V, phpIPAM and PowerDNS Admin",
		Long: `infra runs one Ansible module per invocation. Install it under a module's
name (e.g. powerdns_admin_zone) to use it as a binary module, or call
"infra run <module> <args-file>" directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newRunCommand(stdout, stderr), newListCommand(stdout), newDocCommand(stdout))
	return root
}

func newRunCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "run <module> <args-file>",
		Short: "Run a module against a JSON or YAML args file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := module.Lookup(args[0])
			if m == nil {
				code := writeFailure(stdout, fmt.Errorf("%s: unknown module %q", module.ErrorUser, args[0]))
				return &exitError{code: code}
			}
			if code := runModule(cmd.Context(), m, args[1], opts, stdout, stderr); code != ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}

func newListCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Module", "Binary name", "Description"})
			for _, name := range module.List() {
				m := module.Get(name)
				t.AppendRow(table.Row{name, module.MultiCallName(name), m.Description()})
			}
			t.Render()
			return nil
		},
	}
}

func newDocCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "doc <module>",
		Short: "Show the parameters of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := module.Lookup(args[0])
			if m == nil {
				return fmt.Errorf("unknown module %q", args[0])
			}
			fmt.Fprintf(stdout, "%s: %s\n", m.Name(), m.Description())

			t := table.NewWriter()
			t.SetOutputMirror(stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Parameter", "Aliases", "Type", "Required", "Default", "Choices", "Description"})
			for _, opt := range m.Spec() {
				aliases := append([]string(nil), opt.Aliases...)
				sort.Strings(aliases)
				def := ""
				if opt.Default != nil {
					def = fmt.Sprint(opt.Default)
				}
				t.AppendRow(table.Row{
					opt.Name,
					strings.Join(aliases, ", "),
					opt.Type.String(),
					opt.Required,
					def,
					strings.Join(opt.Choices, ", "),
					opt.Description,
				})
			}
			t.Render()
			return nil
		},
	}
}
