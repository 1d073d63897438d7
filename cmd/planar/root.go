package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planardb/planar/plan"
)

// RootOptions holds global flags shared by every subcommand.
type RootOptions struct {
	JSON bool // plan files are JSON envelopes instead of the binary container
}

// NewRootCommand assembles the planar command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "planar",
		Short: "Inspect and transform serialized query plans",
		Long: `Planar reads serialized logical plans and renders, templates, or binds
them. Plan files use the binary container by default; pass --json for
plans stored as JSON envelopes.`,
	}

	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "read and write plans as JSON envelopes")

	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewDotCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))
	cmd.AddCommand(NewBindCommand(opts))

	return cmd
}

// readPlan loads the plan stored at path, honoring the global format flag.
func readPlan(opts *RootOptions, path string) (plan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return plan.Plan{}, err
	}
	defer f.Close()

	if opts.JSON {
		return plan.ReadJSON(f)
	}
	return plan.ReadBinary(f)
}

// writePlan stores p at path, honoring the global format flag.
func writePlan(opts *RootOptions, p plan.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if opts.JSON {
		err = p.WriteJSON(f)
	} else {
		err = p.WriteBinary(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
