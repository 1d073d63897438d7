package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planardb/planar/frame"
)

// NewTemplateCommand creates the template command.
func NewTemplateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "template <plan-file> <out-file>",
		Short: "Strip embedded frames from a plan and save it as a template",
		Long: `Template replaces every embedded frame in the plan with a placeholder
carrying the same schema and writes the result to out-file. Templates
hold no data, so they are safe to store and ship to other hosts.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			if err := writePlan(opts, p.ToTemplate(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote template to %s\n", args[1])
			return nil
		},
	}
}

// NewBindCommand creates the bind command.
func NewBindCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <template-file> <frame-file> [out-file]",
		Short: "Bind a template's placeholders to a JSON frame",
		Long: `Bind loads a template, binds every placeholder to the frame stored as
JSON in frame-file, and writes the bound plan to out-file. Without
out-file the bound plan is described on stdout instead.`,
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			df, err := loadFrame(args[1])
			if err != nil {
				return err
			}
			bound, err := p.BindToFrame(df)
			if err != nil {
				return err
			}
			if len(args) == 3 {
				if err := writePlan(opts, bound, args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote bound plan to %s\n", args[2])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), bound.Describe())
			return nil
		},
	}
}

// loadFrame reads a JSON-encoded frame from path.
func loadFrame(path string) (*frame.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var df frame.DataFrame
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("frame %s: %w", path, err)
	}
	return &df, nil
}
