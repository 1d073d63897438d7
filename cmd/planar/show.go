package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "describe <plan-file>",
		Short:        "Print a plan one operator per line",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Describe())
			return nil
		},
	}
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "tree <plan-file>",
		Short:        "Print a plan as a box-drawing tree",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.DescribeTree())
			return nil
		},
	}
}

// NewDotCommand creates the dot command.
func NewDotCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dot <plan-file>",
		Short: "Print a plan as a graphviz graph",
		Long: `Dot renders the plan for graphviz. Shared subtrees appear once with one
edge per consumer, so the output shows the plan's true DAG shape.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Dot())
			return nil
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "schema <plan-file>",
		Short:        "Print the schema a plan produces",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.OutputSchema())
			return nil
		},
	}
}
