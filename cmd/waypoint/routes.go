package main

import (
	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the merged route table, declared and discovered routes
together, as an indented tree. Fails with the first conflict if the
table is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := inspectTable()
			if err != nil {
				return err
			}
			return table.Describe(cmd.OutOrStdout())
		},
	}
}
