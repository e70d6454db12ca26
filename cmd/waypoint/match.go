package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <path>",
		Short: "Show which route a path resolves to",
		Long: `Match a path against the route table and print the layout chain,
the leaf route and the extracted parameters.

Examples:
  waypoint match /blog/hello-world
  waypoint match /lessons/12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := inspectTable()
			if err != nil {
				return err
			}

			m, ok := table.Match(args[0])
			if !ok {
				return fmt.Errorf("no route matches %s", args[0])
			}

			w := cmd.OutOrStdout()
			layouts := make([]string, 0, len(m.Layouts))
			for _, l := range m.Layouts {
				layouts = append(layouts, l.Name)
			}
			success(cmd, "%s", m.Path)
			fmt.Fprintf(w, "  route    %s (%s)\n", m.Route.Name, m.Pattern)
			fmt.Fprintf(w, "  kind     %s\n", m.Route.Kind)
			fmt.Fprintf(w, "  layouts  %s\n", strings.Join(layouts, " > "))
			if m.Route.Loader != nil {
				fmt.Fprintf(w, "  loader   yes\n")
			}
			if len(m.Params) > 0 {
				names := make([]string, 0, len(m.Params))
				for name := range m.Params {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "  param    %s=%s\n", name, m.Params[name])
				}
			}
			return nil
		},
	}
}
