package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the internal state of every store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		components := []any{app.Identity, app.Themes, app.Notebooks, app.Notes, app.Storage}
		for _, c := range components {
			intro, ok := c.(introspection.Introspectable)
			if !ok {
				continue
			}
			name := "component"
			if comp, ok := c.(introspection.Component); ok {
				name = comp.ComponentType()
			}

			data, err := json.MarshalIndent(intro.State(), "  ", "  ")
			if err != nil {
				fatal("Error encoding state", err)
			}
			fmt.Printf("%s:\n  %s\n", name, string(data))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
