package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect and change the visual theme",
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in theme catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		current := app.Themes.Current()
		for _, t := range app.Themes.Themes() {
			marker := " "
			if t.ID == current.ID {
				marker = "*"
			}
			fmt.Printf("%s %-15s %s: %s\n", marker, t.ID, t.Name, t.Description)
		}
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Select the active theme",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		var picked *whisper.Theme
		for _, t := range app.Themes.Themes() {
			if t.ID == args[0] {
				t := t
				picked = &t
				break
			}
		}
		if picked == nil {
			fmt.Printf("Unknown theme: %s\n", args[0])
			os.Exit(1)
		}

		if err := app.Themes.Select(context.Background(), *picked); err != nil {
			fatal("Error selecting theme", err)
		}
		fmt.Printf("Active theme: %s\n", picked.Name)
	},
}

var themeDarkCmd = &cobra.Command{
	Use:   "dark <on|off>",
	Short: "Toggle dark mode on the active theme",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var dark bool
		switch args[0] {
		case "on":
			dark = true
		case "off":
			dark = false
		default:
			fmt.Println("Argument must be 'on' or 'off'")
			os.Exit(1)
		}

		app := openApp()
		defer app.Close()

		if err := app.Themes.SetDarkMode(context.Background(), dark); err != nil {
			fatal("Error toggling dark mode", err)
		}
		fmt.Printf("Dark mode: %s\n", args[0])
	},
}

func init() {
	themeCmd.AddCommand(themeListCmd, themeSetCmd, themeDarkCmd)
	rootCmd.AddCommand(themeCmd)
}
