package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper"
)

var cascade bool

var notebooksCmd = &cobra.Command{
	Use:   "notebooks",
	Short: "Work with notebooks",
}

var notebooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		all := app.Notebooks.All()
		if len(all) == 0 {
			fmt.Println("No notebooks")
			return
		}
		for _, nb := range all {
			count := len(app.Notes.ListByNotebook(nb.ID))
			fmt.Printf("%s  %s  (%d notes)\n", nb.ID, nb.Name, count)
		}
	},
}

var notebooksAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a notebook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		nb, err := app.Notebooks.Create(context.Background(), args[0])
		if err != nil {
			fatal("Error creating notebook", err)
		}
		fmt.Printf("Created %s (%s)\n", nb.Name, nb.ID)
	},
}

var notebooksRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a notebook",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		nb, err := app.Notebooks.Rename(context.Background(), args[0], args[1])
		if err != nil {
			fatal("Error renaming notebook", err)
		}
		fmt.Printf("Renamed to %s\n", nb.Name)
	},
}

var notebooksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a notebook; its notes are detached unless --cascade is set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		policy := whisper.CascadeDetach
		if cascade {
			policy = whisper.CascadeDelete
		}
		if err := app.Notebooks.Delete(context.Background(), args[0], policy); err != nil {
			fatal("Error deleting notebook", err)
		}
		fmt.Println("Deleted")
	},
}

func init() {
	notebooksRmCmd.Flags().BoolVar(&cascade, "cascade", false, "Also delete the notes in the notebook")

	notebooksCmd.AddCommand(notebooksListCmd, notebooksAddCmd, notebooksRenameCmd, notebooksRmCmd)
	rootCmd.AddCommand(notebooksCmd)
}
