package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/notes"
)

var (
	noteTitle      string
	noteBody       string
	noteNotebookID string
	noteTags       []string
	notesJSON      bool
	exportDir      string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Work with the note collection",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes in canonical order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		printNotes(app.Notes.All())
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		note, err := app.Notes.Create(context.Background(), notes.Draft{
			Title:      args[0],
			Body:       noteBody,
			NotebookID: noteNotebookID,
			Tags:       noteTags,
		})
		if err != nil {
			fatal("Error creating note", err)
		}
		fmt.Printf("Created %s (%s)\n", note.Title, note.ID)
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a note's fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		var patch core.NotePatch
		if cmd.Flags().Changed("title") {
			patch.Title = &noteTitle
		}
		if cmd.Flags().Changed("body") {
			patch.Body = &noteBody
		}
		if cmd.Flags().Changed("notebook") {
			patch.NotebookID = &noteNotebookID
		}
		if cmd.Flags().Changed("tag") {
			patch.Tags = &noteTags
		}

		note, err := app.Notes.Update(context.Background(), args[0], patch)
		if err != nil {
			fatal("Error updating note", err)
		}
		fmt.Printf("Updated %s (%s)\n", note.Title, note.ID)
	},
}

var notesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note (no error if it is already gone)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Notes.Delete(context.Background(), args[0]); err != nil {
			fatal("Error deleting note", err)
		}
		fmt.Println("Deleted")
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search titles and bodies; empty query lists everything, newest first",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		printNotes(app.Notes.Search(query))
	},
}

var notesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every note as Markdown with YAML frontmatter",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		count, err := app.Notes.Export(exportDir, app.Notebooks)
		if err != nil {
			fatal("Error exporting notes", err)
		}
		fmt.Printf("Exported %d notes to %s\n", count, exportDir)
	},
}

func printNotes(list []core.Note) {
	if notesJSON {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			fatal("Error encoding notes", err)
		}
		fmt.Println(string(data))
		return
	}

	if len(list) == 0 {
		fmt.Println("No notes")
		return
	}
	for _, n := range list {
		line := fmt.Sprintf("%s  %s", n.ID, n.Title)
		if n.NotebookID != "" {
			line += fmt.Sprintf("  [notebook: %s]", n.NotebookID)
		}
		if len(n.Tags) > 0 {
			line += "  #" + strings.Join(n.Tags, " #")
		}
		fmt.Println(line)
	}
}

func init() {
	notesAddCmd.Flags().StringVarP(&noteBody, "body", "b", "", "Note body")
	notesAddCmd.Flags().StringVar(&noteNotebookID, "notebook", "", "Notebook id")
	notesAddCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Tags (repeatable)")

	notesEditCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "New title")
	notesEditCmd.Flags().StringVarP(&noteBody, "body", "b", "", "New body")
	notesEditCmd.Flags().StringVar(&noteNotebookID, "notebook", "", "New notebook id (empty detaches)")
	notesEditCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Replacement tags")

	notesExportCmd.Flags().StringVar(&exportDir, "out", "export", "Output directory")

	notesCmd.PersistentFlags().BoolVar(&notesJSON, "json", false, "Output as JSON")
	notesCmd.AddCommand(notesListCmd, notesAddCmd, notesEditCmd, notesRmCmd, notesSearchCmd, notesExportCmd)
	rootCmd.AddCommand(notesCmd)
}
