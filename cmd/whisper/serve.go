package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper/pkg/authapi"
)

var (
	serveAddr  string
	seedEmail  string
	seedName   string
	seedSecret string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the in-memory dev auth backend",
	Long: `Runs the development authentication backend on the given address.
Point the client at it with --api to exercise the server branch of the
sign-in contract; stop it to exercise the local fallback branch.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		server := authapi.NewDevServer()
		if seedEmail != "" {
			u := server.Register(seedName, seedEmail, seedSecret)
			slog.Default().Info("seeded account", "email", u.Email, "id", u.ID)
		}

		fmt.Printf("Dev auth backend listening on %s\n", serveAddr)
		if err := http.ListenAndServe(serveAddr, server.Handler()); err != nil {
			fatal("Server stopped", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8799", "Listen address")
	serveCmd.Flags().StringVar(&seedEmail, "seed-email", "", "Seed an account with this email")
	serveCmd.Flags().StringVar(&seedName, "seed-name", "Demo", "Seeded account display name")
	serveCmd.Flags().StringVar(&seedSecret, "seed-password", "password", "Seeded account password")

	rootCmd.AddCommand(serveCmd)
}
