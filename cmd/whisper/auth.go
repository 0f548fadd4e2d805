package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper/pkg/core"
)

var (
	loginPassword  string
	signupName     string
	signupPassword string
	signupConfirm  string
	profileName    string
	profileEmail   string
	profileAvatar  string
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in (falls back to a local session if the backend is down)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]
		if err := core.ValidateCredentials(email, loginPassword); err != nil {
			fmt.Printf("Invalid input: %v\n", err)
			os.Exit(1)
		}

		app := openApp()
		defer app.Close()

		user, err := app.Identity.SignIn(context.Background(), email, loginPassword)
		if err != nil {
			fatal("Error signing in", err)
		}

		snap := app.Identity.Snapshot()
		fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
		if snap.Provenance == core.ProvenanceLocal {
			fmt.Println("(backend unreachable; this is a local session)")
		}
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]
		if err := core.ValidateSignup(signupName, email, signupPassword, signupConfirm); err != nil {
			fmt.Printf("Invalid input: %v\n", err)
			os.Exit(1)
		}

		app := openApp()
		defer app.Close()

		user, err := app.Identity.SignUp(context.Background(), signupName, email, signupPassword)
		if err != nil {
			fatal("Error signing up", err)
		}
		fmt.Printf("Welcome, %s <%s>\n", user.Name, user.Email)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the persisted session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		app.Identity.SignOut(context.Background())
		fmt.Println("Signed out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		snap := app.Identity.Snapshot()
		if !snap.IsAuthenticated() {
			fmt.Println("Not signed in")
			return
		}
		fmt.Printf("%s <%s> (id: %s)\n", snap.User.Name, snap.User.Email, snap.User.ID)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the signed-in user's profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if !app.Identity.IsAuthenticated() {
			fmt.Println("Not signed in")
			os.Exit(1)
		}

		var update core.ProfileUpdate
		if cmd.Flags().Changed("name") {
			update.Name = &profileName
		}
		if cmd.Flags().Changed("email") {
			update.Email = &profileEmail
		}
		if cmd.Flags().Changed("avatar") {
			update.Avatar = &profileAvatar
		}

		user, err := app.Identity.UpdateProfile(context.Background(), update)
		if err != nil {
			fatal("Error updating profile", err)
		}
		fmt.Printf("Profile updated: %s <%s>\n", user.Name, user.Email)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVarP(&signupName, "name", "n", "", "Display name")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "Password")
	signupCmd.Flags().StringVar(&signupConfirm, "confirm", "", "Password confirmation")
	_ = signupCmd.MarkFlagRequired("name")
	_ = signupCmd.MarkFlagRequired("password")
	_ = signupCmd.MarkFlagRequired("confirm")

	profileCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "New email")
	profileCmd.Flags().StringVar(&profileAvatar, "avatar", "", "New avatar reference")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd, profileCmd)
}
