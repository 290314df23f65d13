package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/auth"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
	"github.com/tessro/mewzy/internal/wizard"
)

var authToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage server authentication",
	Long: `Commands for managing the access token used with the music server.

Without a token mewzy runs as a guest: the feed and streaming work, likes,
history and resume positions need a login.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token",
	Long: `Store an access token issued by the music server.

The token is read from --token, or prompted for when running in a terminal.`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVarP(&authToken, "token", "t", "", "access token (prompted for when omitted)")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	raw := authToken
	if raw == "" {
		var err error
		raw, err = wizard.NewInteractive().PromptToken(cfg.API.BaseURL)
		if err != nil {
			return err
		}
	}
	if raw == "" {
		return mewzyerrors.WithSuggestion(mewzyerrors.ErrNotAuthenticated,
			"Pass the token with 'mewzy auth login --token <token>'")
	}

	token, err := auth.NewToken(raw)
	if err != nil {
		return err
	}
	if token.IsExpired() {
		return fmt.Errorf("token expired %s", humanize.Time(token.ExpiresAt))
	}

	r, err := openRemote(nil)
	if err != nil {
		return err
	}
	if err := r.auth.Login(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	// A likes request confirms the server accepts the token.
	if _, err := r.api.Likes(cmd.Context()); err != nil {
		if !r.auth.LoggedIn() {
			return mewzyerrors.WithSuggestion(mewzyerrors.ErrUnauthorized,
				"The server rejected this token. Check that it was issued by "+cfg.API.BaseURL)
		}
		fmt.Printf("Token stored, but the server could not be reached: %v\n", err)
		return nil
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"status":     "authenticated",
			"subject":    token.Subject,
			"expires_at": token.ExpiresAt,
		})
	}

	if token.Subject != "" {
		fmt.Printf("Logged in as %s.\n", token.Subject)
	} else {
		fmt.Println("Logged in.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	r, err := openRemote(nil)
	if err != nil {
		return err
	}

	if !r.tokens.Exists() {
		if JSONOutput() {
			return printJSON(map[string]string{"status": "not_authenticated"})
		}
		fmt.Println("Not logged in.")
		return nil
	}

	if err := r.auth.Logout(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "logged_out"})
	}
	fmt.Println("Logged out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	r, err := openRemote(nil)
	if err != nil {
		return err
	}

	token := r.auth.Token()
	if token == nil {
		if JSONOutput() {
			return printJSON(map[string]any{"authenticated": false})
		}
		fmt.Println("Not logged in. Playing as a guest.")
		fmt.Println("Run 'mewzy auth login' to store an access token.")
		return nil
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"authenticated": true,
			"server":        r.tokens.Server(),
			"subject":       token.Subject,
			"expired":       token.IsExpired(),
			"expires_at":    token.ExpiresAt,
			"saved_at":      token.SavedAt,
		})
	}

	switch {
	case token.IsExpired():
		fmt.Printf("Token expired %s.\n", humanize.Time(token.ExpiresAt))
		fmt.Println("Run 'mewzy auth login' to log in again.")
	case token.ExpiresAt.IsZero():
		fmt.Println("Logged in (token has no expiry).")
	default:
		fmt.Printf("Logged in, token expires %s.\n", humanize.Time(token.ExpiresAt))
	}
	if token.Subject != "" {
		fmt.Printf("  user:  %s\n", token.Subject)
	}
	if Verbose() {
		fmt.Printf("  saved: %s\n", token.SavedAt.Format(time.RFC3339))
		fmt.Printf("  file:  %s\n", r.tokens.Path())
		if servers, err := r.tokens.Servers(); err == nil && len(servers) > 1 {
			fmt.Printf("  other servers with tokens: %d\n", len(servers)-1)
		}
	}
	return nil
}
