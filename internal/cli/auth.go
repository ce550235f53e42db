package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"trustdesk-cli/internal/model"
	"trustdesk-cli/internal/store"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the token on the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(password) == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, errUsage("missing --password and none on stdin"))
				}
				password = p
			}
			c, err := app.Client()
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := c.Login(cmd.Context(), model.LoginInput{Email: email, Password: password})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveSession(app.settings.Profile, app.settings.APIURL, sess.Token, sess.User.Email); err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Info("logged in", "user_id", sess.User.ID)

			data := map[string]any{"profile": app.settings.Profile, "user": sess.User}
			if exp, ok := c.Session().ExpiresAt(); ok {
				data["expiresAt"] = exp
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (default: first line of stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return line, nil
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(app.settings.APIURL) != "" && app.settings.Token != "" {
				c, err := app.Client()
				if err != nil {
					return writeErr(cmd, err)
				}
				// The local token is dropped even when the server call fails.
				if err := c.Logout(cmd.Context()); err != nil {
					app.logger().Warn("server logout failed", "error", err)
				}
			}
			if err := store.ClearSession(app.settings.Profile); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"profile": app.settings.Profile, "loggedOut": true}})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if !c.Session().LoggedIn() {
				return writeErr(cmd, errUsage("not logged in: run `trustdesk login`"))
			}
			u, err := c.Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": u, "meta": map[string]any{"profile": app.settings.Profile, "apiUrl": c.BaseURL()}})
		},
	}
	return cmd
}
