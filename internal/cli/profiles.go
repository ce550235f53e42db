package cli

import (
	"strings"

	"trustdesk-cli/internal/store"

	"github.com/spf13/cobra"
)

func newProfilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage saved servers and sessions",
	}
	cmd.AddCommand(newProfilesListCmd(app))
	cmd.AddCommand(newProfilesUseCmd(app))
	cmd.AddCommand(newProfilesSetCmd(app))
	return cmd
}

type profileView struct {
	Name     string `json:"name"`
	APIURL   string `json:"apiUrl,omitempty"`
	Email    string `json:"email,omitempty"`
	PerPage  int    `json:"perPage,omitempty"`
	LoggedIn bool   `json:"loggedIn"`
	Current  bool   `json:"current"`
}

func newProfilesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles (tokens are never printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := []profileView{}
			for _, name := range app.cfg.ProfileNames() {
				p, _ := app.cfg.Profile(name)
				out = append(out, profileView{
					Name:     name,
					APIURL:   p.APIURL,
					Email:    p.Email,
					PerPage:  p.PerPage,
					LoggedIn: p.Token != "",
					Current:  name == app.settings.Profile,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out, "meta": map[string]any{"current": app.settings.Profile}})
		},
	}
	return cmd
}

func newProfilesUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeProfileName(args[0])
			if err != nil {
				return writeErr(cmd, errUsage("%s", err.Error()))
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := cfg.Profile(name); !ok {
				return writeErr(cmd, errUsage("unknown profile %q (create it with `trustdesk profiles set %s --url ...`)", name, name))
			}
			cfg.CurrentProfile = name
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"current": name}})
		},
	}
	return cmd
}

func newProfilesSetCmd(app *App) *cobra.Command {
	var (
		apiURL  string
		perPage int
		use     bool
	)

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeProfileName(args[0])
			if err != nil {
				return writeErr(cmd, errUsage("%s", err.Error()))
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, _ := cfg.Profile(name)
			if cmd.Flags().Changed("url") {
				p.APIURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
			}
			if cmd.Flags().Changed("per-page") {
				if perPage < 0 {
					return writeErr(cmd, errUsage("--per-page must not be negative"))
				}
				p.PerPage = perPage
			}
			cfg.SetProfile(name, p)
			if use || cfg.CurrentProfile == "" {
				cfg.CurrentProfile = name
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": profileView{
				Name:     name,
				APIURL:   p.APIURL,
				Email:    p.Email,
				PerPage:  p.PerPage,
				LoggedIn: p.Token != "",
				Current:  cfg.CurrentProfile == name,
			}})
		},
	}

	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Default page size (0 = server default)")
	cmd.Flags().BoolVar(&use, "use", false, "Also make this the current profile")
	return cmd
}
