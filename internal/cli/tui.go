package cli

import (
	"trustdesk-cli/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	c, err := app.Client()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger().Info("console started", "api_url", c.BaseURL())
	return tui.Run(cmd.Context(), tui.Options{
		Client:  c,
		Profile: app.settings.Profile,
		APIURL:  app.settings.APIURL,
		Email:   app.settings.Email,
		Journal: app.Journal(cmd.Context()),
		Logger:  app.logger(),
		Theme:   app.cfg.Theme(),
	})
}
