package cli

import (
	"context"
	"sync"
	"time"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/listing"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type entityTotal struct {
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

func countOf[T listing.Record](c *api.Client, d entities.Descriptor[T]) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		page, hasInfo, err := d.Resource(c).List(ctx, 1)
		if err != nil {
			return 0, err
		}
		if !hasInfo {
			return len(page.Items), nil
		}
		return page.Info.Total, nil
	}
}

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and record totals for every entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client()
			if err != nil {
				return writeErr(cmd, err)
			}
			counters := map[string]func(context.Context) (int, error){
				"users":         countOf(c, entities.Users()),
				"projects":      countOf(c, entities.Projects()),
				"complaints":    countOf(c, entities.Complaints()),
				"inspections":   countOf(c, entities.Inspections()),
				"trustmarks":    countOf(c, entities.Trustmarks()),
				"notifications": countOf(c, entities.Notifications()),
				"activity":      countOf(c, entities.Activity()),
			}

			var (
				mu     sync.Mutex
				totals = map[string]entityTotal{}
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(4)
			for name, count := range counters {
				name, count := name, count
				g.Go(func() error {
					n, err := count(ctx)
					// An expired session fails every call; stop early.
					if api.IsAuth(err) {
						return err
					}
					t := entityTotal{Total: n}
					if err != nil {
						t.Error = api.Message(err)
					}
					mu.Lock()
					totals[name] = t
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}

			data := map[string]any{
				"profile":  app.settings.Profile,
				"apiUrl":   c.BaseURL(),
				"loggedIn": c.Session().LoggedIn(),
				"totals":   totals,
			}
			if exp, ok := c.Session().ExpiresAt(); ok {
				data["tokenExpiresAt"] = exp.UTC().Format(time.RFC3339)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	return cmd
}
