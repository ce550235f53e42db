package cli

import (
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/journal"

	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	var (
		entity string
		id     int64
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show changes made from this machine, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := journal.Query{RecordID: id, Limit: limit}
			if entity != "" {
				e, ok := entities.Lookup(entity)
				if !ok {
					return writeErr(cmd, errUsage("unknown entity %q", entity))
				}
				q.Entity = e.Name
			}
			j := app.Journal(cmd.Context())
			if j == nil {
				return writeOut(cmd, app, map[string]any{"data": []journal.Entry{}})
			}
			entries, err := j.List(cmd.Context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": entries})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Only this entity (e.g. users, c3)")
	cmd.Flags().Int64Var(&id, "id", 0, "Only this record id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries (0 = all)")
	return cmd
}
