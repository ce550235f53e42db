package cli

import (
	"fmt"
	"strconv"
	"strings"

	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/markdown"

	"github.com/spf13/cobra"
)

// newEntityCmd builds the list/show/create/update/delete group for one
// entity from its descriptor.
func newEntityCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	aliases := append([]string{d.Singular}, d.Aliases...)
	cmd := &cobra.Command{
		Use:     d.Name,
		Aliases: aliases,
		Short:   d.Title + " commands",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return writeErr(cmd, errUsage("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			return cmd.Help()
		},
	}
	cmd.AddCommand(newEntityListCmd(app, d))
	cmd.AddCommand(newEntityShowCmd(app, d))
	if !d.ReadOnly() {
		cmd.AddCommand(newEntityCreateCmd(app, d))
		cmd.AddCommand(newEntityUpdateCmd(app, d))
	}
	cmd.AddCommand(newEntityDeleteCmd(app, d))
	return cmd
}

func newEntityListCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(d.Title) + " one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return writeErr(cmd, errUsage("--page must be 1 or more"))
			}
			if perPage > 0 {
				app.settings.PerPage = perPage
			}
			ctl, _, err := newController(cmd.Context(), app, d)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctl.Load(cmd.Context(), page); err != nil {
				return writeErr(cmd, err)
			}
			st := ctl.Store().State()
			return writeOut(cmd, app, listEnvelope(st.Page))
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Records per page (default: profile or server setting)")
	return cmd
}

func listEnvelope[T any](p listing.Page[T]) map[string]any {
	out := map[string]any{
		"data": p.Items,
		"meta": p.Info,
	}
	if text, ok := listing.ShowingText(p.Info); ok {
		out["showing"] = text
	}
	pages := []string{}
	for _, tok := range listing.VisiblePages(p.Info) {
		pages = append(pages, tok.String())
	}
	out["pages"] = pages
	return out
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, errUsage("invalid id %q: expected a positive number", raw)
	}
	return id, nil
}

func newEntityShowCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one " + d.Singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.Client()
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := d.Resource(c).Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if render {
				out := markdown.Render(d.Detail(rec), 100, markdown.Style(app.cfg.Theme()))
				_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": rec})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render a readable detail view instead of data")
	return cmd
}

// fieldFlags registers one string flag per form field. Flag names use
// dashes where the wire name has underscores.
func fieldFlags(cmd *cobra.Command, fields []entities.Field) map[string]*string {
	vals := map[string]*string{}
	for _, f := range fields {
		v := new(string)
		vals[f.Key] = v
		usage := f.Label
		if len(f.Options) > 0 {
			usage += " (" + strings.Join(f.Options, "|") + ")"
		}
		if f.Help != "" {
			usage += "; " + f.Help
		}
		if f.Required {
			usage += " [required]"
		}
		cmd.Flags().StringVar(v, flagName(f.Key), "", usage)
	}
	return vals
}

func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

func newEntityCreateCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	var vals map[string]*string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + d.Singular,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]string{}
			for k, v := range vals {
				values[k] = *v
			}
			input, err := d.Build(values)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctl, _, err := newController(cmd.Context(), app, d)
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := ctl.Create(cmd.Context(), input)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rec})
		},
	}

	vals = fieldFlags(cmd, d.Fields)
	return cmd
}

func newEntityUpdateCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	var vals map[string]*string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + d.Singular + " (unset flags keep their current value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := false
			for k := range vals {
				if cmd.Flags().Changed(flagName(k)) {
					changed = true
				}
			}
			if !changed {
				return writeErr(cmd, errUsage("nothing to update: pass at least one field flag"))
			}

			ctl, res, err := newController(cmd.Context(), app, d)
			if err != nil {
				return writeErr(cmd, err)
			}
			current, err := res.Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			values := d.Values(current)
			for k, v := range vals {
				if cmd.Flags().Changed(flagName(k)) {
					values[k] = *v
				}
			}
			input, err := d.Build(values)
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := ctl.Update(cmd.Context(), id, input)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rec})
		},
	}

	vals = fieldFlags(cmd, d.Fields)
	return cmd
}

func newEntityDeleteCmd[T listing.Record](app *App, d entities.Descriptor[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + d.Singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctl, _, err := newController(cmd.Context(), app, d)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctl.Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
	return cmd
}
