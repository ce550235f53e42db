package tui

import (
	"context"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/listing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// loadedMsg carries a fetched page back to the UI loop. commit applies it
// to the controller and reports whether it was current.
type loadedMsg struct {
	entity string
	commit func() (bool, error)
}

// mutatedMsg carries a create/update/delete result. apply folds a success
// into the screen and always clears the submitting flag. It reports false
// when the screen was detached while the request ran.
type mutatedMsg struct {
	entity string
	action listing.Action
	err    error
	apply  func() bool
}

// screen is the type-independent face of one entity list.
type screen interface {
	info() entities.Info
	fields() []entities.Field

	load(page int) tea.Cmd
	reload() tea.Cmd
	changePage(target int) tea.Cmd
	detach()
	abandon()

	pageInfo() listing.PageInfo
	loading() bool
	submitting() bool
	errText() string
	rowCount() int

	setSize(width, height int)
	updateTable(msg tea.Msg) tea.Cmd
	tableView() string

	selectedID() (int64, bool)
	detail(id int64) (string, bool)
	values(id int64) (map[string]string, bool)

	// submit builds the input synchronously so form errors show at once;
	// the request itself runs in the returned command.
	submit(create bool, id int64, values map[string]string) (tea.Cmd, error)
	remove(id int64) tea.Cmd
}

type entityScreen[T listing.Record] struct {
	ctx   context.Context
	desc  entities.Descriptor[T]
	res   *api.Resource[T]
	ctl   *listing.Controller[T]
	table table.Model
}

func newEntityScreen[T listing.Record](ctx context.Context, d entities.Descriptor[T], c *api.Client, obs listing.Observer) *entityScreen[T] {
	res := d.Resource(c)
	opts := []listing.Option[T]{listing.WithErrorMessager[T](api.Message)}
	if obs != nil {
		opts = append(opts, listing.WithObserver[T](obs))
	}

	cols := make([]table.Column, len(d.Columns))
	for i, col := range d.Columns {
		cols[i] = table.Column{Title: col.Title, Width: col.Width}
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithKeyMap(tableKeyMap()),
		table.WithStyles(tableStyles()),
	)

	return &entityScreen[T]{
		ctx:   ctx,
		desc:  d,
		res:   res,
		ctl:   listing.NewController[T](d.Name, res, opts...),
		table: t,
	}
}

// tableKeyMap leaves letters free for screen commands; the default table
// bindings claim g, G, d and u.
func tableKeyMap() table.KeyMap {
	return table.KeyMap{
		LineUp:       key.NewBinding(key.WithKeys("up", "k")),
		LineDown:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		GotoTop:      key.NewBinding(key.WithKeys("home")),
		GotoBottom:   key.NewBinding(key.WithKeys("end")),
	}
}

func (s *entityScreen[T]) info() entities.Info      { return s.desc.Info() }
func (s *entityScreen[T]) fields() []entities.Field { return s.desc.Fields }

func (s *entityScreen[T]) load(page int) tea.Cmd {
	return s.fetch(s.ctl.BeginLoad(page))
}

func (s *entityScreen[T]) reload() tea.Cmd {
	return s.load(s.ctl.Store().Info().CurrentPage)
}

func (s *entityScreen[T]) changePage(target int) tea.Cmd {
	t, ok := s.ctl.BeginChangePage(target)
	if !ok {
		return nil
	}
	return s.fetch(t)
}

func (s *entityScreen[T]) fetch(t listing.Ticket) tea.Cmd {
	ctx, ctl, name := s.ctx, s.ctl, s.desc.Name
	return func() tea.Msg {
		r := ctl.Fetch(ctx, t)
		return loadedMsg{entity: name, commit: func() (bool, error) {
			if !ctl.Commit(r) {
				return false, nil
			}
			s.syncRows()
			return true, r.Err
		}}
	}
}

func (s *entityScreen[T]) detach() {
	s.ctl.Detach()
	s.syncRows()
}

func (s *entityScreen[T]) abandon() { s.ctl.Abandon() }

func (s *entityScreen[T]) pageInfo() listing.PageInfo { return s.ctl.Store().Info() }
func (s *entityScreen[T]) loading() bool              { return s.ctl.Store().Loading() }
func (s *entityScreen[T]) submitting() bool           { return s.ctl.Store().Submitting() }
func (s *entityScreen[T]) errText() string            { return s.ctl.Store().Err() }
func (s *entityScreen[T]) rowCount() int              { return len(s.table.Rows()) }

func (s *entityScreen[T]) syncRows() {
	items := s.ctl.Store().Items()
	rows := make([]table.Row, len(items))
	for i, rec := range items {
		rows[i] = table.Row(s.desc.Row(rec))
	}
	s.table.SetRows(rows)
	if c := s.table.Cursor(); c >= len(rows) {
		s.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (s *entityScreen[T]) setSize(width, height int) {
	s.table.SetWidth(width)
	s.table.SetHeight(max(height, 3))
}

func (s *entityScreen[T]) updateTable(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

func (s *entityScreen[T]) tableView() string { return s.table.View() }

func (s *entityScreen[T]) selectedID() (int64, bool) {
	items := s.ctl.Store().Items()
	i := s.table.Cursor()
	if i < 0 || i >= len(items) {
		return 0, false
	}
	return items[i].RecordID(), true
}

func (s *entityScreen[T]) detail(id int64) (string, bool) {
	rec, ok := s.ctl.Store().Find(id)
	if !ok {
		return "", false
	}
	return s.desc.Detail(rec), true
}

func (s *entityScreen[T]) values(id int64) (map[string]string, bool) {
	rec, ok := s.ctl.Store().Find(id)
	if !ok || s.desc.Values == nil {
		return nil, false
	}
	return s.desc.Values(rec), true
}

func (s *entityScreen[T]) submit(create bool, id int64, values map[string]string) (tea.Cmd, error) {
	if s.desc.ReadOnly() {
		return nil, api.ErrUnsupported
	}
	input, err := s.desc.Build(values)
	if err != nil {
		return nil, err
	}

	ctx, res, ctl, name := s.ctx, s.res, s.ctl, s.desc.Name
	ctl.Store().SetSubmitting(true)
	if create {
		return func() tea.Msg {
			rec, err := res.Create(ctx, input)
			return mutatedMsg{entity: name, action: listing.ActionCreate, err: err, apply: func() bool {
				ctl.Store().SetSubmitting(false)
				if err == nil {
					ctl.Created(rec)
				}
				if ctl.Detached() {
					return false
				}
				if err == nil {
					s.syncRows()
					s.table.SetCursor(0)
				}
				return true
			}}
		}, nil
	}
	return func() tea.Msg {
		rec, err := res.Update(ctx, id, input)
		return mutatedMsg{entity: name, action: listing.ActionUpdate, err: err, apply: func() bool {
			ctl.Store().SetSubmitting(false)
			if err == nil {
				ctl.Updated(rec)
			}
			if ctl.Detached() {
				return false
			}
			if err == nil {
				s.syncRows()
			}
			return true
		}}
	}, nil
}

func (s *entityScreen[T]) remove(id int64) tea.Cmd {
	ctx, res, ctl, name := s.ctx, s.res, s.ctl, s.desc.Name
	ctl.Store().SetSubmitting(true)
	return func() tea.Msg {
		err := res.Delete(ctx, id)
		return mutatedMsg{entity: name, action: listing.ActionDelete, err: err, apply: func() bool {
			ctl.Store().SetSubmitting(false)
			if err == nil {
				ctl.Deleted(id)
			}
			if ctl.Detached() {
				return false
			}
			if err == nil {
				s.syncRows()
			}
			return true
		}}
	}
}
