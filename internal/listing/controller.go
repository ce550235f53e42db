package listing

import (
	"context"
	"time"
)

// Source is the remote side of one entity list.
type Source[T Record] interface {
	List(ctx context.Context, page int) (Page[T], bool, error)
	Create(ctx context.Context, input any) (T, error)
	Update(ctx context.Context, id int64, input any) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Phase is the controller's load state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one page request. Results carrying an older generation
// than the controller's current one are dropped on Commit.
type Ticket struct {
	Gen  uint64
	Page int
}

// Result is the outcome of Fetch, ready to be committed.
type Result[T Record] struct {
	Ticket  Ticket
	Page    Page[T]
	HasInfo bool
	Err     error
}

// Action names a confirmed mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// MutationEvent is reported to the Observer after the server confirmed a
// mutation and it was folded into the store.
type MutationEvent struct {
	Entity   string
	Action   Action
	RecordID int64
	At       time.Time
}

type Observer interface {
	ObserveMutation(ev MutationEvent)
}

// ErrorMessager turns a failure into the text stored in Store.Err.
type ErrorMessager func(err error) string

// Controller drives one Store from one Source.
//
// Everything except Fetch must be called from the goroutine that owns the
// controller (the UI loop or a CLI command).
type Controller[T Record] struct {
	entity   string
	store    *Store[T]
	source   Source[T]
	observer Observer
	message  ErrorMessager
	now      func() time.Time

	phase    Phase
	gen      uint64
	detached bool
}

type Option[T Record] func(*Controller[T])

func WithObserver[T Record](o Observer) Option[T] {
	return func(c *Controller[T]) { c.observer = o }
}

func WithErrorMessager[T Record](fn ErrorMessager) Option[T] {
	return func(c *Controller[T]) { c.message = fn }
}

func NewController[T Record](entity string, source Source[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		entity:  entity,
		store:   NewStore[T](),
		source:  source,
		message: func(err error) string { return err.Error() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller[T]) Entity() string   { return c.entity }
func (c *Controller[T]) Store() *Store[T] { return c.store }
func (c *Controller[T]) Phase() Phase     { return c.phase }

// BeginLoad marks the store as loading and issues a ticket for page.
func (c *Controller[T]) BeginLoad(page int) Ticket {
	if page < 1 {
		page = 1
	}
	c.gen++
	c.detached = false
	c.phase = PhaseLoading
	c.store.SetLoading(true)
	return Ticket{Gen: c.gen, Page: page}
}

// Fetch performs the request for t. It does not touch controller state and
// may run on any goroutine.
func (c *Controller[T]) Fetch(ctx context.Context, t Ticket) Result[T] {
	page, hasInfo, err := c.source.List(ctx, t.Page)
	return Result[T]{Ticket: t, Page: page, HasInfo: hasInfo, Err: err}
}

// Commit applies r if it answers the latest request. Stale or detached
// results are ignored and Commit returns false.
func (c *Controller[T]) Commit(r Result[T]) bool {
	if c.detached || r.Ticket.Gen != c.gen {
		return false
	}
	if r.Err != nil {
		c.store.SetError(c.message(r.Err))
		c.phase = PhaseFailed
		return true
	}
	c.store.SetPage(r.Page, r.HasInfo)
	c.phase = PhaseLoaded
	return true
}

// Load fetches page and commits it in one step.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	t := c.BeginLoad(page)
	r := c.Fetch(ctx, t)
	c.Commit(r)
	return r.Err
}

// Refresh reloads the current page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.Load(ctx, c.store.Info().CurrentPage)
}

// BeginChangePage issues a ticket for target if the pager allows it.
func (c *Controller[T]) BeginChangePage(target int) (Ticket, bool) {
	if !CanGoTo(target, c.store.Info()) {
		return Ticket{}, false
	}
	return c.BeginLoad(target), true
}

// ChangePage loads target. Out-of-range targets and the current page are
// ignored without error.
func (c *Controller[T]) ChangePage(ctx context.Context, target int) (bool, error) {
	if !CanGoTo(target, c.store.Info()) {
		return false, nil
	}
	return true, c.Load(ctx, target)
}

// Detach drops interest in in-flight requests and clears the store. Used
// when the screen goes away or the session ends.
func (c *Controller[T]) Detach() {
	c.gen++
	c.detached = true
	c.phase = PhaseIdle
	c.store.Reset()
}

func (c *Controller[T]) Detached() bool { return c.detached }

// Abandon drops interest in in-flight requests but keeps the page on
// screen. Used when the session ends and the screen stays.
func (c *Controller[T]) Abandon() {
	c.gen++
	if c.phase == PhaseLoading {
		c.phase = PhaseIdle
	}
	c.store.SetLoading(false)
}

// Create sends input and, once the server confirms, shows the new record at
// the top of the page. On failure the page is left as it was.
func (c *Controller[T]) Create(ctx context.Context, input any) (T, error) {
	c.store.SetSubmitting(true)
	defer c.store.SetSubmitting(false)

	rec, err := c.source.Create(ctx, input)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Created(rec)
	return rec, nil
}

func (c *Controller[T]) Update(ctx context.Context, id int64, input any) (T, error) {
	c.store.SetSubmitting(true)
	defer c.store.SetSubmitting(false)

	rec, err := c.source.Update(ctx, id, input)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Updated(rec)
	return rec, nil
}

func (c *Controller[T]) Delete(ctx context.Context, id int64) error {
	c.store.SetSubmitting(true)
	defer c.store.SetSubmitting(false)

	if err := c.source.Delete(ctx, id); err != nil {
		return err
	}
	c.Deleted(id)
	return nil
}

// Created folds a record the server already confirmed into the store.
// A detached store is left empty; observers hear about it either way.
func (c *Controller[T]) Created(rec T) {
	if !c.detached {
		c.store.ApplyCreate(rec)
	}
	c.notify(ActionCreate, rec.RecordID())
}

func (c *Controller[T]) Updated(rec T) {
	if !c.detached {
		c.store.ApplyUpdate(rec)
	}
	c.notify(ActionUpdate, rec.RecordID())
}

func (c *Controller[T]) Deleted(id int64) {
	if !c.detached {
		c.store.ApplyDelete(id)
	}
	c.notify(ActionDelete, id)
}

func (c *Controller[T]) notify(action Action, id int64) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveMutation(MutationEvent{
		Entity:   c.entity,
		Action:   action,
		RecordID: id,
		At:       c.now().UTC(),
	})
}
