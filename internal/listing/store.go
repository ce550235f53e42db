package listing

// State is a snapshot of a Store.
type State[T Record] struct {
	Page       Page[T]
	Loading    bool
	Submitting bool
	Err        string
}

// Store holds the currently loaded page for one entity screen.
//
// A Store is owned by exactly one controller and is not safe for concurrent
// use. It never fails on its own; it only records failures reported to it.
type Store[T Record] struct {
	page       Page[T]
	loading    bool
	submitting bool
	err        string
}

func NewStore[T Record]() *Store[T] {
	s := &Store[T]{}
	s.Reset()
	return s
}

// Reset returns the store to its empty initial state.
func (s *Store[T]) Reset() {
	s.page = Page[T]{Items: []T{}, Info: DefaultPageInfo(DefaultPerPage)}
	s.loading = false
	s.submitting = false
	s.err = ""
}

func (s *Store[T]) SetLoading(flag bool) { s.loading = flag }

func (s *Store[T]) SetSubmitting(flag bool) { s.submitting = flag }

// SetPage replaces the loaded page wholesale. When the response carried no
// pagination metadata (hasInfo=false) the default info is used, keeping the
// previous per-page size.
func (s *Store[T]) SetPage(page Page[T], hasInfo bool) {
	prevPerPage := s.page.Info.PerPage
	info := DefaultPageInfo(prevPerPage)
	if hasInfo {
		info = page.Info.Normalize(prevPerPage)
	}
	items := page.Items
	if items == nil {
		items = []T{}
	}
	s.page = Page[T]{Items: items, Info: info}
	s.err = ""
	s.loading = false
}

// SetError records a failure. The last good items stay visible.
func (s *Store[T]) SetError(message string) {
	s.err = message
	s.loading = false
}

func (s *Store[T]) Items() []T {
	out := make([]T, len(s.page.Items))
	copy(out, s.page.Items)
	return out
}

func (s *Store[T]) Info() PageInfo { return s.page.Info }

func (s *Store[T]) Err() string { return s.err }

func (s *Store[T]) Loading() bool { return s.loading }

func (s *Store[T]) Submitting() bool { return s.submitting }

// State returns a copy that does not alias the store's item slice.
func (s *Store[T]) State() State[T] {
	return State[T]{
		Page:       Page[T]{Items: s.Items(), Info: s.page.Info},
		Loading:    s.loading,
		Submitting: s.submitting,
		Err:        s.err,
	}
}

// Find returns the loaded record with the given id.
func (s *Store[T]) Find(id int64) (T, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.page.Items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) indexOf(id int64) int {
	// Pages are bounded by per_page, so a scan beats keeping an index in sync.
	for i := range s.page.Items {
		if s.page.Items[i].RecordID() == id {
			return i
		}
	}
	return -1
}
