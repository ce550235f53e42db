package listing

// The Apply* methods fold a server-confirmed mutation into the loaded page.
// They adjust Total but never LastPage: page boundaries are only re-derived
// from the server on the next page load.

// ApplyCreate puts rec at the top of the page (newest first) and counts it.
func (s *Store[T]) ApplyCreate(rec T) {
	items := make([]T, 0, len(s.page.Items)+1)
	items = append(items, rec)
	items = append(items, s.page.Items...)
	s.page.Items = items
	s.page.Info.Total++
}

// ApplyUpdate replaces the loaded record with the same id, keeping its
// position. Records that live on another page are ignored.
func (s *Store[T]) ApplyUpdate(rec T) bool {
	i := s.indexOf(rec.RecordID())
	if i < 0 {
		return false
	}
	s.page.Items[i] = rec
	return true
}

// ApplyDelete removes the first loaded record with id. Deleting an id that is
// not loaded leaves the page and Total untouched.
func (s *Store[T]) ApplyDelete(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	items := make([]T, 0, len(s.page.Items)-1)
	items = append(items, s.page.Items[:i]...)
	items = append(items, s.page.Items[i+1:]...)
	s.page.Items = items
	if s.page.Info.Total > 0 {
		s.page.Info.Total--
	}
	return true
}
