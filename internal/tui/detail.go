package tui

import (
	"fmt"
	"strings"

	"trustdesk-cli/internal/markdown"
)

type detailState struct {
	entity   string
	id       int64
	source   string
	rendered string
	width    int
	offset   int
}

// openDetail shows the selected record. Returns false when nothing is
// selected.
func (m *appModel) openDetail() bool {
	s := m.current()
	id, ok := s.selectedID()
	if !ok {
		return false
	}
	body, ok := s.detail(id)
	if !ok {
		return false
	}
	m.detail = detailState{
		entity: s.info().Name,
		id:     id,
		source: body + m.history(s.info().Name, id),
	}
	m.renderDetail()
	m.mode = modeDetail
	return true
}

// refreshDetail re-reads the open record after it changed.
func (m *appModel) refreshDetail() {
	s := m.screenFor(m.detail.entity)
	if s == nil {
		return
	}
	body, ok := s.detail(m.detail.id)
	if !ok {
		m.mode = modeList
		return
	}
	m.detail.source = body + m.history(m.detail.entity, m.detail.id)
	m.detail.width = 0
	m.renderDetail()
}

func (m *appModel) renderDetail() {
	w := max(m.width-2, 20)
	if m.detail.width == w && m.detail.rendered != "" {
		return
	}
	m.detail.width = w
	m.detail.rendered = markdown.Render(m.detail.source, w, m.mdStyle)
}

// history lists what this machine changed on the record, newest first.
func (m *appModel) history(entity string, id int64) string {
	if m.journal == nil {
		return ""
	}
	entries, err := m.journal.ForRecord(m.ctx, entity, id)
	if err != nil {
		m.log.Warn("journal lookup failed", "entity", entity, "id", id, "error", err)
		return ""
	}
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Changes from this machine\n\n| When | Action | Profile |\n|---|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", e.At.Local().Format("2006-01-02 15:04"), e.Action, e.Profile)
	}
	return b.String()
}

func (m appModel) detailView(height int) string {
	body, _ := scrollLines(m.detail.rendered, m.detail.offset, height)
	return body
}

func (m *appModel) scrollDetail(delta int) {
	_, m.detail.offset = scrollLines(m.detail.rendered, m.detail.offset+delta, m.bodyHeight())
}
