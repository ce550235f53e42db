package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/journal"
	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/logging"
	"trustdesk-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

// fakeDesk serves 40 users, 15 per page, and records every request.
type fakeDesk struct {
	*httptest.Server

	mu        sync.Mutex
	users     []map[string]any
	requests  []string
	failPages map[int]int
	nextID    int64
}

func newFakeDesk(t *testing.T) *fakeDesk {
	t.Helper()
	d := &fakeDesk{failPages: map[int]int{}, nextID: 41}
	for i := 1; i <= 40; i++ {
		d.users = append(d.users, map[string]any{
			"id":    i,
			"name":  fmt.Sprintf("User %02d", i),
			"email": fmt.Sprintf("user%02d@example.com", i),
			"role":  "inspector",
		})
	}
	d.Server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.Close)
	return d
}

func (d *fakeDesk) serve(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/login" && r.Method == http.MethodPost:
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "s3cret-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"data":{"token":"fresh-token","user":{"id":7,"name":"Ada","email":%q}}}`, in["email"])
		return
	}

	if r.Header.Get("Authorization") != "Bearer fresh-token" && r.Header.Get("Authorization") != "Bearer tok-1" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
		return
	}

	switch {
	case r.URL.Path == "/users" && r.Method == http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if status := d.failPages[page]; status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
			return
		}
		start := (page - 1) * 15
		end := min(start+15, len(d.users))
		items := []map[string]any{}
		if start < end {
			items = d.users[start:end]
		}
		last := max((len(d.users)+14)/15, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": items,
			"meta": map[string]int{"current_page": page, "last_page": last, "per_page": 15, "total": len(d.users)},
		})
	case r.URL.Path == "/users" && r.Method == http.MethodPost:
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["id"] = d.nextID
		d.nextID++
		d.users = append([]map[string]any{in}, d.users...)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": in})
	case strings.HasPrefix(r.URL.Path, "/users/") && r.Method == http.MethodPut:
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/users/"), 10, 64)
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["id"] = id
		_ = json.NewEncoder(w).Encode(map[string]any{"data": in})
	case strings.HasPrefix(r.URL.Path, "/users/") && r.Method == http.MethodDelete:
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/users/"))
		for i, u := range d.users {
			if u["id"] == id {
				d.users = append(d.users[:i:i], d.users[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/projects" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"data":[{"id":3,"name":"Roof retrofit"}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

func (d *fakeDesk) count(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

type savedSession struct{ profile, apiURL, token, email string }

func newTestApp(t *testing.T, d *fakeDesk, token string) (appModel, *[]savedSession) {
	t.Helper()
	c, err := api.NewClient(api.Config{BaseURL: d.URL}, api.NewSession(token))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	m := newAppModel(context.Background(), Options{Client: c, Profile: "default", Logger: logging.Discard()}, &store.TUIState{Version: 1})
	saved := &[]savedSession{}
	m.saveSession = func(profile, apiURL, token, email string) error {
		*saved = append(*saved, savedSession{profile, apiURL, token, email})
		return nil
	}
	return m, saved
}

// drive runs cmd and feeds every resulting message back into the model
// until nothing is left to do.
func drive(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("too many steps")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			mm, c := m.Update(msg)
			m = mm.(appModel)
			queue = append(queue, c)
		}
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key and drives whatever it starts.
func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		mm, cmd := m.Update(keyMsg(k))
		m = drive(t, mm.(appModel), cmd)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = mm.(appModel)
	}
	return m
}

func started(t *testing.T, d *fakeDesk) appModel {
	t.Helper()
	m, _ := newTestApp(t, d, "tok-1")
	return drive(t, m, m.Init())
}

func plain(m appModel) string { return xansi.Strip(m.View()) }

func TestApp_InitLoadsFirstPage(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	if m.mode != modeList {
		t.Fatalf("mode = %v, want list", m.mode)
	}
	s := m.current()
	if got := s.rowCount(); got != 15 {
		t.Fatalf("rows = %d, want 15", got)
	}
	want := listing.PageInfo{CurrentPage: 1, LastPage: 3, PerPage: 15, Total: 40}
	if got := s.pageInfo(); got != want {
		t.Fatalf("info = %+v, want %+v", got, want)
	}
	view := plain(m)
	for _, w := range []string{"Users", "User 01", "Showing 1 to 15 of 40", "[1]"} {
		if !strings.Contains(view, w) {
			t.Fatalf("view missing %q:\n%s", w, view)
		}
	}
}

func TestApp_PageKeys(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "]")
	if got := m.current().pageInfo().CurrentPage; got != 2 {
		t.Fatalf("after ] page = %d, want 2", got)
	}
	m = press(t, m, "G")
	if got := m.current().pageInfo().CurrentPage; got != 3 {
		t.Fatalf("after G page = %d, want 3", got)
	}
	if !strings.Contains(plain(m), "Showing 31 to 40 of 40") {
		t.Fatalf("last page summary missing:\n%s", plain(m))
	}

	before := d.count("GET /users")
	m = press(t, m, "l")
	if d.count("GET /users") != before {
		t.Fatalf("next past the last page must not fetch")
	}
	m = press(t, m, "g")
	if got := m.current().pageInfo().CurrentPage; got != 1 {
		t.Fatalf("after g page = %d, want 1", got)
	}
	before = d.count("GET /users")
	press(t, m, "[")
	if d.count("GET /users") != before {
		t.Fatalf("prev before the first page must not fetch")
	}
	if got := m.state.Page("users"); got != 1 {
		t.Fatalf("remembered page = %d, want 1", got)
	}
}

func TestApp_StaleResultIgnored(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	// Two page changes in flight; the older result arrives last.
	mm, slow := m.Update(keyMsg("]"))
	m = mm.(appModel)
	mm, fast := m.Update(keyMsg("G"))
	m = mm.(appModel)

	m = drive(t, m, fast)
	m = drive(t, m, slow)
	if got := m.current().pageInfo().CurrentPage; got != 3 {
		t.Fatalf("page = %d, want 3 (stale page 2 must be dropped)", got)
	}
}

func TestApp_ErrorKeepsLastGoodPage(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)
	d.mu.Lock()
	d.failPages[2] = http.StatusInternalServerError
	d.mu.Unlock()

	m = press(t, m, "]")
	s := m.current()
	if s.errText() == "" {
		t.Fatalf("expected an error")
	}
	if s.rowCount() != 15 || s.pageInfo().CurrentPage != 1 {
		t.Fatalf("last good page should stay: rows=%d info=%+v", s.rowCount(), s.pageInfo())
	}
	if !strings.Contains(plain(m), "r to retry") {
		t.Fatalf("error line missing:\n%s", plain(m))
	}
}

func TestApp_SwitchEntityDetachesOldScreen(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	users := m.current()
	// Start a page load, then leave before it lands.
	mm, pending := m.Update(keyMsg("]"))
	m = mm.(appModel)
	m = press(t, m, "tab")
	if m.current().info().Name != "projects" {
		t.Fatalf("active = %s, want projects", m.current().info().Name)
	}
	if m.state.Entity != "projects" {
		t.Fatalf("state entity = %q", m.state.Entity)
	}
	m = drive(t, m, pending)
	if users.rowCount() != 0 {
		t.Fatalf("detached screen should stay empty, rows = %d", users.rowCount())
	}
	if got := m.current().rowCount(); got != 1 {
		t.Fatalf("projects rows = %d, want 1", got)
	}
	// No meta: defaults apply and there is no results line.
	if strings.Contains(plain(m), "Showing") {
		t.Fatalf("results line should be hidden:\n%s", plain(m))
	}

	m = press(t, m, "shift+tab")
	if m.current().info().Name != "users" || m.current().rowCount() != 15 {
		t.Fatalf("back on users: name=%s rows=%d", m.current().info().Name, m.current().rowCount())
	}
}

func TestApp_CreateUser(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "n")
	if m.mode != modeForm || !m.form.create {
		t.Fatalf("mode = %v, want create form", m.mode)
	}
	m = typeText(t, m, "New Person")
	m = press(t, m, "tab")
	m = typeText(t, m, "new@example.com")
	m = press(t, m, "ctrl+s")

	if m.mode != modeList {
		t.Fatalf("form should close, mode = %v (err %q)", m.mode, m.form.err)
	}
	s := m.current()
	if got := s.pageInfo().Total; got != 41 {
		t.Fatalf("total = %d, want 41", got)
	}
	if got := s.rowCount(); got != 16 {
		t.Fatalf("rows = %d, want 16", got)
	}
	id, _ := s.selectedID()
	if id != 41 {
		t.Fatalf("selected id = %d, want the new record", id)
	}
	if !strings.Contains(plain(m), "user created") {
		t.Fatalf("status missing:\n%s", plain(m))
	}
}

func TestApp_CreateValidationStaysLocal(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "n", "ctrl+s")
	if m.mode != modeForm {
		t.Fatalf("form should stay open, mode = %v", m.mode)
	}
	if m.form.fieldErrs["name"] == "" || m.form.fieldErrs["email"] == "" {
		t.Fatalf("field errors = %v", m.form.fieldErrs)
	}
	if d.count("POST /users") != 0 {
		t.Fatalf("invalid input must not reach the server")
	}
	if m.current().submitting() {
		t.Fatalf("submitting flag should be cleared")
	}

	m = press(t, m, "esc")
	if m.mode != modeList || m.current().pageInfo().Total != 40 {
		t.Fatalf("cancel should leave the list untouched")
	}
}

func TestApp_EditPrefillsAndUpdatesInPlace(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "down", "e")
	if m.mode != modeForm || m.form.create || m.form.id != 2 {
		t.Fatalf("want edit form for #2, got mode=%v create=%v id=%d", m.mode, m.form.create, m.form.id)
	}
	if got := m.form.values()["email"]; got != "user02@example.com" {
		t.Fatalf("prefill email = %q", got)
	}
	m.form.inputs[0].SetValue("Renamed")
	m = press(t, m, "ctrl+s")

	if m.mode != modeList {
		t.Fatalf("mode = %v, want list", m.mode)
	}
	if !strings.Contains(plain(m), "Renamed") {
		t.Fatalf("row not updated:\n%s", plain(m))
	}
	if got := m.current().pageInfo().Total; got != 40 {
		t.Fatalf("update must not change total, got %d", got)
	}
}

func TestApp_DeleteNeedsConfirmation(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "d")
	if m.mode != modeConfirm {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	if !strings.Contains(plain(m), "Delete user #1?") {
		t.Fatalf("modal missing:\n%s", plain(m))
	}
	// Cancel is focused by default.
	m = press(t, m, "enter")
	if m.mode != modeList || d.count("DELETE") != 0 {
		t.Fatalf("enter on cancel must not delete")
	}

	m = press(t, m, "d", "y")
	if d.count("DELETE /users/1") != 1 {
		t.Fatalf("delete not sent")
	}
	s := m.current()
	if s.rowCount() != 14 || s.pageInfo().Total != 39 {
		t.Fatalf("after delete rows=%d total=%d", s.rowCount(), s.pageInfo().Total)
	}
}

func TestApp_ReadOnlyEntityHasNoForm(t *testing.T) {
	d := newFakeDesk(t)
	m, _ := newTestApp(t, d, "tok-1")
	for i, s := range m.screens {
		if s.info().Name == "activity" {
			m.active = i
		}
	}
	m = press(t, m, "n")
	if m.mode != modeList {
		t.Fatalf("read-only entity opened a form")
	}
	if !m.statusErr || !strings.Contains(m.status, "read-only") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestApp_DetailView(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)

	m = press(t, m, "enter")
	if m.mode != modeDetail || m.detail.id != 1 {
		t.Fatalf("mode=%v id=%d", m.mode, m.detail.id)
	}
	if !strings.Contains(plain(m), "user01@example.com") {
		t.Fatalf("detail missing email:\n%s", plain(m))
	}
	m = press(t, m, "esc")
	if m.mode != modeList {
		t.Fatalf("esc should close the detail")
	}
}

func TestApp_AuthErrorShowsLoginAndReloads(t *testing.T) {
	d := newFakeDesk(t)
	m, saved := newTestApp(t, d, "revoked")
	m = drive(t, m, m.Init())

	if m.mode != modeLogin {
		t.Fatalf("mode = %v, want login", m.mode)
	}
	if m.client.Session().LoggedIn() {
		t.Fatalf("dead token should be dropped")
	}

	m = typeText(t, m, "ada@example.com")
	m = press(t, m, "tab")
	m = typeText(t, m, "wrong")
	m = press(t, m, "enter")
	if m.mode != modeLogin || m.login.err != "email or password is incorrect" {
		t.Fatalf("bad password: mode=%v err=%q", m.mode, m.login.err)
	}

	m.login.password.SetValue("s3cret-pass")
	m = press(t, m, "enter")
	if m.mode != modeList {
		t.Fatalf("mode = %v, want list (err %q)", m.mode, m.login.err)
	}
	if len(*saved) != 1 || (*saved)[0].token != "fresh-token" || (*saved)[0].email != "ada@example.com" {
		t.Fatalf("saved = %+v", *saved)
	}
	if got := m.current().rowCount(); got != 15 {
		t.Fatalf("screen did not reload, rows = %d", got)
	}
}

func TestApp_AuthErrorKeepsLoadedPage(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{name: "page change", keys: []string{"]"}},
		{name: "delete", keys: []string{"d", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDesk(t)
			m := started(t, d)
			want := m.current().pageInfo()

			m.client.Session().SetToken("revoked")
			m = press(t, m, tt.keys...)

			if m.mode != modeLogin {
				t.Fatalf("mode = %v, want login", m.mode)
			}
			s := m.current()
			if s.rowCount() != 15 || s.pageInfo() != want {
				t.Fatalf("page lost on 401: rows=%d info=%+v", s.rowCount(), s.pageInfo())
			}
			if s.loading() || s.submitting() {
				t.Fatalf("flags left set: loading=%v submitting=%v", s.loading(), s.submitting())
			}

			m.login.email.SetValue("ada@example.com")
			m.login.password.SetValue("s3cret-pass")
			m.login.setFocus(1)
			m = press(t, m, "enter")
			if m.mode != modeList {
				t.Fatalf("mode = %v, want list (err %q)", m.mode, m.login.err)
			}
			s = m.current()
			if s.rowCount() != 15 || s.pageInfo().CurrentPage != 1 || s.errText() != "" {
				t.Fatalf("after login rows=%d info=%+v err=%q", s.rowCount(), s.pageInfo(), s.errText())
			}
		})
	}
}

func TestApp_MutationAfterSwitchLeavesOldScreen(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)
	users := m.current()

	m = press(t, m, "d")
	mm, pending := m.Update(keyMsg("y"))
	m = mm.(appModel)
	m = press(t, m, "tab")
	m = drive(t, m, pending)

	if d.count("DELETE /users/1") != 1 {
		t.Fatalf("delete not sent")
	}
	if users.rowCount() != 0 || users.pageInfo().Total != 0 || users.submitting() {
		t.Fatalf("detached screen changed: rows=%d info=%+v submitting=%v", users.rowCount(), users.pageInfo(), users.submitting())
	}
	if m.current().info().Name != "projects" || m.status != "" {
		t.Fatalf("active=%s status=%q", m.current().info().Name, m.status)
	}
}

func TestApp_StartsOnLoginWithoutToken(t *testing.T) {
	d := newFakeDesk(t)
	m, _ := newTestApp(t, d, "")
	if cmd := m.Init(); cmd != nil {
		m = drive(t, m, cmd)
	}
	if m.mode != modeLogin {
		t.Fatalf("mode = %v, want login", m.mode)
	}
	if d.count("GET") != 0 {
		t.Fatalf("nothing should load before login")
	}
	// esc cannot leave the login view without a session.
	m = press(t, m, "esc")
	if m.mode != modeLogin {
		t.Fatalf("esc left the login view")
	}
}

func TestApp_RestoresEntityAndPage(t *testing.T) {
	d := newFakeDesk(t)
	c, err := api.NewClient(api.Config{BaseURL: d.URL}, api.NewSession("tok-1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	st := &store.TUIState{Version: 1, Entity: "users", Pages: map[string]int{"users": 2}}
	m := newAppModel(context.Background(), Options{Client: c, Profile: "default"}, st)
	m = drive(t, m, m.Init())
	if got := m.current().pageInfo().CurrentPage; got != 2 {
		t.Fatalf("page = %d, want 2", got)
	}
}

func TestApp_MutationsAreJournaled(t *testing.T) {
	d := newFakeDesk(t)
	j, err := journal.Open(context.Background(), filepath.Join(t.TempDir(), journal.FileName), "default", logging.Discard())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	c, err := api.NewClient(api.Config{BaseURL: d.URL}, api.NewSession("tok-1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	m := newAppModel(context.Background(), Options{Client: c, Profile: "default", Journal: j}, nil)
	m = drive(t, m, m.Init())
	m = press(t, m, "d", "y")

	entries, err := j.ForRecord(context.Background(), "users", 1)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != listing.ActionDelete {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestApp_Quit(t *testing.T) {
	d := newFakeDesk(t)
	m := started(t, d)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should return tea.Quit")
	}
}
