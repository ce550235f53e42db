package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/journal"
	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/logging"
	"trustdesk-cli/internal/markdown"
	"trustdesk-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeList mode = iota
	modeDetail
	modeForm
	modeConfirm
	modeLogin
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type appModel struct {
	ctx     context.Context
	client  *api.Client
	profile string
	apiURL  string
	email   string
	log     *slog.Logger
	journal *journal.Journal
	state   *store.TUIState
	mdStyle string

	saveSession func(profile, apiURL, token, email string) error

	screens []screen
	active  int

	width  int
	height int

	mode mode
	// back is where the form or confirm modal returns to.
	back mode

	form    formModel
	login   loginModel
	confirm confirmState
	detail  detailState

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	// animate turns on spinner ticks and cursor blinking.
	animate bool

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options, state *store.TUIState) appModel {
	if state == nil {
		state = &store.TUIState{Version: 1}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	var obs listing.Observer
	if opts.Journal != nil {
		obs = opts.Journal
	}

	c := opts.Client
	m := appModel{
		ctx:         ctx,
		client:      c,
		profile:     opts.Profile,
		apiURL:      opts.APIURL,
		email:       opts.Email,
		log:         log,
		journal:     opts.Journal,
		state:       state,
		mdStyle:     markdown.Style(opts.Theme),
		saveSession: store.SaveSession,
		screens: []screen{
			newEntityScreen(ctx, entities.Users(), c, obs),
			newEntityScreen(ctx, entities.Projects(), c, obs),
			newEntityScreen(ctx, entities.Complaints(), c, obs),
			newEntityScreen(ctx, entities.Inspections(), c, obs),
			newEntityScreen(ctx, entities.Trustmarks(), c, obs),
			newEntityScreen(ctx, entities.Notifications(), c, obs),
			newEntityScreen(ctx, entities.Activity(), c, obs),
		},
		width:   defaultWidth,
		height:  defaultHeight,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if m.apiURL == "" {
		m.apiURL = c.BaseURL()
	}
	for i, s := range m.screens {
		if s.info().Name == state.Entity {
			m.active = i
		}
	}
	m.state.Entity = m.current().info().Name
	m.resize()

	switch sess := c.Session(); {
	case !sess.LoggedIn():
		m.login = newLoginModel(m.email, "Sign in to continue.")
		m.mode = modeLogin
	case sess.Expired():
		sess.Clear()
		m.login = newLoginModel(m.email, "Your session has expired; please sign in again.")
		m.mode = modeLogin
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.animate {
		cmds = append(cmds, m.spinner.Tick)
	}
	if m.mode == modeList {
		cmds = append(cmds, m.loadCurrent())
	}
	return tea.Batch(cmds...)
}

func (m appModel) current() screen { return m.screens[m.active] }

func (m appModel) screenFor(entity string) screen {
	for _, s := range m.screens {
		if s.info().Name == entity {
			return s
		}
	}
	return nil
}

func (m appModel) loadCurrent() tea.Cmd {
	s := m.current()
	return s.load(m.state.Page(s.info().Name))
}

// blink passes through cursor blink commands only when animating.
func (m appModel) blink(cmd tea.Cmd) tea.Cmd {
	if !m.animate {
		return nil
	}
	return cmd
}

func (m *appModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m appModel) headerHeight() int { return 2 }

func (m appModel) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m appModel) bodyHeight() int {
	return max(m.height-m.headerHeight()-m.footerHeight(), 3)
}

func (m *appModel) resize() {
	m.help.Width = m.width
	// One line under the table is the pager.
	for _, s := range m.screens {
		s.setSize(m.width, m.bodyHeight()-1)
	}
	if m.mode == modeDetail {
		m.renderDetail()
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case mutatedMsg:
		return m.handleMutated(msg)

	case loggedInMsg:
		return m.handleLoggedIn(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	switch m.mode {
	case modeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	case modeLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	s := m.screenFor(msg.entity)
	if s == nil {
		return m, nil
	}
	current, err := msg.commit()
	if !current {
		return m, nil
	}
	if err != nil {
		m.log.Warn("load failed", "entity", msg.entity, "error", err)
		if api.IsAuth(err) {
			return m.requireLogin(api.Message(err))
		}
		return m, nil
	}
	m.state.SetPage(msg.entity, s.pageInfo().CurrentPage)
	if m.mode == modeDetail && m.detail.entity == msg.entity {
		m.refreshDetail()
	}
	return m, nil
}

var pastTense = map[listing.Action]string{
	listing.ActionCreate: "created",
	listing.ActionUpdate: "updated",
	listing.ActionDelete: "deleted",
}

func (m appModel) handleMutated(msg mutatedMsg) (tea.Model, tea.Cmd) {
	s := m.screenFor(msg.entity)
	if s == nil {
		return m, nil
	}
	attached := msg.apply()

	if msg.err != nil {
		m.log.Warn("mutation failed", "entity", msg.entity, "action", msg.action, "error", msg.err)
		if api.IsAuth(msg.err) {
			return m.requireLogin(api.Message(msg.err))
		}
		if !attached {
			return m, nil
		}
		if m.mode == modeForm {
			m.form.submitting = false
			m.form.setError(msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s failed: %s", msg.action, api.Message(msg.err)), true)
		return m, nil
	}

	m.log.Info("mutation confirmed", "entity", msg.entity, "action", msg.action)
	if !attached {
		// The user moved on to another screen.
		return m, nil
	}
	m.setStatus(fmt.Sprintf("%s %s", s.info().Singular, pastTense[msg.action]), false)
	if m.mode == modeForm {
		m.mode = m.back
	}

	switch msg.action {
	case listing.ActionDelete:
		if m.mode == modeDetail {
			m.mode = modeList
		}
		// The page emptied out; step back rather than show a blank page.
		if info := s.pageInfo(); s.rowCount() == 0 && info.CurrentPage > 1 {
			return m, s.changePage(info.CurrentPage - 1)
		}
	case listing.ActionUpdate:
		if m.mode == modeDetail {
			m.refreshDetail()
		}
	}
	return m, nil
}

func (m appModel) handleLoggedIn(msg loggedInMsg) (tea.Model, tea.Cmd) {
	m.login.submitting = false
	if msg.err != nil {
		if api.IsAuth(msg.err) {
			m.login.err = "email or password is incorrect"
		} else {
			m.login.err = api.Message(msg.err)
		}
		return m, nil
	}

	m.email = msg.session.User.Email
	if err := m.saveSession(m.profile, m.apiURL, msg.session.Token, m.email); err != nil {
		m.log.Warn("could not save session", "error", err)
		m.setStatus("signed in, but the session could not be saved", true)
	} else {
		m.setStatus("signed in as "+m.email, false)
	}
	m.log.Info("logged in", "user_id", msg.session.User.ID)
	m.mode = modeList
	return m, m.loadCurrent()
}

// requireLogin drops the dead token and shows the login view. The open
// screen keeps its page; in-flight results for it are discarded.
func (m appModel) requireLogin(reason string) (tea.Model, tea.Cmd) {
	m.client.Session().Clear()
	m.current().abandon()
	m.login = newLoginModel(m.email, reason)
	m.mode = modeLogin
	return m, m.blink(m.login.setFocus(m.login.focus))
}

func (m appModel) switchTo(i int) (tea.Model, tea.Cmd) {
	n := len(m.screens)
	i = (i%n + n) % n
	if i == m.active {
		return m, nil
	}
	m.current().detach()
	m.active = i
	m.state.Entity = m.current().info().Name
	m.setStatus("", false)
	return m, m.loadCurrent()
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()
	info := s.pageInfo()
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextEntity):
		return m.switchTo(m.active + 1)
	case key.Matches(msg, keys.PrevEntity):
		return m.switchTo(m.active - 1)
	case key.Matches(msg, keys.PrevPage):
		return m, s.changePage(info.CurrentPage - 1)
	case key.Matches(msg, keys.NextPage):
		return m, s.changePage(info.CurrentPage + 1)
	case key.Matches(msg, keys.FirstPage):
		return m, s.changePage(1)
	case key.Matches(msg, keys.LastPage):
		return m, s.changePage(info.LastPage)
	case key.Matches(msg, keys.Refresh):
		return m, s.reload()
	case key.Matches(msg, keys.Open):
		m.openDetail()
		return m, nil
	case key.Matches(msg, keys.New):
		return m.openForm(true, modeList)
	case key.Matches(msg, keys.Edit):
		return m.openForm(false, modeList)
	case key.Matches(msg, keys.Delete):
		m.openConfirm(modeList)
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}
	return m, s.updateTable(msg)
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		m.mode = modeList
	case key.Matches(msg, keys.Up):
		m.scrollDetail(-1)
	case key.Matches(msg, keys.Down):
		m.scrollDetail(1)
	case msg.String() == "pgup":
		m.scrollDetail(-m.bodyHeight())
	case msg.String() == "pgdown", msg.String() == " ":
		m.scrollDetail(m.bodyHeight())
	case key.Matches(msg, keys.Edit):
		return m.openForm(false, modeDetail)
	case key.Matches(msg, keys.Delete):
		m.openConfirm(modeDetail)
	}
	return m, nil
}

// targetID is the record a form or confirm modal opened from back acts on.
func (m appModel) targetID(back mode) (int64, bool) {
	if back == modeDetail {
		return m.detail.id, true
	}
	return m.current().selectedID()
}

func (m appModel) openForm(create bool, back mode) (tea.Model, tea.Cmd) {
	s := m.current()
	if s.info().ReadOnly {
		m.setStatus(s.info().Title+" are read-only", true)
		return m, nil
	}
	if s.submitting() {
		m.setStatus("still saving the previous change", true)
		return m, nil
	}
	if create {
		m.form = newForm("New "+s.info().Singular, true, 0, s.fields(), nil)
	} else {
		id, ok := m.targetID(back)
		if !ok {
			return m, nil
		}
		values, ok := s.values(id)
		if !ok {
			return m, nil
		}
		m.form = newForm("Edit "+s.info().Singular, false, id, s.fields(), values)
	}
	m.back = back
	m.mode = modeForm
	return m, m.blink(m.form.setFocus(0))
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = m.back
		return m, nil
	case "tab", "down":
		return m, m.blink(m.form.setFocus(m.form.focus + 1))
	case "shift+tab", "up":
		return m, m.blink(m.form.setFocus(m.form.focus - 1))
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.form.focus == len(m.form.inputs)-1 {
			return m.submitForm()
		}
		return m, m.blink(m.form.setFocus(m.form.focus + 1))
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	cmd, err := m.current().submit(m.form.create, m.form.id, m.form.values())
	if err != nil {
		m.form.setError(err)
		return m, nil
	}
	m.form.err = ""
	m.form.fieldErrs = nil
	m.form.submitting = true
	return m, cmd
}

func (m *appModel) openConfirm(back mode) {
	s := m.current()
	id, ok := m.targetID(back)
	if !ok {
		return
	}
	if s.submitting() {
		m.setStatus("still saving the previous change", true)
		return
	}
	m.confirm = confirmState{
		id:    id,
		label: fmt.Sprintf("%s #%d", s.info().Singular, id),
		focus: confirmFocusCancel,
	}
	m.back = back
	m.mode = modeConfirm
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirm.focus = m.confirm.focus.toggle()
		return m, nil
	case "y":
		return m.confirmDelete()
	case "n", "esc", "q":
		m.mode = m.back
		return m, nil
	case "enter":
		if m.confirm.focus == confirmFocusConfirm {
			return m.confirmDelete()
		}
		m.mode = m.back
		return m, nil
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	m.mode = m.back
	m.setStatus("deleting "+m.confirm.label+"…", false)
	return m, m.current().remove(m.confirm.id)
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m, m.blink(m.login.setFocus(m.login.focus + 1))
	case "esc":
		if m.client.Session().LoggedIn() {
			m.mode = modeList
		}
		return m, nil
	case "enter":
		if m.login.focus == 0 {
			return m, m.blink(m.login.setFocus(1))
		}
		m.login.err = ""
		m.login.submitting = true
		return m, loginCmd(m.ctx, m.client, m.login.input())
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	bodyH := m.bodyHeight()

	var body string
	switch m.mode {
	case modeDetail:
		body = m.detailView(bodyH)
	case modeForm:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.form.view(m.width))
	case modeConfirm:
		modal := renderConfirmModal(m.width, "Delete "+m.confirm.label+"?",
			"The record is removed on the server. This cannot be undone.",
			"Delete", "Cancel", m.confirm.focus)
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, modal)
	case modeLogin:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.login.view(m.width, m.apiURL))
	default:
		body = m.listView(bodyH)
	}

	footer := m.statusView() + "\n" + m.help.View(m.keys.readOnly(m.current().info().ReadOnly))
	return header + "\n" + normalizePane(body, m.width, bodyH) + "\n" + footer
}

func (m appModel) headerView() string {
	tabs := make([]string, len(m.screens))
	for i, s := range m.screens {
		tabs[i] = styleTab(i == m.active).Render(s.info().Title)
	}
	who := m.profile
	if m.email != "" {
		who = m.email + " @ " + m.profile
	}
	sub := styleMuted().Render(who + "  " + m.apiURL)
	return fitLine(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.width) + "\n" + fitLine(sub, m.width)
}

func (m appModel) listView(height int) string {
	s := m.current()
	var table string
	if s.rowCount() == 0 && !s.loading() && s.errText() == "" {
		table = styleMuted().Render(fmt.Sprintf("No %s found.", strings.ToLower(s.info().Title)))
	} else {
		table = s.tableView()
	}
	return normalizePane(table, m.width, height-1) + "\n" + pagerLine(s.pageInfo())
}

// pagerLine renders the page tokens and the results summary, e.g.
// "‹ 1 … 4 [5] 6 … 10 ›   Showing 61 to 75 of 150".
func pagerLine(info listing.PageInfo) string {
	cur := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	parts := make([]string, 0, 9)

	prev := "‹"
	if !listing.CanGoTo(info.CurrentPage-1, info) {
		prev = styleMuted().Render(prev)
	}
	parts = append(parts, prev)
	for _, t := range listing.VisiblePages(info) {
		switch {
		case t.Ellipsis:
			parts = append(parts, styleMuted().Render(t.String()))
		case t.Number == info.CurrentPage:
			parts = append(parts, cur.Render("["+t.String()+"]"))
		default:
			parts = append(parts, t.String())
		}
	}
	next := "›"
	if !listing.CanGoTo(info.CurrentPage+1, info) {
		next = styleMuted().Render(next)
	}
	parts = append(parts, next)

	line := strings.Join(parts, " ")
	if text, ok := listing.ShowingText(info); ok {
		line += "   " + styleMuted().Render(text)
	}
	return line
}

func (m appModel) statusView() string {
	s := m.current()
	var line string
	switch {
	case s.loading():
		line = m.spinner.View() + " " + styleMuted().Render("loading "+strings.ToLower(s.info().Title)+"…")
	case s.submitting():
		line = m.spinner.View() + " " + styleMuted().Render("saving…")
	case s.errText() != "":
		// The last good page stays on screen under the error.
		line = styleError().Render("⚠ " + s.errText() + "  (r to retry)")
	case m.status != "" && m.statusErr:
		line = styleError().Render(m.status)
	case m.status != "":
		line = styleSuccess().Render(m.status)
	}
	return fitLine(line, m.width)
}
