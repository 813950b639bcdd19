package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// authState is the session controller's state machine. Popup activation enters
// stateLoggedIn directly when a persisted session is present, skipping
// stateLoggingIn.
type authState int

const (
	stateLoggedOut authState = iota
	stateLoggingIn
	stateLoggedIn
	stateLoggingOut
)

const successDisplayDuration = 3 * time.Second

type sessionLoadedMsg struct {
	sess session
}

type draftLoadedMsg struct {
	draft jobDraft
	ok    bool
}

type loginResultMsg struct {
	sess session
	err  error
}

type logoutDoneMsg struct {
	err error
}

type boardsLoadedMsg struct {
	seq    int
	boards []board
}

type listsLoadedMsg struct {
	seq     int
	boardID string
	lists   []list
}

type successExpiredMsg struct {
	id int
}

type keyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Logout    key.Binding
	Preview   key.Binding
	Theme     key.Binding
	Paste     key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		Preview:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
		Theme:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		Paste:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "close")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Logout, k.Preview, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Submit},
		{k.Logout, k.Preview, k.Theme, k.Paste, k.Quit},
	}
}

type model struct {
	width  int
	height int

	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	cfg      *popupConfig
	sessions *sessionStore
	drafts   *draftStore
	saves    *saveQueue
	api      *apiClient
	events   *eventLogger

	state authState
	sess  session

	form      jobForm
	lastDraft jobDraft

	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int

	boards        []board
	allLists      []list
	boardsLoaded  bool
	activeBoardID string
	boardsSeq     int
	listsSeq      int
	submitting    bool

	errorBanner string
	infoBanner  string
	successMsg  string
	successID   int

	showPreview bool

	logLines []string
}

func initialModel(cfg *popupConfig, kv keyValueStore, api *apiClient, events *eventLogger) *model {
	m := &model{
		styles:   newStyles(),
		keys:     newKeyMap(),
		help:     help.New(),
		cfg:      cfg,
		sessions: newSessionStore(kv, events),
		api:      api,
		events:   events,
		form:     newJobForm(),
	}
	m.drafts = newDraftStore(kv, events)
	m.saves = newSaveQueue(m.drafts, events)

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.emailInput = textinput.New()
	m.emailInput.Prompt = ""
	m.emailInput.Placeholder = "Email"
	m.emailInput.CharLimit = 256
	m.emailInput.Focus()

	m.passwordInput = textinput.New()
	m.passwordInput.Prompt = ""
	m.passwordInput.Placeholder = "Password"
	m.passwordInput.CharLimit = 256
	m.passwordInput.EchoMode = textinput.EchoPassword

	m.lastDraft = m.form.snapshot()
	return m
}

// Init is the popup activation entry point: the persisted session and the
// draft are read in parallel, and the draft rehydrates the form regardless of
// session state.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSessionCmd(), m.loadDraftCmd())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.applyLayout()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd := m.handleKey(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case sessionLoadedMsg:
		if cmd := m.handleSessionLoaded(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case draftLoadedMsg:
		if cmd := m.handleDraftLoaded(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case loginResultMsg:
		if cmd := m.handleLoginResult(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case logoutDoneMsg:
		m.handleLogoutDone(message)
	case boardsLoadedMsg:
		if cmd := m.handleBoardsLoaded(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case listsLoadedMsg:
		m.handleListsLoaded(message)
	case submitResultMsg:
		if cmd := m.handleSubmitResult(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case draftSavedMsg:
		if cmd := m.saves.Handle(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case successExpiredMsg:
		if message.id == m.successID {
			m.successMsg = ""
		}
	}

	return m, tea.Batch(cmds...)
}

// --- popup activation ---

func (m *model) loadSessionCmd() tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		return sessionLoadedMsg{sess: sessions.Load()}
	}
}

func (m *model) loadDraftCmd() tea.Cmd {
	drafts := m.drafts
	return func() tea.Msg {
		d, ok := drafts.Load()
		return draftLoadedMsg{draft: d, ok: ok}
	}
}

func (m *model) handleSessionLoaded(msg sessionLoadedMsg) tea.Cmd {
	if !msg.sess.valid() {
		m.state = stateLoggedOut
		return nil
	}
	m.sess = msg.sess
	m.state = stateLoggedIn
	m.events.SetUserID(msg.sess.UserID)
	m.events.Emit("popup_authenticated", nil)
	m.form.stampDate(time.Now())
	return m.fetchBoardsCmd()
}

func (m *model) handleDraftLoaded(msg draftLoadedMsg) tea.Cmd {
	if !msg.ok {
		return nil
	}
	m.form.apply(msg.draft)
	m.lastDraft = m.form.snapshot()
	m.log("[INFO] Restored in-progress draft.")

	// The reference data may already be in; re-resolve the restored
	// board selection against it.
	if m.boardsLoaded {
		m.form.boardSel.SetOptions(boardOptions(m.boards))
		if boardID := m.form.boardSel.Value(); boardID != m.activeBoardID {
			m.activeBoardID = boardID
			return m.fetchListsCmd(boardID)
		}
	}
	return nil
}

// --- login / logout ---

func (m *model) startLogin() tea.Cmd {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	if email == "" || password == "" {
		m.errorBanner = "Enter your email and password."
		return nil
	}
	m.state = stateLoggingIn
	m.errorBanner = ""

	api := m.api
	return func() tea.Msg {
		sess, err := api.Login(context.Background(), email, password)
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m *model) handleLoginResult(msg loginResultMsg) tea.Cmd {
	if m.state != stateLoggingIn {
		// Late completion after the view moved on; drop it.
		return nil
	}
	if msg.err != nil {
		m.state = stateLoggedOut
		m.errorBanner = "Login failed. Please check your credentials."
		m.events.Error("login_failed", msg.err)
		return nil
	}

	if err := m.sessions.Save(msg.sess.UserID, msg.sess.AuthToken); err != nil {
		m.events.Error("session_write_failed", err)
	}
	m.sess = msg.sess
	m.state = stateLoggedIn
	m.errorBanner = ""
	m.infoBanner = ""
	m.passwordInput.Reset()
	m.events.SetUserID(msg.sess.UserID)
	m.events.Emit("login_succeeded", nil)
	m.form.stampDate(time.Now())
	return m.fetchBoardsCmd()
}

func (m *model) startLogout() tea.Cmd {
	m.state = stateLoggingOut
	sessions := m.sessions
	return func() tea.Msg {
		return logoutDoneMsg{err: sessions.Clear()}
	}
}

func (m *model) handleLogoutDone(msg logoutDoneMsg) {
	if msg.err != nil {
		m.events.Error("session_clear_failed", msg.err)
	}
	m.state = stateLoggedOut
	m.sess = session{}
	m.submitting = false
	m.successMsg = ""
	m.errorBanner = ""
	// The draft survives logout; only a successful submission clears it.
	m.infoBanner = "Please log in to add job applications."
	m.events.Emit("logout", nil)
	m.events.SetUserID("")
	m.loginFocus = 0
	m.emailInput.Focus()
	m.passwordInput.Blur()
}

// --- reference data ---

func (m *model) fetchBoardsCmd() tea.Cmd {
	m.boardsSeq++
	seq := m.boardsSeq
	api, sessions, events := m.api, m.sessions, m.events
	userID := m.sess.UserID
	return func() tea.Msg {
		token, ok := sessions.Token()
		if !ok {
			events.Emit("boards_fetch_skipped", map[string]string{"reason": "no auth token"})
			return boardsLoadedMsg{seq: seq}
		}
		boards, err := api.FetchBoards(context.Background(), userID, token)
		if err != nil {
			// Degrades to an empty dropdown; the failure is only
			// visible on the event stream.
			events.Error("boards_fetch_failed", err)
			return boardsLoadedMsg{seq: seq}
		}
		return boardsLoadedMsg{seq: seq, boards: boards}
	}
}

func (m *model) fetchListsCmd(boardID string) tea.Cmd {
	m.listsSeq++
	seq := m.listsSeq
	api, sessions, events := m.api, m.sessions, m.events
	userID := m.sess.UserID
	return func() tea.Msg {
		token, ok := sessions.Token()
		if !ok {
			events.Emit("lists_fetch_skipped", map[string]string{"reason": "no auth token"})
			return listsLoadedMsg{seq: seq, boardID: boardID}
		}
		lists, err := api.FetchLists(context.Background(), userID, token)
		if err != nil {
			events.Error("lists_fetch_failed", err)
			return listsLoadedMsg{seq: seq, boardID: boardID}
		}
		return listsLoadedMsg{seq: seq, boardID: boardID, lists: lists}
	}
}

func (m *model) handleBoardsLoaded(msg boardsLoadedMsg) tea.Cmd {
	if msg.seq != m.boardsSeq {
		return nil
	}
	m.boards = msg.boards
	m.boardsLoaded = true
	if len(msg.boards) == 0 {
		m.log("[INFO] No boards found for this user.")
		m.form.boardSel.SetOptions(nil)
		m.form.listSel.SetOptions(nil)
		return nil
	}
	m.form.boardSel.SetOptions(boardOptions(msg.boards))
	boardID := m.form.boardSel.Value()
	m.activeBoardID = boardID
	return m.fetchListsCmd(boardID)
}

func (m *model) handleListsLoaded(msg listsLoadedMsg) {
	if msg.seq != m.listsSeq {
		return
	}
	if msg.boardID != m.form.boardSel.Value() {
		// The board changed while the fetch was in flight; a fresh
		// fetch for the new board is already on its way.
		return
	}
	m.allLists = msg.lists
	filtered := selectableLists(msg.lists, msg.boardID)
	if len(filtered) == 0 {
		m.log("[INFO] No lists found for this board.")
	}
	m.form.listSel.SetOptions(listOptions(filtered))
}

// --- submission ---

func (m *model) startSubmit() tea.Cmd {
	if m.state != stateLoggedIn || m.submitting {
		return nil
	}
	snap := m.form.snapshot()
	if err := validateDraft(snap); err != nil {
		m.errorBanner = "Company name is required."
		return nil
	}
	m.submitting = true
	m.errorBanner = ""
	return submitJobCmd(m.sessions, m.api, snap)
}

func (m *model) handleSubmitResult(msg submitResultMsg) tea.Cmd {
	if !m.submitting {
		return nil
	}
	m.submitting = false
	if msg.err != nil {
		if errors.Is(msg.err, errMissingIdentity) {
			m.errorBanner = "Error getting User ID."
		} else {
			m.errorBanner = "Error adding job."
		}
		m.events.Error("job_submit_failed", msg.err)
		return nil
	}

	m.form.reset()
	if err := m.drafts.Clear(); err != nil {
		m.events.Error("draft_clear_failed", err)
	}
	m.lastDraft = m.form.snapshot()
	m.errorBanner = ""
	m.successMsg = "Job application added successfully!"
	m.successID++
	id := m.successID
	m.events.Emit("job_submitted", map[string]string{"record_id": string(msg.created.ID)})
	return tea.Tick(successDisplayDuration, func(time.Time) tea.Msg {
		return successExpiredMsg{id: id}
	})
}

// --- input handling ---

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	switch m.state {
	case stateLoggingIn, stateLoggingOut:
		return nil
	case stateLoggedOut:
		return m.handleLoginKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m *model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.passwordInput.Blur()
			return m.emailInput.Focus()
		}
		m.emailInput.Blur()
		return m.passwordInput.Focus()
	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			return m.passwordInput.Focus()
		}
		return m.startLogin()
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return cmd
}

func (m *model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.startSubmit()
	case key.Matches(msg, m.keys.Logout):
		return m.startLogout()
	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		return nil
	case key.Matches(msg, m.keys.Theme):
		next := nextMarkdownTheme(markdownThemeFromString(m.cfg.Theme))
		m.cfg.Theme = string(next)
		setMarkdownTheme(next)
		return nil
	case key.Matches(msg, m.keys.Paste):
		m.pasteIntoFocused()
		if cmd := m.persistDraftIfChanged(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)
	case key.Matches(msg, m.keys.NextField):
		if cmd := m.form.focusNext(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)
	case key.Matches(msg, m.keys.PrevField):
		if cmd := m.form.focusPrev(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)
	}

	switch m.form.focus {
	case fieldBoard:
		switch msg.String() {
		case "left", "right", "h", "l":
			delta := 1
			if s := msg.String(); s == "left" || s == "h" {
				delta = -1
			}
			if m.form.boardSel.Cycle(delta) {
				boardID := m.form.boardSel.Value()
				m.activeBoardID = boardID
				cmds = append(cmds, m.fetchListsCmd(boardID))
				if cmd := m.persistDraftIfChanged(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return tea.Batch(cmds...)
		case "enter":
			return m.form.focusNext()
		}
		return nil
	case fieldList:
		switch msg.String() {
		case "left", "right", "h", "l":
			delta := 1
			if s := msg.String(); s == "left" || s == "h" {
				delta = -1
			}
			if m.form.listSel.Cycle(delta) {
				if cmd := m.persistDraftIfChanged(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return tea.Batch(cmds...)
		case "enter":
			return m.form.focusNext()
		}
		return nil
	case fieldStarred:
		switch msg.String() {
		case " ", "enter":
			m.form.starred = !m.form.starred
			return m.persistDraftIfChanged()
		}
		return nil
	}

	if msg.String() == "enter" && m.form.focus != fieldDescription {
		return m.form.focusNext()
	}

	if cmd := m.form.updateFocused(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.persistDraftIfChanged(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *model) pasteIntoFocused() {
	text, err := clipboard.ReadAll()
	if err != nil || text == "" {
		m.log("[INFO] Clipboard unavailable.")
		return
	}
	text = strings.TrimSpace(text)
	if in := m.form.textField(m.form.focus); in != nil {
		in.SetValue(in.Value() + text)
		in.CursorEnd()
		return
	}
	if m.form.focus == fieldDescription {
		m.form.description.SetValue(m.form.description.Value() + text)
	}
}

// persistDraftIfChanged writes the whole draft whenever any tracked field
// changed. Writes are queued so they land in event-arrival order.
func (m *model) persistDraftIfChanged() tea.Cmd {
	if m.state != stateLoggedIn {
		return nil
	}
	snap := m.form.snapshot()
	if snap == m.lastDraft {
		return nil
	}
	m.lastDraft = snap
	return m.saves.Enqueue(snap)
}

func (m *model) log(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 20 {
		m.logLines = m.logLines[len(m.logLines)-20:]
	}
}

func (m *model) applyLayout() {
	fieldWidth := m.width - 24
	if fieldWidth < 24 {
		fieldWidth = 24
	}
	if fieldWidth > 64 {
		fieldWidth = 64
	}
	for fld := fieldCompany; fld < fieldCount; fld++ {
		if in := m.form.textField(fld); in != nil {
			in.Width = fieldWidth
		}
	}
	m.form.description.SetWidth(fieldWidth)
	m.emailInput.Width = fieldWidth
	m.passwordInput.Width = fieldWidth
	m.help.Width = m.width
}
