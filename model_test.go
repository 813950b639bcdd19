package main

import (
	"encoding/json"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// pump runs a command tree to completion, feeding every resulting message back
// through Update. Spinner ticks are dropped so the loop terminates; timed
// commands are never pumped by these tests.
func pump(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch typed := msg.(type) {
	case tea.BatchMsg:
		for _, c := range typed {
			pump(t, m, c)
		}
		return
	case spinner.TickMsg:
		return
	case nil:
		return
	}
	_, next := m.Update(msg)
	pump(t, m, next)
}

func newTestModel(t *testing.T, kv keyValueStore, svc *fakeService) *model {
	t.Helper()
	cfg := applyConfigDefaults(&popupConfig{})
	return initialModel(cfg, kv, svc.start(t), testEventLogger(t))
}

func seedSession(t *testing.T, kv keyValueStore, userID, token string) {
	t.Helper()
	require.NoError(t, kv.SetMany(map[string]string{
		userIDKey:    userID,
		authTokenKey: token,
	}))
}

func seedDraft(t *testing.T, kv keyValueStore, d jobDraft) {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, kv.Set(draftKey, string(data)))
}

func referenceData() ([]board, []list) {
	boards := []board{
		{ID: "b1", BoardName: "Job Hunt"},
		{ID: "b2", BoardName: "Archive"},
	}
	lists := []list{
		{ID: "l1", ListName: "Applied", BoardID: "b1"},
		{ID: "l2", ListName: "Wishlist", BoardID: "b2"},
		{ID: "l3", ListName: "Interviewing", BoardID: "b1"},
	}
	return boards, lists
}

func TestActivationWithPersistedSession(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	require.Equal(t, stateLoggedIn, m.state)
	require.Equal(t, "u1", m.sess.UserID)
	require.NotEmpty(t, m.form.date)

	require.Equal(t, 1, svc.boardsCalls)
	require.Equal(t, "u1", svc.lastBoardsUserID)
	require.Equal(t, "Bearer t1", svc.lastAuth)

	// Default board is the first in server order; its lists are shown.
	require.Equal(t, "b1", m.form.boardSel.Value())
	require.Equal(t, "Job Hunt", m.form.boardSel.Label())
	require.Len(t, m.form.listSel.options, 2)
	require.Equal(t, "Applied", m.form.listSel.options[0].label)
	require.Equal(t, "Interviewing", m.form.listSel.options[1].label)
}

func TestActivationLoggedOutRestoresDraft(t *testing.T) {
	svc := &fakeService{}
	kv := newMemoryStore()
	seedDraft(t, kv, sampleDraft())

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	require.Equal(t, stateLoggedOut, m.state)
	require.Zero(t, svc.boardsCalls)

	// The draft rehydrates the hidden form without crashing, board/list
	// selections included.
	require.Equal(t, "Acme", m.form.company.Value())
	require.Equal(t, "b1", m.form.boardSel.Value())
	require.Equal(t, "l2", m.form.listSel.Value())
}

func TestLoginSuccessTransitionsAndPersists(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{loginUserID: "u1", loginToken: "t1", boards: boards, lists: lists}
	kv := newMemoryStore()

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())
	require.Equal(t, stateLoggedOut, m.state)

	m.emailInput.SetValue("a@b.com")
	m.passwordInput.SetValue("pw")
	cmd := m.startLogin()
	require.Equal(t, stateLoggingIn, m.state)
	pump(t, m, cmd)

	require.Equal(t, stateLoggedIn, m.state)
	require.Empty(t, m.errorBanner)

	sess := newSessionStore(kv, testEventLogger(t)).Load()
	require.True(t, sess.valid())
	require.Equal(t, "u1", sess.UserID)
	require.Equal(t, "t1", sess.AuthToken)

	require.Equal(t, 1, svc.boardsCalls)
	require.Equal(t, "u1", svc.lastBoardsUserID)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	svc := &fakeService{failLogin: true}
	kv := newMemoryStore()

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	m.emailInput.SetValue("a@b.com")
	m.passwordInput.SetValue("wrong")
	pump(t, m, m.startLogin())

	require.Equal(t, stateLoggedOut, m.state)
	require.Equal(t, "Login failed. Please check your credentials.", m.errorBanner)

	_, ok, err := kv.Get(userIDKey)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = kv.Get(authTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogoutClearsSessionKeepsDraft(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")
	seedDraft(t, kv, sampleDraft())

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())
	require.Equal(t, stateLoggedIn, m.state)

	pump(t, m, m.startLogout())

	require.Equal(t, stateLoggedOut, m.state)
	require.Equal(t, "Please log in to add job applications.", m.infoBanner)

	_, ok, err := kv.Get(userIDKey)
	require.NoError(t, err)
	require.False(t, ok)

	// Only submission success clears the draft.
	_, ok, err = kv.Get(draftKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFetchFailureDegradesToEmptyDropdown(t *testing.T) {
	svc := &fakeService{failBoards: true}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	require.Equal(t, stateLoggedIn, m.state)
	require.True(t, m.form.boardSel.Empty())
	require.True(t, m.form.listSel.Empty())
}

func TestBoardChangeRefetchesListsAndSavesDraft(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())
	listsBefore := svc.listsCalls

	m.form.focus = fieldBoard
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	pump(t, m, cmd)

	require.Equal(t, "b2", m.form.boardSel.Value())
	require.Equal(t, listsBefore+1, svc.listsCalls)
	require.Len(t, m.form.listSel.options, 1)
	require.Equal(t, "Wishlist", m.form.listSel.options[0].label)

	drafts := newDraftStore(kv, testEventLogger(t))
	d, ok := drafts.Load()
	require.True(t, ok)
	require.Equal(t, "b2", d.BoardID)
}

func TestRestoredBoardSelectionValidated(t *testing.T) {
	boards, lists := referenceData()

	t.Run("missing board falls back to default", func(t *testing.T) {
		svc := &fakeService{boards: boards, lists: lists}
		kv := newMemoryStore()
		seedSession(t, kv, "u1", "t1")
		d := sampleDraft()
		d.BoardID = "b-gone"
		d.ListID = "l-gone"
		seedDraft(t, kv, d)

		m := newTestModel(t, kv, svc)
		pump(t, m, m.Init())

		require.Equal(t, "b1", m.form.boardSel.Value())
		require.Equal(t, "l1", m.form.listSel.Value())
	})

	// The draft arrives after the default board's lists have already
	// populated the selector; a restored list that exists on its own board
	// must survive reconciliation instead of falling back to the first
	// option.
	t.Run("surviving list kept among several", func(t *testing.T) {
		lists := []list{
			{ID: "l1", ListName: "Applied", BoardID: "b1"},
			{ID: "l9", ListName: "Rejected", BoardID: "b2"},
			{ID: "l2", ListName: "Wishlist", BoardID: "b2"},
		}
		svc := &fakeService{boards: boards, lists: lists}
		kv := newMemoryStore()
		seedSession(t, kv, "u1", "t1")
		d := sampleDraft()
		d.BoardID = "b2"
		d.ListID = "l2"
		seedDraft(t, kv, d)

		m := newTestModel(t, kv, svc)
		pump(t, m, m.Init())

		require.Equal(t, "b2", m.form.boardSel.Value())
		require.Equal(t, "l2", m.form.listSel.Value())
	})

	t.Run("surviving board is reselected", func(t *testing.T) {
		svc := &fakeService{boards: boards, lists: lists}
		kv := newMemoryStore()
		seedSession(t, kv, "u1", "t1")
		d := sampleDraft()
		d.BoardID = "b2"
		d.ListID = "l2"
		seedDraft(t, kv, d)

		m := newTestModel(t, kv, svc)
		pump(t, m, m.Init())

		require.Equal(t, "b2", m.form.boardSel.Value())
		require.Equal(t, "l2", m.form.listSel.Value())
	})
}

func TestStaleListCompletionDropped(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())
	before := m.form.listSel.options

	// A completion carrying an outdated sequence number is a no-op.
	m.handleListsLoaded(listsLoadedMsg{seq: m.listsSeq - 1, boardID: "b1", lists: lists})
	require.Equal(t, before, m.form.listSel.options)

	// So is a completion for a board that is no longer selected.
	m.handleListsLoaded(listsLoadedMsg{seq: m.listsSeq, boardID: "b2", lists: lists})
	require.Equal(t, before, m.form.listSel.options)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists, failJobs: true}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")
	seedDraft(t, kv, sampleDraft())

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	cmd := m.startSubmit()
	require.NotNil(t, cmd)
	require.True(t, m.submitting)
	_, _ = m.Update(cmd())

	require.Equal(t, "Error adding job.", m.errorBanner)
	require.Equal(t, "Acme", m.form.company.Value())

	drafts := newDraftStore(kv, testEventLogger(t))
	d, ok := drafts.Load()
	require.True(t, ok)
	require.Equal(t, "Acme", d.CompanyName)
}

func TestSubmitSuccessClearsDraftAndInjectsIdentity(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")
	stale := sampleDraft()
	stale.UserID = "stale-user"
	seedDraft(t, kv, stale)

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	cmd := m.startSubmit()
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	require.Equal(t, "Job application added successfully!", m.successMsg)
	require.Empty(t, m.errorBanner)
	require.Empty(t, m.form.company.Value())
	require.False(t, m.form.starred)

	require.Len(t, svc.received, 1)
	require.Equal(t, "u1", svc.received[0].UserID)
	require.NotEmpty(t, svc.received[0].Date.Created)

	_, ok, err := kv.Get(draftKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSubmitWithoutSessionIsIdentityError(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")
	seedDraft(t, kv, sampleDraft())

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	// Session expires between form load and submit.
	require.NoError(t, kv.Remove(userIDKey, authTokenKey))

	cmd := m.startSubmit()
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	require.Equal(t, "Error getting User ID.", m.errorBanner)
	require.Empty(t, svc.received)

	drafts := newDraftStore(kv, testEventLogger(t))
	_, ok := drafts.Load()
	require.True(t, ok)
}

func TestSuccessMessageSupersededByNewerMessage(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, newMemoryStore(), svc)

	m.successMsg = "Job application added successfully!"
	m.successID = 2

	// An expiry for an older message does not clear the newer one.
	_, _ = m.Update(successExpiredMsg{id: 1})
	require.NotEmpty(t, m.successMsg)

	_, _ = m.Update(successExpiredMsg{id: 2})
	require.Empty(t, m.successMsg)
}

func TestEditPersistsDraftInArrivalOrder(t *testing.T) {
	boards, lists := referenceData()
	svc := &fakeService{boards: boards, lists: lists}
	kv := newMemoryStore()
	seedSession(t, kv, "u1", "t1")

	m := newTestModel(t, kv, svc)
	pump(t, m, m.Init())

	m.form.focus = fieldCompany
	for _, r := range "Acme" {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		pump(t, m, cmd)
	}

	drafts := newDraftStore(kv, testEventLogger(t))
	d, ok := drafts.Load()
	require.True(t, ok)
	require.Equal(t, "Acme", d.CompanyName)
}

func TestLateLoginCompletionDropped(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, newMemoryStore(), svc)
	pump(t, m, m.Init())

	// A login completion arriving after the controller left LOGGING_IN
	// (popup closed and reopened) must be a no-op.
	_, _ = m.Update(loginResultMsg{sess: session{UserID: "u1", AuthToken: "t1"}})
	require.Equal(t, stateLoggedOut, m.state)
	require.False(t, newSessionStore(m.sessions.kv, testEventLogger(t)).Load().valid())
}
