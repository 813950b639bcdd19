package main

import tea "github.com/charmbracelet/bubbletea"

// saveQueue serializes draft writes so rapid edits hit the store in
// event-arrival order. Every change event produces one full-draft overwrite;
// nothing is coalesced or debounced.

type draftSavedMsg struct {
	err error
}

type saveQueue struct {
	store   *draftStore
	events  *eventLogger
	pending []jobDraft
	running bool
}

func newSaveQueue(store *draftStore, events *eventLogger) *saveQueue {
	return &saveQueue{store: store, events: events}
}

func (q *saveQueue) Enqueue(d jobDraft) tea.Cmd {
	q.pending = append(q.pending, d)
	return q.nextCmd()
}

func (q *saveQueue) Handle(msg draftSavedMsg) tea.Cmd {
	if msg.err != nil {
		q.events.Error("draft_save_failed", msg.err)
	}
	q.running = false
	return q.nextCmd()
}

func (q *saveQueue) nextCmd() tea.Cmd {
	if q.running || len(q.pending) == 0 {
		return nil
	}
	d := q.pending[0]
	q.pending = q.pending[1:]
	q.running = true

	store := q.store
	return func() tea.Msg {
		return draftSavedMsg{err: store.Save(d)}
	}
}
