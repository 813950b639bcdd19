package main

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField int

const (
	fieldCompany formField = iota
	fieldRole
	fieldDomain
	fieldJobURL
	fieldLocation
	fieldWorkModel
	fieldDescription
	fieldNotes
	fieldBoard
	fieldList
	fieldStarred
	fieldCount
)

type selectorOption struct {
	value string
	label string
}

// selector is a dependent-dropdown stand-in: a flat option row cycled with
// left/right. pending holds a restored draft selection that has not yet been
// validated against freshly fetched options; it renders as the visible value
// until SetOptions resolves it.
type selector struct {
	options []selectorOption
	index   int
	pending string
}

func newSelector() selector {
	return selector{index: -1}
}

// SetOptions replaces the option set. A pending or current selection that
// still exists is kept; otherwise the first option becomes the selection
// (or none, when the set is empty).
func (s *selector) SetOptions(options []selectorOption) {
	want := s.pending
	if want == "" {
		want = s.Value()
	}
	s.options = options
	s.pending = ""
	s.index = -1
	if len(options) == 0 {
		return
	}
	s.index = 0
	for i, opt := range options {
		if opt.value == want && want != "" {
			s.index = i
			return
		}
	}
}

// Restore records a selection from a persisted draft. A value not found in the
// current options stays pending rather than being discarded: the options on
// hand may belong to a different board, and SetOptions resolves the pending
// value once the right set arrives.
func (s *selector) Restore(value string) {
	for i, opt := range s.options {
		if opt.value == value {
			s.index = i
			s.pending = ""
			return
		}
	}
	s.pending = value
}

func (s *selector) Value() string {
	if s.index >= 0 && s.index < len(s.options) {
		return s.options[s.index].value
	}
	return s.pending
}

func (s *selector) Label() string {
	if s.index >= 0 && s.index < len(s.options) {
		return s.options[s.index].label
	}
	if s.pending != "" {
		return s.pending
	}
	return ""
}

// Cycle moves the selection by delta and reports whether it changed.
func (s *selector) Cycle(delta int) bool {
	if len(s.options) == 0 {
		return false
	}
	next := s.index + delta
	if next < 0 {
		next = len(s.options) - 1
	}
	if next >= len(s.options) {
		next = 0
	}
	if next == s.index {
		return false
	}
	s.index = next
	return true
}

func (s *selector) Empty() bool {
	return len(s.options) == 0
}

// jobForm holds the authenticated view's widgets and converts between widget
// state and the persisted draft.
type jobForm struct {
	company     textinput.Model
	role        textinput.Model
	domain      textinput.Model
	jobURL      textinput.Model
	location    textinput.Model
	workModel   textinput.Model
	notes       textinput.Model
	description textarea.Model
	boardSel    selector
	listSel     selector
	starred     bool
	date        string

	focus formField
}

func newJobForm() jobForm {
	makeInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholder
		in.CharLimit = 256
		return in
	}

	f := jobForm{
		company:   makeInput("Company name"),
		role:      makeInput("Role"),
		domain:    makeInput("Domain"),
		jobURL:    makeInput("Job URL"),
		location:  makeInput("Work location"),
		workModel: makeInput("Work model (on-site, hybrid, remote)"),
		notes:     makeInput("Notes"),
		boardSel:  newSelector(),
		listSel:   newSelector(),
	}
	f.description = textarea.New()
	f.description.Placeholder = "Job description"
	f.description.CharLimit = 4096
	f.description.ShowLineNumbers = false
	f.description.SetHeight(4)
	f.description.Blur()

	f.focus = fieldCompany
	f.company.Focus()
	return f
}

func (f *jobForm) textField(field formField) *textinput.Model {
	switch field {
	case fieldCompany:
		return &f.company
	case fieldRole:
		return &f.role
	case fieldDomain:
		return &f.domain
	case fieldJobURL:
		return &f.jobURL
	case fieldLocation:
		return &f.location
	case fieldWorkModel:
		return &f.workModel
	case fieldNotes:
		return &f.notes
	}
	return nil
}

func (f *jobForm) setFocus(field formField) tea.Cmd {
	f.focus = field
	var cmd tea.Cmd
	for fld := fieldCompany; fld < fieldCount; fld++ {
		if in := f.textField(fld); in != nil {
			if fld == field {
				cmd = in.Focus()
			} else {
				in.Blur()
			}
		}
	}
	if field == fieldDescription {
		cmd = f.description.Focus()
	} else {
		f.description.Blur()
	}
	return cmd
}

func (f *jobForm) focusNext() tea.Cmd {
	next := f.focus + 1
	if next >= fieldCount {
		next = fieldCompany
	}
	return f.setFocus(next)
}

func (f *jobForm) focusPrev() tea.Cmd {
	prev := f.focus - 1
	if prev < fieldCompany {
		prev = fieldCount - 1
	}
	return f.setFocus(prev)
}

// updateFocused routes an input message to whichever widget owns the focus.
// Selector cycling and the starred toggle are handled by the controller, not
// here, because they have side effects beyond widget state.
func (f *jobForm) updateFocused(msg tea.Msg) tea.Cmd {
	if in := f.textField(f.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return cmd
	}
	if f.focus == fieldDescription {
		var cmd tea.Cmd
		f.description, cmd = f.description.Update(msg)
		return cmd
	}
	return nil
}

// snapshot captures the current widget state as a draft. The draft's userId
// stays empty; identity is injected from the session at submission time.
func (f *jobForm) snapshot() jobDraft {
	return jobDraft{
		CompanyName:    f.company.Value(),
		RoleName:       f.role.Value(),
		Domain:         f.domain.Value(),
		JobURL:         f.jobURL.Value(),
		JobDescription: f.description.Value(),
		WorkLocation:   f.location.Value(),
		WorkModel:      f.workModel.Value(),
		Notes:          f.notes.Value(),
		ListID:         f.listSel.Value(),
		BoardID:        f.boardSel.Value(),
		Starred:        f.starred,
	}
}

// apply rehydrates the widgets from a persisted draft, including board/list
// selections that may not exist in the (not yet loaded) option sets.
func (f *jobForm) apply(d jobDraft) {
	f.company.SetValue(d.CompanyName)
	f.role.SetValue(d.RoleName)
	f.domain.SetValue(d.Domain)
	f.jobURL.SetValue(d.JobURL)
	f.description.SetValue(d.JobDescription)
	f.location.SetValue(d.WorkLocation)
	f.workModel.SetValue(d.WorkModel)
	f.notes.SetValue(d.Notes)
	f.boardSel.Restore(d.BoardID)
	f.listSel.Restore(d.ListID)
	f.starred = d.Starred
}

// reset returns every field to its empty default after a successful
// submission. Board/list options stay loaded; their selection falls back to
// the first option.
func (f *jobForm) reset() {
	f.company.Reset()
	f.role.Reset()
	f.domain.Reset()
	f.jobURL.Reset()
	f.description.Reset()
	f.location.Reset()
	f.workModel.Reset()
	f.notes.Reset()
	f.starred = false
	f.boardSel.pending = ""
	f.listSel.pending = ""
	if len(f.boardSel.options) > 0 {
		f.boardSel.index = 0
	}
	if len(f.listSel.options) > 0 {
		f.listSel.index = 0
	}
}

func (f *jobForm) stampDate(now time.Time) {
	f.date = now.Format("2006-01-02")
}

func boardOptions(boards []board) []selectorOption {
	var opts []selectorOption
	for _, b := range boards {
		opts = append(opts, selectorOption{value: string(b.ID), label: b.BoardName})
	}
	return opts
}

func listOptions(lists []list) []selectorOption {
	var opts []selectorOption
	for _, l := range lists {
		opts = append(opts, selectorOption{value: string(l.ID), label: l.ListName})
	}
	return opts
}
