package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// errMissingIdentity marks a submission attempted without a usable session
// (expired between form load and submit). Reported separately from generic
// submission failures.
var errMissingIdentity = errors.New("no user id in session")

type submitResultMsg struct {
	created jobRecord
	err     error
}

func validateDraft(d jobDraft) error {
	if d.CompanyName == "" {
		return fmt.Errorf("company name is required")
	}
	return nil
}

// buildJobRecord assembles the submission payload. The userId comes from the
// session, never from the draft's own stored copy, and date.created is stamped
// fresh at submission time.
func buildJobRecord(d jobDraft, userID string, now time.Time) jobRecord {
	return jobRecord{
		CompanyName:    d.CompanyName,
		RoleName:       d.RoleName,
		Domain:         d.Domain,
		JobURL:         d.JobURL,
		JobDescription: d.JobDescription,
		WorkLocation:   d.WorkLocation,
		WorkModel:      d.WorkModel,
		Notes:          d.Notes,
		ListID:         d.ListID,
		BoardID:        d.BoardID,
		Date: jobDates{
			Created:    now.Format(time.RFC3339),
			Interviews: []string{},
		},
		Starred: d.Starred,
		UserID:  userID,
	}
}

// submitJobCmd runs the submission pipeline: re-read identity and token from
// the store, build the record, POST it. The draft is left alone here; the
// controller clears it only after a confirmed success.
func submitJobCmd(sessions *sessionStore, api *apiClient, d jobDraft) tea.Cmd {
	return func() tea.Msg {
		sess := sessions.Load()
		if !sess.valid() {
			return submitResultMsg{err: errMissingIdentity}
		}
		rec := buildJobRecord(d, sess.UserID, time.Now().UTC())
		created, err := api.CreateJob(context.Background(), sess.AuthToken, rec)
		if err != nil {
			return submitResultMsg{err: err}
		}
		return submitResultMsg{created: created}
	}
}
