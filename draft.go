package main

import "encoding/json"

// jobDraft is the in-progress, unsubmitted form state. It outlives the popup:
// every field change overwrites the stored copy, and only a confirmed
// submission clears it. The stored userId is never trusted at submission time;
// identity is always re-read from the session store.
type jobDraft struct {
	CompanyName    string `json:"companyName"`
	RoleName       string `json:"roleName"`
	Domain         string `json:"domain"`
	JobURL         string `json:"jobURL"`
	JobDescription string `json:"jobDescription"`
	WorkLocation   string `json:"workLocation"`
	WorkModel      string `json:"workModel"`
	Notes          string `json:"notes"`
	ListID         string `json:"listId"`
	BoardID        string `json:"boardId"`
	Starred        bool   `json:"starred"`
	UserID         string `json:"userId,omitempty"`
}

type draftStore struct {
	kv     keyValueStore
	events *eventLogger
}

func newDraftStore(kv keyValueStore, events *eventLogger) *draftStore {
	return &draftStore{kv: kv, events: events}
}

// Save is a full replace-on-write; last write wins, no merging.
func (s *draftStore) Save(d jobDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.kv.Set(draftKey, string(data))
}

func (s *draftStore) Load() (jobDraft, bool) {
	raw, ok, err := s.kv.Get(draftKey)
	if err != nil {
		s.events.Error("draft_read_failed", err)
		return jobDraft{}, false
	}
	if !ok || raw == "" {
		return jobDraft{}, false
	}
	var d jobDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.events.Error("draft_decode_failed", err)
		return jobDraft{}, false
	}
	return d, true
}

// Clear is only called after a confirmed submission success.
func (s *draftStore) Clear() error {
	return s.kv.Remove(draftKey)
}
