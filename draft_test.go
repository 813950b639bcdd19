package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDraft() jobDraft {
	return jobDraft{
		CompanyName:    "Acme",
		RoleName:       "Backend Engineer",
		Domain:         "acme.io",
		JobURL:         "https://acme.io/jobs/42",
		JobDescription: "Build things.",
		WorkLocation:   "Lisbon",
		WorkModel:      "hybrid",
		Notes:          "Referred by Sam",
		ListID:         "l2",
		BoardID:        "b1",
		Starred:        true,
	}
}

func TestDraftRoundTrip(t *testing.T) {
	drafts := newDraftStore(newMemoryStore(), testEventLogger(t))

	_, ok := drafts.Load()
	require.False(t, ok)

	want := sampleDraft()
	require.NoError(t, drafts.Save(want))

	got, ok := drafts.Load()
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestDraftLastWriteWins(t *testing.T) {
	drafts := newDraftStore(newMemoryStore(), testEventLogger(t))

	first := sampleDraft()
	second := first
	second.CompanyName = "Globex"
	second.Notes = ""

	require.NoError(t, drafts.Save(first))
	require.NoError(t, drafts.Save(second))

	got, ok := drafts.Load()
	require.True(t, ok)
	require.Equal(t, second, got)
}

func TestDraftClear(t *testing.T) {
	drafts := newDraftStore(newMemoryStore(), testEventLogger(t))

	require.NoError(t, drafts.Save(sampleDraft()))
	require.NoError(t, drafts.Clear())

	_, ok := drafts.Load()
	require.False(t, ok)

	// Clearing an already-empty store is fine.
	require.NoError(t, drafts.Clear())
}

func TestDraftCorruptPayloadReadsAsAbsent(t *testing.T) {
	kv := newMemoryStore()
	drafts := newDraftStore(kv, testEventLogger(t))

	require.NoError(t, kv.Set(draftKey, "{not json"))
	_, ok := drafts.Load()
	require.False(t, ok)
}
