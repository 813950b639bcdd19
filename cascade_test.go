package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectableListsFiltersAndPreservesOrder(t *testing.T) {
	lists := []list{
		{ID: "l1", ListName: "Applied", BoardID: "b1"},
		{ID: "l2", ListName: "Wishlist", BoardID: "b2"},
		{ID: "l3", ListName: "Interviewing", BoardID: "b1"},
		{ID: "l4", ListName: "Offers", BoardID: "b1"},
	}

	got := selectableLists(lists, "b1")
	require.Len(t, got, 3)
	require.Equal(t, "Applied", got[0].ListName)
	require.Equal(t, "Interviewing", got[1].ListName)
	require.Equal(t, "Offers", got[2].ListName)
}

func TestSelectableListsUnknownBoard(t *testing.T) {
	lists := []list{
		{ID: "l1", ListName: "Applied", BoardID: "b1"},
	}
	require.Empty(t, selectableLists(lists, "b9"))
	require.Empty(t, selectableLists(nil, "b1"))
}

// Board identifiers may arrive as JSON numbers; comparison happens on the
// string form so "7" and 7 refer to the same board.
func TestSelectableListsNumericBoardID(t *testing.T) {
	var lists []list
	raw := `[
		{"_id": "l1", "listName": "Applied", "boardId": 7},
		{"_id": "l2", "listName": "Wishlist", "boardId": "7"},
		{"_id": "l3", "listName": "Other", "boardId": 8}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &lists))

	got := selectableLists(lists, "7")
	require.Len(t, got, 2)
	require.Equal(t, "Applied", got[0].ListName)
	require.Equal(t, "Wishlist", got[1].ListName)
}

func TestDefaultBoard(t *testing.T) {
	_, ok := defaultBoard(nil)
	require.False(t, ok)

	boards := []board{
		{ID: "b1", BoardName: "Job Hunt"},
		{ID: "b2", BoardName: "Archive"},
	}
	first, ok := defaultBoard(boards)
	require.True(t, ok)
	require.Equal(t, flexID("b1"), first.ID)
}

func TestFlexIDMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(list{ID: "l1", ListName: "Applied", BoardID: "b1"})
	require.NoError(t, err)
	require.Contains(t, string(data), `"boardId":"b1"`)
}
