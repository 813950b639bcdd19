package main

import "encoding/json"

// flexID is a record identifier that may arrive on the wire as either a JSON
// string or a number. Both forms normalize to the string representation so
// board/list comparisons never produce false negatives.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (id flexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// selectableLists filters the full list set down to the lists belonging to the
// selected board, preserving server order. An unknown board id yields an empty
// result; the caller leaves the selector empty rather than failing.
func selectableLists(lists []list, boardID string) []list {
	var out []list
	for _, l := range lists {
		if string(l.BoardID) == boardID {
			out = append(out, l)
		}
	}
	return out
}

// defaultBoard picks the first board in server order. "First" is a deliberate
// arbitrary default, not a ranking.
func defaultBoard(boards []board) (board, bool) {
	if len(boards) == 0 {
		return board{}, false
	}
	return boards[0], true
}
