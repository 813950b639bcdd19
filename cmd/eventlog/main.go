package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// eventlog summarizes the popup's NDJSON event stream: per-event counts, the
// sessions seen, and optionally the raw tail.

type popupEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Detail    map[string]string `json:"detail,omitempty"`
}

func main() {
	var inputPath string
	var tail int
	flag.StringVar(&inputPath, "in", "", "event stream path (defaults to the user config dir)")
	flag.IntVar(&tail, "tail", 0, "print the last N events verbatim")
	flag.Parse()

	if inputPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		inputPath = filepath.Join(dir, "applisnap", "popup-events.ndjson")
	}

	events, err := readEvents(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eventlog: %v\n", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Println("No events recorded.")
		return
	}

	printSummary(events)
	if tail > 0 {
		printTail(events, tail)
	}
}

func readEvents(path string) ([]popupEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []popupEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var evt popupEvent
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			// Skip malformed lines; partial writes can happen if the
			// popup is killed mid-append.
			continue
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func printSummary(events []popupEvent) {
	counts := make(map[string]int)
	sessions := make(map[string]bool)
	var failures int
	for _, evt := range events {
		counts[evt.Event]++
		sessions[evt.SessionID] = true
		if strings.HasSuffix(evt.Event, "_failed") {
			failures++
		}
	}

	first := events[0].Timestamp.Local()
	last := events[len(events)-1].Timestamp.Local()
	fmt.Printf("%d events across %d popup sessions (%s – %s)\n\n",
		len(events), len(sessions), first.Format(time.RFC822), last.Format(time.RFC822))

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-28s %d\n", name, counts[name])
	}
	if failures > 0 {
		fmt.Printf("\n%d failure events recorded.\n", failures)
	}
}

func printTail(events []popupEvent, n int) {
	start := len(events) - n
	if start < 0 {
		start = 0
	}
	fmt.Println()
	for _, evt := range events[start:] {
		line := fmt.Sprintf("[%s] %s", evt.Timestamp.Local().Format("2006-01-02 15:04:05"), evt.Event)
		if evt.UserID != "" {
			line += " user=" + evt.UserID
		}
		for key, value := range evt.Detail {
			line += fmt.Sprintf(" %s=%q", key, value)
		}
		fmt.Println(line)
	}
}
