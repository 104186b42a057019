// Package ical reads the garbage-collection calendar file and implements
// the app.CalendarSource port. Only the VEVENT fields the dashboard needs
// are understood: SUMMARY and DTSTART (date or datetime form). The
// municipality prefixes every summary with a category ("Entsorgung: Glas");
// everything through the first ": " is stripped.
package ical

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/haukened/hearth/internal/app"
	"github.com/haukened/hearth/internal/domain"
)

// Entry is one calendar event: a cleaned label and its start date.
type Entry struct {
	Label string
	Date  time.Time
}

// dtstart layouts seen in municipal exports, tried in order.
var dtstartLayouts = []string{
	"20060102",
	"20060102T150405Z",
	"20060102T150405",
}

// Parse reads ICS text and returns one Entry per VEVENT that carries both a
// summary and a parseable start. Long lines folded per RFC 5545 (leading
// space or tab on the continuation) are unfolded first.
func Parse(r io.Reader) ([]Entry, error) {
	lines, err := unfold(r)
	if err != nil {
		return nil, err
	}

	var (
		entries  []Entry
		inEvent  bool
		summary  string
		start    time.Time
		hasStart bool
	)
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			summary, start, hasStart = "", time.Time{}, false
		case line == "END:VEVENT":
			if inEvent && summary != "" && hasStart {
				entries = append(entries, Entry{Label: stripPrefix(summary), Date: start})
			}
			inEvent = false
		case !inEvent:
			// header lines (VERSION, PRODID, ...) are irrelevant
		case strings.HasPrefix(line, "SUMMARY"):
			if _, v, ok := splitProperty(line); ok {
				summary = v
			}
		case strings.HasPrefix(line, "DTSTART"):
			if _, v, ok := splitProperty(line); ok {
				if t, err := parseDTStart(v); err == nil {
					start, hasStart = t, true
				}
			}
		}
	}
	return entries, nil
}

// unfold reads all lines and joins RFC 5545 continuation lines.
func unfold(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	return lines, nil
}

// splitProperty splits "NAME;PARAMS:value" into name and value.
func splitProperty(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}
	return name, line[idx+1:], true
}

// parseDTStart tries the known municipal layouts.
func parseDTStart(v string) (time.Time, error) {
	for _, layout := range dtstartLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized DTSTART %q", v)
}

// stripPrefix drops everything through the first ": " separator.
func stripPrefix(summary string) string {
	if idx := strings.Index(summary, ": "); idx >= 0 {
		return summary[idx+2:]
	}
	return summary
}

// FileSource implements app.CalendarSource over a calendar file on disk.
// The file is re-read per call so a refreshed export is picked up without a
// restart.
type FileSource struct {
	Path string
}

var _ app.CalendarSource = (*FileSource)(nil)

// NewFileSource returns a FileSource over the given ICS file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Events parses the file into one-off domain events.
func (f *FileSource) Events(ctx context.Context) ([]domain.Event, error) {
	_ = ctx // local read, no cancellation point
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open calendar: %w", err)
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, domain.Event{Label: e.Label, Kind: domain.OneOff, Date: e.Date})
	}
	return events, nil
}
