package status

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedPayload is returned when a job options or session log document
// cannot be read.
var ErrMalformedPayload = errors.New("malformed payload")

// JobOptions is the part of a job's options document this program reads.
type JobOptions struct {
	RunManually bool
}

// LogEntry is one line of a session log.
type LogEntry struct {
	Status string
	Title  string
}

// Failed reports whether the entry records a failure. Veeam writes enum
// names such as "EFailed"; plain "Failed" is accepted as well.
func (e LogEntry) Failed() bool {
	s := strings.ToLower(strings.TrimSpace(e.Status))
	return s == "failed" || s == "efailed"
}

type jobOptionsDoc struct {
	RunManually *string `xml:"RunManually"`
}

type sessionLogDoc struct {
	Entries []struct {
		Status string `xml:"Status,attr"`
		Title  string `xml:"Title,attr"`
	} `xml:"Log"`
}

// ParseJobOptions reads the RunManually flag from a job options document.
// A missing document or flag is an error, not a default.
func ParseJobOptions(raw *string) (JobOptions, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return JobOptions{}, errors.Wrap(ErrMalformedPayload, "job options are empty")
	}
	var doc jobOptionsDoc
	if err := xml.Unmarshal([]byte(*raw), &doc); err != nil {
		return JobOptions{}, errors.Wrapf(ErrMalformedPayload, "job options: %v", err)
	}
	if doc.RunManually == nil {
		return JobOptions{}, errors.Wrap(ErrMalformedPayload, "job options: RunManually not present")
	}
	manual, err := strconv.ParseBool(strings.TrimSpace(*doc.RunManually))
	if err != nil {
		return JobOptions{}, errors.Wrapf(ErrMalformedPayload, "job options: RunManually %q", *doc.RunManually)
	}
	return JobOptions{RunManually: manual}, nil
}

// ParseSessionLog returns the entries of a session log document in document
// order. An absent or blank log has no entries.
func ParseSessionLog(raw *string) ([]LogEntry, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	var doc sessionLogDoc
	if err := xml.Unmarshal([]byte(*raw), &doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedPayload, "session log: %v", err)
	}
	entries := make([]LogEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, LogEntry{Status: e.Status, Title: e.Title})
	}
	return entries, nil
}
