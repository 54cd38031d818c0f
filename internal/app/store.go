package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
)

// Store errors
var (
	ErrEmptyTitle    = errors.New("event title must not be empty")
	ErrEventNotFound = errors.New("event not found")
	ErrCorruptStore  = errors.New("event store file is corrupt")
)

// MonthKey returns the "YYYY-MM" grouping key for a "YYYY-MM-DD" date key.
func MonthKey(date string) string {
	if len(date) >= len("2006-01") {
		return date[:len("2006-01")]
	}
	return date
}

// LoadDocument reads the persisted document from path.
// A missing file is not an error: it yields an empty document.
// A file that cannot be parsed also yields an empty document, together with
// an ErrCorruptStore-wrapped error so the caller can warn the user; the
// corrupt file itself is left untouched until the next save replaces it.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// SaveDocument writes the whole document to path as formatted JSON.
// Non-ASCII text is preserved verbatim (no \u escaping). The data is
// written to a temp file first and renamed over the target, so a reader
// never sees a partial write.
func SaveDocument(path string, doc Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}

	tmpFile := path + TmpSuffix
	if err := os.WriteFile(tmpFile, buf.Bytes(), FilePermissions); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}

// Add appends a new event to the given date, creating the month and date
// containers as needed. The record gets a fresh UUID and the current time
// as its creation timestamp. An empty title is rejected with no mutation.
func (d Document) Add(date, title, description string) (EventRecord, error) {
	if title == "" {
		return EventRecord{}, ErrEmptyTitle
	}

	month := MonthKey(date)
	if d[month] == nil {
		d[month] = make(map[string][]EventRecord)
	}

	rec := EventRecord{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	d[month][date] = append(d[month][date], rec)
	return rec, nil
}

// Delete removes the event with the given ID from the date's list.
// Empty containers are pruned immediately: the date key goes when its last
// event is removed, the month key when its last date goes. An unknown date
// or ID returns ErrEventNotFound and leaves the document unchanged.
func (d Document) Delete(date, id string) error {
	month := MonthKey(date)
	days, ok := d[month]
	if !ok {
		return ErrEventNotFound
	}
	events, ok := days[date]
	if !ok {
		return ErrEventNotFound
	}

	idx := -1
	for i, e := range events {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEventNotFound
	}

	events = append(events[:idx], events[idx+1:]...)
	if len(events) == 0 {
		delete(days, date)
		if len(days) == 0 {
			delete(d, month)
		}
	} else {
		days[date] = events
	}
	return nil
}

// List returns the events for a date in creation order, or nil if the
// date has none. The returned slice is the document's own; callers must
// not mutate it.
func (d Document) List(date string) []EventRecord {
	return d[MonthKey(date)][date]
}

// LoadStore loads the document from EventsFile into the in-memory store.
// Corrupt-file errors are downgraded to a warning (empty store), matching
// the recoverable-error contract.
func LoadStore() error {
	doc, err := LoadDocument(EventsFile)

	EventsMutex.Lock()
	Events = doc
	if err != nil {
		StoreWarning = fmt.Sprintf("Event file could not be read, starting empty: %v", err)
		log.Printf("⚠️  %s", StoreWarning)
	} else {
		StoreWarning = ""
	}
	EventsMutex.Unlock()

	return err
}

// saveStoreLocked persists the in-memory document (caller must hold the lock).
func saveStoreLocked() error {
	return SaveDocument(EventsFile, Events)
}
