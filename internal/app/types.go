package app

// EventRecord is a single user-created entry attached to a calendar date.
// Records are immutable once created; the only mutation is removal by ID.
type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Document is the entire persisted event collection: a mapping from
// "YYYY-MM" month keys to "YYYY-MM-DD" date keys to the events created
// on that date, in creation order. Month and date keys only exist while
// they hold at least one event.
type Document map[string]map[string][]EventRecord

// DatedEvent pairs an event with the date it belongs to, for exports
// that flatten the document into a single chronological list.
type DatedEvent struct {
	Date string `json:"date"`
	EventRecord
}
