package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// ServeIndex serves the calendar interface HTML
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(IndexHTML); err != nil {
		log.Printf("Error writing index HTML: %v", err)
	}
}

// GetConfig returns the application configuration for the UI
func GetConfig(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	EventsMutex.RLock()
	warning := StoreWarning
	EventsMutex.RUnlock()

	config := map[string]interface{}{
		"today":        now.Format(DateFormat),
		"minDate":      MinDate,
		"maxDate":      MaxDate,
		"authEnabled":  AuthEnabled(),
		"storeWarning": warning,
		"holidays":     Holidays(now.Year()),
	}
	WriteJSON(w, config)
}

// HandleMonth returns the month grid for a displayed year/month
// Query params: year, month (both required)
func HandleMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1900 || year > 2100 {
		http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
		return
	}

	EventsMutex.RLock()
	view := MonthGrid(year, time.Month(month), Events, time.Now())
	EventsMutex.RUnlock()

	WriteJSON(w, view)
}

// HandleNavigate applies one navigator transition and returns the new state.
// Payload: {"year": ..., "month": ..., "selected": ..., "action": "prev"|"next"|"select", "date": ...}
func HandleNavigate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		NavState
		Action string `json:"action"`
		Date   string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := req.NavState
	if state.Year == 0 {
		state = DefaultNav(time.Now())
	}

	switch req.Action {
	case "prev":
		state = state.PrevMonth()
	case "next":
		state = state.NextMonth()
	case "select":
		var err error
		state, err = state.Select(req.Date)
		if err != nil {
			http.Error(w, ErrDateOutOfRange, http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	WriteJSON(w, state)
}

// HandleEvents returns the event list for a date
// Query param: date (required, YYYY-MM-DD)
func HandleEvents(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(DateFormat, date); err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	EventsMutex.RLock()
	list := Events.List(date)
	events := make([]EventRecord, len(list))
	copy(events, list)
	EventsMutex.RUnlock()

	WriteJSON(w, map[string]interface{}{
		"date":   date,
		"events": events,
	})
}

// AddEvent creates a new event on a date and persists the store
func AddEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AddEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateAddEvent(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	EventsMutex.Lock()
	defer EventsMutex.Unlock()

	rec, err := Events.Add(req.Date, req.Title, req.Description)
	if err != nil {
		http.Error(w, ErrTitleRequired, http.StatusBadRequest)
		return
	}

	if err := saveStoreLocked(); err != nil {
		log.Printf("Error saving events: %v", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"status": "ok",
		"event":  rec,
	})
}

// DeleteEvent removes an event by ID from a date and persists the store
func DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req DeleteEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateDeleteEvent(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	EventsMutex.Lock()
	defer EventsMutex.Unlock()

	if err := Events.Delete(req.Date, req.ID); err != nil {
		http.Error(w, ErrEventNotFoundMsg, http.StatusNotFound)
		return
	}

	if err := saveStoreLocked(); err != nil {
		log.Printf("Error saving events: %v", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, map[string]string{"status": "ok"})
}

// monthEventsLocked flattens one month's events into date order
// (caller must hold at least a read lock)
func monthEventsLocked(monthKey string) []DatedEvent {
	days := Events[monthKey]
	dates := lo.Keys(days)
	sort.Strings(dates)

	var events []DatedEvent
	for _, date := range dates {
		for _, e := range days[date] {
			events = append(events, DatedEvent{Date: date, EventRecord: e})
		}
	}
	return events
}

// allEventsLocked flattens the whole document into date order
// (caller must hold at least a read lock)
func allEventsLocked() []DatedEvent {
	months := lo.Keys(Events)
	sort.Strings(months)

	var events []DatedEvent
	for _, m := range months {
		events = append(events, monthEventsLocked(m)...)
	}
	return events
}

// HandleDownload handles month exports in ICS, CSV or JSON format
// Query params: month (YYYY-MM), format (ics|csv|json)
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	monthKey := r.URL.Query().Get("month")
	format := r.URL.Query().Get("format")

	if _, err := time.Parse(MonthFormat, monthKey); err != nil {
		http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
		return
	}

	EventsMutex.RLock()
	events := monthEventsLocked(monthKey)
	EventsMutex.RUnlock()

	switch format {
	case "ics":
		GenerateICS(w, r, monthKey, events)
	case "csv":
		GenerateCSV(w, monthKey, events)
	case "json":
		GenerateJSON(w, monthKey, events)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// HandleSubscribe serves an ICS feed with every stored event
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	EventsMutex.RLock()
	events := allEventsLocked()
	EventsMutex.RUnlock()

	GenerateSubscriptionICS(w, r, events)
}
