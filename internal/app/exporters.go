package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GenerateICS generates an iCalendar (ICS) file for one month with optional reminders
func GenerateICS(w http.ResponseWriter, r *http.Request, monthKey string, events []DatedEvent) {
	// Parse reminder settings
	reminder1Day := r.URL.Query().Get("reminder1Day") == "true"
	reminderSameDay := r.URL.Query().Get("reminderSameDay") == "true"
	time1Day := r.URL.Query().Get("time1Day")
	timeSameDay := r.URL.Query().Get("timeSameDay")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=termine_%s.ics", monthKey))

	// ICS header
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:Termine %s\n", monthKey)
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\n", ICSTimezone)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	for _, event := range events {
		eventDate, err := time.Parse(DateFormat, event.Date)
		if err != nil {
			continue
		}

		writeVEvent(w, event, eventDate)

		// Add reminders
		if reminder1Day && time1Day != "" {
			AddAlarm(w, eventDate, 1, time1Day, event.Title)
		}
		if reminderSameDay && timeSameDay != "" {
			AddAlarm(w, eventDate, 0, timeSameDay, event.Title)
		}

		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}

// writeVEvent writes one all-day VEVENT block, leaving it open so the
// caller can append VALARM blocks before END:VEVENT
func writeVEvent(w io.Writer, event DatedEvent, eventDate time.Time) {
	// The record ID is stable, so calendar apps see updates instead of duplicates
	uid := fmt.Sprintf("%s@%s", event.ID, ICSUIDDomain)

	fmt.Fprintln(w, "BEGIN:VEVENT")
	fmt.Fprintf(w, "UID:%s\n", uid)
	fmt.Fprintf(w, "DTSTAMP:%s\n", time.Now().UTC().Format("20060102T150405Z"))
	fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", eventDate.Format("20060102"))
	fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", eventDate.AddDate(0, 0, 1).Format("20060102"))
	fmt.Fprintf(w, "SUMMARY:%s\n", icsEscape(event.Title))
	if event.Description != "" {
		fmt.Fprintf(w, "DESCRIPTION:%s\n", icsEscape(event.Description))
	}
}

// icsEscape escapes commas, semicolons and newlines per RFC 5545
func icsEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// AddAlarm adds an alarm/reminder to an ICS event
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	// Parse alarm time (HH:MM format)
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}

	// Event is at 00:00 on eventDate, alarm fires at alarmTime on (eventDate - daysBefore);
	// the trigger is expressed relative to the event start
	alarmDate := eventDate.AddDate(0, 0, -daysBefore)
	alarmDateTime := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	duration := alarmDateTime.Sub(eventStart)

	totalMinutes := int(duration.Minutes())
	isNegative := totalMinutes < 0
	if isNegative {
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	remainingMinutes := totalMinutes % (24 * 60)
	hours := remainingMinutes / 60
	minutes := remainingMinutes % 60

	var trigger string
	if isNegative {
		trigger = fmt.Sprintf("-P%dDT%dH%dM", days, hours, minutes)
	} else {
		trigger = fmt.Sprintf("P%dDT%dH%dM", days, hours, minutes)
	}

	fmt.Fprintln(w, "BEGIN:VALARM")
	fmt.Fprintln(w, "ACTION:DISPLAY")
	fmt.Fprintf(w, "DESCRIPTION:Erinnerung: %s\n", icsEscape(description))
	fmt.Fprintf(w, "TRIGGER:%s\n", trigger)
	fmt.Fprintln(w, "END:VALARM")
}

// GenerateCSV generates a CSV file with one month's events
func GenerateCSV(w http.ResponseWriter, monthKey string, events []DatedEvent) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=termine_%s.csv", monthKey))

	// CSV header
	fmt.Fprintln(w, "Datum,Titel,Beschreibung,Erstellt")

	for _, event := range events {
		created := event.Timestamp
		if t, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
			created = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s,%s,%s,%s\n", event.Date, csvEscape(event.Title), csvEscape(event.Description), created)
	}
}

// csvEscape quotes a field if it contains separators or quotes
func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// GenerateJSON generates a JSON file with one month's events
func GenerateJSON(w http.ResponseWriter, monthKey string, events []DatedEvent) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=termine_%s.json", monthKey))

	data := map[string]interface{}{
		"month":  monthKey,
		"events": events,
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}

// GenerateSubscriptionICS generates an iCalendar (ICS) subscription feed
// Unlike GenerateICS, this is designed for calendar subscriptions:
// - No Content-Disposition attachment header (inline content)
// - No VALARM blocks (most calendar apps ignore them in subscriptions)
// - Includes METHOD:PUBLISH and refresh interval headers
func GenerateSubscriptionICS(w http.ResponseWriter, r *http.Request, events []DatedEvent) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintln(w, "METHOD:PUBLISH") // Required for subscriptions
	fmt.Fprintln(w, "X-WR-CALNAME:Terminkalender")
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\n", ICSTimezone)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")
	fmt.Fprintln(w, "X-PUBLISHED-TTL:PT1H") // Suggest refresh every 1 hour

	for _, event := range events {
		eventDate, err := time.Parse(DateFormat, event.Date)
		if err != nil {
			continue
		}

		writeVEvent(w, event, eventDate)
		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}
