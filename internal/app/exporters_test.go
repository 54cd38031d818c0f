package app

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleEvents() []DatedEvent {
	return []DatedEvent{
		{Date: "2025-01-15", EventRecord: EventRecord{
			ID:          "f7a3e4b1-6c2d-4e8f-9a1b-3c5d7e9f0a2b",
			Title:       "Zahnarzt",
			Description: "Kontrolle",
			Timestamp:   "2025-01-02T10:30:00+01:00",
		}},
		{Date: "2025-01-20", EventRecord: EventRecord{
			ID:          "0b1c2d3e-4f5a-4b6c-8d7e-9f0a1b2c3d4e",
			Title:       "Geburtstag, Oma",
			Description: "",
			Timestamp:   "2025-01-03T08:00:00+01:00",
		}},
	}
}

func TestGenerateICS(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?month=2025-01&format=ics", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "2025-01", sampleEvents())

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", contentType)
	}

	// Download should be served as an attachment
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "attachment") {
		t.Errorf("Expected attachment disposition, got: %s", resp.Header.Get("Content-Disposition"))
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Winterberg//Terminkalender//DE",
		"X-WR-CALNAME:Termine 2025-01",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	// All-day event format
	if !strings.Contains(body, "DTSTART;VALUE=DATE:20250115") {
		t.Error("Event should be all-day (DTSTART;VALUE=DATE)")
	}
	if !strings.Contains(body, "DTEND;VALUE=DATE:20250116") {
		t.Error("All-day event should end on next day")
	}

	// UID comes from the stable record ID
	if !strings.Contains(body, "UID:f7a3e4b1-6c2d-4e8f-9a1b-3c5d7e9f0a2b@termin-kalender.winterberg.de") {
		t.Error("Missing or incorrect UID format")
	}

	// Commas in titles must be escaped per RFC 5545
	if !strings.Contains(body, `SUMMARY:Geburtstag\, Oma`) {
		t.Error("Comma in summary should be escaped")
	}

	// Empty description stays away entirely
	if strings.Contains(body, "DESCRIPTION:\n") {
		t.Error("Empty descriptions should not emit a DESCRIPTION line")
	}

	// No reminders requested, no alarms emitted
	if strings.Contains(body, "BEGIN:VALARM") {
		t.Error("No alarms should be emitted without reminder params")
	}
}

func TestGenerateICS_WithReminders(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?month=2025-01&format=ics&reminder1Day=true&time1Day=18:00&reminderSameDay=true&timeSameDay=07:30", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "2025-01", sampleEvents())
	body := w.Body.String()

	// Two reminders per event
	alarmCount := strings.Count(body, "BEGIN:VALARM")
	if alarmCount != 4 {
		t.Errorf("Expected 4 VALARM blocks, got %d", alarmCount)
	}

	// 18:00 the day before = 6 hours before midnight event start
	if !strings.Contains(body, "TRIGGER:-P0DT6H0M") {
		t.Error("Missing day-before trigger")
	}

	// 07:30 same day = 7.5 hours after event start
	if !strings.Contains(body, "TRIGGER:P0DT7H30M") {
		t.Error("Missing same-day trigger")
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()

	GenerateCSV(w, "2025-01", sampleEvents())

	resp := w.Result()
	body := w.Body.String()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/csv") {
		t.Errorf("Expected text/csv, got %s", resp.Header.Get("Content-Type"))
	}

	if !strings.HasPrefix(body, "Datum,Titel,Beschreibung,Erstellt\n") {
		t.Errorf("Missing CSV header, got: %s", body)
	}

	// Creation time formatted as YYYY-MM-DD HH:MM
	if !strings.Contains(body, "2025-01-15,Zahnarzt,Kontrolle,2025-01-02 10:30") {
		t.Errorf("Missing event row, got: %s", body)
	}

	// Fields containing a comma are quoted
	if !strings.Contains(body, `"Geburtstag, Oma"`) {
		t.Errorf("Comma field should be quoted, got: %s", body)
	}
}

func TestGenerateSubscriptionICS(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/subscribe", nil)
	w := httptest.NewRecorder()

	GenerateSubscriptionICS(w, req, sampleEvents())

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", contentType)
	}

	// IMPORTANT: Subscription should NOT have Content-Disposition attachment header
	if resp.Header.Get("Content-Disposition") != "" {
		t.Errorf("Subscription should not have Content-Disposition header, got: %s", resp.Header.Get("Content-Disposition"))
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"X-PUBLISHED-TTL:PT1H",
		"X-WR-CALNAME:Terminkalender",
		"BEGIN:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS subscription output missing required field: %s", field)
		}
	}

	// Subscriptions never carry alarms
	if strings.Count(body, "BEGIN:VALARM") != 0 {
		t.Error("Subscription should not contain alarms")
	}
}

func TestGenerateSubscriptionICS_EmptyEvents(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/subscribe", nil)
	w := httptest.NewRecorder()

	GenerateSubscriptionICS(w, req, []DatedEvent{})

	body := w.Body.String()

	// Should still generate valid ICS
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "END:VCALENDAR") {
		t.Error("Empty feed should still be a valid calendar")
	}
	if strings.Count(body, "BEGIN:VEVENT") != 0 {
		t.Error("Expected 0 events")
	}
}

func TestGenerateSubscriptionICS_InvalidDate(t *testing.T) {
	events := []DatedEvent{
		{Date: "invalid-date", EventRecord: EventRecord{ID: "a", Title: "Broken"}},
		{Date: "2025-01-15", EventRecord: EventRecord{ID: "b", Title: "Valid"}},
	}

	req := httptest.NewRequest("GET", "/api/subscribe", nil)
	w := httptest.NewRecorder()

	GenerateSubscriptionICS(w, req, events)
	body := w.Body.String()

	// Invalid dates are skipped, not fatal
	if strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Errorf("Expected 1 valid event, got %d", strings.Count(body, "BEGIN:VEVENT"))
	}
	if !strings.Contains(body, "SUMMARY:Valid") {
		t.Error("Missing valid event")
	}
	if strings.Contains(body, "SUMMARY:Broken") {
		t.Error("Invalid event should be skipped")
	}
}
