package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDocument_Add_And_List(t *testing.T) {
	req := require.New(t)
	doc := Document{}

	start := time.Now().Truncate(time.Second)
	rec, err := doc.Add("2024-03-15", "Meeting", "Standup")
	end := time.Now()
	req.NoError(err)

	req.NotEmpty(rec.ID)
	req.Equal("Meeting", rec.Title)
	req.Equal("Standup", rec.Description)

	created, err := time.Parse(time.RFC3339, rec.Timestamp)
	req.NoError(err)
	req.False(created.Before(start), "timestamp before the call")
	req.False(created.After(end), "timestamp after the call")

	events := doc.List("2024-03-15")
	req.Len(events, 1)
	req.Equal(rec, events[0])

	// Second add appends in creation order with a fresh ID
	rec2, err := doc.Add("2024-03-15", "Lunch", "")
	req.NoError(err)
	req.NotEqual(rec.ID, rec2.ID)
	req.Equal([]EventRecord{rec, rec2}, doc.List("2024-03-15"))
}

func TestDocument_Add_EmptyTitle(t *testing.T) {
	req := require.New(t)
	doc := Document{}

	_, err := doc.Add("2024-03-15", "", "Standup")
	req.ErrorIs(err, ErrEmptyTitle)
	req.Empty(doc, "rejected add must not mutate the document")
}

func TestDocument_Delete_Pruning(t *testing.T) {
	req := require.New(t)
	doc := Document{}

	rec, err := doc.Add("2024-03-15", "Meeting", "Standup")
	req.NoError(err)

	// Document has exactly the one month, one date, one record
	req.Len(doc, 1)
	req.Len(doc["2024-03"], 1)
	req.Len(doc["2024-03"]["2024-03-15"], 1)

	// Deleting the only event prunes the date and the month key
	req.NoError(doc.Delete("2024-03-15", rec.ID))
	req.Empty(doc)
}

func TestDocument_Delete_KeepsSiblings(t *testing.T) {
	req := require.New(t)
	doc := Document{}

	first, err := doc.Add("2024-03-15", "Meeting", "")
	req.NoError(err)
	second, err := doc.Add("2024-03-15", "Lunch", "")
	req.NoError(err)
	_, err = doc.Add("2024-03-20", "Dentist", "")
	req.NoError(err)

	req.NoError(doc.Delete("2024-03-15", first.ID))

	req.Equal([]EventRecord{second}, doc.List("2024-03-15"))
	req.Len(doc.List("2024-03-20"), 1)
	req.Len(doc["2024-03"], 2)
}

func TestDocument_Delete_UnknownID(t *testing.T) {
	req := require.New(t)
	doc := Document{}

	rec, err := doc.Add("2024-03-15", "Meeting", "")
	req.NoError(err)

	req.ErrorIs(doc.Delete("2024-03-15", "00000000-0000-0000-0000-000000000000"), ErrEventNotFound)
	req.ErrorIs(doc.Delete("2024-03-16", rec.ID), ErrEventNotFound)
	req.ErrorIs(doc.Delete("2025-07-01", rec.ID), ErrEventNotFound)

	// Failed deletes leave the document untouched
	req.Equal([]EventRecord{rec}, doc.List("2024-03-15"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "events.json")

	doc := Document{}
	_, err := doc.Add("2024-03-15", "会議", "日本語の説明 & <notes>")
	req.NoError(err)
	_, err = doc.Add("2025-12-31", "Silvester", "Feuerwerk")
	req.NoError(err)

	req.NoError(SaveDocument(path, doc))

	loaded, err := LoadDocument(path)
	req.NoError(err)
	req.Equal(doc, loaded)

	// Non-ASCII text is stored verbatim, not \u-escaped
	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Contains(string(data), "会議")
	req.Contains(string(data), "& <notes>")
	req.NotContains(string(data), `\u`)

	// Pretty-printed output
	req.True(strings.HasPrefix(string(data), "{\n"), "document should be indented")
}

func TestSaveDocument_NoTmpLeftover(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "events.json")

	doc := Document{}
	_, err := doc.Add("2024-03-15", "Meeting", "")
	req.NoError(err)

	req.NoError(SaveDocument(path, doc))

	_, err = os.Stat(path + TmpSuffix)
	req.True(os.IsNotExist(err), "temp file should be renamed away")
}

func TestLoadDocument_MissingFile(t *testing.T) {
	req := require.New(t)

	doc, err := LoadDocument(filepath.Join(t.TempDir(), "events.json"))
	req.NoError(err)
	req.NotNil(doc)
	req.Empty(doc)
}

func TestLoadDocument_CorruptFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "events.json")
	req.NoError(os.WriteFile(path, []byte("{not valid json"), 0644))

	doc, err := LoadDocument(path)
	req.ErrorIs(err, ErrCorruptStore)
	req.NotNil(doc)
	req.Empty(doc)

	// The corrupt file is left in place until the next save
	data, readErr := os.ReadFile(path)
	req.NoError(readErr)
	req.Equal("{not valid json", string(data))
}

func TestAddDeleteScenario(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "events.json")

	// Start with {}
	doc, err := LoadDocument(path)
	req.NoError(err)
	req.Empty(doc)

	rec, err := doc.Add("2024-03-15", "Meeting", "Standup")
	req.NoError(err)
	req.NoError(SaveDocument(path, doc))

	// Reload and verify the exact nested shape
	loaded, err := LoadDocument(path)
	req.NoError(err)
	req.Len(loaded, 1)
	req.Len(loaded["2024-03"], 1)
	req.Equal("Meeting", loaded["2024-03"]["2024-03-15"][0].Title)
	req.Equal("Standup", loaded["2024-03"]["2024-03-15"][0].Description)

	// Delete the event: document returns to {}
	req.NoError(loaded.Delete("2024-03-15", rec.ID))
	req.Empty(loaded)
	req.NoError(SaveDocument(path, loaded))

	final, err := LoadDocument(path)
	req.NoError(err)
	req.Empty(final)
}

func TestMonthKey(t *testing.T) {
	req := require.New(t)
	req.Equal("2024-03", MonthKey("2024-03-15"))
	req.Equal("2024-03", MonthKey("2024-03"))
	req.Equal("x", MonthKey("x"))
}
