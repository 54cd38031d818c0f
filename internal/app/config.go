package app

import (
	"os"
	"path/filepath"
	"sync"
)

// Config holds the environment-driven settings. Values are loaded in main
// via godotenv + go-env; command-line flags override the port.
type Config struct {
	Port     int    `env:"PORT,default=8080"`
	DataFile string `env:"DATA_FILE"`
	AuthFile string `env:"AUTH_FILE"`
}

// Constants
const (
	DefaultEventsFile = "events.json"
	TmpSuffix         = ".tmp.json"
	FilePermissions   = 0644

	// Canonical key formats
	DateFormat  = "2006-01-02"
	MonthFormat = "2006-01"

	// Selectable date range
	MinDate = "1900-01-01"
	MaxDate = "2100-12-31"

	// Error messages
	ErrTitleRequired     = "Event title is required"
	ErrInvalidDateFormat = "Invalid date format"
	ErrInvalidMonth      = "Invalid month"
	ErrInvalidFormat     = "Invalid format"
	ErrInvalidRequest    = "Invalid request"
	ErrDateOutOfRange    = "Date out of range"
	ErrEventNotFoundMsg  = "Event not found"
	ErrInternalServer    = "Internal server error"
	ErrFailedToSave      = "Failed to save events"

	// ICS constants
	ICSProductID = "-//Winterberg//Terminkalender//DE"
	ICSTimezone  = "Europe/Berlin"
	ICSUIDDomain = "termin-kalender.winterberg.de"
)

// Global variables
var (
	EventsFile  = DefaultEventsFile
	Events      Document
	EventsMutex sync.RWMutex

	// Non-fatal warning from the last load (corrupt store file).
	// Surfaced through /api/config so the UI can show it.
	StoreWarning string

	// Embedded files (set by main)
	IndexHTML []byte
)

func init() {
	if cwd, err := os.Getwd(); err == nil {
		EventsFile = filepath.Join(cwd, DefaultEventsFile)
	}
}
