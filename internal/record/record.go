// Package record provides the typed records stored in vault Markdown files
// and the codec that converts between them and checklist lines.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DataType identifies which kind of record a vault file holds.
// Each data type syncs to its own file, resolved independently.
type DataType string

const (
	// TypeTask is a checklist task with a completion state.
	TypeTask DataType = "task"
	// TypeEvent is a calendar event.
	TypeEvent DataType = "event"
	// TypeSession is a focus-session log entry.
	TypeSession DataType = "session"
	// TypeServiceKey is an API secret entry.
	TypeServiceKey DataType = "key"
	// TypeProject is a per-machine project metadata entry.
	TypeProject DataType = "project"
)

// AllDataTypes lists every data type the engine syncs.
var AllDataTypes = []DataType{TypeTask, TypeEvent, TypeSession, TypeServiceKey, TypeProject}

// Valid reports whether dt is a known data type.
func (dt DataType) Valid() bool {
	switch dt {
	case TypeTask, TypeEvent, TypeSession, TypeServiceKey, TypeProject:
		return true
	}
	return false
}

// String returns the data type's stable name, used in config keys and CLI args.
func (dt DataType) String() string {
	return string(dt)
}

// ParseDataType converts a CLI/config name to a DataType.
func ParseDataType(s string) (DataType, error) {
	dt := DataType(s)
	if !dt.Valid() {
		return "", fmt.Errorf("unknown data type %q (want one of: task, event, session, key, project)", s)
	}
	return dt, nil
}

// Priority is a record's urgency level.
type Priority string

const (
	// PriorityHigh marks urgent records.
	PriorityHigh Priority = "high"
	// PriorityNormal is the default when no priority sigil is present.
	PriorityNormal Priority = "normal"
	// PriorityLow marks backlog records.
	PriorityLow Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Attachment is a named reference to a file associated with a record.
// Attachments are in-memory metadata; they have no checklist sigil and
// do not survive a Markdown round trip.
type Attachment struct {
	Name string
	Path string
}

// Record is one structured entry in a vault file.
//
// Records preserve the file's line order as their canonical ordering.
// ParentID and IndentLevel describe checklist nesting; ParentID is derived
// from the ancestor stack during parse, never stored in the source text.
type Record struct {
	// ===== Identity =====
	ID   string
	Type DataType

	// ===== Content =====
	Text string
	Done bool // tasks only; other types always serialize unchecked

	// ===== Metadata sigils =====
	Priority Priority
	Category string
	Tags     []string   // first-seen order, kept for stable diffs
	DueDate  *time.Time // calendar date, no time component
	Note     string

	// ===== In-memory only =====
	Conclusion  string
	Attachments []Attachment

	// ===== Nesting =====
	ParentID    string
	IndentLevel int

	// ===== Timestamps =====
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a record of the given type with a fresh ID and timestamps.
func New(dt DataType, text string) *Record {
	now := time.Now()
	return &Record{
		ID:        uuid.NewString(),
		Type:      dt,
		Text:      text,
		Priority:  PriorityNormal,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the record has valid field values.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown data type %q", r.Type)
	}
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", r.Priority)
	}
	if r.IndentLevel < 0 {
		return fmt.Errorf("indent level must be non-negative (got %d)", r.IndentLevel)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
// This ensures consistent behavior when fields are omitted.
func (r *Record) SetDefaults() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
}

// Touch sets UpdatedAt to the current time.
// This should be called whenever any field is mutated.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// Date normalizes t to a calendar date (midnight UTC) for use as a DueDate.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
