package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidSeed = goerr.New("invalid seed")
)

// TimestampLayout is the persisted second-precision layout of Seed.Timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultSource is the provenance tag of seeds planted by the listener
const DefaultSource = "Live Stream"

type SeedID string

// NewSeedID generates SEED-<YYYYMMDD-HHMMSS>-<6 hex> for the given creation time
func NewSeedID(at time.Time) SeedID {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return SeedID("SEED-" + at.Format("20060102-150405") + "-" + suffix)
}

type Status string

const (
	StatusDormant   Status = "dormant"
	StatusDiscarded Status = "discarded"
	StatusPlanted   Status = "planted"
	StatusSprouting Status = "sprouting"
	StatusBlooming  Status = "blooming"

	// StatusUnknown is assigned to persisted seeds without a status when counting
	StatusUnknown Status = "unknown"
)

// Normalize lowercases the status; empty becomes StatusUnknown
func (s Status) Normalize() Status {
	if s == "" {
		return StatusUnknown
	}
	return Status(strings.ToLower(string(s)))
}

// Validate checks if the status is one of the lifecycle statuses
func (s Status) Validate() error {
	switch s.Normalize() {
	case StatusDormant, StatusDiscarded, StatusPlanted, StatusSprouting, StatusBlooming:
		return nil
	default:
		return goerr.Wrap(ErrInvalidSeed, "unknown status", goerr.V("status", s))
	}
}

// Pending reports whether a seed in this status is re-evaluated by germination
func (s Status) Pending() bool {
	switch s.Normalize() {
	case StatusPlanted, StatusSprouting:
		return true
	default:
		return false
	}
}

// Seed is a detected keyword mention tracked through its lifecycle
type Seed struct {
	ID         SeedID
	Timestamp  string
	StreamURL  string
	Keywords   []string
	Text       string
	Confidence float64
	Status     Status
	Source     string
	Tags       []string

	// set when a decoded record carried no confidence field
	confidenceMissing bool
}

// seedRecord is the persisted shape of a Seed. Confidence is a pointer so an
// absent field survives a decode and re-encode as absent.
type seedRecord struct {
	ID         SeedID   `json:"id"`
	Timestamp  string   `json:"timestamp"`
	StreamURL  string   `json:"stream_url"`
	Keywords   []string `json:"keywords"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Status     Status   `json:"status"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// MarshalJSON writes the persisted shape. Keywords and tags are never null.
func (s Seed) MarshalJSON() ([]byte, error) {
	rec := seedRecord{
		ID:        s.ID,
		Timestamp: s.Timestamp,
		StreamURL: s.StreamURL,
		Keywords:  nonNil(s.Keywords),
		Text:      s.Text,
		Status:    s.Status,
		Source:    s.Source,
		Tags:      nonNil(s.Tags),
	}
	if !s.confidenceMissing {
		c := s.Confidence
		rec.Confidence = &c
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON reads the persisted shape and remembers a missing confidence
func (s *Seed) UnmarshalJSON(data []byte) error {
	var rec seedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*s = Seed{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		StreamURL: rec.StreamURL,
		Keywords:  nonNil(rec.Keywords),
		Text:      rec.Text,
		Status:    rec.Status,
		Source:    rec.Source,
		Tags:      nonNil(rec.Tags),
	}
	if rec.Confidence == nil {
		s.confidenceMissing = true
	} else {
		s.Confidence = *rec.Confidence
	}
	return nil
}

// SeedInput is a detection event together with its scoring outcome
type SeedInput struct {
	StreamURL  string
	Text       string
	Keywords   []string
	DetectedAt time.Time
	Confidence float64
	Status     Status
	Source     string
}

// NewSeed assembles a seed with a fresh ID. Text is trimmed, Keywords and
// Tags are never nil.
func NewSeed(input SeedInput) *Seed {
	keywords := make([]string, len(input.Keywords))
	copy(keywords, input.Keywords)

	source := input.Source
	if source == "" {
		source = DefaultSource
	}

	at := input.DetectedAt.Truncate(time.Second)
	return &Seed{
		ID:         NewSeedID(at),
		Timestamp:  at.Format(TimestampLayout),
		StreamURL:  input.StreamURL,
		Keywords:   keywords,
		Text:       strings.TrimSpace(input.Text),
		Confidence: input.Confidence,
		Status:     input.Status,
		Source:     source,
		Tags:       []string{},
	}
}

// CreatedAt parses Timestamp in the local time zone
func (s *Seed) CreatedAt() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidSeed, "malformed timestamp",
			goerr.V("id", s.ID), goerr.V("timestamp", s.Timestamp))
	}
	return t, nil
}

// Age returns how long ago the seed was created relative to now
func (s *Seed) Age(now time.Time) (time.Duration, error) {
	created, err := s.CreatedAt()
	if err != nil {
		return 0, err
	}
	return now.Sub(created), nil
}

// DuplicateOf reports whether both seeds describe the same detection event
func (s *Seed) DuplicateOf(other *Seed) bool {
	return s.Timestamp == other.Timestamp && s.Text == other.Text
}

// Validate checks the fields scoring depends on
func (s *Seed) Validate() error {
	if s.ID == "" {
		return goerr.Wrap(ErrInvalidSeed, "id is empty")
	}
	if _, err := s.CreatedAt(); err != nil {
		return err
	}
	if s.confidenceMissing {
		return goerr.Wrap(ErrInvalidSeed, "confidence is missing", goerr.V("id", s.ID))
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return goerr.Wrap(ErrInvalidSeed, "confidence out of range",
			goerr.V("id", s.ID), goerr.V("confidence", s.Confidence))
	}
	if err := s.Status.Validate(); err != nil {
		return goerr.Wrap(err, "invalid seed status", goerr.V("id", s.ID))
	}
	return nil
}

// Copy returns a deep copy of the seed
func (s *Seed) Copy() *Seed {
	c := *s
	if s.Keywords != nil {
		c.Keywords = append([]string{}, s.Keywords...)
	}
	if s.Tags != nil {
		c.Tags = append([]string{}, s.Tags...)
	}
	return &c
}
