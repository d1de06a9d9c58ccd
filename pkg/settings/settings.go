// Package settings loads and updates the YAML settings document. Callers
// load it on every cycle so edits between runs take effect.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bowr/streamear/pkg/scoring"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRecordSeconds   = 30
	DefaultIntervalMinutes = 15
	DefaultReportDir       = "reports"
)

// Settings is the mutable run configuration
type Settings struct {
	Keywords        []string `yaml:"keywords"`
	TrustedSources  []string `yaml:"trusted_sources,omitempty"`
	Streams         []string `yaml:"streams,omitempty"`
	RecordSeconds   int      `yaml:"record_seconds,omitempty"`
	IntervalMinutes int      `yaml:"interval_minutes,omitempty"`
	ReportDir       string   `yaml:"report_dir,omitempty"`
}

// RecordDuration returns the capture length, defaulted
func (s *Settings) RecordDuration() time.Duration {
	if s.RecordSeconds <= 0 {
		return DefaultRecordSeconds * time.Second
	}
	return time.Duration(s.RecordSeconds) * time.Second
}

// Interval returns the wait between listener cycles, defaulted
func (s *Settings) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return DefaultIntervalMinutes * time.Minute
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// Trusted returns the trusted source allow-list, defaulted
func (s *Settings) Trusted() []string {
	if len(s.TrustedSources) == 0 {
		return scoring.DefaultTrustedSources
	}
	return s.TrustedSources
}

// Load reads the settings document. A missing file yields empty settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{ReportDir: DefaultReportDir}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read settings", goerr.V("path", path))
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, goerr.Wrap(err, "failed to parse settings", goerr.V("path", path))
	}

	s.Keywords = normalizeKeywords(s.Keywords)
	if s.ReportDir == "" {
		s.ReportDir = DefaultReportDir
	}
	if strings.HasPrefix(s.ReportDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s.ReportDir = filepath.Join(home, s.ReportDir[2:])
		}
	}
	return &s, nil
}

// Save writes the settings document
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal settings")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create settings directory", goerr.V("dir", dir))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write settings", goerr.V("path", path))
	}
	return nil
}

// AddKeyword appends a keyword to the settings document if absent and
// returns the resulting keyword list and whether it changed.
func AddKeyword(path, keyword string) ([]string, bool, error) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil, false, goerr.New("keyword is empty")
	}

	s, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	if slices.Contains(s.Keywords, kw) {
		return s.Keywords, false, nil
	}

	s.Keywords = append(s.Keywords, kw)
	if err := Save(path, s); err != nil {
		return nil, false, err
	}
	return s.Keywords, true, nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || slices.Contains(out, kw) {
			continue
		}
		out = append(out, kw)
	}
	return out
}
