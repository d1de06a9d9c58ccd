package repository

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var transcriptLogHeader = []string{"timestamp", "matched_keywords", "snippet"}

// TranscriptLog appends transcripts to daily CSV reports. Every transcript
// goes to all_transcripts_<day>.csv; those with a keyword hit also go to
// master_hits_<day>.csv. The directory is given per call so a changed
// report_dir applies to the next transcript.
type TranscriptLog struct{}

func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{}
}

// Append records one transcript under dir
func (l *TranscriptLog) Append(dir string, at time.Time, matched []string, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", dir))
	}

	day := at.Format("2006_01_02")
	row := []string{at.Format("2006-01-02 15:04:05"), strings.Join(matched, ", "), strings.TrimSpace(text)}

	if err := appendCSV(filepath.Join(dir, "all_transcripts_"+day+".csv"), row); err != nil {
		return err
	}
	if len(matched) > 0 {
		if err := appendCSV(filepath.Join(dir, "master_hits_"+day+".csv"), row); err != nil {
			return err
		}
	}
	return nil
}

func appendCSV(path string, row []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open report", goerr.V("path", path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return goerr.Wrap(err, "failed to stat report", goerr.V("path", path))
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(transcriptLogHeader); err != nil {
			return goerr.Wrap(err, "failed to write report header", goerr.V("path", path))
		}
	}
	if err := w.Write(row); err != nil {
		return goerr.Wrap(err, "failed to write report row", goerr.V("path", path))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush report", goerr.V("path", path))
	}
	return nil
}
