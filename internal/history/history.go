// Package history keeps an append-only JSON-lines log of analysis runs and
// derives issue trends from it.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/stats"
)

// Record is one analysis run of one file.
type Record struct {
	Timestamp   time.Time      `json:"timestamp"`
	File        string         `json:"file"`
	Total       int            `json:"total_issues"`
	Errors      int            `json:"total_errors"`
	Suggestions int            `json:"total_suggestions"`
	Complexity  map[string]int `json:"complexity,omitempty"`
}

// NewRecord summarizes result for file.
func NewRecord(file string, result *models.AnalysisResult, at time.Time) Record {
	r := Record{
		Timestamp:   at.UTC(),
		File:        file,
		Total:       result.Total(),
		Errors:      len(result.Errors),
		Suggestions: len(result.Suggestions),
	}
	if c := result.Complexity(); len(c) > 0 {
		r.Complexity = c
	}
	return r
}

// Log appends records to a file. Appends from one process are serialized.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open returns a log writing to path. The file is created on first append.
func Open(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes records, one JSON object per line.
func (l *Log) Append(records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("encode history record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write history: %w", err)
	}
	return f.Close()
}

// Read returns all records in file order. Malformed lines are skipped and
// counted. A missing log yields no records.
func (l *Log) Read() ([]Record, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var records []Record
	bad := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			bad++
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return records, bad, fmt.Errorf("read history: %w", err)
	}
	return records, bad, nil
}

// ForFile returns the records of one file.
func ForFile(records []Record, file string) []Record {
	var out []Record
	for _, r := range records {
		if r.File == file {
			out = append(out, r)
		}
	}
	return out
}

// Files lists the distinct files in the log, sorted.
func Files(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.File] {
			seen[r.File] = true
			out = append(out, r.File)
		}
	}
	sort.Strings(out)
	return out
}

// Trend summarizes how a file's issue count moves across runs.
type Trend struct {
	File   string           `json:"file"`
	Runs   int              `json:"runs"`
	First  int              `json:"first_total"`
	Last   int              `json:"last_total"`
	Totals stats.TrendStats `json:"totals"`
	// Complexity is the mean method complexity per run.
	Complexity stats.TrendStats `json:"complexity"`
}

// Direction describes the slope of the total issue count.
func (t Trend) Direction() string {
	switch {
	case t.Runs < 2 || math.Abs(t.Totals.Slope) < 1e-9:
		return "stable"
	case t.Totals.Slope < 0:
		return "improving"
	default:
		return "worsening"
	}
}

// ComputeTrend fits total issues and mean complexity against run index.
// Records are ordered by timestamp first.
func ComputeTrend(file string, records []Record) Trend {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	t := Trend{File: file, Runs: len(sorted)}
	if len(sorted) == 0 {
		return t
	}
	totals := make([]float64, len(sorted))
	complexity := make([]float64, len(sorted))
	for i, r := range sorted {
		totals[i] = float64(r.Total)
		complexity[i] = meanComplexity(r.Complexity)
	}
	t.First = sorted[0].Total
	t.Last = sorted[len(sorted)-1].Total
	t.Totals = stats.Trend(totals)
	t.Complexity = stats.Trend(complexity)
	return t
}

func meanComplexity(m map[string]int) float64 {
	if len(m) == 0 {
		return 0
	}
	sum := 0
	for _, v := range m {
		sum += v
	}
	return float64(sum) / float64(len(m))
}
