package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONFile collects day records keyed by date and writes them as one JSON
// object on Flush and Close.
type JSONFile struct {
	mu   sync.Mutex
	path string
	days map[string]DayRecord
}

// NewJSON starts a results file. Records already in path are kept so a rerun
// over part of a range does not lose the other days.
func NewJSON(path string) (*JSONFile, error) {
	j := &JSONFile{path: path, days: make(map[string]DayRecord)}

	existing, err := ReadJSON(path)
	switch {
	case err == nil:
		j.days = existing
	case os.IsNotExist(err):
	default:
		return nil, err
	}
	return j, nil
}

func (j *JSONFile) RecordDay(d DayRecord) error {
	if d.Date == "" {
		return fmt.Errorf("json journal: day record has no date")
	}
	if d.Trades == nil {
		d.Trades = []TradeRecord{}
	}
	j.mu.Lock()
	j.days[d.Date] = d
	j.mu.Unlock()
	return j.Flush()
}

// Flush rewrites the file with every record collected so far.
func (j *JSONFile) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// encoding/json sorts map keys, so dates come out in calendar order.
	data, err := json.MarshalIndent(j.days, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return os.Rename(tmp, j.path)
}

func (j *JSONFile) Close() error {
	return j.Flush()
}

// ReadJSON loads a results file written by JSONFile.
func ReadJSON(path string) (map[string]DayRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]DayRecord)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for date, d := range out {
		d.Date = date
		out[date] = d
	}
	return out, nil
}
