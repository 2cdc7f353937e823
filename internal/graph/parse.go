package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20

// Record is one parsed input line: identifier;description;duration;deps...
type Record struct {
	ID          string
	Description string
	Duration    int
	Deps        []string
}

// Parse reads semicolon-separated task records from r and returns the
// finalized graph. Every record is validated before any task is added.
func Parse(r io.Reader) (*TaskGraph, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	return FromRecords(records)
}

// ReadRecords splits r into records. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, err := parseRecord(text)
		if err != nil {
			return nil, &RecordError{Where: fmt.Sprintf("line %d", line), Msg: err.Error()}
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return records, nil
}

func parseRecord(text string) (Record, error) {
	fields := strings.Split(text, ";")
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return Record{}, fmt.Errorf("empty task identifier")
	}

	duration, err := parseDuration(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("task %q: %w", id, err)
	}

	rec := Record{ID: id, Description: fields[1], Duration: duration}
	for _, dep := range fields[3:] {
		if dep = strings.TrimSpace(dep); dep != "" {
			rec.Deps = append(rec.Deps, dep)
		}
	}
	return rec, nil
}

// parseDuration accepts base-10 unsigned integer literals only; signs are rejected.
func parseDuration(field string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", field)
	}
	return int(n), nil
}

// FromRecords builds and finalizes a graph from already validated records.
func FromRecords(records []Record) (*TaskGraph, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	b := NewBuilder()
	for _, rec := range records {
		task, err := b.Add(rec.ID, rec.Duration, rec.Deps)
		if err != nil {
			return nil, err
		}
		task.Description = rec.Description
	}
	return b.Finalize()
}
