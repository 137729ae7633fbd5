// Package daylog holds a habit's day records: an ordered collection with
// at most one record per date, plus backfill and creation-date rebase.
package daylog

import (
	"fmt"
	"sort"

	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

// Log is a habit's day records ordered by date (oldest first), unique by date.
type Log struct {
	records []models.DayRecord
	index   map[string]int
}

// New builds a Log from stored records. Duplicate or malformed dates are rejected.
func New(records []models.DayRecord) (*Log, error) {
	l := &Log{
		records: make([]models.DayRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if err := l.Insert(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Len returns the number of records
func (l *Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the records, oldest first
func (l *Log) Records() []models.DayRecord {
	out := make([]models.DayRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Descending returns a copy of the records, most recent first
func (l *Log) Descending() []models.DayRecord {
	out := make([]models.DayRecord, len(l.records))
	for i, r := range l.records {
		out[len(l.records)-1-i] = r
	}
	return out
}

// Get returns the record for a date
func (l *Log) Get(date string) (models.DayRecord, bool) {
	i, ok := l.index[date]
	if !ok {
		return models.DayRecord{}, false
	}
	return l.records[i], true
}

// Has reports whether a record exists for a date
func (l *Log) Has(date string) bool {
	_, ok := l.index[date]
	return ok
}

// First returns the oldest record
func (l *Log) First() (models.DayRecord, bool) {
	if len(l.records) == 0 {
		return models.DayRecord{}, false
	}
	return l.records[0], true
}

// Last returns the most recent record
func (l *Log) Last() (models.DayRecord, bool) {
	if len(l.records) == 0 {
		return models.DayRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// Insert adds a record, keeping date order. A second record for the same date is an error.
func (l *Log) Insert(r models.DayRecord) error {
	if _, err := utils.StringToDate(r.Date); err != nil {
		return err
	}
	if _, exists := l.index[r.Date]; exists {
		return fmt.Errorf("duplicate day record for %s", r.Date)
	}

	// Canonical dates sort lexicographically in chronological order
	pos := sort.Search(len(l.records), func(i int) bool { return l.records[i].Date > r.Date })
	l.records = append(l.records, models.DayRecord{})
	copy(l.records[pos+1:], l.records[pos:])
	l.records[pos] = r
	l.reindex(pos)
	return nil
}

// Put replaces the record stored for r.Date
func (l *Log) Put(r models.DayRecord) error {
	i, ok := l.index[r.Date]
	if !ok {
		return fmt.Errorf("no day record for %s", r.Date)
	}
	l.records[i] = r
	return nil
}

// RemoveBefore deletes every record dated strictly before date and returns them.
func (l *Log) RemoveBefore(date string) []models.DayRecord {
	cut := sort.Search(len(l.records), func(i int) bool { return l.records[i].Date >= date })
	if cut == 0 {
		return nil
	}

	removed := make([]models.DayRecord, cut)
	copy(removed, l.records[:cut])
	for _, r := range removed {
		delete(l.index, r.Date)
	}
	l.records = append(l.records[:0], l.records[cut:]...)
	l.reindex(0)
	return removed
}

func (l *Log) reindex(from int) {
	for i := from; i < len(l.records); i++ {
		l.index[l.records[i].Date] = i
	}
}
