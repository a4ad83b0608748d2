package quiz

import (
	"fmt"
	"strings"
)

// Event categories.
const (
	CatMode  = "mode"
	CatPath  = "path"
	CatName  = "name"
	CatPin   = "pin"
	CatScore = "score"
)

// Event is one recorded gameplay event.
type Event struct {
	Seq      int
	Mode     Mode
	Category string  // mode, path, name, pin, score
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value (score, distance, count)
}

// String formats the event as a fixed-width log line.
//
//	[#007] path     path  accept          Beta
func (e Event) String() string {
	return fmt.Sprintf("[#%03d] %-8s %-5s %-15s %s",
		e.Seq, e.Mode, e.Category, e.Key, e.Value)
}

// EventLog collects structured gameplay events. Unlike the on-screen
// feedback panel it is unbounded and machine-readable.
type EventLog struct {
	entries []Event
	mode    Mode
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog { return &EventLog{} }

// SetMode tags subsequent events with a mode.
func (l *EventLog) SetMode(m Mode) {
	if l != nil {
		l.mode = m
	}
}

// Add records an event. A nil log discards it.
func (l *EventLog) Add(category, key, value string, numVal float64) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, Event{
		Seq:      len(l.entries) + 1,
		Mode:     l.mode,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Entries returns all recorded events.
func (l *EventLog) Entries() []Event {
	if l == nil {
		return nil
	}
	return l.entries
}

// Len returns the number of events.
func (l *EventLog) Len() int { return len(l.Entries()) }

// Filter returns events matching category and/or key. Empty matches any.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Since returns events with Seq greater than seq.
func (l *EventLog) Since(seq int) []Event {
	all := l.Entries()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(all) {
		return nil
	}
	return all[seq:]
}

// CountCategory returns how many events match category and key.
func (l *EventLog) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent event matching category and key.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	es := l.Filter(category, key)
	if len(es) == 0 {
		return Event{}, false
	}
	return es[len(es)-1], true
}

// HasEntry reports whether an event matches category, key and a value substring.
func (l *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.Filter(category, key) {
		if valueSubstr == "" || strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Format returns the full log, one event per line.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
