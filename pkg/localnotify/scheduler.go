// Package localnotify is a device-local notification scheduler: a pending set of
// one-shot notifications keyed by identifier, persisted to a JSON file.
package localnotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

var ErrInvalidNotification = errors.New("invalid notification")

// Notification is one pending, time-triggered local notification
type Notification struct {
	ID        string    `json:"id"`
	TriggerAt time.Time `json:"triggerAt"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
}

// Equal compares content, treating trigger instants by time equality.
func (n Notification) Equal(o Notification) bool {
	return n.ID == o.ID && n.TriggerAt.Equal(o.TriggerAt) && n.Title == o.Title && n.Body == o.Body
}

type stateFile struct {
	Pending []Notification `json:"pending"`
}

// FileScheduler keeps the pending set in memory and rewrites the state file
// atomically on every mutation. Scheduling an existing identifier replaces it.
type FileScheduler struct {
	mu      sync.Mutex
	path    string
	pending map[string]Notification
}

// NewFileScheduler loads the state file at path; a missing file is an empty set.
func NewFileScheduler(path string) (*FileScheduler, error) {
	s := &FileScheduler{path: path, pending: make(map[string]Notification)}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read scheduler state %s: %w", path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return s, nil
	}

	var state stateFile
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("failed to parse scheduler state %s: %w", path, err)
	}
	for _, n := range state.Pending {
		s.pending[n.ID] = n
	}
	return s, nil
}

func (s *FileScheduler) Schedule(_ context.Context, n Notification) error {
	if n.ID == "" || n.TriggerAt.IsZero() {
		return fmt.Errorf("%w: id and trigger time are required", ErrInvalidNotification)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	next[n.ID] = n
	return s.commitLocked(next)
}

func (s *FileScheduler) Cancel(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	changed := false
	for _, id := range ids {
		if _, ok := next[id]; ok {
			delete(next, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.commitLocked(next)
}

// Pending returns every pending notification ordered by trigger time.
func (s *FileScheduler) Pending(_ context.Context) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNotifications(s.pending), nil
}

// TakeDue removes and returns notifications whose trigger time is not after now.
func (s *FileScheduler) TakeDue(now time.Time) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	var due []Notification
	for id, n := range next {
		if !n.TriggerAt.After(now) {
			due = append(due, n)
			delete(next, id)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	if err := s.commitLocked(next); err != nil {
		return nil, err
	}
	return sortedNotificationsSlice(due), nil
}

func (s *FileScheduler) copyLocked() map[string]Notification {
	next := make(map[string]Notification, len(s.pending)+1)
	for k, v := range s.pending {
		next[k] = v
	}
	return next
}

// commitLocked persists next and only then makes it the live set.
func (s *FileScheduler) commitLocked(next map[string]Notification) error {
	buf, err := json.MarshalIndent(stateFile{Pending: sortedNotifications(next)}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scheduler state: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("failed to write scheduler state %s: %w", s.path, err)
	}
	s.pending = next
	return nil
}

func sortedNotifications(m map[string]Notification) []Notification {
	out := make([]Notification, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	return sortedNotificationsSlice(out)
}

func sortedNotificationsSlice(out []Notification) []Notification {
	sort.Slice(out, func(i, j int) bool {
		if out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].TriggerAt.Before(out[j].TriggerAt)
	})
	return out
}
