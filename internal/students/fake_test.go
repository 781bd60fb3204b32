package students

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"escola/internal/notify"
)

// fakeTable is an in-memory Table with error injection and call recording.
type fakeTable struct {
	mu     sync.Mutex
	rows   []Student
	nextID int

	SelectError error
	InsertError error
	UpdateError error

	SelectCalls int
	InsertCalls []Student
	UpdateCalls []Patch
}

func (f *fakeTable) Select(_ context.Context, order Ordering) ([]Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SelectCalls++
	if f.SelectError != nil {
		return nil, f.SelectError
	}
	out := make([]Student, len(f.rows))
	copy(out, f.rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTable) Insert(_ context.Context, s Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls = append(f.InsertCalls, s)
	if f.InsertError != nil {
		return f.InsertError
	}
	f.nextID++
	s.ID = fmt.Sprintf("id-%d", f.nextID)
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeTable) Update(_ context.Context, id string, patch Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls = append(f.UpdateCalls, patch)
	if f.UpdateError != nil {
		return f.UpdateError
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			patch.Apply(&f.rows[i])
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeTable) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SelectCalls + len(f.InsertCalls) + len(f.UpdateCalls)
}

func newTestRegistry(rows ...Student) (*Registry, *fakeTable, *notify.Feed) {
	table := &fakeTable{rows: rows, nextID: len(rows)}
	feed := notify.NewFeed(20)
	return NewRegistry(table, feed, false), table, feed
}
