package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"escola/internal/students"
)

// DemoStudents is the sample data served when no database is configured.
func DemoStudents() []students.Student {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		name, code string
		fee        float64
		status     students.PaymentStatus
	}{
		{"João Silva", "MAT001", 850, students.StatusPaid},
		{"Maria Santos", "MAT002", 850, students.StatusPending},
		{"Pedro Oliveira", "MAT003", 900, students.StatusPaid},
		{"Ana Costa", "MAT004", 850, students.StatusPending},
	}
	out := make([]students.Student, 0, len(rows))
	for i, r := range rows {
		out = append(out, students.Student{
			ID:               strings.TrimPrefix(r.code, "MAT"),
			Name:             r.name,
			RegistrationCode: r.code,
			MonthlyFee:       r.fee,
			PaymentStatus:    r.status,
			CreatedAt:        created.Add(time.Duration(i) * time.Hour),
			UpdatedAt:        created.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

// Memory is a process-local table, used for demo mode and tests.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]students.Student
	now  func() time.Time
}

// NewMemory creates a table seeded with rows.
func NewMemory(rows ...students.Student) *Memory {
	m := &Memory{rows: make(map[string]students.Student, len(rows)), now: time.Now}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

// Select returns a sorted copy of every row.
func (m *Memory) Select(_ context.Context, order students.Ordering) ([]students.Student, error) {
	if !sortable[order.Column] {
		return nil, errors.Errorf("cannot order by %q", order.Column)
	}
	m.mu.RLock()
	out := make([]students.Student, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if order.Ascending {
			return less(order.Column, out[i], out[j])
		}
		return less(order.Column, out[j], out[i])
	})
	return out, nil
}

func less(column string, a, b students.Student) bool {
	switch column {
	case "matricula":
		return a.RegistrationCode < b.RegistrationCode
	case "mensalidade":
		return a.MonthlyFee < b.MonthlyFee
	case "status_pagamento":
		return a.PaymentStatus < b.PaymentStatus
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		if a.Name == b.Name {
			return a.ID < b.ID
		}
		return a.Name < b.Name
	}
}

// Insert stores s under a fresh id.
func (m *Memory) Insert(_ context.Context, s students.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codeTaken(s.RegistrationCode, "") {
		return students.ErrDuplicateCode
	}
	s.ID = uuid.NewString()
	s.CreatedAt = m.now().UTC()
	s.UpdatedAt = s.CreatedAt
	if s.PaymentStatus == "" {
		s.PaymentStatus = students.StatusPending
	}
	m.rows[s.ID] = s
	return nil
}

// Update applies patch to the row with id.
func (m *Memory) Update(_ context.Context, id string, patch students.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return students.ErrNotFound
	}
	if patch.RegistrationCode != nil && m.codeTaken(*patch.RegistrationCode, id) {
		return students.ErrDuplicateCode
	}
	patch.Apply(&row)
	row.UpdatedAt = m.now().UTC()
	m.rows[id] = row
	return nil
}

// Healthy always reports true.
func (m *Memory) Healthy(context.Context) bool { return true }

func (m *Memory) codeTaken(code, exceptID string) bool {
	for id, r := range m.rows {
		if id != exceptID && r.RegistrationCode == code {
			return true
		}
	}
	return false
}
