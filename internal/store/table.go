package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"escola/internal/students"
)

// sortable lists the columns Select accepts for ordering.
var sortable = map[string]bool{
	"nome":             true,
	"matricula":        true,
	"mensalidade":      true,
	"status_pagamento": true,
	"created_at":       true,
	"updated_at":       true,
}

// Table persists students in the alunos table of a SQL database.
type Table struct {
	db  *DB
	now func() time.Time
}

// NewTable creates a table over db.
func NewTable(db *DB) *Table {
	return &Table{db: db, now: time.Now}
}

// Select returns every student in the requested order.
func (t *Table) Select(ctx context.Context, order students.Ordering) ([]students.Student, error) {
	if !sortable[order.Column] {
		return nil, errors.Errorf("cannot order by %q", order.Column)
	}
	query := `SELECT id, nome, matricula, ` + t.db.Dialect.feeColumn + `, status_pagamento, created_at, updated_at
		FROM alunos ORDER BY ` + order.String()

	rows, err := t.db.Client.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "select alunos")
	}
	defer rows.Close()

	res := []students.Student{}
	for rows.Next() {
		var s students.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.RegistrationCode, &s.MonthlyFee, &s.PaymentStatus, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan aluno")
		}
		res = append(res, s)
	}
	return res, errors.Wrap(rows.Err(), "iterate alunos")
}

// Insert writes a new student. The id and timestamps are assigned here.
func (t *Table) Insert(ctx context.Context, s students.Student) error {
	s.ID = uuid.NewString()
	s.CreatedAt = t.now().UTC()
	s.UpdatedAt = s.CreatedAt
	if s.PaymentStatus == "" {
		s.PaymentStatus = students.StatusPending
	}

	p := t.db.Dialect.placeholder
	_, err := t.db.Client.ExecContext(ctx, `
		INSERT INTO alunos (id, nome, matricula, mensalidade, status_pagamento, created_at, updated_at)
		VALUES (`+strings.Join([]string{p(1), p(2), p(3), p(4), p(5), p(6), p(7)}, ", ")+`)
	`, s.ID, s.Name, s.RegistrationCode, s.MonthlyFee, string(s.PaymentStatus), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if t.db.Dialect.isUnique(err) {
			return students.ErrDuplicateCode
		}
		return errors.Wrap(err, "insert aluno")
	}
	return nil
}

// Update changes the fields set in patch and bumps updated_at.
func (t *Table) Update(ctx context.Context, id string, patch students.Patch) error {
	if patch.Empty() {
		return nil
	}
	p := t.db.Dialect.placeholder
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = "+p(len(args)))
	}
	if patch.Name != nil {
		set("nome", *patch.Name)
	}
	if patch.RegistrationCode != nil {
		set("matricula", *patch.RegistrationCode)
	}
	if patch.MonthlyFee != nil {
		set("mensalidade", *patch.MonthlyFee)
	}
	if patch.PaymentStatus != nil {
		set("status_pagamento", string(*patch.PaymentStatus))
	}
	set("updated_at", t.now().UTC())
	args = append(args, id)

	res, err := t.db.Client.ExecContext(ctx,
		`UPDATE alunos SET `+strings.Join(sets, ", ")+` WHERE id = `+p(len(args)), args...)
	if err != nil {
		if t.db.Dialect.isUnique(err) {
			return students.ErrDuplicateCode
		}
		return errors.Wrap(err, "update aluno")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update aluno")
	}
	if n == 0 {
		return students.ErrNotFound
	}
	return nil
}
