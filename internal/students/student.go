package students

import (
	"context"
	"time"
)

// TableName is the persistence table holding student records.
const TableName = "alunos"

// PaymentStatus is the binary payment flag of a student.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "Pago"
	StatusPending PaymentStatus = "Pendente"
)

// Valid reports whether s is one of the two known statuses.
func (s PaymentStatus) Valid() bool {
	return s == StatusPaid || s == StatusPending
}

// Toggle returns the opposite status.
func (s PaymentStatus) Toggle() PaymentStatus {
	if s == StatusPaid {
		return StatusPending
	}
	return StatusPaid
}

// Student is a registered student with a monthly fee.
type Student struct {
	ID               string        `json:"id"`
	Name             string        `json:"nome"`
	RegistrationCode string        `json:"matricula"`
	MonthlyFee       float64       `json:"mensalidade"`
	PaymentStatus    PaymentStatus `json:"status_pagamento"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Input is the add/edit form payload.
type Input struct {
	Name             string  `json:"nome" validate:"required"`
	RegistrationCode string  `json:"matricula" validate:"required"`
	MonthlyFee       float64 `json:"mensalidade" validate:"gte=0"`
}

// Patch holds the fields to change on update. Nil fields are left untouched.
type Patch struct {
	Name             *string
	RegistrationCode *string
	MonthlyFee       *float64
	PaymentStatus    *PaymentStatus
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.RegistrationCode == nil && p.MonthlyFee == nil && p.PaymentStatus == nil
}

// Apply copies the set fields onto s.
func (p Patch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.RegistrationCode != nil {
		s.RegistrationCode = *p.RegistrationCode
	}
	if p.MonthlyFee != nil {
		s.MonthlyFee = *p.MonthlyFee
	}
	if p.PaymentStatus != nil {
		s.PaymentStatus = *p.PaymentStatus
	}
}

// Ordering describes how Select sorts its result.
type Ordering struct {
	Column    string
	Ascending bool
}

func (o Ordering) String() string {
	if o.Ascending {
		return o.Column + " ASC"
	}
	return o.Column + " DESC"
}

// ByName is the ordering used by the registry list.
var ByName = Ordering{Column: "nome", Ascending: true}

// Table is the persistence collaborator behind a Registry.
type Table interface {
	Select(ctx context.Context, order Ordering) ([]Student, error)
	Insert(ctx context.Context, s Student) error
	Update(ctx context.Context, id string, patch Patch) error
}
