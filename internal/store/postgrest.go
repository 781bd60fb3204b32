package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	postgrest "github.com/supabase-community/postgrest-go"

	"escola/internal/students"
)

// PostgREST reads and writes the alunos table through a PostgREST endpoint,
// as exposed by hosted Postgres services.
type PostgREST struct {
	client  *postgrest.Client
	breaker *gobreaker.CircuitBreaker
}

// NewPostgREST creates a client for the REST root at baseURL (for example
// https://project.supabase.co/rest/v1). breaker may be nil.
func NewPostgREST(baseURL, apiKey string, breaker *gobreaker.CircuitBreaker) (*PostgREST, error) {
	headers := map[string]string{}
	if apiKey != "" {
		headers["apikey"] = apiKey
		headers["Authorization"] = "Bearer " + apiKey
	}
	client := postgrest.NewClient(strings.TrimRight(baseURL, "/"), "public", headers)
	if client.ClientError != nil {
		return nil, errors.Wrap(client.ClientError, "postgrest client")
	}
	return &PostgREST{client: client, breaker: breaker}, nil
}

type restRow struct {
	Name             *string                 `json:"nome,omitempty"`
	RegistrationCode *string                 `json:"matricula,omitempty"`
	MonthlyFee       *float64                `json:"mensalidade,omitempty"`
	PaymentStatus    *students.PaymentStatus `json:"status_pagamento,omitempty"`
}

// Select implements students.Table.
func (p *PostgREST) Select(ctx context.Context, order students.Ordering) ([]students.Student, error) {
	if !sortable[order.Column] {
		return nil, errors.Errorf("cannot order by %q", order.Column)
	}
	var out []students.Student
	err := p.do(ctx, func() error {
		_, err := p.client.From(students.TableName).
			Select("*", "", false).
			Order(order.Column, &postgrest.OrderOpts{Ascending: order.Ascending}).
			ExecuteTo(&out)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "select alunos")
	}
	if out == nil {
		out = []students.Student{}
	}
	return out, nil
}

// Insert implements students.Table. The service assigns id and timestamps.
func (p *PostgREST) Insert(ctx context.Context, s students.Student) error {
	status := s.PaymentStatus
	if status == "" {
		status = students.StatusPending
	}
	row := restRow{Name: &s.Name, RegistrationCode: &s.RegistrationCode, MonthlyFee: &s.MonthlyFee, PaymentStatus: &status}
	err := p.do(ctx, func() error {
		_, _, err := p.client.From(students.TableName).
			Insert([]restRow{row}, false, "", "minimal", "").
			Execute()
		return err
	})
	if err != nil {
		if errors.Is(err, students.ErrDuplicateCode) {
			return err
		}
		return errors.Wrap(err, "insert aluno")
	}
	return nil
}

// Update implements students.Table.
func (p *PostgREST) Update(ctx context.Context, id string, patch students.Patch) error {
	if patch.Empty() {
		return nil
	}
	row := restRow{
		Name:             patch.Name,
		RegistrationCode: patch.RegistrationCode,
		MonthlyFee:       patch.MonthlyFee,
		PaymentStatus:    patch.PaymentStatus,
	}

	var updated []json.RawMessage
	err := p.do(ctx, func() error {
		_, err := p.client.From(students.TableName).
			Update(row, "representation", "").
			Eq("id", id).
			ExecuteTo(&updated)
		return err
	})
	if err != nil {
		if errors.Is(err, students.ErrDuplicateCode) {
			return err
		}
		return errors.Wrap(err, "update aluno")
	}
	if len(updated) == 0 {
		return students.ErrNotFound
	}
	return nil
}

// Healthy issues a minimal select.
func (p *PostgREST) Healthy(ctx context.Context) bool {
	return p.do(ctx, func() error {
		_, _, err := p.client.From(students.TableName).
			Select("id", "", false).
			Limit(1, "").
			Execute()
		return err
	}) == nil
}

// do runs one request under the breaker. The client takes no context, so
// a cancelled ctx returns early and the request finishes in the background.
func (p *PostgREST) do(ctx context.Context, request func() error) error {
	call := func() (any, error) {
		return nil, classify(request())
	}
	done := make(chan error, 1)
	go func() {
		if p.breaker == nil {
			_, err := call()
			done <- err
			return
		}
		_, err := p.breaker.Execute(call)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// classify maps a unique violation reported by PostgREST (HTTP 409 with
// SQLSTATE 23505 in the body) to students.ErrDuplicateCode.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "23505") {
		return students.ErrDuplicateCode
	}
	return errors.Wrap(err, "postgrest request failed")
}
