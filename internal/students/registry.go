package students

import (
	"context"
	"log"
	"sync"

	"escola/internal/notify"
)

// Registry owns the in-memory student list for a session and mediates
// reads and writes through a Table.
//
// Writes never patch the local list optimistically: create and update reload
// the whole list after the Table confirms, and a status toggle touches the
// local record only after the Table accepted the change.
type Registry struct {
	table    Table
	schema   *Schema
	notifier notify.Notifier
	demo     bool

	mu      sync.RWMutex
	items   []Student
	loading bool
}

// NewRegistry creates a registry backed by table. A nil notifier discards
// notifications. demo marks the table as sample data, which is announced
// after every successful list.
func NewRegistry(table Table, notifier notify.Notifier, demo bool) *Registry {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Registry{
		table:    table,
		schema:   NewSchema(),
		notifier: notifier,
		demo:     demo,
		items:    []Student{},
		loading:  true,
	}
}

// Loading reports whether the first list has not completed yet.
func (r *Registry) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Students returns a copy of the current in-memory list.
func (r *Registry) Students() []Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Student, len(r.items))
	copy(out, r.items)
	return out
}

// Find returns the in-memory record with the given id.
func (r *Registry) Find(id string) (Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.items {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

// List reloads every record ordered by name. On failure the previous list is kept.
func (r *Registry) List(ctx context.Context) error {
	items, err := r.table.Select(ctx, ByName)

	r.mu.Lock()
	r.loading = false
	if err == nil {
		if items == nil {
			items = []Student{}
		}
		r.items = items
	}
	r.mu.Unlock()

	if err != nil {
		return r.fail(ctx, "list", err, msgListFailed)
	}
	if r.demo {
		r.notifier.Notify(ctx, msgDemoData)
	}
	return nil
}

// Create validates in, inserts it as pending and reloads the list.
func (r *Registry) Create(ctx context.Context, in Input) error {
	clean, err := r.validate(ctx, in)
	if err != nil {
		return err
	}
	rec := Student{
		Name:             clean.Name,
		RegistrationCode: clean.RegistrationCode,
		MonthlyFee:       clean.MonthlyFee,
		PaymentStatus:    StatusPending,
	}
	if err := r.table.Insert(ctx, rec); err != nil {
		return r.fail(ctx, "create", err, msgCreateFailed)
	}
	r.notifier.Notify(ctx, msgCreated)
	r.reload(ctx)
	return nil
}

// Update validates in and changes name, registration code and fee of id.
// The payment status is never touched here.
func (r *Registry) Update(ctx context.Context, id string, in Input) error {
	clean, err := r.validate(ctx, in)
	if err != nil {
		return err
	}
	patch := Patch{
		Name:             &clean.Name,
		RegistrationCode: &clean.RegistrationCode,
		MonthlyFee:       &clean.MonthlyFee,
	}
	if err := r.table.Update(ctx, id, patch); err != nil {
		return r.fail(ctx, "update", err, msgUpdateFailed)
	}
	r.notifier.Notify(ctx, msgUpdated)
	r.reload(ctx)
	return nil
}

// ToggleStatus flips current and stores the result for id. An empty current
// falls back to the status held in memory. When id is not in the in-memory
// list the stored row is still updated, but the returned Student only
// carries ID and PaymentStatus; use Find to tell the two cases apart.
func (r *Registry) ToggleStatus(ctx context.Context, id string, current PaymentStatus) (Student, error) {
	local, found := r.Find(id)
	if current == "" {
		if !found {
			return Student{}, r.fail(ctx, "toggle", ErrNotFound, msgToggleFailed)
		}
		current = local.PaymentStatus
	}
	if !current.Valid() {
		verr := &ValidationError{}
		verr.add("status_pagamento", "Status de pagamento inválido")
		r.notifier.Notify(ctx, msgInvalid(verr))
		return Student{}, verr
	}

	next := current.Toggle()
	if err := r.table.Update(ctx, id, Patch{PaymentStatus: &next}); err != nil {
		return Student{}, r.fail(ctx, "toggle", err, msgToggleFailed)
	}

	updated := Student{ID: id, PaymentStatus: next}
	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].PaymentStatus = next
			updated = r.items[i]
			break
		}
	}
	r.mu.Unlock()

	r.notifier.Notify(ctx, msgToggled(next))
	return updated, nil
}

// ExportCSV renders the in-memory list. It never calls the Table.
func (r *Registry) ExportCSV(ctx context.Context) Export {
	out := Export{
		FileName:    ExportFileName,
		ContentType: ExportContentType,
		Data:        EncodeCSV(r.Students()),
	}
	r.notifier.Notify(ctx, msgExported)
	return out
}

func (r *Registry) validate(ctx context.Context, in Input) (Input, error) {
	clean, err := r.schema.Validate(in)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			r.notifier.Notify(ctx, msgInvalid(verr))
		}
		return Input{}, err
	}
	return clean, nil
}

// reload refreshes the list after a confirmed write. Failures are already
// logged and notified by List.
func (r *Registry) reload(ctx context.Context) {
	_ = r.List(ctx)
}

func (r *Registry) fail(ctx context.Context, op string, err error, n notify.Notification) error {
	log.Printf("students: %s failed: %v", op, err)
	r.notifier.Notify(ctx, n)
	return &PersistenceError{Op: op, Err: err}
}
