package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escola/internal/students"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Prefer string
	APIKey string
	Body   string
}

func newPostgRESTServer(t *testing.T, status int, response string) (*PostgREST, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Prefer: r.Header.Get("Prefer"),
			APIKey: r.Header.Get("apikey"),
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	client, err := NewPostgREST(srv.URL+"/rest/v1/", "anon-key", nil)
	require.NoError(t, err)
	return client, &reqs
}

func TestPostgREST_Select(t *testing.T) {
	client, reqs := newPostgRESTServer(t, http.StatusOK, `[
		{"id":"a1","nome":"Ana Costa","matricula":"MAT004","mensalidade":850,"status_pagamento":"Pendente",
		 "created_at":"2024-01-01T10:00:00+00:00","updated_at":"2024-01-01T10:00:00+00:00"}
	]`)

	got, err := client.Select(context.Background(), students.ByName)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Ana Costa", got[0].Name)
	assert.Equal(t, students.StatusPending, got[0].PaymentStatus)
	assert.Equal(t, "/rest/v1/alunos", (*reqs)[0].Path)
	query, err := url.ParseQuery((*reqs)[0].Query)
	require.NoError(t, err)
	assert.Equal(t, "*", query.Get("select"))
	assert.True(t, strings.HasPrefix(query.Get("order"), "nome.asc"), query.Get("order"))
	assert.Equal(t, "anon-key", (*reqs)[0].APIKey)
}

func TestPostgREST_InsertSendsRecordWithoutID(t *testing.T) {
	client, reqs := newPostgRESTServer(t, http.StatusCreated, ``)

	err := client.Insert(context.Background(), students.Student{Name: "Ana", RegistrationCode: "MAT9", MonthlyFee: 0})
	require.NoError(t, err)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "return=minimal", req.Prefer)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &rows))
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "id")
	assert.Equal(t, "Pendente", rows[0]["status_pagamento"])
	assert.Equal(t, 0.0, rows[0]["mensalidade"])
}

func TestPostgREST_Update(t *testing.T) {
	t.Run("patches only given fields", func(t *testing.T) {
		client, reqs := newPostgRESTServer(t, http.StatusOK, `[{"id":"a1"}]`)
		status := students.StatusPaid

		require.NoError(t, client.Update(context.Background(), "a1", students.Patch{PaymentStatus: &status}))

		req := (*reqs)[0]
		assert.Equal(t, http.MethodPatch, req.Method)
		assert.Equal(t, "id=eq.a1", req.Query)
		assert.JSONEq(t, `{"status_pagamento":"Pago"}`, req.Body)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		client, _ := newPostgRESTServer(t, http.StatusOK, `[]`)
		name := "x"
		err := client.Update(context.Background(), "missing", students.Patch{Name: &name})
		assert.ErrorIs(t, err, students.ErrNotFound)
	})

	t.Run("conflict is duplicate code", func(t *testing.T) {
		client, _ := newPostgRESTServer(t, http.StatusConflict,
			`{"code":"23505","message":"duplicate key value violates unique constraint \"alunos_matricula_key\""}`)
		code := "MAT001"
		err := client.Update(context.Background(), "a1", students.Patch{RegistrationCode: &code})
		assert.ErrorIs(t, err, students.ErrDuplicateCode)
	})
}

func TestPostgREST_ServerError(t *testing.T) {
	client, _ := newPostgRESTServer(t, http.StatusInternalServerError, `{"message":"boom"}`)
	_, err := client.Select(context.Background(), students.ByName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NotErrorIs(t, err, students.ErrDuplicateCode)
	assert.False(t, client.Healthy(context.Background()))
}

func TestPostgREST_InsertDuplicateCode(t *testing.T) {
	client, _ := newPostgRESTServer(t, http.StatusConflict,
		`{"code":"23505","message":"duplicate key value violates unique constraint"}`)
	err := client.Insert(context.Background(), students.Student{Name: "Ana", RegistrationCode: "MAT001"})
	assert.ErrorIs(t, err, students.ErrDuplicateCode)
}

func TestPostgREST_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	client, err := NewPostgREST(srv.URL, "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Select(ctx, students.ByName)
	assert.ErrorIs(t, err, context.Canceled)
}
