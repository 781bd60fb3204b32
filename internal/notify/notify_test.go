package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escola/internal/queue"
)

func TestFeed_KeepsMostRecent(t *testing.T) {
	feed := NewFeed(2)
	ctx := context.Background()
	feed.Notify(ctx, Success("a", "1"))
	feed.Notify(ctx, Success("b", "2"))
	feed.Notify(ctx, Failure("c", "3"))

	recent := feed.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Title)
	assert.Equal(t, "b", recent[1].Title)
	assert.False(t, recent[0].At.IsZero())

	assert.Len(t, feed.Recent(1), 1)
	last, ok := feed.Last()
	require.True(t, ok)
	assert.Equal(t, VariantDestructive, last.Variant)
}

func TestFanout(t *testing.T) {
	a, b := NewFeed(5), NewFeed(5)
	Fanout{a, b, Discard}.Notify(context.Background(), Success("Aluno adicionado", "ok"))
	assert.Len(t, a.Recent(0), 1)
	assert.Len(t, b.Recent(0), 1)
}

func TestPublisher_EncodesForWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := queue.NewInMemory(1)

	NewPublisher(q).Notify(ctx, Success("Status atualizado", "Status alterado para Pago"))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	select {
	case msg := <-msgs:
		n, err := Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, "Status atualizado", n.Title)
		assert.Equal(t, VariantDefault, n.Variant)
	case <-time.After(time.Second):
		t.Fatal("nothing published")
	}
}

func TestDecode_RejectsOtherTypes(t *testing.T) {
	_, err := Decode(queue.Message{Type: "checkin", Body: json.RawMessage(`{}`)})
	assert.Error(t, err)
}

func TestRelay_Send(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	relay := NewRelay(srv.URL, false, nil)
	require.NoError(t, relay.Send(context.Background(), Failure("Erro", "Não foi possível carregar os alunos")))

	assert.Equal(t, "Erro: Não foi possível carregar os alunos", got.Text)
	assert.Equal(t, VariantDestructive, got.Notification.Variant)
}

func TestRelay_SendReportsUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRelay(srv.URL, false, nil).Send(context.Background(), Success("a", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRelay_SkipWithoutURL(t *testing.T) {
	relay := NewRelay("", false, nil)
	assert.True(t, relay.Skip)
	assert.NoError(t, relay.Send(context.Background(), Success("a", "b")))
	assert.NoError(t, relay.Health(context.Background()))
}
