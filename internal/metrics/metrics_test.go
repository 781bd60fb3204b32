package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escola/internal/students"
)

type stubTable struct{ err error }

func (s stubTable) Select(context.Context, students.Ordering) ([]students.Student, error) {
	return nil, s.err
}
func (s stubTable) Insert(context.Context, students.Student) error { return s.err }
func (s stubTable) Update(context.Context, string, students.Patch) error { return s.err }

func TestInstrument_CountsOutcomes(t *testing.T) {
	c := New(prometheus.NewRegistry())

	ok := c.Instrument(stubTable{})
	_, err := ok.Select(context.Background(), students.ByName)
	require.NoError(t, err)
	require.NoError(t, ok.Insert(context.Background(), students.Student{}))

	failing := c.Instrument(stubTable{err: errors.New("down")})
	assert.Error(t, failing.Update(context.Background(), "1", students.Patch{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.TableCalls.WithLabelValues("select", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TableCalls.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TableCalls.WithLabelValues("update", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.TableCalls.WithLabelValues("update", "ok")))
}
