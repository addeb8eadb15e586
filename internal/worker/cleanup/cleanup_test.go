package cleanup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/metrics"
	"clinic-api/internal/store/memory"
)

func TestRunDeletesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := st.InsertSession(ctx, "u1", "old", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, "u1", "edge", now)
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, "u1", "live", now.Add(time.Hour))
	require.NoError(t, err)

	col := &sweepCounter{}
	var logs bytes.Buffer
	job := NewJob(st, slog.New(slog.NewJSONHandler(&logs, nil)), col)
	job.now = func() time.Time { return now }

	n, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Contains(t, logs.String(), `"deleted_count":2`)

	live, err := st.FindSessionByToken(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, live)
	gone, err := st.FindSessionByToken(ctx, "edge")
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.Equal(t, int64(2), col.swept)
}

type sweepCounter struct {
	metrics.Nop
	swept int64
}

func (c *sweepCounter) SessionsSwept(n int64) { c.swept += n }

type failing struct{}

func (failing) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestRunPropagatesErrors(t *testing.T) {
	job := NewJob(failing{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil)
	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	job := NewJob(memory.New(), nil, nil)
	_, err := job.Schedule(context.Background(), "every tuesday-ish")
	assert.Error(t, err)

	c, err := job.Schedule(context.Background(), "@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}
