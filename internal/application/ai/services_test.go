package ai_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appai "github.com/bryanwahyu/admissions-desk/internal/application/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

type mockClient struct {
	brief func(ctx context.Context, r records.Record) (string, error)
}

func (m mockClient) Brief(ctx context.Context, r records.Record) (string, error) {
	return m.brief(ctx, r)
}

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestBrief_AppliesTimeout(t *testing.T) {
	svc := appai.NewService(mockClient{brief: func(ctx context.Context, _ records.Record) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}, 10*time.Millisecond, testLogger)

	_, err := svc.Brief(context.Background(), records.New())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBrief_PassesThrough(t *testing.T) {
	svc := appai.NewService(mockClient{brief: func(_ context.Context, r records.Record) (string, error) {
		return "brief for " + r.Text("Student Name"), nil
	}}, 0, nil)

	got, err := svc.Brief(context.Background(), records.New(records.String("Student Name", "Asha")))

	require.NoError(t, err)
	assert.Equal(t, "brief for Asha", got)
}

func TestBrief_QuotaErrorKept(t *testing.T) {
	svc := appai.NewService(mockClient{brief: func(context.Context, records.Record) (string, error) {
		return "", errors.Join(ai.ErrQuotaExceeded, errors.New("429"))
	}}, time.Second, testLogger)

	_, err := svc.Brief(context.Background(), records.New())

	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}
