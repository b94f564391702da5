package review_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	appreview "github.com/bryanwahyu/admissions-desk/internal/application/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
)

// ===== mocks =====

type mockSource struct {
	application func(ctx context.Context, number string) ([]records.Record, error)
}

func (m *mockSource) Application(ctx context.Context, number string) ([]records.Record, error) {
	return m.application(ctx, number)
}

type mockBrief struct {
	brief func(ctx context.Context, r records.Record) (string, error)
}

func (m *mockBrief) Brief(ctx context.Context, r records.Record) (string, error) {
	return m.brief(ctx, r)
}

type mockRepo struct {
	saved   []*review.Review
	saveErr error
	history func(ctx context.Context, number string, limit int) ([]*review.Review, error)
}

func (m *mockRepo) Save(_ context.Context, r *review.Review) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockRepo) History(ctx context.Context, number string, limit int) ([]*review.Review, error) {
	return m.history(ctx, number, limit)
}

var (
	testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	testNow    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func applicant(no, name string) records.Record {
	return records.New(
		records.Number("Student ID", "7"),
		records.String("Student Name", name),
		records.String("Application Number", no),
		records.String("Status", "Verified"),
	)
}

func found(rows ...records.Record) *mockSource {
	return &mockSource{application: func(context.Context, string) ([]records.Record, error) { return rows, nil }}
}

func newService(src *mockSource) *appreview.Service {
	return &appreview.Service{Source: src, Clock: application.FixedClock(testNow), Logger: testLogger}
}

// ===== Lookup =====

func TestLookup_TakesFirstMatch(t *testing.T) {
	var asked string
	src := &mockSource{application: func(_ context.Context, number string) ([]records.Record, error) {
		asked = number
		return []records.Record{applicant("A-1", "Asha"), applicant("A-1", "Duplicate")}, nil
	}}

	r, err := newService(src).Lookup(context.Background(), "  A-1 ", "Ravi")

	require.NoError(t, err)
	assert.Equal(t, "A-1", asked)
	assert.Equal(t, "A-1", r.Number)
	assert.Equal(t, "Asha", r.Application.Text("Student Name"))
	assert.Equal(t, "Ravi", r.ReviewedBy)
	assert.Equal(t, testNow, r.CreatedAt)
	assert.NotEmpty(t, r.ID)
	assert.Empty(t, r.Brief)
}

func TestLookup_NumberRequired(t *testing.T) {
	src := &mockSource{application: func(context.Context, string) ([]records.Record, error) {
		t.Fatal("source must not be called")
		return nil, nil
	}}

	_, err := newService(src).Lookup(context.Background(), "   ", "")

	assert.ErrorIs(t, err, review.ErrNumberRequired)
}

func TestLookup_EmptyResultIsNotFound(t *testing.T) {
	_, err := newService(found()).Lookup(context.Background(), "X-9", "")
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestLookup_SourceError(t *testing.T) {
	boom := errors.New("upstream 500")
	src := &mockSource{application: func(context.Context, string) ([]records.Record, error) { return nil, boom }}

	_, err := newService(src).Lookup(context.Background(), "A-1", "")

	assert.ErrorIs(t, err, boom)
}

func TestLookup_WithBrief(t *testing.T) {
	svc := newService(found(applicant("A-1", "Asha")))
	svc.Brief = &mockBrief{brief: func(_ context.Context, r records.Record) (string, error) {
		return fmt.Sprintf("%s looks complete.", r.Text("Student Name")), nil
	}}

	r, err := svc.Lookup(context.Background(), "A-1", "")

	require.NoError(t, err)
	assert.Equal(t, "Asha looks complete.", r.Brief)
}

func TestLookup_BriefFailureDoesNotFail(t *testing.T) {
	for _, briefErr := range []error{ai.ErrQuotaExceeded, errors.New("timeout")} {
		svc := newService(found(applicant("A-1", "Asha")))
		svc.Brief = &mockBrief{brief: func(context.Context, records.Record) (string, error) { return "", briefErr }}

		r, err := svc.Lookup(context.Background(), "A-1", "")

		require.NoError(t, err)
		assert.Empty(t, r.Brief)
	}
}

func TestLookup_SavesReview(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(found(applicant("A-1", "Asha")))
	svc.Repo = repo

	r, err := svc.Lookup(context.Background(), "A-1", "Ravi")

	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.Same(t, r, repo.saved[0])
}

func TestLookup_SaveFailureIsLogged(t *testing.T) {
	svc := newService(found(applicant("A-1", "Asha")))
	svc.Repo = &mockRepo{saveErr: errors.New("db down")}

	_, err := svc.Lookup(context.Background(), "A-1", "")

	assert.NoError(t, err)
}

func TestDetails_Order(t *testing.T) {
	r := review.Review{Application: applicant("A-1", "Asha")}

	d := r.Details()

	require.Len(t, d, 9)
	assert.Equal(t, review.Detail{Label: "ID", Value: "7"}, d[0])
	assert.Equal(t, review.Detail{Label: "Name", Value: "Asha"}, d[1])
	assert.Equal(t, review.Detail{Label: "Status", Value: "Verified"}, d[4])
	assert.Equal(t, "Programme", d[8].Label)
	assert.Empty(t, d[8].Value)
}

// ===== History =====

func TestHistory_ClampsLimit(t *testing.T) {
	var limits []int
	repo := &mockRepo{history: func(_ context.Context, _ string, limit int) ([]*review.Review, error) {
		limits = append(limits, limit)
		return nil, nil
	}}
	svc := newService(found())
	svc.Repo = repo

	for _, l := range []int{0, -3, 5, 1000} {
		_, err := svc.History(context.Background(), "A-1", l)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{20, 20, 5, 100}, limits)
}

func TestHistory_WithoutRepo(t *testing.T) {
	out, err := newService(found()).History(context.Background(), "A-1", 10)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHistory_NumberRequired(t *testing.T) {
	_, err := newService(found()).History(context.Background(), "", 10)
	assert.ErrorIs(t, err, review.ErrNumberRequired)
}
