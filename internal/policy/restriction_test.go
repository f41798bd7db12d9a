package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/policy"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

type fakeFlagCounter struct {
	events     []time.Time
	categories []string
	err        error
}

func (f *fakeFlagCounter) CountSince(_ context.Context, _ string, since time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	count := 0

	for _, at := range f.events {
		if at.After(since) {
			count++
		}
	}

	return count, nil
}

func (f *fakeFlagCounter) GetRecent(_ context.Context, _ string, limit int) ([]*types.FlagEvent, error) {
	events := make([]*types.FlagEvent, 0, limit)
	for _, category := range f.categories {
		if len(events) == limit {
			break
		}
		events = append(events, &types.FlagEvent{Category: category})
	}

	return events, nil
}

type fakeDeactivator struct {
	deactivated []string
	err         error
}

func (f *fakeDeactivator) SetActive(_ context.Context, code string, active bool) error {
	if f.err != nil {
		return f.err
	}

	if !active {
		f.deactivated = append(f.deactivated, code)
	}

	return nil
}

func policyConfig() config.FlagPolicy {
	return config.FlagPolicy{MaxFlags: 3, WindowDays: 7}
}

func newPolicy(flags *fakeFlagCounter, accounts *fakeDeactivator) *policy.FlagPolicy {
	return policy.NewFlagPolicy(flags, accounts, policyConfig(), zap.NewNop())
}

func recentEvents(n int) []time.Time {
	events := make([]time.Time, n)
	for i := range events {
		events[i] = time.Now().Add(-time.Duration(i+1) * time.Hour)
	}

	return events
}

func TestEvaluateAtLimit(t *testing.T) {
	t.Parallel()

	accounts := &fakeDeactivator{}
	flagPolicy := newPolicy(&fakeFlagCounter{events: recentEvents(3)}, accounts)

	restricted, err := flagPolicy.Evaluate(t.Context(), "CODE1")
	require.NoError(t, err)

	assert.True(t, restricted)
	assert.Equal(t, []string{"CODE1"}, accounts.deactivated)
}

func TestEvaluateBelowLimit(t *testing.T) {
	t.Parallel()

	accounts := &fakeDeactivator{}
	flagPolicy := newPolicy(&fakeFlagCounter{events: recentEvents(2)}, accounts)

	restricted, err := flagPolicy.Evaluate(t.Context(), "CODE1")
	require.NoError(t, err)

	assert.False(t, restricted)
	assert.Empty(t, accounts.deactivated)
}

func TestEvaluateIgnoresOldFlags(t *testing.T) {
	t.Parallel()

	// Two recent flags plus one outside the window stay under the limit
	events := append(recentEvents(2), time.Now().AddDate(0, 0, -8))

	accounts := &fakeDeactivator{}
	flagPolicy := newPolicy(&fakeFlagCounter{events: events}, accounts)

	restricted, err := flagPolicy.Evaluate(t.Context(), "CODE1")
	require.NoError(t, err)

	assert.False(t, restricted)
}

func TestEvaluateCountError(t *testing.T) {
	t.Parallel()

	flagPolicy := newPolicy(&fakeFlagCounter{err: errStoreDown}, &fakeDeactivator{})

	_, err := flagPolicy.Evaluate(t.Context(), "CODE1")
	require.Error(t, err)
}

func TestEvaluateDeactivateError(t *testing.T) {
	t.Parallel()

	flagPolicy := newPolicy(
		&fakeFlagCounter{events: recentEvents(4)},
		&fakeDeactivator{err: errStoreDown},
	)

	restricted, err := flagPolicy.Evaluate(t.Context(), "CODE1")
	require.Error(t, err)
	assert.False(t, restricted)
}
