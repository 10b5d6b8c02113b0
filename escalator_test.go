package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	clock_testing "k8s.io/utils/clock/testing"

	workflow "github.com/lucasmqar/vercflow-sub003"
	"github.com/lucasmqar/vercflow-sub003/adapters/memstore"
)

func TestEscalatorSweep(t *testing.T) {
	ctx := context.Background()
	c := clock_testing.NewFakePassiveClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	store := memstore.New()
	engine := workflow.NewEngine(workflow.DefaultRegistry(), workflow.WithEngineClock(c))
	runner := workflow.NewRunner(engine, store)

	stale, err := runner.Create(ctx, workflow.KindRequest, "user1")
	require.NoError(t, err)

	// Old but already picked up, so not swept.
	inProgress, err := runner.Create(ctx, workflow.KindRequest, "user2")
	require.NoError(t, err)
	_, err = runner.Transition(ctx, inProgress.ID, workflow.StatusInProgress, "user2", "")
	require.NoError(t, err)

	// Created two days later; not stale at sweep time.
	c.SetTime(c.Now().Add(48 * time.Hour))
	fresh, err := runner.Create(ctx, workflow.KindRequest, "user2")
	require.NoError(t, err)

	c.SetTime(c.Now().Add(time.Hour))
	escalator := workflow.NewEscalator(runner, store, workflow.EscalatorConfig{
		Kind:    workflow.KindRequest,
		From:    workflow.StatusOpen,
		To:      workflow.StatusUrgent,
		MaxAge:  24 * time.Hour,
		ActorID: "system",
		Reason:  "request exceeded response deadline",
	}, workflow.WithEscalatorClock(c))

	n, err := escalator.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Lookup(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusUrgent, got.Status)
	require.Len(t, got.History, 1)
	require.Equal(t, "system", got.History[0].ActorID)
	require.Equal(t, "request exceeded response deadline", got.History[0].Reason)

	untouched, err := store.Lookup(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusOpen, untouched.Status)

	picked, err := store.Lookup(ctx, inProgress.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusInProgress, picked.Status)
	require.Len(t, picked.History, 1)
}

func TestEscalatorSweepIdempotent(t *testing.T) {
	ctx := context.Background()
	c := clock_testing.NewFakePassiveClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	store := memstore.New()
	engine := workflow.NewEngine(workflow.DefaultRegistry(), workflow.WithEngineClock(c))
	runner := workflow.NewRunner(engine, store)

	entity, err := runner.Create(ctx, workflow.KindRequest, "user1")
	require.NoError(t, err)

	c.SetTime(c.Now().Add(72 * time.Hour))
	escalator := workflow.NewEscalator(runner, store, workflow.EscalatorConfig{
		Kind:    workflow.KindRequest,
		From:    workflow.StatusOpen,
		To:      workflow.StatusUrgent,
		MaxAge:  24 * time.Hour,
		ActorID: "system",
		Reason:  "stale",
	}, workflow.WithEscalatorClock(c))

	n, err := escalator.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// The entity left the swept status, so a second sweep finds nothing.
	n, err = escalator.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := store.Lookup(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
}

func TestEscalatorSweepPaginates(t *testing.T) {
	ctx := context.Background()
	c := clock_testing.NewFakePassiveClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	store := memstore.New()
	engine := workflow.NewEngine(workflow.DefaultRegistry(), workflow.WithEngineClock(c))
	runner := workflow.NewRunner(engine, store)

	// More stale entities than one default list page.
	for i := 0; i < 60; i++ {
		_, err := runner.Create(ctx, workflow.KindRequest, "user1")
		require.NoError(t, err)
	}

	c.SetTime(c.Now().Add(48 * time.Hour))
	escalator := workflow.NewEscalator(runner, store, workflow.EscalatorConfig{
		Kind:    workflow.KindRequest,
		From:    workflow.StatusOpen,
		To:      workflow.StatusUrgent,
		MaxAge:  24 * time.Hour,
		ActorID: "system",
		Reason:  "stale",
	}, workflow.WithEscalatorClock(c))

	n, err := escalator.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 60, n)
}
