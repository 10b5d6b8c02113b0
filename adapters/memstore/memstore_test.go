package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	workflow "github.com/lucasmqar/vercflow-sub003"
	"github.com/lucasmqar/vercflow-sub003/adapters/memstore"
)

func entityFixture(id string, offset time.Duration) workflow.Entity {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return workflow.Entity{
		ID:        id,
		Kind:      workflow.KindRequest,
		Status:    workflow.StatusOpen,
		Priority:  workflow.PriorityMedium,
		OwnerID:   "user1",
		Version:   1,
		CreatedAt: t0.Add(offset),
		UpdatedAt: t0.Add(offset),
	}
}

func TestSaveAndLookup(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	e := entityFixture("a", 0)
	require.NoError(t, store.Save(ctx, &e))

	got, err := store.Lookup(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, e, *got)

	_, err = store.Lookup(ctx, "missing")
	require.ErrorIs(t, err, workflow.ErrEntityNotFound)
}

func TestSaveVersionCheck(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	e := entityFixture("a", 0)
	require.NoError(t, store.Save(ctx, &e))

	// A version that skips ahead means the caller read a stale copy.
	stale := e
	stale.Version = 3
	require.ErrorIs(t, store.Save(ctx, &stale), workflow.ErrConcurrentModification)

	// Re-saving the same version is also a conflict: no writer may land twice.
	repeat := e
	require.ErrorIs(t, store.Save(ctx, &repeat), workflow.ErrConcurrentModification)

	// An update aimed at an id that was never created is a missing row, the
	// same as the SQL store reports it.
	ghost := entityFixture("ghost", 0)
	ghost.Version = 2
	require.ErrorIs(t, store.Save(ctx, &ghost), workflow.ErrEntityNotFound)

	next := e
	next.Version = 2
	next.Status = workflow.StatusUrgent
	require.NoError(t, store.Save(ctx, &next))

	got, err := store.Lookup(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusUrgent, got.Status)
	require.Equal(t, 2, got.Version)
}

func TestLookupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	e := entityFixture("a", 0)
	e.History = []workflow.Transition{{From: workflow.StatusOpen, To: workflow.StatusUrgent}}
	require.NoError(t, store.Save(ctx, &e))

	got, err := store.Lookup(ctx, "a")
	require.NoError(t, err)
	got.History[0].To = workflow.StatusCancelled
	got.Status = workflow.StatusCancelled

	fresh, err := store.Lookup(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusUrgent, fresh.History[0].To)
	require.Equal(t, workflow.StatusOpen, fresh.Status)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	a := entityFixture("a", 0)
	b := entityFixture("b", time.Minute)
	b.OwnerID = "user2"
	c := entityFixture("c", 2*time.Minute)
	c.Status = workflow.StatusUrgent
	d := entityFixture("d", 3*time.Minute)
	d.Kind = workflow.KindActivity

	for _, e := range []workflow.Entity{a, b, c, d} {
		e := e
		require.NoError(t, store.Save(ctx, &e))
	}

	got, err := store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeAscending)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "c", got[2].ID)

	got, err = store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeDescending)
	require.NoError(t, err)
	require.Equal(t, "c", got[0].ID)

	got, err = store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeAscending,
		workflow.FilterByStatus(workflow.StatusOpen))
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeAscending,
		workflow.FilterByOwnerID("user2"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].ID)

	got, err = store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeAscending,
		workflow.FilterByCreatedBefore(a.CreatedAt.Add(30*time.Second)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	for i := 0; i < 30; i++ {
		e := entityFixture(string(rune('a'+i)), time.Duration(i)*time.Minute)
		require.NoError(t, store.Save(ctx, &e))
	}

	// The default limit caps an unbounded list.
	got, err := store.List(ctx, workflow.KindRequest, 0, 0, workflow.OrderTypeAscending)
	require.NoError(t, err)
	require.Len(t, got, 25)

	got, err = store.List(ctx, workflow.KindRequest, 25, 0, workflow.OrderTypeAscending)
	require.NoError(t, err)
	require.Len(t, got, 5)

	got, err = store.List(ctx, workflow.KindRequest, 100, 0, workflow.OrderTypeAscending)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = store.List(ctx, workflow.KindRequest, 0, 10, workflow.OrderTypeAscending)
	require.NoError(t, err)
	require.Len(t, got, 10)
}
