package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

func (m member) RecordID() string { return m.ID }

type payment struct {
	ID       string  `json:"id"`
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
}

func (p payment) RecordID() string { return p.ID }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "gym.db"), opts...)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := member{ID: "m1", Name: "Dana", Email: "dana@example.com", Active: true}
	require.NoError(t, Put(ctx, s, "members", want))

	got, found, err := GetByID[member](ctx, s, "members", "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "members", member{ID: "m1", Name: "Dana"}))
	require.NoError(t, Put(ctx, s, "members", member{ID: "m1", Name: "Dana Updated", Active: true}))

	got, found, err := GetByID[member](ctx, s, "members", "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Dana Updated", got.Name)

	n, err := s.Count(ctx, "members")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGetByIDAbsentIsNotAnError(t *testing.T) {
	s := newTestStore(t)

	got, found, err := GetByID[member](context.Background(), s, "members", "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, got)
}

func TestPutWithoutIDIsRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := Put(ctx, s, "members", member{Name: "anonymous"})
	require.ErrorIs(t, err, ErrInvalidRecord)

	n, err := s.Count(ctx, "members")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "rejected put must not touch storage")
}

func TestDeleteByIDIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "members", member{ID: "m1", Name: "Dana"}))
	require.NoError(t, s.DeleteByID(ctx, "members", "m1"))
	require.NoError(t, s.DeleteByID(ctx, "members", "m1"), "second delete of same id must succeed")

	_, found, err := GetByID[member](ctx, s, "members", "m1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "members", member{ID: "m1", Name: "Dana"}))
	require.NoError(t, Put(ctx, s, "members", member{ID: "m2", Name: "Lee"}))

	all, err := GetAll[member](ctx, s, "members")
	require.NoError(t, err)
	require.Len(t, all, 2)

	ids := map[string]bool{}
	for _, m := range all {
		ids[m.ID] = true
	}
	assert.True(t, ids["m1"] && ids["m2"])
}

func TestBulkPut(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []payment{
		{ID: "p1", MemberID: "m1", Amount: 49.90},
		{ID: "p2", MemberID: "m1", Amount: 49.90},
		{ID: "p3", MemberID: "m2", Amount: 25.00},
	}
	require.NoError(t, BulkPut(ctx, s, "payments", batch))

	n, err := s.Count(ctx, "payments")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestBulkPutRejectsWholeBatchOnMissingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []payment{
		{ID: "p1", Amount: 49.90},
		{Amount: 10.00}, // no id
	}
	require.ErrorIs(t, BulkPut(ctx, s, "payments", batch), ErrInvalidRecord)

	n, err := s.Count(ctx, "payments")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "no record of a failed batch may be visible")
}

func TestUnknownCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := Put(ctx, s, "lockers", member{ID: "m1"})
	require.ErrorIs(t, err, ErrUnknownCollection)

	_, _, err = GetByID[member](ctx, s, "lockers", "m1")
	require.ErrorIs(t, err, ErrUnknownCollection)
}

func TestClearCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "members", member{ID: "m1"}))
	require.NoError(t, Put(ctx, s, "payments", payment{ID: "p1"}))
	require.NoError(t, s.ClearCollection(ctx, "members"))

	nm, err := s.Count(ctx, "members")
	require.NoError(t, err)
	np, err := s.Count(ctx, "payments")
	require.NoError(t, err)
	assert.EqualValues(t, 0, nm)
	assert.EqualValues(t, 1, np)
}

func TestClearAllPreservesSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "members", member{ID: "m1"}))
	require.NoError(t, Put(ctx, s, "payments", payment{ID: "p1"}))

	demoOff := false
	_, err := s.UpdateSettings(ctx, SettingsPatch{DemoMode: &demoOff})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	nm, err := s.Count(ctx, "members")
	require.NoError(t, err)
	np, err := s.Count(ctx, "payments")
	require.NoError(t, err)
	assert.EqualValues(t, 0, nm)
	assert.EqualValues(t, 0, np)

	settings, err := s.GetOrInitSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.DemoMode, "settings must survive a data wipe")
}

// Reopening at a higher schema version must create the new collection and
// leave pre-existing records intact.
func TestSchemaUpgradeAddsCollectionsAndKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gym.db")
	ctx := context.Background()

	v1 := New(path, WithVersion(1), WithCollections("members"))
	require.NoError(t, Put(ctx, v1, "members", member{ID: "m1", Name: "Dana"}))
	require.NoError(t, Put(ctx, v1, "members", member{ID: "m2", Name: "Lee"}))
	require.NoError(t, v1.Close())

	v2 := New(path, WithVersion(2), WithCollections("members", "payments"))
	defer v2.Close()

	kept, err := GetAll[member](ctx, v2, "members")
	require.NoError(t, err)
	assert.Len(t, kept, 2)

	require.NoError(t, Put(ctx, v2, "payments", payment{ID: "p1", Amount: 10}))
	n, err := v2.Count(ctx, "payments")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpenFailureIsStorageUnavailable(t *testing.T) {
	// A directory path cannot be opened as a database file.
	s := New(t.TempDir())
	defer s.Close()

	err := Put(context.Background(), s, "members", member{ID: "m1"})
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// The failed open is memoized, not retried.
	_, _, err = GetByID[member](context.Background(), s, "members", "m1")
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
