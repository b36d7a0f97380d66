package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

type touchRecorder struct {
	calls int
	err   error
}

func (r *touchRecorder) TouchLastLogin(context.Context, int64, time.Time) error {
	r.calls++
	return r.err
}

// scriptHook runs a callback around the first successful call of a Lua script.
type scriptHook struct {
	source string
	before func()
	after  func()
}

func (h *scriptHook) matches(cmd redis.Cmder) bool {
	args := cmd.Args()
	if len(args) < 2 {
		return false
	}
	switch cmd.Name() {
	case "evalsha":
		return args[1] == redis.NewScript(h.source).Hash()
	case "eval":
		return args[1] == h.source
	}
	return false
}

func (h *scriptHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *scriptHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *scriptHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if h.before != nil && h.matches(cmd) {
			before := h.before
			h.before = nil
			before()
		}
		err := next(ctx, cmd)
		if err == nil && h.after != nil && h.matches(cmd) {
			after := h.after
			h.after = nil
			after()
		}
		return err
	}
}

func newTestStore(t *testing.T, recorder *touchRecorder, hooks ...redis.Hook) (*SessionStore, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	for _, h := range hooks {
		client.AddHook(h)
	}

	store := NewSessionStore(client, nil, time.Second)
	if recorder != nil {
		store.recorder = recorder
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, mr, &now
}

func testSession(id, token string, userID int64, created time.Time, ttl time.Duration) *domain.Session {
	return &domain.Session{
		ID:         id,
		UserID:     userID,
		Token:      token,
		ExpiresAt:  created.Add(ttl),
		Provenance: domain.Provenance{IPAddress: "10.1.1.1", UserAgent: "test"},
		CreatedAt:  created,
	}
}

func TestSessionStore_CreateFind(t *testing.T) {
	rec := &touchRecorder{}
	store, _, now := newTestStore(t, rec)
	ctx := context.Background()

	sess := testSession("s1", "tok-1", 7, *now, time.Hour)
	require.NoError(t, store.Create(ctx, sess))
	assert.Equal(t, 1, rec.calls)

	got, err := store.FindLive(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "10.1.1.1", got.Provenance.IPAddress)
	assert.True(t, got.ExpiresAt.Equal(sess.ExpiresAt))
}

func TestSessionStore_DuplicateToken(t *testing.T) {
	store, _, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1", "tok", 1, *now, time.Hour)))
	err := store.Create(ctx, testSession("s2", "tok", 2, *now, time.Hour))
	assert.ErrorIs(t, err, errDuplicateToken)
}

func TestSessionStore_RecorderErrorPropagates(t *testing.T) {
	boom := errors.New("users table down")
	ctx := context.Background()
	store, mr, now := newTestStore(t, &touchRecorder{err: boom})

	err := store.Create(ctx, testSession("s1", "tok", 1, *now, time.Hour))
	assert.ErrorIs(t, err, boom)

	got, err := store.FindLive(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got, "a session without a recorded login is removed")
	assert.False(t, mr.Exists(userIndexKey(1)))
}

func TestSessionStore_FindLive_Missing(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	got, err := store.FindLive(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_FindLive_ExpiredByClock(t *testing.T) {
	store, _, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1", "tok", 1, *now, time.Hour)))
	*now = now.Add(time.Hour)

	got, err := store.FindLive(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got, "a session is dead at exactly its expiry")
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	store, mr, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1", "tok", 3, *now, time.Hour)))
	require.NoError(t, store.Delete(ctx, "tok"))
	require.NoError(t, store.Delete(ctx, "tok"))

	got, err := store.FindLive(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(userIndexKey(3)), "index entry removed with the session")
}

func TestSessionStore_DeleteAllForUser(t *testing.T) {
	store, _, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("a", "t-a", 5, *now, time.Hour)))
	require.NoError(t, store.Create(ctx, testSession("b", "t-b", 5, now.Add(time.Second), time.Hour)))
	require.NoError(t, store.Create(ctx, testSession("c", "t-c", 6, *now, time.Hour)))

	n, err := store.DeleteAllForUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, tok := range []string{"t-a", "t-b"} {
		got, err := store.FindLive(ctx, tok)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	other, err := store.FindLive(ctx, "t-c")
	require.NoError(t, err)
	assert.NotNil(t, other, "other users keep their sessions")

	n, err = store.DeleteAllForUser(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionStore_DeleteAllForUser_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	hook := &scriptHook{source: deleteUserSessionsLua}
	store, _, now := newTestStore(t, nil, hook)

	require.NoError(t, store.Create(ctx, testSession("a", "t-a", 7, *now, time.Hour)))

	// A login racing ahead of the revocation is revoked with it.
	hook.before = func() {
		require.NoError(t, store.Create(ctx, testSession("b", "t-b", 7, *now, time.Hour)))
	}
	n, err := store.DeleteAllForUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// A login landing right after stays indexed, so the next revocation finds it.
	hook.after = func() {
		require.NoError(t, store.Create(ctx, testSession("c", "t-c", 7, *now, time.Hour)))
	}
	n, err = store.DeleteAllForUser(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.DeleteAllForUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for _, tok := range []string{"t-a", "t-b", "t-c"} {
		got, err := store.FindLive(ctx, tok)
		require.NoError(t, err)
		assert.Nil(t, got, tok)
	}
}

func TestSessionStore_ListForUser(t *testing.T) {
	store, _, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("old", "t-old", 9, *now, time.Hour)))
	require.NoError(t, store.Create(ctx, testSession("new", "t-new", 9, now.Add(time.Minute), time.Hour)))
	require.NoError(t, store.Create(ctx, testSession("short", "t-short", 9, *now, time.Minute)))

	*now = now.Add(2 * time.Minute)

	list, err := store.ListForUser(ctx, 9)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestSessionStore_SweepPrunesEvictedEntries(t *testing.T) {
	store, mr, now := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("short", "t-short", 4, *now, time.Minute)))
	require.NoError(t, store.Create(ctx, testSession("long", "t-long", 4, *now, time.Hour)))

	mr.FastForward(2 * time.Minute)

	n, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	members, err := mr.Members(userIndexKey(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"t-long"}, members)

	n, err = store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionStore_OutageIsUnavailable(t *testing.T) {
	store, mr, _ := newTestStore(t, nil)
	mr.Close()

	_, err := store.FindLive(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
