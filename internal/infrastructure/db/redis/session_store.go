package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// Key layout:
//
//	session:<token>        JSON record, expires with the session
//	user_sessions:<userID> set of the user's tokens
const (
	sessionPrefix   = "session:"
	userIndexPrefix = "user_sessions:"
)

var errDuplicateToken = errors.New("session token already exists")

// createSessionLua stores the record and indexes it in one step.
// KEYS: session key, user index. ARGV: record, ttl in ms, token.
const createSessionLua = `
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	redis.call("SADD", KEYS[2], ARGV[3])
	return 1
end
return 0
`

// deleteUserSessionsLua reads the user index and removes every listed session
// and its index member in one step, so a concurrent create is either deleted
// here or stays indexed for the next call.
// KEYS: user index. ARGV: session key prefix.
const deleteUserSessionsLua = `
local tokens = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, token in ipairs(tokens) do
	removed = removed + redis.call("DEL", ARGV[1] .. token)
	redis.call("SREM", KEYS[1], token)
end
return removed
`

var (
	createSessionScript      = redis.NewScript(createSessionLua)
	deleteUserSessionsScript = redis.NewScript(deleteUserSessionsLua)
)

type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toRecord(s *domain.Session) sessionRecord {
	return sessionRecord{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		IPAddress: s.Provenance.IPAddress,
		UserAgent: s.Provenance.UserAgent,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func (r sessionRecord) session() *domain.Session {
	return &domain.Session{
		ID:         r.ID,
		UserID:     r.UserID,
		Token:      r.Token,
		ExpiresAt:  r.ExpiresAt,
		Provenance: domain.Provenance{IPAddress: r.IPAddress, UserAgent: r.UserAgent},
		CreatedAt:  r.CreatedAt,
	}
}

// SessionStore implements ports.SessionStore on Redis. Session keys carry
// their own expiry, so Redis evicts them without a sweep; SweepExpired only
// prunes index entries that point at evicted keys. The scripts address
// session keys by prefix, so every key must live on one node.
type SessionStore struct {
	client   redis.UniversalClient
	recorder ports.LastLoginRecorder
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore wraps client. recorder, when set, receives the login time
// of every created session.
func NewSessionStore(client redis.UniversalClient, recorder ports.LastLoginRecorder, timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SessionStore{client: client, recorder: recorder, timeout: timeout, now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(toRecord(sess))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	created, err := createSessionScript.Run(opCtx, s.client,
		[]string{sessionKey(sess.Token), userIndexKey(sess.UserID)},
		data, ttl.Milliseconds(), sess.Token,
	).Int64()
	if err != nil {
		return unavailable("create session", err)
	}
	if created == 0 {
		return fmt.Errorf("create session: %w", errDuplicateToken)
	}

	if s.recorder != nil {
		if err := s.recorder.TouchLastLogin(ctx, sess.UserID, sess.CreatedAt); err != nil {
			// A session whose login was not recorded must not stay usable.
			if delErr := s.Delete(ctx, sess.Token); delErr != nil {
				err = errors.Join(err, delErr)
			}
			return fmt.Errorf("create session: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) FindLive(ctx context.Context, token string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if isNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find session", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess := rec.session()
	// Redis expiry has millisecond slack; the clock check keeps the boundary exact.
	if !sess.LiveAt(s.now()) {
		return nil, nil
	}
	return sess, nil
}

func (s *SessionStore) ListForUser(ctx context.Context, userID int64) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tokens, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	out := make([]*domain.Session, 0, len(tokens))
	if len(tokens) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, sessionKeys(tokens)...).Result()
	if err != nil {
		return nil, unavailable("list sessions", err)
	}

	now := s.now()
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		if sess := rec.session(); sess.LiveAt(now) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.GetDel(ctx, sessionKey(token)).Bytes()
	if isNil(err) {
		return nil
	}
	if err != nil {
		return unavailable("delete session", err)
	}

	var rec sessionRecord
	if json.Unmarshal(data, &rec) == nil && rec.UserID > 0 {
		if err := s.client.SRem(ctx, userIndexKey(rec.UserID), token).Err(); err != nil {
			return unavailable("unindex session", err)
		}
	}
	return nil
}

func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := deleteUserSessionsScript.Run(ctx, s.client, []string{userIndexKey(userID)}, sessionPrefix).Int64()
	if err != nil {
		return 0, unavailable("delete user sessions", err)
	}
	return n, nil
}

// SweepExpired drops index members whose session key has already been
// evicted and reports how many it dropped.
func (s *SessionStore) SweepExpired(ctx context.Context) (int64, error) {
	var pruned int64
	iter := s.client.Scan(ctx, 0, userIndexPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.pruneIndex(ctx, iter.Val())
		if err != nil {
			return pruned, err
		}
		pruned += n
	}
	if err := iter.Err(); err != nil {
		return pruned, unavailable("sweep sessions", err)
	}
	return pruned, nil
}

func (s *SessionStore) pruneIndex(ctx context.Context, indexKey string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, unavailable("sweep sessions", err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	values, err := s.client.MGet(ctx, sessionKeys(tokens)...).Result()
	if err != nil {
		return 0, unavailable("sweep sessions", err)
	}

	dangling := make([]any, 0)
	for i, v := range values {
		if v == nil {
			dangling = append(dangling, tokens[i])
		}
	}
	if len(dangling) == 0 {
		return 0, nil
	}
	n, err := s.client.SRem(ctx, indexKey, dangling...).Result()
	if err != nil {
		return 0, unavailable("sweep sessions", err)
	}
	return n, nil
}

func sessionKey(token string) string { return sessionPrefix + token }

func userIndexKey(userID int64) string {
	return userIndexPrefix + strconv.FormatInt(userID, 10)
}

func sessionKeys(tokens []string) []string {
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = sessionKey(t)
	}
	return keys
}
