package repository

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// Session hash fields.
const (
	fieldTokenHash = "token_hash"
	fieldIPAddress = "ip_address"
	fieldUserAgent = "user_agent"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldExpiresAt = "expires_at"
)

// KEYS: session hash, expiry index. ARGV: current hash, new hash, new expiry ms, now ms, expiry member.
var replaceTokenLua = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "token_hash")
if not current or current ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "token_hash", ARGV[2], "expires_at", ARGV[3], "updated_at", ARGV[4])
redis.call("PEXPIREAT", KEYS[1], ARGV[3])
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[5])
return 1
`)

// KEYS: session hash, principal index, expiry index. ARGV: session id, expiry member.
var deleteSessionLua = redis.NewScript(`
local deleted = redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
redis.call("ZREM", KEYS[3], ARGV[2])
return deleted
`)

// KEYS: principal index, expiry index. ARGV: session key prefix for the principal, principal id.
var deleteAllSessionsLua = redis.NewScript(`
local ids = redis.call("SMEMBERS", KEYS[1])
local deleted = 0
for _, id in ipairs(ids) do
  deleted = deleted + redis.call("DEL", ARGV[1] .. id)
  redis.call("ZREM", KEYS[2], ARGV[2] .. ":" .. id)
end
redis.call("DEL", KEYS[1])
return deleted
`)

// KEYS: expiry index. ARGV: exclusive upper bound ms, key prefix.
var deleteExpiredLua = redis.NewScript(`
local members = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
for _, member in ipairs(members) do
  local sep = string.find(member, ":", 1, true)
  local principal = string.sub(member, 1, sep - 1)
  local id = string.sub(member, sep + 1)
  redis.call("DEL", ARGV[2] .. "session:" .. principal .. ":" .. id)
  redis.call("SREM", ARGV[2] .. "sessions:" .. principal, id)
  redis.call("ZREM", KEYS[1], member)
end
return #members
`)

// RedisSessionRepository implements the session ledger on Redis. Each session is a
// hash that expires natively at its ExpiresAt; a per-principal set and a global
// sorted set index it. Every mutation is a MULTI/EXEC block or a Lua script, so
// operations on one principal are atomic with respect to each other.
//
// Only a single Redis node is supported. The
// scripts touch the global expiry index together with per-principal keys, and
// derive session key names from the index contents, so they cannot run on Redis
// Cluster.
type RedisSessionRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionRepository creates a Redis session repository. keyPrefix namespaces
// every key (e.g. "helpdesk:").
func NewRedisSessionRepository(client *redis.Client, keyPrefix string) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisSessionRepository) sessionKey(principalID, sessionID uuid.UUID) string {
	return r.sessionKeyPrefix(principalID) + sessionID.String()
}

func (r *RedisSessionRepository) sessionKeyPrefix(principalID uuid.UUID) string {
	return r.keyPrefix + "session:" + principalID.String() + ":"
}

func (r *RedisSessionRepository) principalKey(principalID uuid.UUID) string {
	return r.keyPrefix + "sessions:" + principalID.String()
}

func (r *RedisSessionRepository) expiryKey() string {
	return r.keyPrefix + "sessions:expiry"
}

func expiryMember(principalID, sessionID uuid.UUID) string {
	return principalID.String() + ":" + sessionID.String()
}

// Create stores a new session and indexes it.
func (r *RedisSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	key := r.sessionKey(session.PrincipalID, session.ID)
	expiresAt := session.ExpiresAt.UnixMilli()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldTokenHash, session.TokenHash,
			fieldIPAddress, session.ClientMeta.IPAddress,
			fieldUserAgent, session.ClientMeta.UserAgent,
			fieldCreatedAt, session.CreatedAt.UnixMilli(),
			fieldUpdatedAt, session.UpdatedAt.UnixMilli(),
			fieldExpiresAt, expiresAt,
		)
		pipe.PExpireAt(ctx, key, session.ExpiresAt)
		pipe.SAdd(ctx, r.principalKey(session.PrincipalID), session.ID.String())
		pipe.ZAdd(ctx, r.expiryKey(), redis.Z{
			Score:  float64(expiresAt),
			Member: expiryMember(session.PrincipalID, session.ID),
		})
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// Get retrieves a session of a principal. Returns ErrSessionNotFound if absent or expired.
func (r *RedisSessionRepository) Get(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	values, err := r.client.HGetAll(ctx, r.sessionKey(principalID, sessionID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get session")
	}
	if len(values) == 0 {
		return nil, sessionDomain.ErrSessionNotFound
	}

	return decodeSession(principalID, sessionID, values)
}

// ReplaceToken swaps the token hash atomically while it still equals currentHash.
// Returns ErrSessionConflict when the stored hash differs or the session is gone.
func (r *RedisSessionRepository) ReplaceToken(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
	currentHash, newHash string,
	newExpiresAt time.Time,
) error {
	swapped, err := replaceTokenLua.Run(
		ctx,
		r.client,
		[]string{r.sessionKey(principalID, sessionID), r.expiryKey()},
		currentHash,
		newHash,
		newExpiresAt.UnixMilli(),
		time.Now().UTC().UnixMilli(),
		expiryMember(principalID, sessionID),
	).Int()
	if err != nil {
		return apperrors.Wrap(err, "failed to replace session token")
	}
	if swapped == 0 {
		return sessionDomain.ErrSessionConflict
	}
	return nil
}

// Delete removes one session and its index entries. Missing sessions are ignored.
func (r *RedisSessionRepository) Delete(ctx context.Context, principalID, sessionID uuid.UUID) error {
	err := deleteSessionLua.Run(
		ctx,
		r.client,
		[]string{r.sessionKey(principalID, sessionID), r.principalKey(principalID), r.expiryKey()},
		sessionID.String(),
		expiryMember(principalID, sessionID),
	).Err()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteAllByPrincipal removes every session of a principal in one script.
func (r *RedisSessionRepository) DeleteAllByPrincipal(ctx context.Context, principalID uuid.UUID) (int64, error) {
	count, err := deleteAllSessionsLua.Run(
		ctx,
		r.client,
		[]string{r.principalKey(principalID), r.expiryKey()},
		r.sessionKeyPrefix(principalID),
		principalID.String(),
	).Int64()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete sessions")
	}
	return count, nil
}

// ListByPrincipal returns a principal's sessions, newest first. Index entries whose
// hash already expired are skipped.
func (r *RedisSessionRepository) ListByPrincipal(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.principalKey(principalID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}

	sessions := make([]*sessionDomain.Session, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	sessionIDs := make([]uuid.UUID, 0, len(ids))
	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	pipe := r.client.Pipeline()
	for _, id := range ids {
		sessionID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		sessionIDs = append(sessionIDs, sessionID)
		cmds = append(cmds, pipe.HGetAll(ctx, r.sessionKey(principalID, sessionID)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}

	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			continue
		}
		session, err := decodeSession(principalID, sessionIDs[i], values)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteExpired prunes sessions with an expiry before the given time. Redis already
// drops the hashes; this clears the index entries left behind.
func (r *RedisSessionRepository) DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	bound := strconv.FormatInt(before.UnixMilli(), 10)

	if dryRun {
		count, err := r.client.ZCount(ctx, r.expiryKey(), "-inf", "("+bound).Result()
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired sessions")
		}
		return count, nil
	}

	count, err := deleteExpiredLua.Run(ctx, r.client, []string{r.expiryKey()}, bound, r.keyPrefix).Int64()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return count, nil
}

// Ping checks connectivity for the readiness endpoint.
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeSession(principalID, sessionID uuid.UUID, values map[string]string) (*sessionDomain.Session, error) {
	createdAt, err := parseMillis(values[fieldCreatedAt])
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseMillis(values[fieldUpdatedAt])
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseMillis(values[fieldExpiresAt])
	if err != nil {
		return nil, err
	}

	return &sessionDomain.Session{
		ID:          sessionID,
		PrincipalID: principalID,
		TokenHash:   values[fieldTokenHash],
		ClientMeta: sessionDomain.ClientMeta{
			IPAddress: values[fieldIPAddress],
			UserAgent: values[fieldUserAgent],
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func parseMillis(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, apperrors.Wrap(errors.New("missing timestamp"), "failed to decode session")
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, "failed to decode session")
	}
	return time.UnixMilli(ms).UTC(), nil
}
