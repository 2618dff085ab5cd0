package auth

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/lumberjacked/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
)

const (
	loginCacheSize = 1024 * 1024
	// how long a resolved token is trusted without asking redis again. Logout only
	// evicts locally, so other instances keep resolving a token for at most this long.
	loginCacheTTL = 10 * time.Second
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	cache       *freecache.Cache
	Now         func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		cache:       freecache.NewCache(loginCacheSize),
		Now:         time.Now,
	}
}

// UserID resolves a session token to its user. Unknown and expired sessions give ErrSessionNotFound.
func (lc *LoginChecker) UserID(ctx context.Context, token string) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.login_checker.user_id")
	defer func() {
		if errors.Is(err, ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, err := lc.cache.Get([]byte(token)); err == nil && len(cached) == 8 {
		return int64(binary.BigEndian.Uint64(cached)), nil
	}

	session, err := lc.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if len(session) == 0 {
		return 0, ErrSessionNotFound
	}

	userID, err := strconv.ParseInt(session[fieldUserID], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session user id: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session created at: %w", err)
	}

	remaining := lc.ttl - lc.Now().Sub(time.Unix(createdAtUnix, 0))
	if remaining <= 0 {
		return 0, ErrSessionNotFound
	}

	cacheFor := min(remaining, loginCacheTTL)
	if seconds := int(cacheFor / time.Second); seconds > 0 {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(userID))
		// a full cache only costs another redis lookup
		_ = lc.cache.Set([]byte(token), buf[:], seconds)
	}

	return userID, nil
}

// Forget drops the token from the local cache, so a logged out session stops resolving at once.
func (lc *LoginChecker) Forget(token string) {
	lc.cache.Del([]byte(token))
}
