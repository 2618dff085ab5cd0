package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/lumberjacked/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	DefaultTTL        = 24 * 7 * time.Hour
	MinPasswordLength = 8
	TokenLength       = 40
	sessionKeyPrefix  = "lumberjacked-session||"
	tokensSetKey      = "lumberjacked-sessions"
	fieldUserID       = "user_id"
	fieldCreatedAt    = "created_at"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrWrongCredentials = errors.New("unable to log in with provided credentials")
	ErrEmailTaken       = errors.New("a user with that email address already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("invalid token")
)

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

type usersRepo interface {
	Add(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

type Service struct {
	users       usersRepo
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	Now            func() time.Time
}

func NewAuthService(
	users usersRepo,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          users,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
		Now:            time.Now,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func validateRegistration(req RegistrationRequest) error {
	var err error
	if _, parseErr := mail.ParseAddress(req.Email); parseErr != nil || strings.TrimSpace(req.Email) == "" {
		err = multierr.Append(err, invalidInput("enter a valid email address"))
	}
	if req.Password1 != req.Password2 {
		err = multierr.Append(err, invalidInput("the two password fields didn't match"))
	}
	if len([]rune(req.Password1)) < MinPasswordLength {
		err = multierr.Append(err, invalidInput(
			fmt.Sprintf("password must contain at least %d characters", MinPasswordLength),
		))
	}
	return err
}

func (as *Service) Register(ctx context.Context, req RegistrationRequest) (User, error) {
	if err := validateRegistration(req); err != nil {
		return User{}, err
	}

	passwordHash, err := pkg.HashPassword(req.Password1)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	return as.users.Add(ctx, User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		CreatedAt:    as.Now().UTC(),
	})
}

func (as *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return as.users.Get(ctx, id)
}

// Login checks the credentials and opens a new session for the user.
func (as *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", invalidInput("email and password are required")
	}

	user, err := as.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrWrongCredentials
		}
		return "", err
	}
	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		return "", ErrWrongCredentials
	}

	token, err := as.RandStringFunc(TokenLength)
	if err != nil {
		return "", err
	}

	key := sessionKey(token)
	if err := as.redisClient.HSet(
		ctx, key,
		fieldUserID, user.ID,
		fieldCreatedAt, as.Now().Unix(),
	).Err(); err != nil {
		return "", err
	}
	if err := as.redisClient.Expire(ctx, key, as.ttl).Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Logout removes the session. It reports false if there was no such session.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old.
// Sessions already expired by redis are only dropped from the tokens set.
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		createdAtUnixStr, err := as.redisClient.HGet(ctx, sessionKey(token), fieldCreatedAt).Result()
		if errors.Is(err, redis.Nil) {
			toRemove = append(toRemove, token)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean token, parse created at: %s", err)
			continue
		}

		if as.Now().Sub(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Errorf("auth service, clean token: %s", err)
			continue
		}

		// remove token from the list of sessions
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token: %s", err)
			continue
		}
	}
	log.Debugf("auth service, scan and clean done, removed %d sessions", len(toRemove))
}
