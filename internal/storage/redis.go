package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	visitorCookieName = "oc_visitor"
	visitorTTL        = 30 * 24 * time.Hour
)

// RedisConfig configures the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisProvider keeps visitor state in a Redis hash keyed by a visitor id
// cookie. The cookie is only issued on the first write.
type RedisProvider struct {
	client redis.Cmdable
	secure bool
	logger *zap.Logger
}

// NewRedisProvider creates a provider on top of client
func NewRedisProvider(client redis.Cmdable, secure bool, logger *zap.Logger) *RedisProvider {
	return &RedisProvider{
		client: client,
		secure: secure,
		logger: logger,
	}
}

func (p *RedisProvider) ForRequest(w http.ResponseWriter, r *http.Request) Store {
	s := &redisStore{provider: p, w: w}
	if cookie, err := r.Cookie(visitorCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			s.visitorID = id.String()
		}
	}
	return s
}

type redisStore struct {
	provider  *RedisProvider
	w         http.ResponseWriter
	visitorID string
}

func visitorKey(id string) string {
	return "visitor:" + id
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.visitorID == "" {
		return "", false, nil
	}
	v, err := s.provider.client.HGet(ctx, visitorKey(s.visitorID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read visitor state: %w", err)
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if !knownKey(key) {
		return ErrUnknownKey
	}
	if s.visitorID == "" {
		s.visitorID = uuid.New().String()
		http.SetCookie(s.w, &http.Cookie{
			Name:     visitorCookieName,
			Value:    s.visitorID,
			Path:     "/",
			MaxAge:   int(visitorTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.provider.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	k := visitorKey(s.visitorID)
	_, err := s.provider.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, key, value)
		pipe.Expire(ctx, k, visitorTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write visitor state: %w", err)
	}
	return nil
}
