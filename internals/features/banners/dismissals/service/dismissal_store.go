package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DismissWindow is how long a dismissed banner stays hidden for a visitor.
const DismissWindow = 5 * 24 * time.Hour

var (
	ErrInvalidBannerKey = errors.New("invalid banner key")
	bannerKeyPattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type Store struct {
	KV     kv
	Window time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{KV: client, Window: DismissWindow}
}

func ValidBannerKey(key string) bool {
	return bannerKeyPattern.MatchString(key)
}

func redisKey(banner, visitor string) string {
	return "banner_dismissed:" + banner + ":" + visitor
}

// Dismiss records now as the dismissal time. The key TTL only keeps Redis
// tidy; IsDismissed decides on the stored timestamp.
func (s *Store) Dismiss(ctx context.Context, banner, visitor string, now time.Time) error {
	if !ValidBannerKey(banner) {
		return ErrInvalidBannerKey
	}
	ttl := s.Window + 24*time.Hour
	if err := s.KV.Set(ctx, redisKey(banner, visitor), now.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("store dismissal: %w", err)
	}
	return nil
}

func (s *Store) IsDismissed(ctx context.Context, banner, visitor string, now time.Time) (bool, error) {
	if !ValidBannerKey(banner) {
		return false, ErrInvalidBannerKey
	}
	raw, err := s.KV.Get(ctx, redisKey(banner, visitor)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load dismissal: %w", err)
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// unreadable value, show the banner again
		return false, nil
	}
	return now.Sub(time.Unix(ts, 0)) < s.Window, nil
}
