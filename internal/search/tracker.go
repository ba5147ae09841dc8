package search

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TermCount is one popular search term and how often it was searched.
type TermCount struct {
	Term  string  `json:"term"`
	Count float64 `json:"count"`
}

// Tracker records fuzzy search terms per scope (products, services).
type Tracker interface {
	Track(ctx context.Context, scope, term string) error
	Popular(ctx context.Context, scope string, limit int) ([]TermCount, error)
}

// RedisTracker keeps one sorted set per scope, scored by search count.
type RedisTracker struct {
	client *redis.Client
	prefix string
	logger *logrus.Entry
}

func NewRedisTracker(client *redis.Client, logger *logrus.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		prefix: "catalog:search:terms",
		logger: logger.WithField("component", "search-tracker"),
	}
}

func (t *RedisTracker) key(scope string) string {
	return fmt.Sprintf("%s:%s", t.prefix, scope)
}

// Track increments the counter for the normalized term.
func (t *RedisTracker) Track(ctx context.Context, scope, term string) error {
	term = Normalize(term)
	if term == "" {
		return nil
	}
	if err := t.client.ZIncrBy(ctx, t.key(scope), 1, term).Err(); err != nil {
		t.logger.WithError(err).WithField("term", term).Warn("Failed to record search term")
		return err
	}
	return nil
}

// Popular returns the most searched terms, highest count first.
func (t *RedisTracker) Popular(ctx context.Context, scope string, limit int) ([]TermCount, error) {
	if limit < 1 {
		limit = 10
	}
	results, err := t.client.ZRevRangeWithScores(ctx, t.key(scope), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular terms: %w", err)
	}

	terms := make([]TermCount, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		terms = append(terms, TermCount{Term: member, Count: z.Score})
	}
	return terms, nil
}

// NopTracker is used when Redis is not configured.
type NopTracker struct{}

func (NopTracker) Track(context.Context, string, string) error { return nil }

func (NopTracker) Popular(context.Context, string, int) ([]TermCount, error) {
	return []TermCount{}, nil
}
