package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache memoizes generated answers per session so a repeated
// question skips the embedding and completion round trips. All of a
// session's answers live in one hash keyed by query digest, so
// reclaiming the session is a single DEL.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AnswerCache{client: client, ttl: ttl}
}

func (c *AnswerCache) GetAnswer(ctx context.Context, sessionID, query string) (string, bool, error) {
	answer, err := c.client.HGet(ctx, c.key(sessionID), digest(query)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get answer failed: %w", err)
	}
	return answer, true, nil
}

func (c *AnswerCache) SetAnswer(ctx context.Context, sessionID, query, answer string) error {
	key := c.key(sessionID)
	if err := c.client.HSet(ctx, key, digest(query), answer).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire answers failed: %w", err)
	}
	return nil
}

// DeleteSession drops every cached answer for the session. Called on
// upload (the corpus changed) and on session reclamation.
func (c *AnswerCache) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete answers failed: %w", err)
	}
	return nil
}

func (c *AnswerCache) key(sessionID string) string {
	return "answers:" + sessionID
}

func digest(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}
