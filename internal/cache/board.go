package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const boardKeyPrefix = "quizboard"

// Board caches aggregated leaderboards per (chat, tag) so repeated /quizboard
// calls don't re-run the aggregation query. A nil Board disables caching.
type Board struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBoard(client *redis.Client) *Board {
	if client == nil {
		return nil
	}
	return &Board{client: client, ttl: 5 * time.Minute}
}

func boardKey(chatID, tag string) string {
	return fmt.Sprintf("%s:%s:%s", boardKeyPrefix, chatID, tag)
}

// Get unmarshals a cached board into dest and reports whether one was found.
func (b *Board) Get(ctx context.Context, chatID, tag string, dest any) bool {
	if b == nil {
		return false
	}
	data, err := b.client.Get(ctx, boardKey(chatID, tag)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (b *Board) Set(ctx context.Context, chatID, tag string, val any) {
	if b == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	b.client.Set(ctx, boardKey(chatID, tag), data, b.ttl)
}

// InvalidateChat drops every cached board for a chat. Called after any
// ingestion or removal so boards never outlive the data they summarize by
// more than one write.
func (b *Board) InvalidateChat(ctx context.Context, chatID string) {
	if b == nil {
		return
	}
	pattern := fmt.Sprintf("%s:%s:*", boardKeyPrefix, chatID)
	iter := b.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		b.client.Del(ctx, iter.Val())
	}
}
