// Package notifications delivers realtime feed events over Redis pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"mdd/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventArticleCreated is sent when an article is published under a theme.
const EventArticleCreated = "article.created"

const articleChannelPattern = "themes:*:articles"

// FeedEvent is the envelope written to feed websockets.
type FeedEvent struct {
	Type    string                 `json:"type"`
	Payload models.ArticleResponse `json:"payload"`
}

// Notifier provides helpers to publish feed events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishArticleCreated announces article on its theme's channel.
func (n *Notifier) PublishArticleCreated(ctx context.Context, article *models.Article) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(FeedEvent{
		Type:    EventArticleCreated,
		Payload: models.NewArticleResponse(article),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ArticleChannel(article.ThemeID), payload).Err()
}

// StartArticleSubscriber subscribes to every theme's article channel and calls
// onMessage with the theme ID and raw payload until ctx is cancelled.
func (n *Notifier) StartArticleSubscriber(
	ctx context.Context, onMessage func(themeID uint, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, articleChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", articleChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				themeID, ok := ParseArticleChannel(msg.Channel)
				if !ok {
					slog.Warn("invalid feed channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in article subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(themeID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// ArticleChannel derives the Redis channel name for a theme's new articles.
func ArticleChannel(themeID uint) string {
	return "themes:" + strconv.FormatUint(uint64(themeID), 10) + ":articles"
}

// ParseArticleChannel is the inverse of ArticleChannel.
func ParseArticleChannel(channel string) (uint, bool) {
	rest, ok := strings.CutPrefix(channel, "themes:")
	if !ok {
		return 0, false
	}
	raw, ok := strings.CutSuffix(rest, ":articles")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
