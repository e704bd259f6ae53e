package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix           = "user:%d"
	IdeaKeyPrefix           = "idea:%d"
	FeedKeyPrefix           = "feed:%d:%d" // page, limit
	ServerKeyPrefix         = "server:%d"
	ServerMessagesPrefix    = "server:%d:messages"
	ApprovedAdsKey          = "ads:approved"
	ActiveAffiliateLinksKey = "affiliates:active"
)

const (
	UserTTL           = 5 * time.Minute
	IdeaTTL           = 30 * time.Minute
	FeedTTL           = time.Minute
	ServerTTL         = 10 * time.Minute
	ServerMessagesTTL = 2 * time.Minute
	PromotedTTL       = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func IdeaKey(ideaID uint) string {
	return fmt.Sprintf(IdeaKeyPrefix, ideaID)
}

func FeedKey(page, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, page, limit)
}

func ServerKey(serverID uint) string {
	return fmt.Sprintf(ServerKeyPrefix, serverID)
}

func ServerMessagesKey(serverID uint) string {
	return fmt.Sprintf(ServerMessagesPrefix, serverID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateIdea(ctx context.Context, ideaID uint) {
	Invalidate(ctx, IdeaKey(ideaID))
	InvalidateFeed(ctx)
}

func InvalidateServer(ctx context.Context, serverID uint) {
	Invalidate(ctx, ServerKey(serverID))
	Invalidate(ctx, ServerMessagesKey(serverID))
}

// InvalidateFeed drops all cached feed pages. Feed keys carry their paging in
// the key so a SCAN+DEL sweep is needed rather than a single DEL.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "feed:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidatePromoted drops the cached ad and affiliate link inventories along
// with any composed feed pages that embed them.
func InvalidatePromoted(ctx context.Context) {
	Invalidate(ctx, ApprovedAdsKey)
	Invalidate(ctx, ActiveAffiliateLinksKey)
	InvalidateFeed(ctx)
}
