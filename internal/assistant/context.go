package assistant

import (
	"context"
	"fmt"
	"strings"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

// ContextBuilder assembles the system prompt from live platform data so the
// assistant can answer questions about what is happening on the platform
// right now, not just generic trading talk.
type ContextBuilder struct {
	ideaRepo repository.IdeaRepository
	adRepo   repository.AdRepository
}

func NewContextBuilder(ideaRepo repository.IdeaRepository, adRepo repository.AdRepository) *ContextBuilder {
	return &ContextBuilder{ideaRepo: ideaRepo, adRepo: adRepo}
}

const (
	contextIdeaLimit = 15
	contextAdLimit   = 5
)

// SystemMessage returns the grounding system prompt. Failures degrade to a
// prompt without platform data rather than blocking the chat.
func (b *ContextBuilder) SystemMessage(ctx context.Context) Message {
	var sb strings.Builder
	sb.WriteString("You are the resident assistant of a social trading-ideas platform. ")
	sb.WriteString("Users share trade ideas with multi-page breakdowns, discuss them in comments and community servers, and follow each other's positions. ")
	sb.WriteString("Answer questions about the platform and its current activity. Be concise. ")
	sb.WriteString("You must not give financial advice; frame trade discussion as commentary on what users posted.\n\n")

	ideas, err := b.ideaRepo.List(ctx, contextIdeaLimit, 0, 0, "new")
	if err == nil && len(ideas) > 0 {
		sb.WriteString("Latest trade ideas on the platform:\n")
		for _, idea := range ideas {
			sb.WriteString(formatIdeaLine(idea))
		}
	}

	ads, err := b.adRepo.ListApproved(ctx)
	if err == nil && len(ads) > 0 {
		if len(ads) > contextAdLimit {
			ads = ads[:contextAdLimit]
		}
		sb.WriteString("\nCurrently promoted on the platform (approved ads):\n")
		for _, ad := range ads {
			sb.WriteString(fmt.Sprintf("- %q (%s)\n", ad.Title, ad.LinkURL))
		}
	}

	return Message{Role: RoleSystem, Content: sb.String()}
}

func formatIdeaLine(idea *models.TradeIdea) string {
	author := "unknown"
	if idea.User.Username != "" {
		author = idea.User.Username
	}
	line := fmt.Sprintf("- #%d %q on %s by %s (%d likes, %d comments",
		idea.ID, idea.Title, idea.Instrument, author, idea.LikesCount, idea.CommentsCount)
	if tags := idea.TagList(); len(tags) > 0 {
		line += ", tags: " + strings.Join(tags, "/")
	}
	return line + ")\n"
}
