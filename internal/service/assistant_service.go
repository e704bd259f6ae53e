package service

import (
	"context"

	"alphaboard/internal/assistant"
	"alphaboard/internal/featureflags"
	"alphaboard/internal/models"
	"alphaboard/internal/observability"
)

// AssistantService runs the platform chatbot: user turns plus a live
// platform-context system message, sent to a chat completion provider.
type AssistantService struct {
	completer assistant.ChatCompleter
	builder   *assistant.ContextBuilder
	flags     *featureflags.Manager
}

type AssistantChatInput struct {
	UserID   uint
	Messages []assistant.Message
}

func NewAssistantService(
	completer assistant.ChatCompleter,
	builder *assistant.ContextBuilder,
	flags *featureflags.Manager,
) *AssistantService {
	return &AssistantService{
		completer: completer,
		builder:   builder,
		flags:     flags,
	}
}

const maxAssistantTurns = 40

// Chat returns the assistant's reply to the conversation so far.
func (s *AssistantService) Chat(ctx context.Context, in AssistantChatInput) (*assistant.Message, error) {
	if !s.flags.EnabledDefault(featureflags.FlagAssistant, in.UserID, true) {
		return nil, models.NewForbiddenError("Assistant is not available")
	}
	if s.completer == nil {
		return nil, models.NewValidationError("Assistant is not configured")
	}
	if len(in.Messages) == 0 {
		return nil, models.NewValidationError("At least one message is required")
	}
	if len(in.Messages) > maxAssistantTurns {
		in.Messages = in.Messages[len(in.Messages)-maxAssistantTurns:]
	}
	for _, m := range in.Messages {
		switch m.Role {
		case assistant.RoleUser, assistant.RoleAssistant:
			// client may only send these two
		default:
			return nil, models.NewValidationError("Invalid message role")
		}
		if m.Content == "" {
			return nil, models.NewValidationError("Message content is required")
		}
	}

	messages := make([]assistant.Message, 0, len(in.Messages)+1)
	messages = append(messages, s.builder.SystemMessage(ctx))
	messages = append(messages, in.Messages...)

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		observability.AssistantRequests.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	observability.AssistantRequests.WithLabelValues("ok").Inc()

	return &assistant.Message{Role: assistant.RoleAssistant, Content: reply}, nil
}
