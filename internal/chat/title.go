package chat

import (
	"context"
	"log"

	"github.com/draylen/graphchat/internal/llm"
	"github.com/draylen/graphchat/pkg/types"
)

// maybeGenerateTitle replaces the sentinel title once the conversation has
// enough user messages to summarise. Every failure in here is logged and
// swallowed: the assistant reply has already been produced and must not be
// affected. Title and count are re-derived with fresh queries on every turn
// rather than cached across steps.
func (s *Service) maybeGenerateTitle(ctx context.Context, conversationID string) {
	titleCtx, cancel := s.storeCtx(ctx)
	title, err := s.conversations.Title(titleCtx, conversationID)
	cancel()
	if err != nil {
		log.Printf("chat: title lookup failed: %v", err)
		return
	}
	if title != "" && title != types.UntitledConversation {
		return
	}

	countCtx, cancel := s.storeCtx(ctx)
	count, err := s.messages.CountUser(countCtx, conversationID)
	cancel()
	if err != nil {
		log.Printf("chat: user message count failed: %v", err)
		return
	}
	if count <= s.opts.TitleMinUserMessages {
		return
	}

	initialCtx, cancel := s.storeCtx(ctx)
	userTexts, err := s.messages.InitialUser(initialCtx, conversationID, s.opts.TitleSourceMessages)
	cancel()
	if err != nil || len(userTexts) == 0 {
		log.Printf("chat: initial user messages fetch failed: %v", err)
		return
	}

	reply, err := s.completer.Complete(ctx, []types.ChatMessage{
		{Role: types.RoleUser, Content: llm.TitlePrompt(userTexts)},
	}, "You write short conversation titles.")
	if err != nil {
		log.Printf("chat: title generation failed: %v", err)
		return
	}
	title = llm.CleanTitle(reply, types.UntitledConversation)

	setCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.conversations.SetTitle(setCtx, conversationID, title); err != nil {
		log.Printf("chat: title update failed: %v", err)
		return
	}
	s.publish(TurnEvent{Type: "title_updated", ConversationID: conversationID, Title: title})
}
