// Package chat implements the per-message conversation pipeline: persist
// the user message, recall topic and semantic memory, rank it under fixed
// budgets, build the prompt, obtain the assistant reply, and persist it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/draylen/graphchat/internal/llm"
	"github.com/draylen/graphchat/internal/memory"
	"github.com/draylen/graphchat/internal/semindex"
	"github.com/draylen/graphchat/pkg/types"
)

// ErrConversationNotFound is returned when the conversation does not exist
// or does not belong to the requesting user. The two cases are deliberately
// indistinguishable to the caller.
var ErrConversationNotFound = errors.New("chat: conversation not found")

// ConversationStore is the conversation-level graph store surface the
// pipeline depends on.
type ConversationStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	VerifyOwner(ctx context.Context, userID int64, conversationID string) (bool, error)
	Title(ctx context.Context, conversationID string) (string, error)
	SetTitle(ctx context.Context, conversationID, title string) error
	ListForUser(ctx context.Context, userID int64) ([]types.Conversation, error)
}

// MessageStore is the message-level graph store surface the pipeline
// depends on.
type MessageStore interface {
	Create(ctx context.Context, conversationID, role, content string) (string, error)
	Recent(ctx context.Context, conversationID string, limit int) ([]types.ChatMessage, error)
	Full(ctx context.Context, conversationID string) ([]types.ChatMessage, error)
	CountUser(ctx context.Context, conversationID string) (int, error)
	InitialUser(ctx context.Context, conversationID string, limit int) ([]string, error)
}

// TopicStore links messages to topics and recalls topic-linked history.
type TopicStore interface {
	Link(ctx context.Context, userID int64, messageID string, topics []string) error
	Memory(ctx context.Context, userID int64, topic, excludeMessageID string, limit int) ([]types.TopicMemory, error)
}

// TopicExtractor turns message text into raw topic candidates.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, message string) ([]string, error)
}

// EventSink receives turn events for broadcast (websocket hub). Optional.
type EventSink interface {
	Publish(event interface{})
}

// TurnEvent is broadcast after notable turn milestones.
type TurnEvent struct {
	Type           string `json:"type"` // "assistant_reply" or "title_updated"
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title,omitempty"`
}

// Options holds the pipeline tunables. Zero fields take the reference
// defaults from DefaultOptions.
type Options struct {
	// HistoryLimit bounds the conversation window sent to the model.
	HistoryLimit int

	// TopicFetchLimit bounds the messages fetched per topic.
	TopicFetchLimit int

	// SemanticK is the nearest-neighbor candidate count.
	SemanticK int

	// RawSimilarityFloor is applied inside the vector search, before
	// recency decay. Distinct from Budget.MinFinalScore.
	RawSimilarityFloor float64

	// Budget caps the ranked memory selection.
	Budget memory.Budget

	// TitleMinUserMessages: title generation runs only once the user
	// message count strictly exceeds this.
	TitleMinUserMessages int

	// TitleSourceMessages is how many opening user messages feed the
	// title prompt.
	TitleSourceMessages int

	// StoreTimeout bounds each individual graph-store call.
	StoreTimeout time.Duration
}

// DefaultOptions returns the reference tunables.
func DefaultOptions() Options {
	return Options{
		HistoryLimit:         10,
		TopicFetchLimit:      3,
		SemanticK:            5,
		RawSimilarityFloor:   0.6,
		Budget:               memory.DefaultBudget(),
		TitleMinUserMessages: 2,
		TitleSourceMessages:  3,
		StoreTimeout:         15 * time.Second,
	}
}

// Service sequences the per-message pipeline. All per-turn state is local
// to a single Send call; the service itself is safe for concurrent use.
type Service struct {
	conversations ConversationStore
	messages      MessageStore
	topics        TopicStore
	index         semindex.Index
	completer     llm.ChatCompleter
	embedder      llm.EmbeddingGenerator
	extractor     TopicExtractor
	events        EventSink

	ranker *memory.Ranker
	opts   Options
	now    func() time.Time
}

// NewService constructs the pipeline from its collaborators. embedder,
// extractor, and events may be nil; the corresponding features degrade to
// absent.
func NewService(
	conversations ConversationStore,
	messages MessageStore,
	topics TopicStore,
	index semindex.Index,
	completer llm.ChatCompleter,
	embedder llm.EmbeddingGenerator,
	extractor TopicExtractor,
	events EventSink,
	opts Options,
) *Service {
	defaults := DefaultOptions()
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = defaults.HistoryLimit
	}
	if opts.TopicFetchLimit == 0 {
		opts.TopicFetchLimit = defaults.TopicFetchLimit
	}
	if opts.SemanticK == 0 {
		opts.SemanticK = defaults.SemanticK
	}
	if opts.RawSimilarityFloor == 0 {
		opts.RawSimilarityFloor = defaults.RawSimilarityFloor
	}
	if opts.Budget == (memory.Budget{}) {
		opts.Budget = defaults.Budget
	}
	if opts.TitleMinUserMessages == 0 {
		opts.TitleMinUserMessages = defaults.TitleMinUserMessages
	}
	if opts.TitleSourceMessages == 0 {
		opts.TitleSourceMessages = defaults.TitleSourceMessages
	}
	if opts.StoreTimeout == 0 {
		opts.StoreTimeout = defaults.StoreTimeout
	}

	return &Service{
		conversations: conversations,
		messages:      messages,
		topics:        topics,
		index:         index,
		completer:     completer,
		embedder:      embedder,
		extractor:     extractor,
		events:        events,
		ranker:        memory.NewRanker(opts.Budget),
		opts:          opts,
		now:           time.Now,
	}
}

// SetEventSink attaches the event sink after construction. Call before
// serving traffic.
func (s *Service) SetEventSink(events EventSink) {
	s.events = events
}

// Start creates a new conversation for the user and returns its id.
func (s *Service) Start(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.conversations.Create(ctx, userID)
}

// History returns the full conversation transcript after verifying
// ownership.
func (s *Service) History(ctx context.Context, userID int64, conversationID string) ([]types.ChatMessage, error) {
	if err := s.verifyOwner(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.messages.Full(ctx, conversationID)
}

// List returns the user's conversations, most recently active first.
func (s *Service) List(ctx context.Context, userID int64) ([]types.Conversation, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.conversations.ListForUser(ctx, userID)
}

// Send runs one full turn: persist the user message, gather and rank
// memory, complete, persist the reply. Memory gathering is best-effort
// throughout — only ownership, user-message persistence, history retrieval,
// the completion call itself, and reply persistence can fail the turn.
func (s *Service) Send(ctx context.Context, userID int64, conversationID, text string) (types.ChatMessage, error) {
	// 1. Ownership gate. Nothing is written for a foreign conversation.
	if err := s.verifyOwner(ctx, userID, conversationID); err != nil {
		return types.ChatMessage{}, err
	}

	// 2. Persist the user message.
	messageID, err := s.createMessage(ctx, conversationID, types.RoleUser, text)
	if err != nil {
		return types.ChatMessage{}, fmt.Errorf("chat: store user message: %w", err)
	}

	// 3. Embedding, best-effort. Absence just skips semantic memory.
	embedding := s.embedMessage(ctx, userID, messageID, text)

	// 4. Topics, best-effort.
	topics := s.extractTopics(ctx, text)
	s.linkTopics(ctx, userID, messageID, topics)

	// 5–6. Recall both memory signals, excluding the current message.
	topicMemories := s.fetchTopicMemories(ctx, userID, topics, messageID)
	semanticMemories := s.fetchSemanticMemories(ctx, userID, embedding, messageID)

	// 7–8. Rank under budgets and build the prompt.
	ranked := s.ranker.Rank(topicMemories, semanticMemories, s.now().UTC())
	systemPrompt := llm.BaseSystemPrompt
	if ranked.UseMemory {
		systemPrompt = llm.SystemPromptWithContext(memory.BuildContext(ranked))
	}

	// 9. Completion over the bounded history window. Fatal on failure.
	history, err := s.recentHistory(ctx, conversationID)
	if err != nil {
		return types.ChatMessage{}, fmt.Errorf("chat: fetch history: %w", err)
	}
	reply, err := s.completer.Complete(ctx, history, systemPrompt)
	if err != nil {
		return types.ChatMessage{}, fmt.Errorf("chat: completion: %w", err)
	}

	// 10. Persist the assistant reply.
	if _, err := s.createMessage(ctx, conversationID, types.RoleAssistant, reply); err != nil {
		return types.ChatMessage{}, fmt.Errorf("chat: store assistant message: %w", err)
	}
	s.publish(TurnEvent{Type: "assistant_reply", ConversationID: conversationID})

	// 11. Title generation, best-effort; never affects the returned reply.
	s.maybeGenerateTitle(ctx, conversationID)

	return types.ChatMessage{Role: types.RoleAssistant, Content: reply}, nil
}

func (s *Service) verifyOwner(ctx context.Context, userID int64, conversationID string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	owned, err := s.conversations.VerifyOwner(ctx, userID, conversationID)
	if err != nil {
		return fmt.Errorf("chat: verify ownership: %w", err)
	}
	if !owned {
		return ErrConversationNotFound
	}
	return nil
}

func (s *Service) createMessage(ctx context.Context, conversationID, role, content string) (string, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.messages.Create(ctx, conversationID, role, content)
}

// embedMessage generates and indexes the embedding for the user message.
// Returns nil on any failure; the turn proceeds without semantic memory and
// no embedding is persisted.
func (s *Service) embedMessage(ctx context.Context, userID int64, messageID, text string) []float32 {
	if s.embedder == nil {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("chat: embedding failed, continuing without semantic memory: %v", err)
		return nil
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.index.Store(storeCtx, messageID, userID, text, s.now().UTC(), embedding); err != nil {
		log.Printf("chat: storing embedding failed: %v", err)
	}
	return embedding
}

// extractTopics runs extraction plus cleanup. Any failure yields no topics.
func (s *Service) extractTopics(ctx context.Context, text string) []string {
	if s.extractor == nil {
		return nil
	}
	raw, err := s.extractor.ExtractTopics(ctx, text)
	if err != nil {
		log.Printf("chat: topic extraction failed, continuing without topic memory: %v", err)
		return nil
	}
	return memory.CleanTopics(raw)
}

func (s *Service) linkTopics(ctx context.Context, userID int64, messageID string, topics []string) {
	if len(topics) == 0 {
		return
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.topics.Link(ctx, userID, messageID, topics); err != nil {
		log.Printf("chat: linking topics failed: %v", err)
	}
}

// fetchTopicMemories gathers per-topic history in first-seen topic order.
// Store failures degrade to an empty list for that topic: memory is
// advisory.
func (s *Service) fetchTopicMemories(ctx context.Context, userID int64, topics []string, excludeMessageID string) []memory.TopicMemories {
	result := make([]memory.TopicMemories, 0, len(topics))
	for _, topic := range topics {
		fetchCtx, cancel := s.storeCtx(ctx)
		memories, err := s.topics.Memory(fetchCtx, userID, topic, excludeMessageID, s.opts.TopicFetchLimit)
		cancel()
		if err != nil {
			log.Printf("chat: topic memory fetch failed for %q: %v", topic, err)
			memories = nil
		}
		result = append(result, memory.TopicMemories{Topic: topic, Memories: memories})
	}
	return result
}

func (s *Service) fetchSemanticMemories(ctx context.Context, userID int64, embedding []float32, excludeMessageID string) []types.SemanticMemory {
	if len(embedding) == 0 {
		return nil
	}
	searchCtx, cancel := s.storeCtx(ctx)
	defer cancel()

	memories, err := s.index.Search(searchCtx, userID, embedding, excludeMessageID, s.opts.SemanticK, s.opts.RawSimilarityFloor)
	if err != nil {
		log.Printf("chat: semantic memory search failed: %v", err)
		return nil
	}
	return memories
}

func (s *Service) recentHistory(ctx context.Context, conversationID string) ([]types.ChatMessage, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.messages.Recent(ctx, conversationID, s.opts.HistoryLimit)
}

func (s *Service) publish(event TurnEvent) {
	if s.events != nil {
		s.events.Publish(event)
	}
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}
