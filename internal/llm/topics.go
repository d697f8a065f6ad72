package llm

import (
	"context"

	"github.com/draylen/graphchat/pkg/types"
)

const topicExtractionSystem = "You extract topics from text. Reply with only a comma-separated list of noun phrases."

// TopicExtractor turns a message into raw topic candidates using the chat
// completer. Callers must treat errors as "no topics": topic memory is a
// best-effort feature and its absence never fails a turn.
type TopicExtractor struct {
	completer ChatCompleter
}

// NewTopicExtractor creates a TopicExtractor backed by the given completer.
func NewTopicExtractor(completer ChatCompleter) *TopicExtractor {
	return &TopicExtractor{completer: completer}
}

// ExtractTopics asks the model for the message's topics and parses the
// reply into raw candidate labels. Cleanup (normalisation, noise filtering,
// dedupe, cap) is the memory package's job.
func (e *TopicExtractor) ExtractTopics(ctx context.Context, message string) ([]string, error) {
	reply, err := e.completer.Complete(ctx, []types.ChatMessage{
		{Role: types.RoleUser, Content: TopicExtractionPrompt(message)},
	}, topicExtractionSystem)
	if err != nil {
		return nil, err
	}
	return ParseTopicList(reply), nil
}
