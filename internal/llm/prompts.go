package llm

import (
	"fmt"
	"strings"
)

// BaseSystemPrompt is the assistant instruction used for every turn. The
// no-meta-reference rule keeps the model from narrating its own memory
// ("as we discussed earlier...") when recalled context is injected.
const BaseSystemPrompt = "You are a helpful AI assistant.\n" +
	"Answer the user's question clearly and accurately. " +
	"Stay strictly on the topic asked by the user. " +
	"Do NOT say phrases like 'previous discussions' or 'earlier conversations'."

// SystemPromptWithContext splices the knowledge context into the base
// prompt, framed explicitly as optional background so the model does not
// treat it as part of the current conversation.
func SystemPromptWithContext(knowledgeContext string) string {
	return BaseSystemPrompt + "\n\n" +
		"The following is OPTIONAL reference information. " +
		"It is NOT part of the current conversation.\n" +
		"Use it only if directly relevant.\n\n" +
		knowledgeContext
}

// TopicExtractionPrompt asks for a bare comma-separated noun-phrase list.
// Anything beyond the list (preambles, numbering, markdown) is handled by
// ParseTopicList and the downstream noise filter.
func TopicExtractionPrompt(message string) string {
	return fmt.Sprintf(`Extract at most 4 short noun phrases naming the topics of the message below.
Reply with ONLY the noun phrases, separated by commas. No numbering, no extra words.

Message: %s`, message)
}

// TitlePrompt asks for a short conversation title derived from the user's
// opening messages.
func TitlePrompt(userTexts []string) string {
	return fmt.Sprintf(`Write a short title (at most 6 words) for a conversation that starts with these user messages.
Reply with ONLY the title. No quotes, no punctuation at the end.

%s`, strings.Join(userTexts, "\n"))
}
