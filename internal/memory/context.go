package memory

import (
	"fmt"
	"strings"
)

// BuildContext renders the ranked memory selection into the plain-text
// knowledge block spliced into the system prompt. For each topic with
// memories it emits a header line followed by one bullet per memory, then a
// "Related previous messages" section for the semantic texts. Returns the
// empty string when there is nothing to render.
//
// The framing instruction that marks this block as optional background lives
// in the prompt template, not here.
func BuildContext(ranked Ranked) string {
	var blocks []string

	for _, tm := range ranked.Topics {
		blocks = append(blocks, fmt.Sprintf("Related discussion about %s:", tm.Topic))
		for _, m := range tm.Memories {
			blocks = append(blocks, "- "+m.Content)
		}
	}

	if len(ranked.SemanticTexts) > 0 {
		if len(blocks) > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks, "Related previous messages:")
		for _, text := range ranked.SemanticTexts {
			blocks = append(blocks, "- "+text)
		}
	}

	return strings.Join(blocks, "\n")
}
