package essay

import (
	"fmt"
	"strings"
)

// ComposeTask builds the task prompt handed to the agent society. The prompt
// names the topic verbatim, states the derived word-count target and page
// count, embeds the caller's instructions verbatim, and enumerates the fixed
// structural requirements. It is deterministic and has no side effects.
func ComposeTask(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I need a comprehensive scientific essay on the topic: '%s'. ", req.Topic)
	fmt.Fprintf(&b, "The essay should be approximately %d words (about %d pages). ", req.WordCount(), req.Pages)
	fmt.Fprintf(&b, "Additional requirements: %s. ", req.Instructions)
	b.WriteString("The essay should follow proper academic structure with an abstract, introduction, " +
		"methodology/literature review, discussion, conclusion, and references. " +
		"Use recent scientific research and cite sources properly in a standard academic format. " +
		"When complete, save the essay as a Markdown file.")

	return b.String(), nil
}
