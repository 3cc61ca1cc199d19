package retrieval

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

const rewriteInstruction = "Given the chat history and the latest user question, which might reference context in the chat history, " +
	"formulate a standalone question which can be understood without the chat history. " +
	"Do NOT answer the question, just reformulate it if needed and otherwise return it as is."

func answerInstruction(base string, hits []commonModels.ScoredChunk) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\nUse the following pieces of retrieved context to answer the question.\n\nContext:\n")
	if len(hits) == 0 {
		b.WriteString("(no documents matched)\n")
	}
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s", i+1, h.Entry.Filename)
		if h.Entry.Segment > 0 {
			fmt.Fprintf(&b, " (page %d)", h.Entry.Segment)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(h.Entry.Content))
		b.WriteString("\n\n")
	}
	return b.String()
}
