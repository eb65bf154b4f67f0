package ai

import (
	"fmt"
	"strings"
)

// PromptTemplates contains the prompts used for news summaries.
var PromptTemplates = struct {
	SummarySystem string
	SummaryUser   string
}{
	SummarySystem: `You are a news editor who writes short teaser summaries.
Write exactly %d words that tell the reader what happened and make them want to open the full story.
Stay factual: do not invent names, numbers or quotes that are not in the article.
Reply in the same language as the article. If it is written in Nepali (नेपाली), reply in Nepali.
Return only the summary text, without a heading or quotation marks.`,

	SummaryUser: `Summarize this news article in exactly %d words:

%s`,
}

// SummaryWords is the target length of a summary.
const SummaryWords = 60

// BuildSummaryMessages creates the chat messages asking for a summary of text.
func BuildSummaryMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(PromptTemplates.SummarySystem, SummaryWords)},
		{Role: RoleUser, Content: fmt.Sprintf(PromptTemplates.SummaryUser, SummaryWords, strings.TrimSpace(text))},
	}
}
