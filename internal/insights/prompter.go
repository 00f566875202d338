package insights

import (
	"context"
	"fmt"
	"time"
)

const systemPrompt = `You are JournalLM, an expert life coach and personal assistant.
Your job is to analyze journal entries and provide thoughtful, personalized insights, advice, and suggestions.
Be insightful, direct, empathetic, and practical in your analysis.
Focus on identifying patterns, suggesting improvements, and offering actionable advice.
`

const instructions = `<response_format>
Format your entire response in Markdown, with clear sections.
Because the whole response is markdown, there's no need to include ` + "```markdown" + ` blocks.
Include a blank line after each section heading and before each bulleted/numbered list.
</response_format>

<instructions>
Based on my journal entries above, please write a report with the following sections.
Be thoughtful, thorough, and honest in your analysis.

## Executive Summary
Give me an executive summary for today consisting of two short paragraphs (or less).
This should contain a brief summary of recent developments and things to be mindful of in general,
but the main focus of the executive summary is actionable advice I can follow today.

## General Insights
Describe what you notice about my patterns, strengths, weaknesses, state of mind, trajectory, etc.
Try to focus on non-obvious insights, but remember that what's obvious to you may not be obvious to me.

## Specific Suggestions
Suggest preparations or next steps based on my apparent plans or goals.
The goal here is to think as if you had 10x the agency you do, and impart that agency to me.
Specificity is good! Include high-level strategies where appropriate, but suggest ways to break them down into actionable steps.

## Overlooked Considerations
Point out things I might be overlooking or should consider.
I know I have blind spots, and I want you to help me see them.

## Other Observations
This section is a catch-all for anything that might be helpful for my growth and well-being but doesn't fit into the other sections.

## Context for JournalLM
A journal entry template for me to fill out in order to provide missing context (e.g. my relation to specific names I've mentioned),
as well as any other information that would be helpful for your next analysis.
This should be a one-off entry where I answer specific questions you have, not a generic template. Make it as convenient as possible for me to fill out:
   - don't ask for information you can already find in the journal entries
   - have a clearly defined space for each answer
   - aim for questions with short, concrete answers when possible
   - avoid making me write out long answers unless absolutely necessary
   - leave blank spaces rather than including placeholder text
</instructions>
`

// Completer generates a completion for a prompted conversation. It is
// satisfied by *Client and mocked in tests.
type Completer interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// Prompter builds the JournalLM prompt around a canonical document and
// asks the model for an advice report.
type Prompter struct {
	client Completer
	now    func() time.Time
}

// NewPrompter creates a prompter backed by the given completer.
func NewPrompter(client Completer) *Prompter {
	return &Prompter{client: client, now: time.Now}
}

// Report generates the advice report for a canonical journal document.
// The returned markdown starts with the dated heading the assistant
// prefill anchors.
func (p *Prompter) Report(ctx context.Context, doc string) (string, error) {
	prefill := fmt.Sprintf("# JournalLM Advice for %s", p.now().Format("January 2, 2006"))

	completion, err := p.client.Complete(ctx, systemPrompt, []Message{
		{Role: "user", Content: p.userPrompt(doc)},
		{Role: "assistant", Content: prefill},
	})
	if err != nil {
		return "", fmt.Errorf("generating report: %w", err)
	}
	return prefill + completion, nil
}

// userPrompt embeds the canonical document verbatim ahead of the
// response-format and instruction sections. The document arrives
// already bounded by the budget enforcer.
func (p *Prompter) userPrompt(doc string) string {
	return doc + "\n\n" + instructions
}
