package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const outputFormat = `Return a JSON object with this exact structure:
{
  "matches": [
    {
      "offer_id": "<identifier of the offer as given above, or its position starting at 1>",
      "title": "<offer title>",
      "score": <match score between 0 and 100>,
      "justification": "<2-3 sentences explaining the score>",
      "strengths": ["<requirement the candidate meets>"],
      "gaps": ["<requirement the candidate does not meet>"]
    }
  ],
  "summary": "<overall assessment of the candidate across all offers>"
}

Include one entry per offer, ordered by descending score.
Return ONLY the JSON object, no markdown, no explanation.`

// BuildPrompt renders the caller's instructions followed by the candidate
// profile and the offers as indented JSON, then the required output format.
func BuildPrompt(instructions string, candidate, offers json.RawMessage) (string, error) {
	candidateBlock, err := indent(candidate)
	if err != nil {
		return "", fmt.Errorf("candidate: %w", err)
	}
	offersBlock, err := indent(offers)
	if err != nil {
		return "", fmt.Errorf("offers: %w", err)
	}

	var b strings.Builder
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}
	b.WriteString("CANDIDATE PROFILE:\n")
	b.WriteString(candidateBlock)
	b.WriteString("\n\nJOB OFFERS:\n")
	b.WriteString(offersBlock)
	b.WriteString("\n\n")
	b.WriteString(outputFormat)

	return b.String(), nil
}

func indent(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
