package interview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/resolvelab/coach/models"
)

// maxQuestionTokens is a soft length guard: the questioner is told to stay
// under 15 words, replies over 20 tokens are silently truncated.
const maxQuestionTokens = 20

const fallbackPrompt = "What else should I know about your goal?"

var bracketTagRe = regexp.MustCompile(`(?i)^\[(YES/NO|CHOICE|TEXT)\]\s*`)

// Normalize repairs a raw assistant reply into a client-ready question
// envelope. It is total: any shape the backend produces, including garbage,
// degrades to a plain TEXT envelope rather than an error.
func Normalize(raw string) models.QuestionEnvelope {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		if env, ok := parseStructured(trimmed); ok {
			return clamp(env)
		}
	}
	return clamp(parseLegacy(trimmed))
}

// parseStructured handles the JSON envelope the questioner is instructed to
// emit: {"type": ..., "text": ..., "options": [...]}, with "question" accepted
// as an alias for "text".
func parseStructured(raw string) (models.QuestionEnvelope, bool) {
	var payload struct {
		Type     string        `json:"type"`
		Text     string        `json:"text"`
		Question string        `json:"question"`
		Options  []interface{} `json:"options"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.QuestionEnvelope{}, false
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		text = strings.TrimSpace(payload.Question)
	}

	kind := models.QuestionKind(strings.ToUpper(strings.TrimSpace(payload.Type)))
	switch kind {
	case models.KindText, models.KindChoice, models.KindYesNo:
	default:
		kind = models.KindText
	}

	var opts []string
	for _, o := range payload.Options {
		if s := strings.TrimSpace(fmt.Sprint(o)); s != "" {
			opts = append(opts, s)
		}
	}
	// a choice question without recoverable options is unanswerable as
	// presented, downgrade it
	if kind == models.KindChoice && len(opts) == 0 {
		kind = models.KindText
	}
	if kind != models.KindChoice {
		opts = nil
	}
	return models.QuestionEnvelope{Type: kind, Text: text, Options: opts}, true
}

// parseLegacy handles the older bracket-tag protocol: a leading [YES/NO],
// [CHOICE] or [TEXT] tag, inferred by keyword when absent.
func parseLegacy(raw string) models.QuestionEnvelope {
	kind := models.KindText
	text := raw

	if m := bracketTagRe.FindStringSubmatch(raw); m != nil {
		kind = models.QuestionKind(strings.ToUpper(m[1]))
		text = raw[len(m[0]):]
	} else {
		lower := strings.ToLower(raw)
		switch {
		case strings.Contains(lower, "yes or no") || strings.HasPrefix(lower, "do you"):
			kind = models.KindYesNo
		case strings.Contains(lower, "choose") || strings.Contains(lower, "select") || strings.Contains(lower, "prefer"):
			kind = models.KindChoice
		}
	}

	var opts []string
	if kind == models.KindChoice {
		text, opts = splitChoiceOptions(text)
		if len(opts) == 0 {
			kind = models.KindText
		}
	}
	return models.QuestionEnvelope{Type: kind, Text: strings.TrimSpace(text), Options: opts}
}

// splitChoiceOptions pulls a trailing "(A, B, C)" option list out of legacy
// choice questions.
func splitChoiceOptions(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ")") {
		return text, nil
	}
	open := strings.LastIndex(text, "(")
	if open < 0 {
		return text, nil
	}
	inner := text[open+1 : len(text)-1]
	var opts []string
	for _, part := range strings.Split(inner, ",") {
		if s := strings.TrimSpace(part); s != "" {
			opts = append(opts, s)
		}
	}
	if len(opts) < 2 {
		// a single parenthesized fragment is more likely an aside than an
		// option list
		return text, nil
	}
	return strings.TrimSpace(text[:open]), opts
}

// clamp enforces the token cap and guarantees a non-empty prompt. Rejoining
// happens only on truncation; text under the cap keeps its spacing.
func clamp(env models.QuestionEnvelope) models.QuestionEnvelope {
	words := strings.Fields(env.Text)
	if len(words) > maxQuestionTokens {
		env.Text = strings.Join(words[:maxQuestionTokens], " ")
	}
	if len(words) == 0 {
		env.Type = models.KindText
		env.Text = fallbackPrompt
		env.Options = nil
	}
	return env
}
