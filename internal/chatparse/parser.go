// Package chatparse turns one free-form reply from the language model into
// display bubbles and, when present, a structured diet plan.
package chatparse

import (
	"regexp"
	"strings"

	"github.com/nutricoach/backend/internal/nutrition"
)

const (
	// Marker anchors an inline plan; minified JSON follows it on the same line
	Marker = "DIET_PLAN:"
	// BubbleDelimiter separates display messages
	BubbleDelimiter = "|||"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*[ \\t]*\\n?(.*?)```")

// ParsedBotResponse is everything the chat surface needs from one reply
type ParsedBotResponse struct {
	Bubbles  []string                `json:"bubbles"`
	DietPlan *nutrition.DietPlanData `json:"dietPlan,omitempty"`
}

// extraction is a plan pulled out of the reply plus the text left to display
type extraction struct {
	plan      *nutrition.DietPlanData
	remaining string
}

// extractor tries one way of locating a plan in the raw reply
type extractor func(raw string) (extraction, bool)

// extractors run in order; the first success wins
var extractors = []extractor{
	extractAfterMarker,
	extractFencedBlock,
	extractEmbeddedFragment,
}

// Parse splits a model reply into bubbles and an optional plan. It never
// fails: unusable input degrades to a single bubble of cleaned text.
func Parse(raw string) ParsedBotResponse {
	text := raw
	var plan *nutrition.DietPlanData
	for _, extract := range extractors {
		if ex, ok := extract(raw); ok {
			plan = ex.plan
			text = ex.remaining
			break
		}
	}

	bubbles := SplitBubbles(text)

	if plan == nil {
		plan, bubbles = extractFromBubbles(bubbles)
	}

	for i := range bubbles {
		bubbles[i] = cleanBubble(bubbles[i])
	}
	bubbles = compact(bubbles)

	// nothing was extracted, so whatever the reply held is shown as text
	if len(bubbles) == 0 && plan == nil {
		if fallback := stripMarkup(strings.ReplaceAll(raw, BubbleDelimiter, " ")); fallback != "" {
			bubbles = []string{fallback}
		}
	}

	return ParsedBotResponse{Bubbles: bubbles, DietPlan: plan}
}

// SplitBubbles splits text on the bubble delimiter into trimmed, non-empty
// segments
func SplitBubbles(text string) []string {
	parts := strings.Split(text, BubbleDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractAfterMarker decodes the first balanced block after the marker
func extractAfterMarker(raw string) (extraction, bool) {
	idx := strings.Index(raw, Marker)
	if idx < 0 {
		return extraction{}, false
	}
	after := idx + len(Marker)
	sp, ok := balancedObject(raw, after)
	if !ok {
		return extraction{}, false
	}
	plan, ok := decodePlan(raw[sp.start:sp.end], false)
	if !ok {
		return extraction{}, false
	}
	remaining := raw[:idx] + raw[after:sp.start] + raw[sp.end:]
	return extraction{plan: plan, remaining: remaining}, true
}

// extractFencedBlock decodes a fenced code block declaring the plan type
func extractFencedBlock(raw string) (extraction, bool) {
	for _, loc := range fencedBlock.FindAllStringSubmatchIndex(raw, -1) {
		body := raw[loc[2]:loc[3]]
		if !planTypePattern.MatchString(body) {
			continue
		}
		plan, _, ok := planFragmentDecoded(body)
		if !ok {
			continue
		}
		return extraction{plan: plan, remaining: raw[:loc[0]] + raw[loc[1]:]}, true
	}
	return extraction{}, false
}

// extractEmbeddedFragment decodes any balanced plan fragment in the reply
func extractEmbeddedFragment(raw string) (extraction, bool) {
	plan, sp, ok := planFragmentDecoded(raw)
	if !ok {
		return extraction{}, false
	}
	return extraction{plan: plan, remaining: raw[:sp.start] + raw[sp.end:]}, true
}

// extractFromBubbles looks for a plan inside individual bubbles. The bubble
// holding it keeps only its surrounding prose, or is dropped when it was
// nothing but JSON.
func extractFromBubbles(bubbles []string) (*nutrition.DietPlanData, []string) {
	for i, b := range bubbles {
		plan, sp, ok := planFragmentDecoded(b)
		if !ok {
			continue
		}
		rest := strings.TrimSpace(strings.TrimSpace(b[:sp.start]) + " " + strings.TrimSpace(b[sp.end:]))
		out := make([]string, 0, len(bubbles))
		out = append(out, bubbles[:i]...)
		if rest != "" {
			out = append(out, rest)
		}
		out = append(out, bubbles[i+1:]...)
		return plan, out
	}
	return nil, bubbles
}

// cleanBubble removes stray plan JSON, a dangling marker and fence markers
func cleanBubble(b string) string {
	return stripMarkup(stripPlanFragments(b))
}

// stripMarkup removes a dangling marker and fence markers. A marker followed
// by prose is part of the sentence and stays.
func stripMarkup(b string) string {
	b = danglingMarker.ReplaceAllString(b, "$1")
	b = strings.ReplaceAll(b, "```json", "")
	b = strings.ReplaceAll(b, "```", "")
	return strings.TrimSpace(b)
}

func compact(bubbles []string) []string {
	out := make([]string, 0, len(bubbles))
	for _, b := range bubbles {
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}
