package chatparse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nutricoach/backend/internal/nutrition"
)

var (
	planTypePattern = regexp.MustCompile(`"type"\s*:\s*"DIET_PLAN"`)
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	// a marker with nothing, or only a leftover brace, after it
	danglingMarker  = regexp.MustCompile(regexp.QuoteMeta(Marker) + `\s*(\{|$)`)
)

// span is a half-open byte range [start, end) within a string
type span struct {
	start, end int
}

// balancedObject returns the first brace-balanced {...} block that starts at
// or after from. Braces inside JSON string literals are ignored. An opening
// brace that is never closed is skipped.
func balancedObject(s string, from int) (span, bool) {
	for from < len(s) {
		open := strings.IndexByte(s[from:], '{')
		if open < 0 {
			return span{}, false
		}
		open += from
		if end, ok := matchClose(s, open); ok {
			return span{start: open, end: end}, true
		}
		from = open + 1
	}
	return span{}, false
}

// matchClose returns the index just past the brace closing the one at open
func matchClose(s string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// planFragment finds the first balanced block in s that declares
// "type":"DIET_PLAN". Nested blocks are searched when an outer one does not
// match.
func planFragment(s string) (span, bool) {
	from := 0
	for from < len(s) {
		sp, ok := balancedObject(s, from)
		if !ok {
			return span{}, false
		}
		if planTypePattern.MatchString(s[sp.start:sp.end]) {
			return sp, true
		}
		from = sp.start + 1
	}
	return span{}, false
}

// lenientCleanup removes newlines and tabs and drops trailing commas before a
// closing brace or bracket
func lenientCleanup(fragment string) string {
	cleaned := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(fragment)
	return trailingComma.ReplaceAllString(cleaned, "$1")
}

// decodePlan parses a JSON fragment into a normalized plan, retrying once
// after lenient cleanup. With requireType the document itself, not a nested
// object, must declare the plan type; otherwise declaring the type or
// carrying a days list is enough.
func decodePlan(fragment string, requireType bool) (*nutrition.DietPlanData, bool) {
	var plan nutrition.DietPlanData
	if err := json.Unmarshal([]byte(fragment), &plan); err != nil {
		plan = nutrition.DietPlanData{}
		if err := json.Unmarshal([]byte(lenientCleanup(fragment)), &plan); err != nil {
			return nil, false
		}
	}
	typed := plan.Type == nutrition.PlanType
	if !typed && (requireType || plan.Days == nil) {
		return nil, false
	}
	plan.Normalize()
	return &plan, true
}

// planFragmentDecoded walks every plan-shaped fragment of s and returns the
// first one that decodes
func planFragmentDecoded(s string) (*nutrition.DietPlanData, span, bool) {
	from := 0
	for from < len(s) {
		sp, ok := planFragment(s[from:])
		if !ok {
			break
		}
		sp = span{start: sp.start + from, end: sp.end + from}
		if plan, ok := decodePlan(s[sp.start:sp.end], true); ok {
			return plan, sp, true
		}
		from = sp.start + 1
	}
	return nil, span{}, false
}

// stripPlanFragments removes every plan-shaped JSON block from s
func stripPlanFragments(s string) string {
	for {
		sp, ok := planFragment(s)
		if !ok {
			return s
		}
		s = s[:sp.start] + s[sp.end:]
	}
}
