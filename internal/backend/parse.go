package backend

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinels substituted when no answer survives any parse strategy.
const (
	AnswerParseFailed    = "Unknown (parsing error)"
	RationaleParseFailed = "Failed to parse response from model"
)

// ParseAnalysis normalizes raw model output into an Analysis.
// Priorities: fenced JSON after a think trace -> first JSON object carrying
// both fields -> "Rationale:"/"Answer:" lines -> last line heuristic ->
// sentinel. Total: any input string yields a result.
func ParseAnalysis(content string) Analysis {
	raw := strings.TrimSpace(content)
	body := stripThink(raw)

	if s := extractFenceJSON(body); s != "" {
		if a, ok := tryJSON(s); ok {
			a.Raw = raw
			return a
		}
	}
	if s := firstObjectWith(body, "rationale", "answer"); s != "" {
		if a, ok := tryJSON(s); ok {
			a.Raw = raw
			return a
		}
	}
	if a, ok := parseLabeledLines(body); ok {
		a.Raw = raw
		return a
	}
	if a, ok := parseLastLine(body); ok {
		a.Raw = raw
		return a
	}
	return Analysis{Rationale: RationaleParseFailed, Answer: AnswerParseFailed, Raw: raw}
}

// ParseExtraction normalizes the OCR backend's output. Same ladder, except a
// JSON object is accepted on the answer field alone, and the no-JSON fallback
// reads labeled lines and option markers before the first-line heuristic.
func ParseExtraction(content string) Extraction {
	raw := strings.TrimSpace(content)
	body := stripThink(raw)

	for _, s := range []string{extractFenceJSON(body), firstObjectWith(body, "answer")} {
		if s == "" {
			continue
		}
		var e Extraction
		if json.Unmarshal([]byte(s), &e) == nil && e.Answer != "" {
			e.Raw = raw
			return e
		}
	}

	if e, ok := parseLabeledExtraction(body); ok {
		e.Raw = raw
		return e
	}

	a := ParseAnalysis(content)
	e := Extraction{Rationale: a.Rationale, Answer: a.Answer, Raw: a.Raw}
	if lines := nonEmptyLines(body); len(lines) > 0 {
		e.Question = lines[0]
	}
	return e
}

var rxThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThink drops reasoning traces so the ladder only sees the final reply.
func stripThink(s string) string {
	if !strings.Contains(s, "<think>") {
		return s
	}
	return strings.TrimSpace(rxThink.ReplaceAllString(s, ""))
}

var rxFence = regexp.MustCompile("(?is)```json\\s*(\\{[\\s\\S]*?\\})\\s*```")

func extractFenceJSON(s string) string {
	if m := rxFence.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}

func tryJSON(s string) (Analysis, bool) {
	var a Analysis
	if json.Unmarshal([]byte(s), &a) != nil {
		return Analysis{}, false
	}
	return a, a.Answer != ""
}

// firstObjectWith finds the first brace-balanced object whose top level has
// every named key. Brace counting is string-aware so a brace inside a field
// value does not truncate the object.
func firstObjectWith(s string, keys ...string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		obj := scanObject(s, i)
		if obj == "" {
			continue
		}
		if hasKeys(obj, keys...) {
			return obj
		}
	}
	return ""
}

func scanObject(s string, start int) string {
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case esc:
			esc = false
		case inStr && c == '\\':
			esc = true
		case c == '"':
			inStr = !inStr
		case inStr:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func hasKeys(obj string, keys ...string) bool {
	if !gjson.Valid(obj) {
		return false
	}
	for _, k := range keys {
		if !gjson.Get(obj, k).Exists() {
			return false
		}
	}
	return true
}

var rxLabel = regexp.MustCompile(`(?i)"?\b(rationale|answer)\b"?\s*:`)

// parseLabeledLines scans for "rationale:"/"answer:" labels, inline, quoted,
// or at line start. Unlabeled lines before the answer fold into the
// rationale. Succeeds only once an answer label carried a value.
func parseLabeledLines(s string) (Analysis, bool) {
	var rat []string
	answer := ""
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ms := rxLabel.FindAllStringSubmatchIndex(line, -1)
		if len(ms) == 0 {
			if answer == "" {
				rat = append(rat, line)
			}
			continue
		}
		for j, m := range ms {
			end := len(line)
			if j+1 < len(ms) {
				end = ms[j+1][0]
			}
			val := cleanLabelValue(line[m[1]:end])
			switch strings.ToLower(line[m[2]:m[3]]) {
			case "answer":
				if answer == "" && val != "" {
					answer = val
				}
			case "rationale":
				if val != "" {
					rat = append(rat, val)
				}
			}
		}
	}
	if answer == "" {
		return Analysis{}, false
	}
	return Analysis{Rationale: strings.Join(rat, " "), Answer: answer}, true
}

func cleanLabelValue(v string) string {
	v = strings.TrimSpace(strings.TrimLeft(v, "*_ "))
	v = strings.TrimSpace(strings.TrimRight(v, "}"))
	v = strings.Trim(v, `"',`)
	return strings.TrimSpace(v)
}

var rxExtractLabel = regexp.MustCompile(`(?i)^[*_#\s]*"?(question|options?|answer|rationale|reason)"?\s*:\s*(.*)$`)

var rxOptionMark = regexp.MustCompile(`^\(?([A-Za-z]|\d{1,2})[.)]\s*(\S.*)$`)

// parseLabeledExtraction scans OCR replies written as labeled plain text:
// "Question:"/"Answer:"/"Rationale:" lines, "Options:" entries, and
// "1."/"A)" marker lines. Question and answer fall back to the first and
// last line when no label carried them. Succeeds once any label or marker
// matched.
func parseLabeledExtraction(s string) (Extraction, bool) {
	var e Extraction
	matched := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := rxExtractLabel.FindStringSubmatch(line); m != nil {
			matched = true
			val := cleanLabelValue(m[2])
			if val == "" {
				continue
			}
			switch strings.ToLower(m[1]) {
			case "question":
				if e.Question == "" {
					e.Question = val
				}
			case "option", "options":
				if strings.HasPrefix(val, "[") && gjson.Valid(val) {
					for _, v := range gjson.Parse(val).Array() {
						e.Options = append(e.Options, v.String())
					}
				} else {
					e.Options = append(e.Options, val)
				}
			case "answer":
				if e.Answer == "" {
					e.Answer = val
				}
			default:
				if e.Rationale == "" {
					e.Rationale = val
				}
			}
			continue
		}
		if m := rxOptionMark.FindStringSubmatch(line); m != nil {
			matched = true
			e.Options = append(e.Options, strings.TrimSpace(m[2]))
		}
	}
	if !matched {
		return Extraction{}, false
	}
	if e.Answer == "" {
		if a, ok := parseLabeledLines(s); ok {
			e.Answer = a.Answer
		}
	}
	if lines := nonEmptyLines(s); len(lines) > 0 {
		if e.Question == "" {
			e.Question = lines[0]
		}
		if e.Answer == "" {
			e.Answer = lines[len(lines)-1]
		}
	}
	return e, true
}

// parseLastLine is the last resort: final non-empty line is the answer, the
// rest joined is the rationale.
func parseLastLine(s string) (Analysis, bool) {
	lines := nonEmptyLines(s)
	if len(lines) == 0 {
		return Analysis{}, false
	}
	return Analysis{
		Rationale: strings.Join(lines[:len(lines)-1], " "),
		Answer:    lines[len(lines)-1],
	}, true
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
