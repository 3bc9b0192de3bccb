package ocr

import (
	"regexp"
	"strings"
)

var rxOption = regexp.MustCompile(`^(?:[1-9][0-9]?[.)]|[A-Da-d][.)]|[-•*])\s+(.+)$`)

// SplitQuestion turns raw OCR text into a question plus its option list.
// Lines before the first option marker form the question; marked lines
// become options; a bare line after an option is a wrapped continuation.
func SplitQuestion(text string) (string, []string) {
	var qparts, opts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := rxOption.FindStringSubmatch(line); m != nil {
			opts = append(opts, strings.TrimSpace(m[1]))
			continue
		}
		if len(opts) == 0 {
			qparts = append(qparts, line)
		} else {
			opts[len(opts)-1] += " " + line
		}
	}
	return strings.Join(qparts, " "), opts
}
