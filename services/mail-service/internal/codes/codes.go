// Package codes finds one-time verification codes in message text.
package codes

import (
	"regexp"
	"strings"
)

// Kind describes the context a code was found in.
type Kind string

const (
	KindVerification Kind = "verification"
	KindPassword     Kind = "password"
	KindCode         Kind = "code"
	KindAfterColon   Kind = "after-colon"
	KindNumber       Kind = "number"
)

const (
	MinDigits = 4
	MaxDigits = 8
)

// Code is one extracted code. Match is the text the pattern matched.
type Code struct {
	Code  string `json:"code"`
	Kind  Kind   `json:"type"`
	Match string `json:"original"`
}

type pattern struct {
	re   *regexp.Regexp
	kind Kind
}

// Labeled patterns come before the bare-number catch-all so a code keeps its most specific kind.
var patterns = []pattern{
	{regexp.MustCompile(`(?i)verification[\s:]*(\d{4,8})\b`), KindVerification},
	{regexp.MustCompile(`(?i)password[\s:]*(\d{4,8})\b`), KindPassword},
	{regexp.MustCompile(`(?i)code[\s:]*(\d{4,8})\b`), KindCode},
	{regexp.MustCompile(`(?:كود|رمز)[\s:]*(\d{4,8})\b`), KindCode},
	{regexp.MustCompile(`:\s*(\d{4,8})\b`), KindAfterColon},
	{regexp.MustCompile(`\b(\d{4,8})\b`), KindNumber},
}

// Extract returns the unique codes in text. Order follows pattern priority,
// then position; a code found by several patterns is reported once.
func Extract(text string) []Code {
	found := []Code{}
	seen := make(map[string]bool)

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			code := m[1]
			if seen[code] || len(code) < MinDigits || len(code) > MaxDigits {
				continue
			}
			seen[code] = true
			found = append(found, Code{Code: code, Kind: p.kind, Match: strings.TrimSpace(m[0])})
		}
	}
	return found
}
