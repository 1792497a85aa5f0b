package payment

import (
	"regexp"
	"strings"
)

// Failure describes an unsuccessful gateway attempt: either a response that was
// not accepted or a transport error.
type Failure struct {
	Response *GatewayResponse
	Err      error
}

// Message returns the human readable failure message
func (f Failure) Message() string {
	if f.Response != nil {
		return f.Response.ErrorMessage()
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return "unknown gateway failure"
}

func (f Failure) text() string {
	var parts []string
	if f.Response != nil {
		parts = append(parts, f.Response.Message, f.Response.TechnicalMessage)
	}
	if f.Err != nil {
		parts = append(parts, f.Err.Error())
	}
	return strings.Join(parts, " ")
}

// FailureClassifier decides whether a failure means the transaction id was already used
type FailureClassifier interface {
	IsDuplicate(f Failure) bool
}

// DefaultDuplicatePatterns are the text heuristics used when the gateway does
// not return a structured duplicate code.
var DefaultDuplicatePatterns = []string{
	`transaction[ _-]?id\b.*\balready\b`,
	`duplicate transaction`,
}

// DuplicateClassifier checks structured gateway codes first and falls back to
// case-insensitive message patterns.
type DuplicateClassifier struct {
	codes    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewDuplicateClassifier creates a classifier. Empty patterns fall back to DefaultDuplicatePatterns.
func NewDuplicateClassifier(codes []string, patterns []string) (*DuplicateClassifier, error) {
	if len(patterns) == 0 {
		patterns = DefaultDuplicatePatterns
	}
	c := &DuplicateClassifier{
		codes:    make(map[string]struct{}, len(codes)),
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code != "" {
			c.codes[code] = struct{}{}
		}
	}
	for _, p := range patterns {
		re, err := regexp.Compile("(?is)" + p)
		if err != nil {
			return nil, err
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// MustDuplicateClassifier is NewDuplicateClassifier for static configuration
func MustDuplicateClassifier(codes []string, patterns []string) *DuplicateClassifier {
	c, err := NewDuplicateClassifier(codes, patterns)
	if err != nil {
		panic(err)
	}
	return c
}

// IsDuplicate implements FailureClassifier
func (c *DuplicateClassifier) IsDuplicate(f Failure) bool {
	if f.Response != nil && f.Response.Code != "" {
		if _, ok := c.codes[f.Response.Code]; ok {
			return true
		}
	}
	text := f.text()
	if text == "" {
		return false
	}
	for _, re := range c.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var _ FailureClassifier = (*DuplicateClassifier)(nil)
