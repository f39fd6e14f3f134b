// Package guardrail pre-filters chat messages for high-risk asks before
// the pipeline spends any model calls on them.
package guardrail

import "regexp"

// RefusalAnswer is the canned response for blocked messages.
const RefusalAnswer = "I cannot recommend specific stocks or promise returns. " +
	"I can help you understand investment principles, risk profiling, and how to evaluate assets. " +
	"Would you like to know about asset allocation or risk management?"

// riskPatterns match requests for specific buy recommendations or
// guaranteed returns, which the assistant must always refuse.
var riskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)buy (.*) stock`),
	regexp.MustCompile(`(?i)invest in (.*) coin`),
	regexp.MustCompile(`(?i)double my money`),
	regexp.MustCompile(`(?i)guaranteed return`),
}

// Service is the keyword guardrail pre-filter.
type Service struct{}

// New creates a guardrail service.
func New() *Service { return &Service{} }

// Blocked reports whether the message trips a risk pattern.
func (s *Service) Blocked(message string) bool {
	for _, p := range riskPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}
