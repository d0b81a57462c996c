package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
)

const QuotaExceededMessage = "AI service quota exceeded. Please try again in a few moments or contact support."

// quotaIndicators are matched against the upstream error text. The wording is
// not a documented contract, so this classification is best effort.
var quotaIndicators = []string{
	"429",
	"quota",
	"exceeded",
	"resource_exhausted",
	"rate limit",
}

// IsQuotaExhausted reports whether err looks like generation rate or quota
// exhaustion. A 429 status is authoritative; otherwise the message is
// scanned for known indicators. A cancelled or timed out call is never
// quota exhaustion, even though its text says "exceeded".
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	msg := err.Error()
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		// The full error text carries the request URL; only the upstream
		// message is meaningful here.
		msg = apiErr.Message
	}

	msg = strings.ToLower(msg)
	for _, indicator := range quotaIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
