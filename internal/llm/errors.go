package llm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// throttleMarkers are substrings gateways put in rate-limit errors.
var throttleMarkers = []string{"429", "rate limit", "rate_limit", "too many requests", "频率", "限制"}

// IsRateLimited reports whether err looks like the provider throttled the
// request.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	var anthErr *anthropic.Error
	if errors.As(err, &anthErr) && anthErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range throttleMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
