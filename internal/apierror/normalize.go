package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/af-corp/chat-gateway/internal/redact"
)

type statusMeaning struct {
	kind       Kind
	message    string
	suggestion string
}

// statusTable maps upstream HTTP statuses to client-facing meanings. 429 is
// typed API_ERROR rather than RATE_LIMIT_ERROR; existing clients depend on it.
var statusTable = map[int]statusMeaning{
	http.StatusTooManyRequests: {
		kind:       KindAPI,
		message:    "The AI service is currently at capacity. Please try again later.",
		suggestion: "Wait a few moments before sending another message.",
	},
	http.StatusUnauthorized: {
		kind:       KindAuthentication,
		message:    "API key is invalid or not configured",
		suggestion: "Check that the provider API key is set correctly in the gateway environment.",
	},
	http.StatusForbidden: {
		kind:       KindAuthentication,
		message:    "Access to the AI service is forbidden",
		suggestion: "Verify that the API key has permission to use the selected model.",
	},
	http.StatusBadRequest: {
		kind:       KindValidation,
		message:    "Invalid request format",
		suggestion: "Check the message format and any parameters sent with the request.",
	},
	http.StatusInternalServerError: {
		kind:       KindAPI,
		message:    "The AI service is experiencing issues",
		suggestion: "Try again in a few minutes or select a different model.",
	},
	http.StatusServiceUnavailable: {
		kind:       KindAPI,
		message:    "The AI service is temporarily unavailable",
		suggestion: "Try again in a few minutes or select a different model.",
	},
}

var networkSignals = []string{
	"network",
	"cannot connect",
	"connection refused",
	"econnrefused",
	"no such host",
	"connection reset",
}

// Normalize maps any error into the client-facing taxonomy. It is total:
// every input, including nil, yields a non-nil *Error.
//
// Recognized shapes, in order: an already-normalized *Error (returned
// unchanged), an *UpstreamError carrying an HTTP status, a connectivity
// failure (typed net/timeout errors or network wording in the message), and
// everything else, which becomes UNKNOWN_ERROR with defaultMessage.
func Normalize(err error, defaultMessage string) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return fromStatus(upstream)
	}

	if isNetworkError(err) {
		return &Error{
			Message:    "Unable to reach the AI service",
			StatusCode: http.StatusServiceUnavailable,
			Type:       KindNetwork,
			Suggestion: "Check your network connection and try again.",
			Details:    errorText(err),
		}
	}

	if defaultMessage == "" {
		defaultMessage = "An unexpected error occurred"
	}
	return &Error{
		Message:    defaultMessage,
		StatusCode: http.StatusInternalServerError,
		Type:       KindUnknown,
		Suggestion: "Try again later. If the problem persists, contact support.",
		Details:    errorText(err),
	}
}

func fromStatus(u *UpstreamError) *Error {
	details := map[string]any{"status": u.StatusCode}
	if u.Provider != "" {
		details["provider"] = u.Provider
	}
	if u.Message != "" {
		details["upstreamMessage"] = redact.String(u.Message)
	}

	meaning, ok := statusTable[u.StatusCode]
	if !ok {
		status := u.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return &Error{
			Message:    fmt.Sprintf("The AI service returned an error (status %d)", u.StatusCode),
			StatusCode: status,
			Type:       KindAPI,
			Suggestion: "Try again later.",
			Details:    details,
		}
	}

	status := u.StatusCode
	switch meaning.kind {
	case KindValidation:
		status = http.StatusBadRequest
	case KindConfiguration:
		status = http.StatusInternalServerError
	}
	return &Error{
		Message:    meaning.message,
		StatusCode: status,
		Type:       meaning.kind,
		Suggestion: meaning.suggestion,
		Details:    details,
	}
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// *url.Error satisfies net.Error for every failure, including a bad
	// scheme, so only dial/read failures and timeouts count.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range networkSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

func errorText(err error) any {
	if err == nil {
		return nil
	}
	return redact.String(err.Error())
}
