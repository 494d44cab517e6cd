package apierror

import "net/http"

// Kind is the closed set of failure categories surfaced to clients.
type Kind string

const (
	KindAPI              Kind = "API_ERROR"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindConfiguration    Kind = "CONFIGURATION_ERROR"
	KindUnsupportedModel Kind = "UNSUPPORTED_MODEL"
	KindRateLimit        Kind = "RATE_LIMIT_ERROR"
	KindAuthentication   Kind = "AUTHENTICATION_ERROR"
	KindNetwork          Kind = "NETWORK_ERROR"
	KindUnknown          Kind = "UNKNOWN_ERROR"
)

// Status returns the canonical HTTP status for errors of this kind that are
// raised inside the gateway (upstream-derived errors keep the upstream status).
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUnsupportedModel:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNetwork:
		return http.StatusServiceUnavailable
	case KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Valid reports whether k is a member of the taxonomy.
func (k Kind) Valid() bool {
	switch k {
	case KindAPI, KindValidation, KindConfiguration, KindUnsupportedModel,
		KindRateLimit, KindAuthentication, KindNetwork, KindUnknown:
		return true
	default:
		return false
	}
}
