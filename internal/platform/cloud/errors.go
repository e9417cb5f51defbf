package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError is a provider failure translated at the adapter boundary.
type APIError struct {
	Code    int    // HTTP-style status code
	Reason  string // machine-readable reason, e.g. "quotaExceeded"
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%d %s: %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewNotFound returns the error a Get call reports for an absent resource.
func NewNotFound(ref Ref) *APIError {
	return &APIError{Code: 404, Reason: "notFound", Message: fmt.Sprintf("the resource '%s' was not found", ref)}
}

// ErrorKind is the retry/fatal taxonomy driving the caller's retry policy.
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorNotFound         ErrorKind = "NotFound"
	ErrorConflict         ErrorKind = "Conflict"
	ErrorQuota            ErrorKind = "Quota"
	ErrorPermissionDenied ErrorKind = "PermissionDenied"
	ErrorTransient        ErrorKind = "Transient"
	ErrorValidation       ErrorKind = "Validation"
	ErrorUnknown          ErrorKind = "Unknown"
)

// Retryable reports whether errors of this kind are retried by a later pass.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorQuota, ErrorPermissionDenied, ErrorTransient:
		return true
	default:
		return false
	}
}

// Fatal reports whether errors of this kind halt a pass for good.
// NotFound is benign and never fatal.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrorConflict, ErrorValidation, ErrorUnknown:
		return true
	default:
		return false
	}
}

// Classify maps a raw failure into an ErrorKind. It holds no state and
// depends only on the status code, reason and message of the error.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTransient
	}

	return classifyMessage(err.Error())
}

func classifyAPIError(e *APIError) ErrorKind {
	reason := strings.ToLower(e.Reason)

	switch {
	case e.Code == 404:
		return ErrorNotFound
	case e.Code == 409 && reason == "alreadyexists":
		// an earlier insert for the same deterministic name is still in flight
		return ErrorTransient
	case e.Code == 409, e.Code == 412:
		return ErrorConflict
	case e.Code == 429:
		if isQuotaReason(reason) {
			return ErrorQuota
		}
		return ErrorTransient
	case e.Code == 401:
		return ErrorPermissionDenied
	case e.Code == 403:
		if isQuotaReason(reason) {
			return ErrorQuota
		}
		if isRateLimitReason(reason) {
			return ErrorTransient
		}
		return ErrorPermissionDenied
	case e.Code == 400:
		if reason == "resourcenotready" {
			return ErrorTransient
		}
		if reason == "resourceinusebyanotherresource" {
			return ErrorConflict
		}
		if isQuotaReason(reason) {
			return ErrorQuota
		}
		return ErrorValidation
	case e.Code >= 500 && e.Code <= 599:
		return ErrorTransient
	}

	return classifyMessage(e.Message)
}

// isRateLimitReason matches throttling reported with a 403.
func isRateLimitReason(reason string) bool {
	return reason == "ratelimitexceeded" || reason == "userratelimitexceeded"
}

func isQuotaReason(reason string) bool {
	return reason == "quotaexceeded" || reason == "limitexceeded" || strings.Contains(reason, "quota")
}

var messageRules = []struct {
	kind    ErrorKind
	needles []string
}{
	{ErrorNotFound, []string{"notfound", "not found"}},
	{ErrorQuota, []string{"quota"}},
	{ErrorPermissionDenied, []string{"permission", "forbidden", "unauthorized", "unauthenticated"}},
	{ErrorConflict, []string{"already exists with different", "immutable"}},
	{ErrorValidation, []string{"invalid", "malformed", "required"}},
	{ErrorTransient, []string{"timeout", "timed out", "connection reset", "connection refused", "unavailable", "eof", "try again"}},
}

func classifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.kind
			}
		}
	}
	return ErrorUnknown
}

// ClassifiedError carries the classification of a failure together with
// where it happened. It is what a ResourceRecord reports as its last error.
type ClassifiedError struct {
	Kind     ErrorKind
	Op       string // get, insert, wait, delete, credentials
	Resource string
	Err      error
}

// Classified wraps err with its classification. A nil err yields nil.
// An error that is already classified keeps its kind.
func Classified(op, resource string, err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}
	return &ClassifiedError{Kind: Classify(err), Op: op, Resource: resource, Err: err}
}

// NewClassifiedError builds a ClassifiedError of an explicit kind.
func NewClassifiedError(kind ErrorKind, op, resource string, err error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Op: op, Resource: resource, Err: err}
}

func (e *ClassifiedError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Resource, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error classifies as NotFound.
func IsNotFound(err error) bool {
	return Classify(err) == ErrorNotFound
}

// IsConflict checks if an error classifies as Conflict.
func IsConflict(err error) bool {
	return Classify(err) == ErrorConflict
}

// IsTransient checks if an error classifies as Transient.
func IsTransient(err error) bool {
	return Classify(err) == ErrorTransient
}
