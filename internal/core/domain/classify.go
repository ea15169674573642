package domain

import "strconv"

// StageResult is the outcome of one remote lookup stage. Value is
// non-empty exactly when the stage succeeded; otherwise Reason holds the
// classified status, Code the HTTP or business error code when one was
// observed, and Message a short machine-classifiable reason.
type StageResult struct {
	Value   string
	Retries int
	Code    string
	Message string
	Reason  Status
}

// OK returns true when the stage produced a usable identifier.
func (r StageResult) OK() bool { return r.Value != "" }

// StageOK builds a successful stage result.
func StageOK(value string, retries int) StageResult {
	return StageResult{Value: value, Retries: retries}
}

// StageFail builds a failed stage result. An empty message defaults to
// the reason's name so the output column is always populated.
func StageFail(reason Status, retries int, code, message string) StageResult {
	if message == "" {
		message = string(reason)
	}
	return StageResult{Retries: retries, Code: code, Message: message, Reason: reason}
}

// ClassifyHTTP maps a non-2xx HTTP status (or the connection-failure
// sentinel 0, surfaced after retry exhaustion) to a Status. The same
// decision table applies to every stage.
func ClassifyHTTP(status int) Status {
	switch {
	case status == 401:
		return StatusAuthFailed
	case status == 403:
		return StatusPermissionDenied
	case status == 429 || status >= 500 || status == 0:
		return StatusRetryExceeded
	default:
		return StatusUnknownError
	}
}

// ClassifyHTTPFail builds the stage result for an HTTP-level failure,
// carrying the observed status as the error code.
func ClassifyHTTPFail(status, retries int) StageResult {
	code := ""
	if status != 0 {
		code = strconv.Itoa(status)
	}
	return StageFail(ClassifyHTTP(status), retries, code, "")
}

// MissingValue classifies a 2xx response whose expected field is absent.
// Each stage supplies its own not-found sentinel (NOT_FOUND_CONTRACT,
// NO_COOPERATION or NO_CHAT_GROUP).
func MissingValue(notFound Status, retries int) StageResult {
	return StageFail(notFound, retries, "", "")
}
