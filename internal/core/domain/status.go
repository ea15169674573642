package domain

import "fmt"

// Status is the terminal outcome of resolving one contract number.
type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusNotFoundContract Status = "NOT_FOUND_CONTRACT"
	StatusNoCooperation    Status = "NO_COOPERATION"
	StatusNoChatGroup      Status = "NO_CHAT_GROUP"
	StatusAuthFailed       Status = "AUTH_FAILED"
	StatusPermissionDenied Status = "PERMISSION_DENIED"
	StatusRetryExceeded    Status = "RETRY_EXCEEDED"
	StatusUnknownError     Status = "UNKNOWN_ERROR"
)

// AllStatuses lists every member of the closed enumeration.
var AllStatuses = []Status{
	StatusSuccess,
	StatusNotFoundContract,
	StatusNoCooperation,
	StatusNoChatGroup,
	StatusAuthFailed,
	StatusPermissionDenied,
	StatusRetryExceeded,
	StatusUnknownError,
}

// ParseStatus converts a string into a Status, rejecting unknown values.
// Config validation uses this so that typos fail at startup instead of
// silently defaulting.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}
