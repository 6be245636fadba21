package routes

import (
	"errors"
	"net/http"

	"daybook/internal/attendance"
	"daybook/internal/integrations/googlecal"
	"daybook/internal/journal"
	"daybook/internal/jwt"
	"daybook/internal/settings"
	"daybook/internal/storage"
	"daybook/internal/todos"
	"daybook/internal/tokencrypt"
	"daybook/internal/utils"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error    // The underlying error
	StatusCode int      // HTTP status code
	Message    string   // User-friendly message
	StopCodes  []string // Optional stop codes for client-side handling
	Internal   bool     // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors. An empty
// Message on a 4xx error means the error text itself is shown.
type ErrorInfo struct {
	Message   string
	StopCodes []string
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
		Internal:   statusCode >= 500,
	}
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUserNotFound   = errors.New("user not found in context")
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingDate    = errors.New("date is required")
	ErrRateLimited    = errors.New("too many requests")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFoundRoute  = errors.New("route not found")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:               http.StatusBadRequest,
	ErrMissingDate:                  http.StatusBadRequest,
	utils.ErrInvalidDate:            http.StatusBadRequest,
	attendance.ErrAlreadyCheckedIn:  http.StatusBadRequest,
	attendance.ErrPriorDayUnclosed:  http.StatusBadRequest,
	attendance.ErrAlreadyCheckedOut: http.StatusBadRequest,
	storage.ErrDuplicate:            http.StatusBadRequest,
	storage.ErrStale:                http.StatusBadRequest,
	todos.ErrInvalidTodo:            http.StatusBadRequest,
	journal.ErrInvalidEntry:         http.StatusBadRequest,
	settings.ErrInvalidTime:         http.StatusBadRequest,
	googlecal.ErrInvalidQuery:       http.StatusBadRequest,
	googlecal.ErrInvalidParameters:  http.StatusBadRequest,
	googlecal.ErrNoRefreshToken:     http.StatusBadRequest,

	// 401 Unauthorized
	ErrUnauthorized:            http.StatusUnauthorized,
	ErrUserNotFound:            http.StatusUnauthorized,
	jwt.ErrNonValidToken:       http.StatusUnauthorized,
	jwt.ErrMissingSubject:      http.StatusUnauthorized,
	googlecal.ErrInvalidState:  http.StatusUnauthorized,
	googlecal.ErrStateMismatch: http.StatusUnauthorized,
	googlecal.ErrAccessRevoked: http.StatusUnauthorized,
	googlecal.ErrNotConnected:  http.StatusUnauthorized,
	googlecal.ErrDecryptFailed: http.StatusUnauthorized,

	// 404 Not Found
	attendance.ErrNotCheckedIn: http.StatusNotFound,
	todos.ErrTodoNotFound:      http.StatusNotFound,
	storage.ErrNotFound:        http.StatusNotFound,
	ErrNotFoundRoute:           http.StatusNotFound,

	// 429 Too Many Requests
	ErrRateLimited: http.StatusTooManyRequests,

	// 500 Internal Server Error
	ErrInternalServer:           http.StatusInternalServerError,
	tokencrypt.ErrInvalidKey:    http.StatusInternalServerError,
	tokencrypt.ErrDecryptFailed: http.StatusInternalServerError,

	// 502 Bad Gateway
	googlecal.ErrExchangeFailed:  http.StatusBadGateway,
	googlecal.ErrUpstreamFailure: http.StatusBadGateway,

	// 503 Service Unavailable
	googlecal.ErrNotConfigured: http.StatusServiceUnavailable,
}

// errorInfoMap maps errors to user-friendly messages and optional stop codes
var errorInfoMap = map[error]ErrorInfo{
	// Validation; the wrapped error text carries the detail
	ErrInvalidRequest:       {StopCodes: []string{"INVALID_REQUEST"}},
	todos.ErrInvalidTodo:    {StopCodes: []string{"INVALID_TODO"}},
	journal.ErrInvalidEntry: {StopCodes: []string{"INVALID_JOURNAL_ENTRY"}},
	settings.ErrInvalidTime: {
		Message:   "Time must be in HH:mm format",
		StopCodes: []string{"INVALID_TIME"},
	},
	googlecal.ErrInvalidQuery: {StopCodes: []string{"INVALID_QUERY"}},
	ErrMissingDate: {
		Message:   "Date is required",
		StopCodes: []string{"DATE_REQUIRED"},
	},
	utils.ErrInvalidDate: {
		Message:   "Invalid date format",
		StopCodes: []string{"INVALID_DATE"},
	},

	// Attendance
	attendance.ErrAlreadyCheckedIn: {
		Message:   "Already checked in today",
		StopCodes: []string{"ALREADY_CHECKED_IN"},
	},
	attendance.ErrPriorDayUnclosed: {
		Message:   "Please check out from the previous day before checking in",
		StopCodes: []string{"PRIOR_DAY_UNCLOSED"},
	},
	attendance.ErrNotCheckedIn: {
		Message:   "You have not checked in today",
		StopCodes: []string{"NOT_CHECKED_IN"},
	},
	attendance.ErrAlreadyCheckedOut: {
		Message:   "Already checked out today",
		StopCodes: []string{"ALREADY_CHECKED_OUT"},
	},
	storage.ErrDuplicate: {
		Message:   "Record already exists",
		StopCodes: []string{"DUPLICATE"},
	},
	storage.ErrStale: {
		Message:   "Record was changed by another request",
		StopCodes: []string{"STALE"},
	},
	todos.ErrTodoNotFound: {
		Message:   "Todo not found",
		StopCodes: []string{"TODO_NOT_FOUND"},
	},
	storage.ErrNotFound: {Message: "Not found"},
	ErrNotFoundRoute:    {Message: "Page not found"},

	// Authentication
	ErrUnauthorized: {
		Message:   "Authentication required",
		StopCodes: []string{"AUTH_REQUIRED"},
	},
	ErrUserNotFound: {
		Message:   "Authentication required",
		StopCodes: []string{"AUTH_REQUIRED"},
	},
	jwt.ErrNonValidToken: {
		Message:   "Invalid or expired authentication token",
		StopCodes: []string{"AUTH_INVALID_TOKEN"},
	},
	jwt.ErrMissingSubject: {
		Message:   "Invalid or expired authentication token",
		StopCodes: []string{"AUTH_INVALID_TOKEN"},
	},

	// Google Calendar
	googlecal.ErrInvalidState: {
		Message:   "Invalid or expired state",
		StopCodes: []string{"INVALID_STATE"},
	},
	googlecal.ErrStateMismatch: {
		Message:   "State does not belong to this user",
		StopCodes: []string{"STATE_MISMATCH"},
	},
	googlecal.ErrNoRefreshToken: {
		Message:   "Google did not grant offline access",
		StopCodes: []string{"NO_REFRESH_TOKEN"},
	},
	googlecal.ErrNotConnected: {
		Message:   "Google Calendar is not connected",
		StopCodes: []string{"CALENDAR_NOT_CONNECTED"},
	},
	googlecal.ErrDecryptFailed: {
		Message:   "Google Calendar must be reconnected",
		StopCodes: []string{"CALENDAR_RECONNECT"},
	},
	googlecal.ErrAccessRevoked: {
		Message:   "Google Calendar access was revoked",
		StopCodes: []string{"CALENDAR_REVOKED"},
	},
	googlecal.ErrInvalidParameters: {
		Message:   "Invalid calendar request",
		StopCodes: []string{"CALENDAR_INVALID_PARAMETERS"},
	},
	googlecal.ErrExchangeFailed: {
		Message:   "Could not complete Google sign-in",
		StopCodes: []string{"CALENDAR_EXCHANGE_FAILED"},
	},
	googlecal.ErrUpstreamFailure: {
		Message:   "Google Calendar is unavailable",
		StopCodes: []string{"CALENDAR_UNAVAILABLE"},
	},
	googlecal.ErrNotConfigured: {Message: "Google Calendar integration is not configured"},

	ErrRateLimited: {
		Message:   "Too many requests",
		StopCodes: []string{"RATE_LIMITED"},
	},

	// Internal (no stop codes for internal errors)
	ErrInternalServer: {Message: "An internal error occurred"},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including message and stop codes
func GetErrorInfo(err error) ErrorInfo {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Message:   httpErr.Message,
			StopCodes: httpErr.StopCodes,
		}
	}

	status := GetErrorStatus(err)

	info, ok := errorInfoMap[err]
	if !ok {
		for knownErr, known := range errorInfoMap {
			if errors.Is(err, knownErr) {
				info, ok = known, true
				break
			}
		}
	}

	if status >= 500 {
		if !ok || info.Message == "" {
			info.Message = "An internal error occurred"
		}
		return info
	}
	if info.Message == "" {
		info.Message = err.Error()
	}
	return info
}

// GetErrorMessage returns a user-friendly message for an error
func GetErrorMessage(err error) string {
	return GetErrorInfo(err).Message
}
