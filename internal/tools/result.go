package tools

// Error codes returned in the dispatch envelope. None of these are
// retriable: transient upstream failures are handled before dispatch.
const (
	CodeToolNotFound     = "TOOL_NOT_FOUND"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeExecutionError   = "EXECUTION_ERROR"
	CodeIdentityRequired = "IDENTITY_REQUIRED"
)

// Error is the structured error half of a dispatch envelope.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retriable bool   `json:"retriable"`
}

// Result is the normalized outcome of one tool invocation. Exactly one of
// Data and Err is meaningful, selected by Success.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Err     *Error `json:"error,omitempty"`
}

// Ok wraps a handler payload in a success envelope.
func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds an error envelope with the given code.
func Fail(code, message string) Result {
	return Result{Success: false, Err: &Error{Code: code, Message: message}}
}

// ErrorCode returns the envelope's error code, or "" on success.
func (r Result) ErrorCode() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}
