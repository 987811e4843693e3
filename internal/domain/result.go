package domain

// WriteResult is the outcome of a domain write. A validation failure is
// reported here with Success false; it is never returned as a Go error.
type WriteResult struct {
	Success bool   `json:"success"`
	Offline bool   `json:"offline"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Invalid builds the result for input that failed validation.
func Invalid(msg string) *WriteResult {
	return &WriteResult{Success: false, Error: msg}
}
