package commerce

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CodeSuccess is the backend's success code. Any other code means the call
// failed regardless of HTTP status, and the envelope message is what the
// user sees.
const CodeSuccess = 1000

// envelope is the uniform backend response shape. Result is decoded lazily
// so each call site can pick its own target type.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// APIError is a business-rule rejection carried inside the envelope:
// invalid or expired coupon, insufficient stock, unauthorized transition.
// Transport failures are returned as plain errors, not APIErrors.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce backend rejected request (code %d): %s", e.Code, e.Message)
}

// AsAPIError unwraps err into an APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// decodeEnvelope parses the backend envelope and unmarshals its result into
// out. out may be nil when the caller only cares about success.
func decodeEnvelope(data []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if env.Code != CodeSuccess {
		return &APIError{Code: env.Code, Message: env.Message}
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode envelope result: %w", err)
	}
	return nil
}
