package ipfsapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imroc/req/v3"
)

// APIError is the daemon's JSON error envelope, returned with a non-2xx
// status on any failed RPC.
type APIError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ipfs api: %s (code %d)", e.Message, e.Code)
}

// IsNotExist reports whether err is the daemon's "file does not exist"
// response for a files API path argument.
func IsNotExist(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.Message, "does not exist")
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but the daemon returned an error
	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s: %w", operation, err)
		}

		return fmt.Errorf("api error: %s %s", operation, resp.Dump())
	}

	return nil
}
