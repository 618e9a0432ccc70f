package strava

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	go_json "github.com/goccy/go-json"
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api: %d %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether Strava rejected the call for exceeding a limit.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var errResp struct {
		Message string `json:"message"`
		Errors  []struct {
			Resource string `json:"resource"`
			Field    string `json:"field"`
			Code     string `json:"code"`
		} `json:"errors"`
	}

	if err := go_json.Unmarshal(body, &errResp); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	msg := errResp.Message
	if msg == "" {
		msg = resp.Status
	}
	details := make([]string, 0, len(errResp.Errors))
	for _, e := range errResp.Errors {
		details = append(details, e.Resource+"."+e.Field+" "+e.Code)
	}
	if len(details) > 0 {
		msg += " (" + strings.Join(details, "; ") + ")"
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}
