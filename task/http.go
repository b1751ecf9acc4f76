package task

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPHandler posts the task input as JSON to <baseURL>/<task name> and
// decodes a JSON object from a 2xx response.
type HTTPHandler struct {
	baseURL string
	client  *http.Client
}

var _ Handler = new(HTTPHandler)

func NewHTTPHandler(baseURL string, timeout time.Duration) *HTTPHandler {
	return &HTTPHandler{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTPHandler) Invoke(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, &Error{Kind: ERROR_TERMINAL, Task: name, Message: "can not encode task input", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", h.baseURL, name), bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: ERROR_TERMINAL, Task: name, Message: "can not build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &Error{Kind: ERROR_TIMEOUT, Task: name, Message: "request timed out", Cause: err}
		}
		return nil, &Error{Kind: ERROR_FAILED, Task: name, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ERROR_FAILED, Task: name, Message: "can not read response", Cause: err}
	}
	switch {
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return nil, &Error{Kind: ERROR_TIMEOUT, Task: name, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, data)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &Error{Kind: ERROR_TERMINAL, Task: name, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, data)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{Kind: ERROR_FAILED, Task: name, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, data)}
	}

	output := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return output, nil
	}
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, &Error{Kind: ERROR_TERMINAL, Task: name, Message: "response is not a json object", Cause: err}
	}
	return output, nil
}
