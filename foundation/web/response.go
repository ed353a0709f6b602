package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Respond writes data to w as JSON with the given status code, recording
// the status code on the request's Values for logging middleware. A nil
// data with http.StatusNoContent writes headers only.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	if err := SetStatusCode(ctx, statusCode); err != nil {
		return err
	}

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	return nil
}

// RespondError writes err's message as the JSON body {"error": "..."}
// with the given status code. Handlers that need to attach field-level
// detail do so by responding with a caller-constructed value instead.
func RespondError(ctx context.Context, w http.ResponseWriter, err error, statusCode int) error {
	resp := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return Respond(ctx, w, resp, statusCode)
}
