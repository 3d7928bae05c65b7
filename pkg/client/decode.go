package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the server's response wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Detail string          `json:"detail"`
}

// unwrap returns the "data" member of an envelope, or body itself when it is
// not wrapped.
func unwrap(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Data) == 0 {
		return trimmed
	}
	return env.Data
}

// decodeList accepts both a bare JSON array and an envelope whose data is an
// array. null decodes to an empty slice.
func decodeList[T any](body []byte) ([]T, error) {
	raw := unwrap(body)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %.32q", raw)
	}
	out := make([]T, 0)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeOne decodes a single object, wrapped or not.
func decodeOne[T any](body []byte) (*T, error) {
	raw := unwrap(body)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %.32q", raw)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// errorMessage extracts the server's error text from a failed response.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Detail != "" {
			return env.Detail
		}
	}
	return string(bytes.TrimSpace(body))
}
