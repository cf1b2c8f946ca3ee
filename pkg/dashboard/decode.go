package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// decodeList decodes a JSON array into []T. A payload that is not an array
// at all, such as an error object, yields an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func decodeInsights(raw json.RawMessage) (*InsightsBundle, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("dashboard: insights payload is not an object")
	}
	var bundle InsightsBundle
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	return &bundle, nil
}
