package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals a JSON object from an LLM response into a
// type T. It handles common quirks: markdown code fences (with or without a
// "json" language tag) and prose before or after the object itself.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr := response

	if i := strings.Index(jsonStr, "```"); i != -1 {
		jsonStr = jsonStr[i+3:]
		jsonStr = strings.TrimPrefix(jsonStr, "json")
		if j := strings.Index(jsonStr, "```"); j != -1 {
			jsonStr = jsonStr[:j]
		}
	}

	start := strings.Index(jsonStr, "{")
	end := strings.LastIndex(jsonStr, "}")
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end == -1 || end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}
	jsonStr = jsonStr[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
