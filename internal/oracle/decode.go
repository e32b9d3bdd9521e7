package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports a model reply that could not be turned into the
// operation's payload.
type ParseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("oracle %s: %s", e.Op, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractObject returns the first complete JSON object in text. Markdown code
// fences are ignored. Each '{' is tried in turn, and the object is read with
// a JSON decoder, so braces inside string values do not confuse it and text
// after the object is ignored.
func ExtractObject(text string) (json.RawMessage, error) {
	text = stripFences(text)

	var lastErr error
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			lastErr = err
			continue
		}
		return raw, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no valid JSON object: %w", lastErr)
	}
	return nil, fmt.Errorf("no JSON object in response")
}

// Decode extracts the first JSON object from text into a T and runs validate
// on it.
func Decode[T any](op, text string, validate func(*T) error) (T, error) {
	var out T
	raw, err := ExtractObject(text)
	if err != nil {
		return out, &ParseError{Op: op, Reason: "extract", Err: err}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ParseError{Op: op, Reason: "decode", Err: err}
	}
	if validate != nil {
		if err := validate(&out); err != nil {
			return out, &ParseError{Op: op, Reason: "validate", Err: err}
		}
	}
	return out, nil
}

func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var b bytes.Buffer
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
