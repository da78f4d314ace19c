package fileutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeModelJSON unmarshals a model reply. Replies wrapped in a markdown
// fence or surrounded by prose are reduced to their first balanced object.
func DecodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if json.Valid([]byte(s)) {
		return json.Unmarshal([]byte(s), v)
	}

	obj, ok := firstObject(s)
	if !ok {
		return fmt.Errorf("DecodeModelJSON: no object in output (len=%d)", len(s))
	}
	dec := json.NewDecoder(bytes.NewReader(obj))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("DecodeModelJSON: object at len=%d: %w", len(obj), err)
	}
	return nil
}

// firstObject scans for the first {...} whose braces balance outside strings.
func firstObject(s string) ([]byte, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth, inStr, esc := 0, false, false
		for i := start; i < len(s); i++ {
			c := s[i]
			switch {
			case esc:
				esc = false
			case inStr && c == '\\':
				esc = true
			case c == '"':
				inStr = !inStr
			case inStr:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return []byte(s[start : i+1]), true
				}
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}
