package tsapi

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueByKey returns the string value stored under key in a flat JSON-like
// document. It looks for the literal `"key":"` and returns everything up to the
// next double quote, so escaped quotes inside the value end it early. An empty
// string is returned when the text is empty, the key is missing or its value is
// not a string, and when the closing quote is absent.
func ValueByKey(text, key string) string {
	if text == "" {
		return ""
	}
	phrase := `"` + key + `":"`
	from := strings.Index(text, phrase)
	if from < 0 {
		return ""
	}
	from += len(phrase)
	to := strings.IndexByte(text[from:], '"')
	if to < 0 {
		return ""
	}
	return text[from : from+to]
}

// ParseEntryID parses the decimal entry ID returned by the update endpoint.
// A value of 0 means the service refused the write.
func ParseEntryID(body string) (int64, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return 0, fmt.Errorf("tsapi: empty entry id")
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("tsapi: parse entry id %q: %w", trimmed, err)
	}
	return id, nil
}
