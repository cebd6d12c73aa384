package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output is hostile input: fenced, truncated, wrapped in prose, or
// decorated with trailing commas. Everything in this file is the only place
// that touches it before json.Unmarshal.

var (
	fenceOpenRe     = regexp.MustCompile("```[a-zA-Z]*\\s*")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// ExtractJSONArray recovers the best-effort single JSON array embedded in
// raw model output and returns the repaired slice. It fails with
// MalformedOutputError when no array can be located.
func ExtractJSONArray(raw string) ([]byte, error) {
	s := fenceOpenRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	if start == -1 {
		return nil, &MalformedOutputError{Reason: "no JSON array found in response"}
	}

	end := strings.LastIndex(s, "]")
	var slice string
	if end > start {
		slice = s[start : end+1]
	} else {
		// Truncated mid-array: close it after the last complete object.
		cut := strings.LastIndex(s, "}")
		if cut < start {
			return nil, &MalformedOutputError{Reason: "no JSON array found in response"}
		}
		slice = s[start:cut+1] + "]"
	}

	slice = trailingCommaRe.ReplaceAllString(slice, "$1")
	return []byte(slice), nil
}

// RecoverRecords extracts, repairs and parses the record array from raw
// model output. A recovered slice that still fails to parse surfaces the
// parser's diagnostic; it is never retried here.
func RecoverRecords(raw string) ([]map[string]any, error) {
	slice, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(slice, &parsed); err != nil {
		return nil, &MalformedOutputError{Reason: "recovered array does not parse", Err: err}
	}

	if err := validateRecordArray(parsed); err != nil {
		return nil, err
	}

	elems := parsed.([]any)
	records := make([]map[string]any, 0, len(elems))
	for _, el := range elems {
		records = append(records, el.(map[string]any))
	}
	return records, nil
}
