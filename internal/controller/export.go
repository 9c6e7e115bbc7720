package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanDropPayload picks the first path out of a drop payload. Paths holding
// spaces arrive wrapped in braces; bare paths are separated by whitespace.
func CleanDropPayload(payload string) string {
	p := strings.TrimSpace(payload)
	if strings.HasPrefix(p, "{") {
		if end := strings.Index(p, "}"); end > 0 {
			return strings.TrimSpace(p[1:end])
		}
		return strings.TrimSpace(strings.Trim(p, "{}"))
	}
	if fields := strings.Fields(p); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// writeTranscript writes text verbatim, defaulting the extension to .txt.
func writeTranscript(
	writeFile func(string, []byte, os.FileMode) error,
	path string,
	text string,
) (string, error) {
	target := strings.TrimSpace(path)
	if target == "" {
		return "", fmt.Errorf("export path is empty")
	}
	if filepath.Ext(target) == "" {
		target += ".txt"
	}
	if err := writeFile(target, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return target, nil
}
