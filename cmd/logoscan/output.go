package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type outputFormat string

const (
	formatJSON     outputFormat = "json"
	formatMarkdown outputFormat = "markdown"
)

func parseFormat(s string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case formatJSON, "":
		return formatJSON, nil
	case formatMarkdown, "md":
		return formatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or markdown)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
