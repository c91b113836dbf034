// Package export renders conversations to files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelarena/internal/chat"
)

// Format is an export file format.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	Text     Format = "text"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{Markdown, JSON, Text}
}

// ParseFormat accepts a format name or its file extension. An empty string
// selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "text", "txt":
		return Text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension for f, with the leading dot.
func (f Format) Ext() string {
	switch f {
	case JSON:
		return ".json"
	case Text:
		return ".txt"
	default:
		return ".md"
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case Text:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Render formats conv.
func Render(conv chat.Conversation, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return []byte(renderMarkdown(conv)), nil
	case Text:
		return []byte(renderText(conv)), nil
	case JSON:
		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Filename returns the date-prefixed file name used for conv.
func Filename(conv chat.Conversation, f Format) string {
	return fmt.Sprintf("%s-%s%s", conv.CreatedAt.Format("2006-01-02"), sanitizeFilename(conv.Title), f.Ext())
}

// Write exports conv into the exports directory under baseDir and returns
// the file path.
func Write(conv chat.Conversation, f Format, baseDir string) (string, error) {
	content, err := Render(conv, f)
	if err != nil {
		return "", err
	}

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0755); err != nil {
		return "", fmt.Errorf("create exports directory: %w", err)
	}

	path := filepath.Join(exportsDir, Filename(conv, f))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

// sanitizeFilename removes/replaces characters unsuitable for filenames
func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if result == "" {
		result = "conversation"
	}
	if len(result) > 50 {
		result = strings.TrimRight(result[:50], "-")
	}
	return result
}
