// Package attach loads local files so their content can be sent along with
// a prompt.
package attach

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest file that can be attached (1MB).
const MaxFileSize = 1024 * 1024

var (
	ErrDirectory = errors.New("path is a directory")
	ErrTooLarge  = errors.New("file too large")
	ErrSensitive = errors.New("access to sensitive path denied")
	ErrTraversal = errors.New("path traversal not allowed")
)

// Attachment is a loaded file.
type Attachment struct {
	Path    string
	Content string
}

// Load reads the file at path after checking it is safe to send.
func Load(path string) (Attachment, error) {
	if strings.Contains(filepath.ToSlash(path), "../") || strings.HasSuffix(path, "..") {
		return Attachment{}, ErrTraversal
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("resolve path: %w", err)
	}
	if isSensitivePath(absPath) {
		return Attachment{}, fmt.Errorf("%w: %s", ErrSensitive, absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("%w: %s", ErrDirectory, absPath)
	}
	if info.Size() > MaxFileSize {
		return Attachment{}, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return Attachment{}, fmt.Errorf("read %s: %w", absPath, err)
	}
	return Attachment{Path: absPath, Content: string(content)}, nil
}

// Format renders the attachment between file markers. Source files get line
// numbers so answers can refer to them.
func (a Attachment) Format() string {
	var sb strings.Builder

	name := filepath.Base(a.Path)
	fmt.Fprintf(&sb, "=== File: %s ===\n", name)

	if isCodeFile(a.Path) {
		lines := strings.Split(strings.TrimSuffix(a.Content, "\n"), "\n")
		for i, line := range lines {
			fmt.Fprintf(&sb, "%4d | %s\n", i+1, line)
		}
	} else {
		sb.WriteString(a.Content)
		if !strings.HasSuffix(a.Content, "\n") {
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "=== End: %s ===\n", name)
	return sb.String()
}

// Prepend places the attachments ahead of prompt.
func Prepend(prompt string, atts ...Attachment) string {
	if len(atts) == 0 {
		return prompt
	}
	var sb strings.Builder
	for _, a := range atts {
		sb.WriteString(a.Format())
		sb.WriteString("\n")
	}
	sb.WriteString(prompt)
	return sb.String()
}

var codeExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".rs": true, ".c": true, ".h": true, ".cpp": true, ".java": true, ".rb": true,
	".php": true, ".sh": true, ".yaml": true, ".yml": true, ".json": true,
	".toml": true, ".sql": true, ".lua": true, ".swift": true, ".kt": true,
}

func isCodeFile(path string) bool {
	return codeExts[strings.ToLower(filepath.Ext(path))]
}

var sensitive = []string{
	"/.ssh/", "/.gnupg/", "/.aws/", "/.config/gcloud", "/etc/shadow",
	"/.netrc", "/.npmrc", "/.pypirc", "/credentials", "/secrets", "/.env",
	".pem", ".key", "id_rsa", "id_ed25519", "id_ecdsa",
}

func isSensitivePath(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, s := range sensitive {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
