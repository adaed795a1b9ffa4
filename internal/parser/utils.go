package parser

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// IsBinary checks first 512 bytes for null bytes.
func IsBinary(content []byte) bool {
	const maxCheckSize = 512
	size := min(len(content), maxCheckSize)
	return bytes.IndexByte(content[:size], 0) != -1
}

// IsValidUTF8 reports whether content decodes as UTF-8. Text in a legacy
// encoding still scans, the index and show only flag it.
func IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// StripBOM removes UTF-8 BOM (0xEF, 0xBB, 0xBF) if present.
func StripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

// Lines splits content into lines without terminators. A UTF-8 BOM and the
// `\r` of CRLF endings are removed.
func Lines(content []byte) []string {
	content = StripBOM(content)
	if len(content) == 0 {
		return []string{}
	}
	text := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// NormalizeKey lower-cases a file-kind key and ensures the leading dot.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	if !strings.HasPrefix(key, ".") {
		key = "." + key
	}
	return key
}

// DetectKind returns the normalized file-kind key for path, or "" when the
// path has no extension.
func DetectKind(path string) string {
	return NormalizeKey(filepath.Ext(path))
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// braceDelta counts curly braces on a line.
func braceDelta(line string) (opens, closes int) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '{':
			opens++
		case '}':
			closes++
		}
	}
	return opens, closes
}

// StripFrontmatter removes YAML frontmatter (--- delimited) and returns
// the remaining content and extracted title/description if present.
func StripFrontmatter(content []byte) ([]byte, string, string) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return content, "", ""
	}

	// Find the closing ---
	start := bytes.Index(content, []byte("\n"))
	if start == -1 {
		return content, "", ""
	}
	start++ // Move past the first newline

	skipBytes := 5 // Default for "\n---\n"
	end := bytes.Index(content[start:], []byte("\n---\n"))
	if end == -1 {
		end = bytes.Index(content[start:], []byte("\n---\r\n"))
		if end == -1 {
			return content, "", ""
		}
		skipBytes = 6 // For "\n---\r\n"
	}

	frontmatter := content[start : start+end]
	body := content[start+end+skipBytes:]

	// Extract title and description
	var title, description string
	lines := bytes.Split(frontmatter, []byte("\n"))
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if titleAfter, titleFound := bytes.CutPrefix(line, []byte("title:")); titleFound {
			title = strings.TrimSpace(string(titleAfter))
			title = strings.Trim(title, `"'`)
		} else if descAfter, descFound := bytes.CutPrefix(line, []byte("description:")); descFound {
			description = strings.TrimSpace(string(descAfter))
			description = strings.Trim(description, `"'`)
		}
	}

	return body, title, description
}
