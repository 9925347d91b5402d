package pipeline

import "strings"

// ChangeStats reports how many lines a replacement adds and removes. Whole
// files are always replaced in full, so the counts are the line totals of the
// new and old content.
func ChangeStats(oldContent, newContent string) (added, removed int) {
	return countLines(newContent), countLines(oldContent)
}

// countLines counts lines, normalizing line endings and ignoring a trailing
// newline.
func countLines(content string) int {
	if content == "" {
		return 0
	}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")

	return strings.Count(normalized, "\n") + 1
}
