// Package parser converts free-form generation backend output into an ordered
// path-to-content mapping. The backend is untrusted: content is captured as
// opaque text, never interpreted.
//
// Three grammar variants are supported:
//   - section: repeated "# File: path" headings, each followed by a content
//     region running to the next heading or end of text (ParseSections)
//   - plan: a single JSON object with a filePath and a code field (ParsePlan)
//   - single: the whole response is one fenced block, or raw text when
//     unfenced, keyed by a caller-supplied target path (ParseSingle)
package parser

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// headingRegex matches a file heading line: "# File: path",
// "# Original File: path" or "# New File: path", at any heading depth.
var headingRegex = regexp.MustCompile(`(?m)^#{1,3}\s*(?:Original\s+File|New\s+File|File):\s*(.+)$`)

// fenceOpenRegex matches the opening line of a fenced block; the language tag
// is discarded.
var fenceOpenRegex = regexp.MustCompile("^```[\\w+-]*[ \t]*\n")

// ParseSections parses the section grammar. It is tolerant: text with no file
// headings yields an empty ProposalSet. An enclosing fence around the whole
// response is stripped first, and each section's content region is unfenced
// if the backend wrapped it in one.
func ParseSections(text string) *ProposalSet {
	set := NewProposalSet()
	text = stripEnclosingFence(text)

	matches := headingRegex.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		path := text[m[2]:m[3]]

		contentStart := m[1]
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}
		content := stripEnclosingFence(text[contentStart:contentEnd])

		set.Add(path, content)
	}
	return set
}

// ParsePlan parses the plan grammar: a single JSON object carrying exactly a
// filePath field and a code field, used when one new file plus its location
// was requested. Unlike the other grammars it is strict and returns a
// ParseError when the object or either field is missing.
func ParsePlan(text string) (*ProposalSet, error) {
	text = stripEnclosingFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, &ParseError{Reason: ReasonNoMatch, Detail: "no JSON object in response"}
	}
	objText := text[start : end+1]

	if !gjson.Valid(objText) {
		return nil, &ParseError{Reason: ReasonInvalidStructure, Detail: "response is not valid JSON"}
	}

	filePath := gjson.Get(objText, "filePath")
	if !filePath.Exists() || strings.TrimSpace(filePath.String()) == "" {
		return nil, &ParseError{Reason: ReasonMissingField, Detail: "filePath"}
	}
	code := gjson.Get(objText, "code")
	if !code.Exists() {
		return nil, &ParseError{Reason: ReasonMissingField, Detail: "code"}
	}

	set := NewProposalSet()
	set.Add(filePath.String(), code.String())
	return set, nil
}

// ParseSingle parses the single grammar: the entire response is one fenced
// block, or raw text when unfenced. The result is keyed by the caller's
// target path. Tolerant: empty text, or an empty target, yields an empty set.
func ParseSingle(text, targetPath string) *ProposalSet {
	set := NewProposalSet()
	if strings.TrimSpace(targetPath) == "" {
		return set
	}

	content := stripEnclosingFence(text)
	if content == "" {
		return set
	}

	set.Add(targetPath, content)
	return set
}

// stripEnclosingFence removes one fenced-code wrapper around s, if present,
// discarding the language tag. Text without a fence is returned trimmed. A
// missing closing fence is tolerated; everything after the opening line is
// kept.
func stripEnclosingFence(s string) string {
	s = strings.TrimSpace(s)

	loc := fenceOpenRegex.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return s
	}
	body := s[loc[1]:]

	if idx := strings.LastIndex(body, "```"); idx >= 0 && strings.TrimSpace(body[idx+3:]) == "" {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
