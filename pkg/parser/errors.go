package parser

import "fmt"

// Reason classifies why parsing failed.
type Reason string

const (
	// ReasonMissingField means a required field was absent or empty.
	ReasonMissingField Reason = "missing-field"
	// ReasonInvalidStructure means the text was found but could not be decoded.
	ReasonInvalidStructure Reason = "invalid-structure"
	// ReasonNoMatch means the expected structure was not present at all.
	ReasonNoMatch Reason = "no-match"
)

// ParseError reports a failure of the strict plan grammar. The tolerant
// grammars never return it; they yield an empty ProposalSet instead.
type ParseError struct {
	Reason Reason
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Reason, e.Detail)
}
