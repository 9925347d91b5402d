package improve

import "fmt"

// analysisPromptTemplate asks for a critique of the current file.
const analysisPromptTemplate = `You are reviewing one source file from an existing project for concrete,
verifiable improvements: bugs, unsafe patterns, dead code, unclear naming.

Do not rewrite the file yet. Respond with a short prioritized analysis.

File: %s

%s`

// replacementPromptTemplate asks for the complete improved file body.
const replacementPromptTemplate = `Apply the improvements from the analysis below to the file. Respond with the
complete replacement file body in a single fenced code block and nothing else.
Keep behavior identical unless the analysis identified a bug.

File: %s

Current content:
%s

Analysis:
%s`

func analysisPrompt(relPath, content string) string {
	return fmt.Sprintf(analysisPromptTemplate, relPath, content)
}

func replacementPrompt(relPath, content, analysis string) string {
	return fmt.Sprintf(replacementPromptTemplate, relPath, content, analysis)
}
