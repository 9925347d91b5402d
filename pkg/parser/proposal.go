package parser

import "strings"

// FileBlock is one proposed file: a declared relative path and its full
// replacement content. FileBlocks are only ever produced by this package.
type FileBlock struct {
	Path    string
	Content string
}

// ProposalSet is an ordered mapping of path to FileBlock. Insertion order is
// the order of first appearance in the source text; a duplicate path keeps
// its original position but resolves to the last occurrence's content.
type ProposalSet struct {
	order  []string
	blocks map[string]FileBlock
}

// NewProposalSet creates an empty ProposalSet.
func NewProposalSet() *ProposalSet {
	return &ProposalSet{
		blocks: make(map[string]FileBlock),
	}
}

// Add inserts a block, trimming surrounding whitespace from path and content.
// Blocks with an empty path are dropped.
func (s *ProposalSet) Add(path, content string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	content = strings.TrimSpace(content)

	if _, seen := s.blocks[path]; !seen {
		s.order = append(s.order, path)
	}
	s.blocks[path] = FileBlock{Path: path, Content: content}
}

// Get returns the block for a path.
func (s *ProposalSet) Get(path string) (FileBlock, bool) {
	b, ok := s.blocks[path]
	return b, ok
}

// Paths returns the paths in insertion order.
func (s *ProposalSet) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Blocks returns the blocks in insertion order.
func (s *ProposalSet) Blocks() []FileBlock {
	out := make([]FileBlock, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.blocks[p])
	}
	return out
}

// Len returns the number of blocks.
func (s *ProposalSet) Len() int {
	return len(s.order)
}
