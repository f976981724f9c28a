package doctree

import "strings"

// PathDelimiter separates ancestor titles in a node path.
const PathDelimiter = " > "

// Document is a parsed document reduced to its ordered chapter list.
type Document struct {
	Title    string        // Document title (from metadata or filename)
	Chapters []ChapterInfo // Headings in document order
}

// ChapterInfo is one heading in the flat chapter list produced by a parser.
type ChapterInfo struct {
	Title    string `json:"title"`
	Level    int    `json:"level"`             // 1 = top-level
	Position int    `json:"position"`          // Zero-based index in document order
	Content  string `json:"content,omitempty"` // Body text up to the next heading (may be empty)
}

// StructureNode is a node of the chapter tree. Nodes own their children and
// never point back to their parent; Path is fixed when the node is built.
type StructureNode struct {
	Title    string           `json:"title"`
	Level    int              `json:"level"`
	Path     string           `json:"path"` // Ancestor titles, root excluded
	Position int              `json:"position"`
	Children []*StructureNode `json:"children"`
}

// IsRoot reports whether n is the synthetic root of a tree.
func (n *StructureNode) IsRoot() bool {
	return n.Level == 0
}

// FullPath returns the node's path with its own title appended.
func (n *StructureNode) FullPath() string {
	if n.Path == "" {
		return n.Title
	}
	return n.Path + PathDelimiter + n.Title
}

// Breadcrumb splits the node's ancestor path back into titles.
func (n *StructureNode) Breadcrumb() []string {
	if n.Path == "" {
		return nil
	}
	return strings.Split(n.Path, PathDelimiter)
}
