package doctree

import "fmt"

// Summary describes the shape of a chapter tree.
type Summary struct {
	TotalChapters     int         `json:"total_chapters"`
	MaxDepth          int         `json:"max_depth"`
	MaxLevel          int         `json:"max_level"`
	LevelDistribution map[int]int `json:"level_distribution"`
	TopLevelCount     int         `json:"top_level_count"`
}

// Summarize counts the nodes of a tree by heading level and depth.
func Summarize(root *StructureNode) Summary {
	s := Summary{LevelDistribution: map[int]int{}}
	if root == nil {
		return s
	}
	s.TopLevelCount = len(root.Children)

	var visit func(nodes []*StructureNode, depth int)
	visit = func(nodes []*StructureNode, depth int) {
		for _, n := range nodes {
			s.TotalChapters++
			s.LevelDistribution[n.Level]++
			if depth > s.MaxDepth {
				s.MaxDepth = depth
			}
			if n.Level > s.MaxLevel {
				s.MaxLevel = n.Level
			}
			visit(n.Children, depth+1)
		}
	}
	visit(root.Children, 1)
	return s
}

// LevelWarnings reports children whose heading level skips one or more
// levels below their parent, e.g. an H3 directly under an H1.
func LevelWarnings(root *StructureNode) []string {
	var warnings []string
	Walk(root, func(n *StructureNode) bool {
		for _, c := range n.Children {
			if c.Level > n.Level+1 {
				warnings = append(warnings, fmt.Sprintf("heading level jump: %s (H%d -> H%d)", c.FullPath(), n.Level, c.Level))
			}
		}
		return true
	})
	return warnings
}
