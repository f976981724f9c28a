package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLevel is returned when a chapter has a level below 1.
var ErrInvalidLevel = errors.New("invalid chapter level")

// RootTitle is the title of the synthetic root node.
const RootTitle = "root"

// Build converts a flat chapter list into a tree in a single pass.
//
// A stack of open ancestors starts with the synthetic root at level 0. For
// each chapter the stack is popped while its top has a level >= the
// chapter's level; the remaining top becomes the parent. Level jumps attach
// to the nearest open ancestor with a lower level, no intermediate nodes are
// invented.
func Build(chapters []ChapterInfo) (*StructureNode, error) {
	root := &StructureNode{Title: RootTitle, Level: 0, Position: -1}
	stack := []*StructureNode{root}
	// titles mirrors stack[1:] so the path is a plain join of open ancestors.
	titles := make([]string, 0, 8)

	for i, ch := range chapters {
		if ch.Level < 1 {
			return nil, fmt.Errorf("chapter %d %q: %w: %d", i, ch.Title, ErrInvalidLevel, ch.Level)
		}

		for len(stack) > 1 && stack[len(stack)-1].Level >= ch.Level {
			stack = stack[:len(stack)-1]
			titles = titles[:len(titles)-1]
		}

		parent := stack[len(stack)-1]
		node := &StructureNode{
			Title:    ch.Title,
			Level:    ch.Level,
			Path:     strings.Join(titles, PathDelimiter),
			Position: ch.Position,
			Children: []*StructureNode{},
		}
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
		titles = append(titles, ch.Title)
	}

	return root, nil
}

// Walk visits every non-root node in depth-first document order. Returning
// false from fn stops the walk.
func Walk(root *StructureNode, fn func(*StructureNode) bool) {
	if root == nil {
		return
	}
	var walk func(nodes []*StructureNode) bool
	walk = func(nodes []*StructureNode) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !walk(n.Children) {
				return false
			}
		}
		return true
	}
	walk(root.Children)
}

// Flatten returns every non-root node in document order.
func Flatten(root *StructureNode) []*StructureNode {
	var out []*StructureNode
	Walk(root, func(n *StructureNode) bool {
		out = append(out, n)
		return true
	})
	return out
}

// TopLevelTitles returns the titles of the root's direct children.
func TopLevelTitles(root *StructureNode) []string {
	if root == nil {
		return nil
	}
	out := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		out = append(out, c.Title)
	}
	return out
}
