package doctree

import (
	"errors"
	"strings"
	"testing"
)

func chapters(specs ...any) []ChapterInfo {
	var out []ChapterInfo
	for i := 0; i+1 < len(specs); i += 2 {
		out = append(out, ChapterInfo{
			Title:    specs[i].(string),
			Level:    specs[i+1].(int),
			Position: len(out),
		})
	}
	return out
}

func TestBuild_NestedHierarchy(t *testing.T) {
	root, err := Build(chapters(
		"Overview", 1,
		"Background", 2,
		"Goals", 2,
		"Design", 1,
		"Storage", 2,
		"Indexes", 3,
		"API", 2,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !root.IsRoot() {
		t.Fatal("expected synthetic root at level 0")
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level children, got %d", len(root.Children))
	}

	overview := root.Children[0]
	if overview.Title != "Overview" || len(overview.Children) != 2 {
		t.Fatalf("expected Overview with 2 children, got %q with %d", overview.Title, len(overview.Children))
	}
	if overview.Path != "" {
		t.Errorf("expected empty path for top-level chapter, got %q", overview.Path)
	}

	design := root.Children[1]
	if len(design.Children) != 2 {
		t.Fatalf("expected 2 children under Design, got %d", len(design.Children))
	}
	storage := design.Children[0]
	if storage.Path != "Design" {
		t.Errorf("expected path %q, got %q", "Design", storage.Path)
	}
	indexes := storage.Children[0]
	if indexes.Path != "Design > Storage" {
		t.Errorf("expected path %q, got %q", "Design > Storage", indexes.Path)
	}
	if indexes.FullPath() != "Design > Storage > Indexes" {
		t.Errorf("expected full path %q, got %q", "Design > Storage > Indexes", indexes.FullPath())
	}
	if indexes.Position != 5 {
		t.Errorf("expected position 5, got %d", indexes.Position)
	}
	if design.Children[1].Title != "API" || design.Children[1].Path != "Design" {
		t.Errorf("expected API under Design, got %q at %q", design.Children[1].Title, design.Children[1].Path)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	root, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children))
	}
}

func TestBuild_LevelJumpAttachesToNearestAncestor(t *testing.T) {
	root, err := Build(chapters(
		"Intro", 1,
		"Deep", 4,
		"Shallow", 2,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	intro := root.Children[0]
	if len(intro.Children) != 2 {
		t.Fatalf("expected 2 children under Intro, got %d", len(intro.Children))
	}
	if intro.Children[0].Title != "Deep" || intro.Children[0].Level != 4 {
		t.Errorf("expected Deep (H4) attached directly to Intro, got %q (H%d)", intro.Children[0].Title, intro.Children[0].Level)
	}
	if intro.Children[1].Path != "Intro" {
		t.Errorf("expected Shallow path %q, got %q", "Intro", intro.Children[1].Path)
	}
}

func TestBuild_DocumentStartingBelowTopLevel(t *testing.T) {
	root, err := Build(chapters(
		"Preface", 2,
		"Chapter", 1,
		"Section", 2,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := TopLevelTitles(root); strings.Join(got, ",") != "Preface,Chapter" {
		t.Errorf("expected top-level [Preface Chapter], got %v", got)
	}
}

func TestBuild_RejectsInvalidLevel(t *testing.T) {
	for _, level := range []int{0, -1} {
		_, err := Build([]ChapterInfo{{Title: "Bad", Level: level}})
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("level %d: expected ErrInvalidLevel, got %v", level, err)
		}
	}
}

// TestBuild_PathsMatchAncestorChain recomputes every path from the flat list
// and compares it to the tree.
func TestBuild_PathsMatchAncestorChain(t *testing.T) {
	input := chapters(
		"A", 1, "A1", 2, "A1a", 3, "A1b", 3, "A2", 2,
		"B", 1, "B1", 3, "B2", 2, "B2a", 3,
		"C", 1,
	)
	root, err := Build(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes := Flatten(root)
	if len(nodes) != len(input) {
		t.Fatalf("expected %d nodes, got %d", len(input), len(nodes))
	}

	for i, n := range nodes {
		var ancestors []string
		level := input[i].Level
		for j := i - 1; j >= 0; j-- {
			if input[j].Level < level {
				ancestors = append([]string{input[j].Title}, ancestors...)
				level = input[j].Level
			}
		}
		want := strings.Join(ancestors, PathDelimiter)
		if n.Path != want {
			t.Errorf("node %q: expected path %q, got %q", n.Title, want, n.Path)
		}
		if n.Position != input[i].Position {
			t.Errorf("node %q: expected position %d, got %d", n.Title, input[i].Position, n.Position)
		}
	}
}

func TestWalk_StopsEarly(t *testing.T) {
	root, _ := Build(chapters("A", 1, "B", 1, "C", 1))
	var seen []string
	Walk(root, func(n *StructureNode) bool {
		seen = append(seen, n.Title)
		return n.Title != "B"
	})
	if strings.Join(seen, ",") != "A,B" {
		t.Errorf("expected walk to stop after B, got %v", seen)
	}
}

func TestBreadcrumb(t *testing.T) {
	root, _ := Build(chapters("A", 1, "B", 2, "C", 3))
	c := root.Children[0].Children[0].Children[0]
	bc := c.Breadcrumb()
	if len(bc) != 2 || bc[0] != "A" || bc[1] != "B" {
		t.Errorf("expected breadcrumb [A B], got %v", bc)
	}
	if root.Children[0].Breadcrumb() != nil {
		t.Error("expected nil breadcrumb for top-level node")
	}
}
