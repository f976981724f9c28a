package structure

import "github.com/dgallion1/doccheck/internal/doctree"

// ChapterRef locates a chapter in one of the compared trees.
type ChapterRef struct {
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Path     string `json:"path"`
	Position int    `json:"position"`
}

// DiffResult is the title-level comparison of two trees.
type DiffResult struct {
	Missing        []string     // Template titles absent from the target, template order
	Extra          []string     // Target titles absent from the template, target order
	MissingDetails []ChapterRef // One entry per Missing title
	ExtraDetails   []ChapterRef // One entry per Extra title
	Matched        int          // Distinct template titles present in the target
	Similarity     float64      // Matched / distinct titles across both trees
}

// Differ compares the flattened, normalized title sets of two trees. Tree
// shape is not compared.
type Differ struct {
	Normalizer Normalizer
}

// Diff compares two trees with DefaultNormalizer.
func Diff(template, target *doctree.StructureNode) DiffResult {
	return Differ{Normalizer: DefaultNormalizer}.Diff(template, target)
}

// Diff reports missing and extra titles and a similarity score in [0, 1].
// Similarity is the Jaccard index of the two normalized title sets: 1.0 for
// identical sets (including two empty trees), 0.0 for disjoint sets.
// Duplicate titles within a tree are reported once, at first occurrence.
func (d Differ) Diff(template, target *doctree.StructureNode) DiffResult {
	templateNodes := doctree.Flatten(template)
	targetNodes := doctree.Flatten(target)

	templateKeys := make(map[string]bool, len(templateNodes))
	for _, n := range templateNodes {
		templateKeys[d.Normalizer.Clean(n.Title)] = true
	}
	targetKeys := make(map[string]bool, len(targetNodes))
	for _, n := range targetNodes {
		targetKeys[d.Normalizer.Clean(n.Title)] = true
	}

	var res DiffResult
	res.MissingDetails = []ChapterRef{}
	res.ExtraDetails = []ChapterRef{}
	res.Missing = []string{}
	res.Extra = []string{}

	seen := make(map[string]bool, len(templateNodes))
	for _, n := range templateNodes {
		key := d.Normalizer.Clean(n.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		if targetKeys[key] {
			res.Matched++
			continue
		}
		res.Missing = append(res.Missing, n.Title)
		res.MissingDetails = append(res.MissingDetails, refOf(n))
	}

	clear(seen)
	for _, n := range targetNodes {
		key := d.Normalizer.Clean(n.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		if templateKeys[key] {
			continue
		}
		res.Extra = append(res.Extra, n.Title)
		res.ExtraDetails = append(res.ExtraDetails, refOf(n))
	}

	union := len(templateKeys) + len(res.Extra)
	if union == 0 {
		res.Similarity = 1.0
	} else {
		res.Similarity = float64(res.Matched) / float64(union)
	}
	return res
}

func refOf(n *doctree.StructureNode) ChapterRef {
	return ChapterRef{Title: n.Title, Level: n.Level, Path: n.Path, Position: n.Position}
}
