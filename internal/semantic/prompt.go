package semantic

import (
	"fmt"
	"strings"
)

const SystemPrompt = `You classify document chapter titles. Answer with a single word: yes or no.`

const categoryPrompt = `A technical document must contain a top-level chapter covering the category below.
Decide whether ANY of the listed top-level chapter titles covers that category, even if it uses different wording, a synonym, or another language.

Category: %q

Top-level chapter titles:
%s
Answer "yes" if at least one title belongs to the category, otherwise "no". Respond with only yes or no.`

// BuildCategoryPrompt asks whether any of titles belongs to category.
func BuildCategoryPrompt(category string, titles []string) string {
	var sb strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(t))
	}
	return fmt.Sprintf(categoryPrompt, category, sb.String())
}
