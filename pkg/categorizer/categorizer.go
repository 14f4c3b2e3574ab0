package categorizer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Category is one of the fixed buckets an entry can be assigned to.
type Category string

const (
	Technology     Category = "technology"
	Tool           Category = "tool"
	Skill          Category = "skill"
	Responsibility Category = "responsibility"
	Process        Category = "process" // declared for output shape; no rule produces it
	Hardware       Category = "hardware"
	Other          Category = "other"
)

// All selects every entry in FilterByCategory.
const All = "all"

// Categories lists every declared category in output order.
var Categories = []Category{Technology, Tool, Skill, Responsibility, Process, Hardware, Other}

// Categorizer assigns a category to a single free-text entry.
type Categorizer interface {
	Categorize(entry string) Category
}

// RuleCategorizer evaluates an ordered rule table, first match wins.
type RuleCategorizer struct {
	rules []rule
}

// New returns a categorizer backed by the built-in rule table.
func New() *RuleCategorizer {
	return &RuleCategorizer{rules: defaultRules}
}

var std = New()

// ParseCategory maps a string onto a declared category.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Categorize never fails: unmatched input ends up in Other.
func (r *RuleCategorizer) Categorize(entry string) Category {
	normalized := normalize(entry)
	for _, rl := range r.rules {
		if rl.match(normalized) {
			return rl.category
		}
	}
	return fallback(normalized)
}

// normalize folds case through upper then lower so letters like 'ı' and 'ſ'
// match their ASCII upper-case forms.
func normalize(entry string) string {
	return strings.ToLower(strings.ToUpper(strings.TrimSpace(entry)))
}

// Categorize classifies entry with the built-in rule table.
func Categorize(entry string) Category {
	return std.Categorize(entry)
}

var connectives = []string{" for ", " during ", " with ", " and ", " or "}

var actionPrefixes = []string{"create", "write", "record", "edit", "ensure", "provide"}

// fallback runs when no pattern matched. Input is already trimmed and lower-cased.
func fallback(entry string) Category {
	if utf8.RuneCountInString(entry) > 50 {
		return Responsibility
	}
	for _, c := range connectives {
		if strings.Contains(entry, c) {
			return Responsibility
		}
	}
	for _, p := range actionPrefixes {
		if strings.HasPrefix(entry, p) {
			return Responsibility
		}
	}
	return Other
}

// FilterByCategory returns the distinct entries assigned to category, sorted.
// Passing All returns every distinct entry.
func (r *RuleCategorizer) FilterByCategory(entries []string, category string) []string {
	out := make([]string, 0)
	for _, e := range unique(entries) {
		if category == All || string(r.Categorize(e)) == category {
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}

// FilterByCategory uses the built-in rule table.
func FilterByCategory(entries []string, category string) []string {
	return std.FilterByCategory(entries, category)
}

// CategorizeAll partitions the distinct entries across every declared category.
// Each key is present even when its list is empty.
func (r *RuleCategorizer) CategorizeAll(entries []string) map[Category][]string {
	out := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		out[c] = []string{}
	}
	for _, e := range unique(entries) {
		c := r.Categorize(e)
		out[c] = append(out[c], e)
	}
	for _, c := range Categories {
		sort.Strings(out[c])
	}
	return out
}

// CategorizeAll uses the built-in rule table.
func CategorizeAll(entries []string) map[Category][]string {
	return std.CategorizeAll(entries)
}

// TechnologyCount is one row of a usage ranking.
type TechnologyCount struct {
	Technology string `json:"technology"`
	Count      int    `json:"usage_count"`
}

// CountTechnologyUsage counts entries classified as Technology across every list.
// Rows are ordered by descending count; ties keep first-seen order.
func (r *RuleCategorizer) CountTechnologyUsage(lists [][]string) []TechnologyCount {
	index := make(map[string]int)
	rows := make([]TechnologyCount, 0)
	for _, list := range lists {
		for _, e := range list {
			if r.Categorize(e) != Technology {
				continue
			}
			if i, ok := index[e]; ok {
				rows[i].Count++
				continue
			}
			index[e] = len(rows)
			rows = append(rows, TechnologyCount{Technology: e, Count: 1})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// CountTechnologyUsage uses the built-in rule table.
func CountTechnologyUsage(lists [][]string) []TechnologyCount {
	return std.CountTechnologyUsage(lists)
}

func unique(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
