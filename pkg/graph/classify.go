package graph

import (
	"fmt"
	"image/color"
	"strings"
)

// Category is the style classification derived from a node's type tag.
type Category string

// Style categories, from most to least specific.
const (
	CategoryTrigger   Category = "trigger"
	CategoryCondition Category = "condition"
	CategoryFunction  Category = "function"
	CategoryAction    Category = "action"
	CategoryDefault   Category = "default"
)

// classifyRule pairs a substring predicate with the category it selects.
type classifyRule struct {
	keywords []string
	category Category
}

// classifyRules is evaluated first-match-wins, in order. The order is the
// contract: "Webhook Trigger" contains both "webhook" and "trigger" and
// must classify as trigger.
var classifyRules = []classifyRule{
	{[]string{"trigger"}, CategoryTrigger},
	{[]string{"if", "switch"}, CategoryCondition},
	{[]string{"function", "code"}, CategoryFunction},
	{[]string{"http", "webhook", "email", "slack", "telegram"}, CategoryAction},
}

// Classify maps a node's type tag to its style category.
// Matching is case-insensitive substring containment over an ordered rule
// list; unmatched tags fall through to CategoryDefault. Pure function.
func Classify(typeTag string) Category {
	tag := strings.ToLower(typeTag)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(tag, kw) {
				return rule.category
			}
		}
	}
	return CategoryDefault
}

// Categories computes the classification overlay for a whole graph,
// keyed by node ID.
func Categories(g *Graph) map[string]Category {
	out := make(map[string]Category, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = Classify(n.Type)
	}
	return out
}

// Palette maps each category to its fixed fill color, matching the hex
// palette used across renderers (#ff6b6b, #ffe66d, #a8e6cf, #4ecdc4,
// #95a5a6).
var Palette = map[Category]color.RGBA{
	CategoryTrigger:   {R: 0xff, G: 0x6b, B: 0x6b, A: 0xff},
	CategoryCondition: {R: 0xff, G: 0xe6, B: 0x6d, A: 0xff},
	CategoryFunction:  {R: 0xa8, G: 0xe6, B: 0xcf, A: 0xff},
	CategoryAction:    {R: 0x4e, G: 0xcd, B: 0xc4, A: 0xff},
	CategoryDefault:   {R: 0x95, G: 0xa5, B: 0xa6, A: 0xff},
}

// Color returns the fill color for a category, falling back to the
// default gray for unknown categories.
func (c Category) Color() color.RGBA {
	if col, ok := Palette[c]; ok {
		return col
	}
	return Palette[CategoryDefault]
}

// Hex returns the category color as a #rrggbb string for DOT and SVG output.
func (c Category) Hex() string {
	col := c.Color()
	return fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B)
}

// LegendCategories lists the categories shown in the rendered legend,
// in display order. The default category is omitted: uncategorized nodes
// carry no legend entry.
var LegendCategories = []Category{
	CategoryTrigger,
	CategoryCondition,
	CategoryFunction,
	CategoryAction,
}

// Title returns the category name with a leading capital, for legend text.
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
