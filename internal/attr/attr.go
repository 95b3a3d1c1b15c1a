// Package attr parses FAB attribute cells into lists of attribute values.
//
// F attributes are objective (material, size, brand). A and B attributes
// are subjective benefits. Cells are comma separated; F cells may carry a
// descriptor before a colon, which is stripped.
package attr

import "strings"

// Category is one of the three FAB attribute categories.
type Category string

const (
	CategoryF Category = "f"
	CategoryA Category = "a"
	CategoryB Category = "b"
)

// Categories lists the categories in scan order.
var Categories = []Category{CategoryA, CategoryB, CategoryF}

// Subjective reports whether values of the category are subjective.
func (c Category) Subjective() bool {
	return c == CategoryA || c == CategoryB
}

const (
	fullWidthComma = "，"
	fullWidthColon = "："
	asciiColon     = ":"
)

// sentinels mark a cell or an item as intentionally empty.
var sentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"none": {},
	"None": {},
	"无":    {},
}

func isSentinel(s string) bool {
	_, ok := sentinels[strings.TrimSpace(s)]
	return ok
}

// splitItems splits a cell on ASCII and full-width commas and drops empty
// and sentinel items.
func splitItems(cell string) []string {
	items := []string{}
	if isSentinel(cell) {
		return items
	}

	for _, item := range strings.Split(strings.ReplaceAll(cell, fullWidthComma, ","), ",") {
		item = strings.TrimSpace(item)
		if isSentinel(item) {
			continue
		}
		items = append(items, item)
	}

	return items
}

// valueAfter returns the text between the first and second occurrence of
// sep, or the whole item when sep is absent.
func valueAfter(item, sep string) (string, bool) {
	parts := strings.SplitN(item, sep, 3)
	if len(parts) < 2 {
		return item, false
	}
	return strings.TrimSpace(parts[1]), true
}

func appendNonEmpty(values []string, v string) []string {
	if v == "" {
		return values
	}
	return append(values, v)
}

// ParseLabelF parses a human-annotated F cell such as "材质：棉, 颜色：红".
// Full-width colons take precedence over ASCII ones.
func ParseLabelF(cell string) []string {
	values := []string{}
	for _, item := range splitItems(cell) {
		if v, ok := valueAfter(item, fullWidthColon); ok {
			values = appendNonEmpty(values, v)
			continue
		}
		v, _ := valueAfter(item, asciiColon)
		values = appendNonEmpty(values, v)
	}
	return values
}

// ParsePredF parses a model-predicted F cell in "key:value,key:value" form.
func ParsePredF(cell string) []string {
	values := []string{}
	for _, item := range splitItems(cell) {
		v, _ := valueAfter(item, asciiColon)
		values = appendNonEmpty(values, v)
	}
	return values
}

// ParseAB parses an A or B cell. Values are kept verbatim.
func ParseAB(cell string) []string {
	return splitItems(cell)
}
