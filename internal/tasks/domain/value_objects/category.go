// Package value_objects holds the closed vocabularies and bounded values a
// task is described with.
package value_objects

import (
	"errors"
	"strings"
)

// Category is the area of life a task belongs to. The zero value is invalid.
type Category int

const (
	CategoryWork Category = iota + 1
	CategoryHome
	CategoryStudy
)

var ErrInvalidCategory = errors.New("category must be one of work, home, study")

var categoryCodes = map[Category]string{
	CategoryWork:  "work",
	CategoryHome:  "home",
	CategoryStudy: "study",
}

var categoryLabels = map[Category]string{
	CategoryWork:  "Work",
	CategoryHome:  "Home",
	CategoryStudy: "Study",
}

// Labels used by the first release of the mobile client; stored documents
// may still carry them.
var categoryAliases = map[string]Category{
	"工作": CategoryWork,
	"家庭": CategoryHome,
	"學習": CategoryStudy,
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryHome, CategoryStudy}
}

// ParseCategory accepts a code or label in any case, or a legacy label.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if c, ok := categoryAliases[s]; ok {
		return c, nil
	}
	for c, code := range categoryCodes {
		if strings.EqualFold(s, code) {
			return c, nil
		}
	}
	return 0, ErrInvalidCategory
}

// String returns the stable storage code.
func (c Category) String() string {
	if code, ok := categoryCodes[c]; ok {
		return code
	}
	return "invalid"
}

// Label returns the human-readable name.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "Invalid"
}

func (c Category) IsValid() bool {
	_, ok := categoryCodes[c]
	return ok
}
