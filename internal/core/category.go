package core

import "errors"

// Category is one of a fixed, closed set of activities.
type Category string

const (
	Work          Category = "work"
	Sleep         Category = "sleep"
	Rest          Category = "rest"
	Study         Category = "study"
	Entertainment Category = "entertainment"
)

// ErrUnknownCategory is returned when a reply does not name one of the categories.
var ErrUnknownCategory = errors.New("unknown category")

// Categories lists every category in tie-break priority order.
var Categories = []Category{Work, Sleep, Rest, Study, Entertainment}

var categoryNames = map[Category]string{
	Work:          "Work",
	Sleep:         "Sleep",
	Rest:          "Rest",
	Study:         "Study",
	Entertainment: "Entertainment",
}

var categoryIcons = map[Category]string{
	Work:          "💼",
	Sleep:         "😴",
	Rest:          "🎯",
	Study:         "📚",
	Entertainment: "🎮",
}

// categoryLabels maps every accepted reply string to its category. Matching is exact.
var categoryLabels = func() map[string]Category {
	labels := make(map[string]Category, len(Categories)*2)
	for _, c := range Categories {
		labels[c.Name()] = c
		labels[c.Label()] = c
	}
	return labels
}()

// LookupCategory resolves a reply (plain name or button label) to a category.
func LookupCategory(label string) (Category, error) {
	c, ok := categoryLabels[label]
	if !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// ParseCategory resolves the stored identifier ("work", "sleep", ...).
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Name returns the display name, e.g. "Work".
func (c Category) Name() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// Label returns the button label, e.g. "💼 Work".
func (c Category) Label() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon + " " + c.Name()
	}
	return c.Name()
}

// Priority is the tie-break rank; lower sorts first.
func (c Category) Priority() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return len(Categories)
}

// CategoryLabels returns the button labels in priority order.
func CategoryLabels() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Label()
	}
	return out
}
