package property

import (
	"strings"

	"golang.org/x/net/html"
)

// Filter transforms a raw value before it reaches the target
type Filter interface {
	Filter(value any) (any, error)
}

// FilterFunc allows a plain function to act as a Filter
type FilterFunc func(value any) (any, error)

// Filter calls f
func (f FilterFunc) Filter(value any) (any, error) {
	return f(value)
}

// StringFilter builds a Filter that applies fn to string values and to
// every element of string slices. Other values pass through untouched.
func StringFilter(fn func(string) string) Filter {
	return FilterFunc(func(value any) (any, error) {
		switch v := value.(type) {
		case string:
			return fn(v), nil
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				out[i] = fn(s)
			}
			return out, nil
		default:
			return value, nil
		}
	})
}

var (
	// TrimFilter removes leading and trailing white space
	TrimFilter = StringFilter(strings.TrimSpace)

	// LowercaseFilter lowercases strings
	LowercaseFilter = StringFilter(strings.ToLower)

	// StripTagsFilter drops markup and keeps the text content
	StripTagsFilter = StringFilter(stripTags)
)

func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
