package locale

import (
	"fmt"

	"golang.org/x/text/language"
)

// Detector picks the best available locale for a client
type Detector struct {
	locales []*Locale
	matcher language.Matcher
}

// NewDetector creates a detector over the available locales. fallback is
// returned whenever nothing matches and is always considered available.
func NewDetector(fallback *Locale, available ...*Locale) *Detector {
	locales := []*Locale{fallback}
	for _, l := range available {
		if !l.Equal(fallback) {
			locales = append(locales, l)
		}
	}

	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.Tag()
	}

	return &Detector{
		locales: locales,
		matcher: language.NewMatcher(tags),
	}
}

// Fallback returns the locale used when nothing matches
func (d *Detector) Fallback() *Locale {
	return d.locales[0]
}

// Available returns all locales the detector can return
func (d *Detector) Available() []*Locale {
	return append([]*Locale(nil), d.locales...)
}

// DetectFromAcceptLanguage matches the value of an Accept-Language header
func (d *Detector) DetectFromAcceptLanguage(header string) *Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return d.Fallback()
	}
	return d.match(tags...)
}

// DetectFromIdentifier parses identifier and returns the closest available
// locale. A malformed identifier yields an *InvalidLocaleIdentifierError.
func (d *Detector) DetectFromIdentifier(identifier string) (*Locale, error) {
	l, err := New(identifier)
	if err != nil {
		return nil, fmt.Errorf("detect locale: %w", err)
	}
	for candidate := l; candidate != nil; candidate = candidate.Parent() {
		for _, available := range d.locales {
			if available.Equal(candidate) {
				return available, nil
			}
		}
	}
	return d.match(l.Tag()), nil
}

func (d *Detector) match(tags ...language.Tag) *Locale {
	_, idx, confidence := d.matcher.Match(tags...)
	if confidence == language.No {
		return d.Fallback()
	}
	return d.locales[idx]
}
