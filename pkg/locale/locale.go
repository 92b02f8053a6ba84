// Package locale parses and matches locale identifiers such as "de_DE" or
// "zh_Hant_TW".
package locale

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// identifierPattern accepts language[_Script][_REGION][_variant], with
// either "_" or "-" as separator.
var identifierPattern = regexp.MustCompile(
	`^([a-zA-Z]{2,3})(?:[-_]([a-zA-Z]{4}))?(?:[-_]([a-zA-Z]{2}|[0-9]{3}))?(?:[-_]([a-zA-Z0-9]{5,8}|[0-9][a-zA-Z0-9]{3}))?$`,
)

// Locale is a parsed locale identifier
type Locale struct {
	language string
	script   string
	region   string
	variant  string
	tag      language.Tag
}

// New parses identifier. It returns an *InvalidLocaleIdentifierError when
// the identifier is malformed or unknown to the CLDR tables.
func New(identifier string) (*Locale, error) {
	m := identifierPattern.FindStringSubmatch(identifier)
	if m == nil {
		return nil, NewInvalidLocaleIdentifierError(identifier, nil)
	}

	l := &Locale{
		language: strings.ToLower(m[1]),
		script:   titleCase(m[2]),
		region:   strings.ToUpper(m[3]),
		variant:  strings.ToLower(m[4]),
	}

	tag, err := language.Parse(l.bcp47())
	if err != nil {
		return nil, NewInvalidLocaleIdentifierError(identifier, err)
	}
	l.tag = tag
	return l, nil
}

// MustNew is like New but panics on an invalid identifier. It is meant for
// package-level defaults.
func MustNew(identifier string) *Locale {
	l, err := New(identifier)
	if err != nil {
		panic(err)
	}
	return l
}

// Language returns the lowercase language subtag
func (l *Locale) Language() string { return l.language }

// Script returns the title-cased script subtag, if any
func (l *Locale) Script() string { return l.script }

// Region returns the uppercase region subtag, if any
func (l *Locale) Region() string { return l.region }

// Variant returns the variant subtag, if any
func (l *Locale) Variant() string { return l.variant }

// Tag returns the BCP 47 tag
func (l *Locale) Tag() language.Tag { return l.tag }

// String returns the identifier in underscore form, e.g. "de_DE"
func (l *Locale) String() string {
	return strings.Join(l.parts(), "_")
}

// Parent returns the locale with the most specific subtag removed, or nil
// for a bare language.
func (l *Locale) Parent() *Locale {
	parent := *l
	switch {
	case parent.variant != "":
		parent.variant = ""
	case parent.region != "":
		parent.region = ""
	case parent.script != "":
		parent.script = ""
	default:
		return nil
	}
	tag, err := language.Parse(parent.bcp47())
	if err != nil {
		return nil
	}
	parent.tag = tag
	return &parent
}

// Equal reports whether both locales have the same identifier
func (l *Locale) Equal(other *Locale) bool {
	return other != nil && l.String() == other.String()
}

func (l *Locale) parts() []string {
	parts := []string{l.language}
	for _, p := range []string{l.script, l.region, l.variant} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func (l *Locale) bcp47() string {
	return strings.Join(l.parts(), "-")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
