// Package property maps raw key/value input onto a target's properties,
// running filters, property editors and validators on the way.
package property

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrNoTarget is returned by Map when no target has been set
var ErrNoTarget = errors.New("property mapper has no target")

// Target receives mapped values
type Target interface {
	SetProperty(name string, value any) error
}

// PropertyNamer is implemented by targets that know aliases for their
// properties. Results are recorded under the canonical name.
type PropertyNamer interface {
	PropertyName(name string) string
}

// Validator inspects a target after all properties have been set
type Validator interface {
	Validate(target any) []PropertyError
}

// ValidatorFunc allows a plain function to act as a Validator
type ValidatorFunc func(target any) []PropertyError

// Validate calls f
func (f ValidatorFunc) Validate(target any) []PropertyError {
	return f(target)
}

type editorRegistration struct {
	editor PropertyEditor
	format string
}

// Mapper copies source values onto a Target. A Mapper is configured for
// one target at a time and is not safe for concurrent use.
type Mapper struct {
	target     Target
	filters    map[string][]Filter
	editors    map[string]editorRegistration
	validators []Validator
	allowed    map[string]struct{}
	results    *MappingResults
	logger     *slog.Logger
}

// MapperOption configures a Mapper
type MapperOption func(*Mapper)

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) MapperOption {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// NewMapper creates a mapper with no target and no restrictions
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		filters: make(map[string][]Filter),
		editors: make(map[string]editorRegistration),
		results: NewMappingResults(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetTarget sets the object that receives mapped values
func (m *Mapper) SetTarget(target Target) {
	m.target = target
}

// RegisterFilter adds a filter for property. An empty property name
// registers the filter for every property.
func (m *Mapper) RegisterFilter(filter Filter, property string) {
	m.filters[property] = append(m.filters[property], filter)
}

// RegisterPropertyEditor sets the editor used to convert the value of property
func (m *Mapper) RegisterPropertyEditor(editor PropertyEditor, property, format string) {
	m.editors[property] = editorRegistration{editor: editor, format: format}
}

// RegisterValidator adds a validator that runs after all properties are set
func (m *Mapper) RegisterValidator(validator Validator) {
	m.validators = append(m.validators, validator)
}

// SetAllowedProperties restricts mapping to the given names. A nil list
// lifts the restriction, an empty one allows nothing.
func (m *Mapper) SetAllowedProperties(names []string) {
	if names == nil {
		m.allowed = nil
		return
	}
	m.allowed = make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" {
			m.allowed[name] = struct{}{}
		}
	}
}

// Map copies every allowed entry of source onto the target. Per-property
// failures are recorded in the mapping results; the returned error is only
// set when mapping could not run at all.
func (m *Mapper) Map(source map[string]any) error {
	if m.target == nil {
		return ErrNoTarget
	}
	m.results = NewMappingResults()

	keys := make([]string, 0, len(source))
	for key := range source {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := m.canonical(key)
		if !m.isAllowed(key) {
			m.results.AddWarning(name, fmt.Errorf("property %q is not allowed", key))
			continue
		}

		value, err := m.convert(key, name, source[key])
		if err != nil {
			m.results.AddError(name, err)
			continue
		}

		if err := m.target.SetProperty(key, value); err != nil {
			m.results.AddError(name, err)
			continue
		}
		m.logger.Debug("mapped property", "property", name)
	}

	for _, validator := range m.validators {
		for _, perr := range validator.Validate(m.target) {
			if m.results.HasErrorFor(perr.Property) {
				continue
			}
			m.results.AddError(perr.Property, perr.Err)
		}
	}

	return nil
}

// MappingResults returns the results of the last Map call
func (m *Mapper) MappingResults() *MappingResults {
	return m.results
}

func (m *Mapper) convert(key, name string, value any) (any, error) {
	var err error
	for _, filter := range m.filtersFor(key, name) {
		if value, err = filter.Filter(value); err != nil {
			return nil, err
		}
	}

	reg, ok := m.editors[key]
	if !ok {
		reg, ok = m.editors[name]
	}
	if ok {
		if value, err = reg.editor.SetAs(reg.format, value); err != nil {
			return nil, err
		}
	}
	return value, nil
}

func (m *Mapper) filtersFor(key, name string) []Filter {
	filters := append([]Filter(nil), m.filters[""]...)
	filters = append(filters, m.filters[name]...)
	if key != name {
		filters = append(filters, m.filters[key]...)
	}
	return filters
}

func (m *Mapper) isAllowed(key string) bool {
	if m.allowed == nil {
		return true
	}
	_, ok := m.allowed[key]
	return ok
}

func (m *Mapper) canonical(key string) string {
	if namer, ok := m.target.(PropertyNamer); ok {
		return namer.PropertyName(key)
	}
	return key
}
