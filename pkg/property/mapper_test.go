package property

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapTarget is a Target backed by a map. Keys listed in ints are converted
// with strconv.Atoi; "n" is an alias for "number".
type mapTarget struct {
	values map[string]any
	ints   map[string]bool
}

func newMapTarget(ints ...string) *mapTarget {
	t := &mapTarget{values: make(map[string]any), ints: make(map[string]bool)}
	for _, name := range ints {
		t.ints[name] = true
	}
	return t
}

func (t *mapTarget) PropertyName(name string) string {
	if name == "n" {
		return "number"
	}
	return name
}

func (t *mapTarget) SetProperty(name string, value any) error {
	name = t.PropertyName(name)
	if t.ints[name] {
		s, _ := value.(string)
		i, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("not an integer")
		}
		t.values[name] = i
		return nil
	}
	t.values[name] = value
	return nil
}

func TestMapper_NoTarget(t *testing.T) {
	m := NewMapper()
	assert.ErrorIs(t, m.Map(map[string]any{"a": "b"}), ErrNoTarget)
}

func TestMapper_MapsValues(t *testing.T) {
	target := newMapTarget("number")
	m := NewMapper()
	m.SetTarget(target)

	require.NoError(t, m.Map(map[string]any{"title": "Hello", "number": "42"}))

	assert.Equal(t, "Hello", target.values["title"])
	assert.Equal(t, 42, target.values["number"])
	assert.False(t, m.MappingResults().HasErrors())
}

func TestMapper_RecordsConversionErrorsUnderCanonicalName(t *testing.T) {
	target := newMapTarget("number")
	m := NewMapper()
	m.SetTarget(target)

	require.NoError(t, m.Map(map[string]any{"n": "abc"}))

	results := m.MappingResults()
	require.True(t, results.HasErrors())
	err, ok := results.Error("number")
	require.True(t, ok)
	assert.EqualError(t, err, "not an integer")
	assert.NotContains(t, target.values, "number")
}

func TestMapper_AllowedProperties(t *testing.T) {
	target := newMapTarget()
	m := NewMapper()
	m.SetTarget(target)
	m.SetAllowedProperties([]string{"title"})

	require.NoError(t, m.Map(map[string]any{"title": "a", "admin": "true"}))

	assert.Equal(t, "a", target.values["title"])
	assert.NotContains(t, target.values, "admin")
	warnings := m.MappingResults().Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "admin", warnings[0].Property)

	m.SetAllowedProperties(nil)
	require.NoError(t, m.Map(map[string]any{"admin": "true"}))
	assert.Equal(t, "true", target.values["admin"])
}

func TestMapper_FiltersAndEditors(t *testing.T) {
	target := newMapTarget()
	m := NewMapper()
	m.SetTarget(target)
	m.RegisterFilter(TrimFilter, "")
	m.RegisterFilter(LowercaseFilter, "slug")
	m.RegisterPropertyEditor(TimeEditor{}, "published", "2006-01-02")

	require.NoError(t, m.Map(map[string]any{
		"slug":      "  Hello-World ",
		"published": " 2024-03-01",
		"title":     " Keep Case ",
	}))

	assert.Equal(t, "hello-world", target.values["slug"])
	assert.Equal(t, "Keep Case", target.values["title"])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), target.values["published"])
}

func TestMapper_FailingFilterSkipsProperty(t *testing.T) {
	target := newMapTarget()
	m := NewMapper()
	m.SetTarget(target)
	m.RegisterFilter(FilterFunc(func(any) (any, error) {
		return nil, errors.New("rejected")
	}), "title")

	require.NoError(t, m.Map(map[string]any{"title": "x"}))

	assert.NotContains(t, target.values, "title")
	assert.True(t, m.MappingResults().HasErrorFor("title"))
}

func TestMapper_ValidatorErrors(t *testing.T) {
	target := newMapTarget("number")
	m := NewMapper()
	m.SetTarget(target)
	m.RegisterValidator(ValidatorFunc(func(any) []PropertyError {
		return []PropertyError{
			{Property: "number", Err: errors.New("required")},
			{Property: "title", Err: errors.New("too short")},
		}
	}))

	require.NoError(t, m.Map(map[string]any{"number": "x", "title": "a"}))

	results := m.MappingResults()
	errs := results.Errors()
	require.Len(t, errs, 2)
	// the conversion error wins over the validator finding for the same property
	assert.Equal(t, "number", errs[0].Property)
	assert.EqualError(t, errs[0].Err, "not an integer")
	assert.Equal(t, "title", errs[1].Property)
	assert.EqualError(t, errs[1], "title: too short")
}

func TestMapper_ResultsResetPerMap(t *testing.T) {
	target := newMapTarget("number")
	m := NewMapper()
	m.SetTarget(target)

	require.NoError(t, m.Map(map[string]any{"number": "x"}))
	require.True(t, m.MappingResults().HasErrors())

	require.NoError(t, m.Map(map[string]any{"number": "1"}))
	assert.False(t, m.MappingResults().HasErrors())
}
