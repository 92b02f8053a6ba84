package property

import (
	"fmt"
	"time"
)

// PropertyEditor converts a raw value into the representation the target
// expects. format selects the input format and may be empty.
type PropertyEditor interface {
	SetAs(format string, value any) (any, error)
}

// EditorFunc allows a plain function to act as a PropertyEditor
type EditorFunc func(format string, value any) (any, error)

// SetAs calls f
func (f EditorFunc) SetAs(format string, value any) (any, error) {
	return f(format, value)
}

// TimeEditor parses strings into time.Time values. The format is a Go
// time layout; Layout is used when the format is empty and RFC 3339 when
// both are.
type TimeEditor struct {
	Layout   string
	Location *time.Location
}

// SetAs parses value with the selected layout
func (e TimeEditor) SetAs(format string, value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		layout := format
		if layout == "" {
			layout = e.Layout
		}
		if layout == "" {
			layout = time.RFC3339
		}
		loc := e.Location
		if loc == nil {
			loc = time.UTC
		}
		t, err := time.ParseInLocation(layout, v, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q for layout %q", v, layout)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to time", value)
	}
}
