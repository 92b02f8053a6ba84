package locale

import "fmt"

// Editor is a property editor that turns identifiers into *Locale values.
// When Detector is set the result is narrowed to an available locale.
type Editor struct {
	Detector *Detector
}

// SetAs converts value. The format argument is ignored.
func (e Editor) SetAs(_ string, value any) (any, error) {
	switch v := value.(type) {
	case *Locale:
		return v, nil
	case string:
		if e.Detector != nil {
			return e.Detector.DetectFromIdentifier(v)
		}
		return New(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to a locale", value)
	}
}
