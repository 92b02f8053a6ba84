package property

import "fmt"

// PropertyError ties an error or warning to the property it was raised for
type PropertyError struct {
	Property string
	Err      error
}

// Error implements the error interface
func (e PropertyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Property, e.Err)
}

// Unwrap returns the underlying error
func (e PropertyError) Unwrap() error {
	return e.Err
}

// MappingResults collects the errors and warnings of one Map call.
// Entries keep the order in which they were recorded.
type MappingResults struct {
	errors   []PropertyError
	warnings []PropertyError
}

// NewMappingResults creates an empty result set
func NewMappingResults() *MappingResults {
	return &MappingResults{}
}

// AddError records an error for the given property
func (r *MappingResults) AddError(property string, err error) {
	r.errors = append(r.errors, PropertyError{Property: property, Err: err})
}

// AddWarning records a warning for the given property
func (r *MappingResults) AddWarning(property string, err error) {
	r.warnings = append(r.warnings, PropertyError{Property: property, Err: err})
}

// Errors returns a copy of all recorded errors
func (r *MappingResults) Errors() []PropertyError {
	return append([]PropertyError(nil), r.errors...)
}

// Warnings returns a copy of all recorded warnings
func (r *MappingResults) Warnings() []PropertyError {
	return append([]PropertyError(nil), r.warnings...)
}

// HasErrors reports whether any error was recorded
func (r *MappingResults) HasErrors() bool {
	return len(r.errors) > 0
}

// HasWarnings reports whether any warning was recorded
func (r *MappingResults) HasWarnings() bool {
	return len(r.warnings) > 0
}

// Error returns the first error recorded for property
func (r *MappingResults) Error(property string) (error, bool) {
	for _, e := range r.errors {
		if e.Property == property {
			return e.Err, true
		}
	}
	return nil, false
}

// HasErrorFor reports whether property has at least one error
func (r *MappingResults) HasErrorFor(property string) bool {
	_, ok := r.Error(property)
	return ok
}
