package mvc

import (
	"github.com/toyz/axonmvc/pkg/property"
)

// Argument is a named input slot declared by a controller and filled from
// the raw request arguments.
type Argument struct {
	name         string
	shortName    string
	dataType     string
	required     bool
	defaultValue any
	value        any
	isSet        bool
	validation   string
	filter       property.Filter
	editor       property.PropertyEditor
	editorFormat string
	valid        bool
	errors       []error
	warnings     []error
}

// NewArgument creates a valid, unset argument
func NewArgument(name, dataType string) *Argument {
	return &Argument{
		name:     name,
		dataType: dataType,
		valid:    true,
	}
}

func (a *Argument) Name() string      { return a.name }
func (a *Argument) ShortName() string { return a.shortName }
func (a *Argument) DataType() string  { return a.dataType }
func (a *Argument) IsRequired() bool  { return a.required }
func (a *Argument) DefaultValue() any { return a.defaultValue }
func (a *Argument) Validation() string {
	return a.validation
}

// SetShortName sets an alternative name the argument can be addressed by
func (a *Argument) SetShortName(shortName string) *Argument {
	a.shortName = shortName
	return a
}

func (a *Argument) SetRequired(required bool) *Argument {
	a.required = required
	return a
}

// SetDefaultValue sets the value reported while the argument is unset
func (a *Argument) SetDefaultValue(value any) *Argument {
	a.defaultValue = value
	return a
}

// SetValidation sets a rule in go-playground/validator tag syntax, e.g. "min=3,max=80"
func (a *Argument) SetValidation(rule string) *Argument {
	a.validation = rule
	return a
}

func (a *Argument) SetFilter(filter property.Filter) *Argument {
	a.filter = filter
	return a
}

func (a *Argument) Filter() property.Filter {
	return a.filter
}

// SetPropertyEditor sets the editor that converts raw input, with its input format
func (a *Argument) SetPropertyEditor(editor property.PropertyEditor, format string) *Argument {
	a.editor = editor
	a.editorFormat = format
	return a
}

func (a *Argument) PropertyEditor() property.PropertyEditor {
	return a.editor
}

func (a *Argument) PropertyEditorInputFormat() string {
	return a.editorFormat
}

// SetValue converts value to the argument's data type and stores it. On
// failure the previous value is kept.
func (a *Argument) SetValue(value any) error {
	converted, err := ConvertValue(a.dataType, value)
	if err != nil {
		return newArgumentConversionError(a.name, a.dataType, err)
	}
	a.value = converted
	a.isSet = true
	return nil
}

// Value returns the mapped value, or the default value while unset
func (a *Argument) Value() any {
	if !a.isSet {
		return a.defaultValue
	}
	return a.value
}

// IsSet reports whether a value was mapped onto the argument
func (a *Argument) IsSet() bool {
	return a.isSet
}

func (a *Argument) IsValid() bool {
	return a.valid
}

func (a *Argument) SetValidity(valid bool) *Argument {
	a.valid = valid
	return a
}

func (a *Argument) AddError(err error) {
	a.errors = append(a.errors, err)
}

func (a *Argument) Errors() []error {
	return append([]error(nil), a.errors...)
}

func (a *Argument) AddWarning(err error) {
	a.warnings = append(a.warnings, err)
}

func (a *Argument) Warnings() []error {
	return append([]error(nil), a.warnings...)
}

// Arguments is an ordered collection of arguments, addressable by name and
// by short name. It is the target of the property mapper.
type Arguments struct {
	order  []string
	byName map[string]*Argument
}

// NewArguments creates an empty collection
func NewArguments() *Arguments {
	return &Arguments{
		byName: make(map[string]*Argument),
	}
}

// Add appends arg. Names and short names must be unique across the
// collection at the time the argument is added.
func (a *Arguments) Add(arg *Argument) error {
	if arg == nil || arg.name == "" {
		return NewInvalidArgumentNameError("", "argument name must not be empty")
	}
	if a.Has(arg.name) {
		return NewInvalidArgumentNameError(arg.name, "an argument with this name or short name already exists")
	}
	if arg.shortName != "" {
		if arg.shortName == arg.name {
			return NewInvalidArgumentNameError(arg.shortName, "short name equals the argument name")
		}
		if a.Has(arg.shortName) {
			return NewInvalidArgumentNameError(arg.shortName, "short name clashes with an existing argument")
		}
	}

	a.order = append(a.order, arg.name)
	a.byName[arg.name] = arg
	return nil
}

// New declares and adds an argument of the given data type
func (a *Arguments) New(name, dataType string) (*Argument, error) {
	arg := NewArgument(name, dataType)
	if err := a.Add(arg); err != nil {
		return nil, err
	}
	return arg, nil
}

// Get returns the argument addressed by name or short name
func (a *Arguments) Get(name string) (*Argument, bool) {
	arg, ok := a.byName[a.PropertyName(name)]
	return arg, ok
}

func (a *Arguments) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Remove deletes the argument addressed by name or short name
func (a *Arguments) Remove(name string) bool {
	arg, ok := a.Get(name)
	if !ok {
		return false
	}
	delete(a.byName, arg.name)
	for i, n := range a.order {
		if n == arg.name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns all argument names in declaration order
func (a *Arguments) Names() []string {
	return append(make([]string, 0, len(a.order)), a.order...)
}

// ShortNames returns all declared short names in declaration order
func (a *Arguments) ShortNames() []string {
	var names []string
	for _, name := range a.order {
		if short := a.byName[name].shortName; short != "" {
			names = append(names, short)
		}
	}
	return names
}

// All returns the arguments in declaration order
func (a *Arguments) All() []*Argument {
	out := make([]*Argument, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.byName[name])
	}
	return out
}

func (a *Arguments) Len() int {
	return len(a.order)
}

// Values returns the current value of every argument keyed by name
func (a *Arguments) Values() map[string]any {
	values := make(map[string]any, len(a.order))
	for _, arg := range a.All() {
		values[arg.name] = arg.Value()
	}
	return values
}

// PropertyName resolves a short name to the argument name. Full names
// take precedence over short names.
func (a *Arguments) PropertyName(name string) string {
	if _, ok := a.byName[name]; ok {
		return name
	}
	for _, full := range a.order {
		if a.byName[full].shortName == name && name != "" {
			return full
		}
	}
	return name
}

// SetProperty sets the value of the argument addressed by name or short name
func (a *Arguments) SetProperty(name string, value any) error {
	arg, ok := a.Get(name)
	if !ok {
		return NewInvalidArgumentNameError(name, "no such argument")
	}
	return arg.SetValue(value)
}

// Property returns the value of the argument addressed by name or short name
func (a *Arguments) Property(name string) (any, bool) {
	arg, ok := a.Get(name)
	if !ok {
		return nil, false
	}
	return arg.Value(), true
}

// Valid reports whether every argument is valid
func (a *Arguments) Valid() bool {
	for _, arg := range a.byName {
		if !arg.valid {
			return false
		}
	}
	return true
}
