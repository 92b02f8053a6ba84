package mvc

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TypeConverter turns raw string input into a typed argument value
type TypeConverter struct {
	TypeName string
	GoType   reflect.Type
	Parse    func(raw string) (any, error)
}

var (
	convertersMu sync.RWMutex

	// BuiltinConverters contains the converters for all built-in argument types
	BuiltinConverters = map[string]TypeConverter{
		"string": {
			TypeName: "string",
			GoType:   reflect.TypeFor[string](),
			Parse:    func(raw string) (any, error) { return raw, nil },
		},
		"int": {
			TypeName: "int",
			GoType:   reflect.TypeFor[int](),
			Parse:    func(raw string) (any, error) { return strconv.Atoi(raw) },
		},
		"float64": {
			TypeName: "float64",
			GoType:   reflect.TypeFor[float64](),
			Parse:    func(raw string) (any, error) { return strconv.ParseFloat(raw, 64) },
		},
		"float32": {
			TypeName: "float32",
			GoType:   reflect.TypeFor[float32](),
			Parse: func(raw string) (any, error) {
				val, err := strconv.ParseFloat(raw, 32)
				if err != nil {
					return nil, err
				}
				return float32(val), nil
			},
		},
		"bool": {
			TypeName: "bool",
			GoType:   reflect.TypeFor[bool](),
			Parse:    func(raw string) (any, error) { return strconv.ParseBool(raw) },
		},
		"uuid.UUID": {
			TypeName: "uuid.UUID",
			GoType:   reflect.TypeFor[uuid.UUID](),
			Parse:    func(raw string) (any, error) { return uuid.Parse(raw) },
		},
		"time.Time": {
			TypeName: "time.Time",
			GoType:   reflect.TypeFor[time.Time](),
			Parse:    func(raw string) (any, error) { return time.Parse(time.RFC3339, raw) },
		},
	}

	// ConverterAliases maps convenient aliases to their full type names
	ConverterAliases = map[string]string{
		"UUID":    "uuid.UUID",
		"uuid":    "uuid.UUID",
		"float":   "float64",
		"double":  "float64",
		"integer": "int",
		"boolean": "bool",
		"time":    "time.Time",
	}
)

// RegisterConverter adds a converter for a custom argument type
func RegisterConverter(converter TypeConverter) error {
	if converter.TypeName == "" || converter.Parse == nil {
		return fmt.Errorf("converter needs a type name and a parse function")
	}

	convertersMu.Lock()
	defer convertersMu.Unlock()

	if _, exists := BuiltinConverters[converter.TypeName]; exists {
		return fmt.Errorf("converter for type %q is already registered", converter.TypeName)
	}
	BuiltinConverters[converter.TypeName] = converter
	return nil
}

// ResolveTypeAlias resolves a type alias to its actual type name
func ResolveTypeAlias(typeName string) string {
	if actualType, isAlias := ConverterAliases[typeName]; isAlias {
		return actualType
	}
	return typeName
}

// GetConverter returns the converter for typeName, checking aliases first
func GetConverter(typeName string) (TypeConverter, bool) {
	convertersMu.RLock()
	defer convertersMu.RUnlock()

	converter, exists := BuiltinConverters[ResolveTypeAlias(typeName)]
	return converter, exists
}

// IsBuiltinType checks if a type has a converter, including aliases
func IsBuiltinType(typeName string) bool {
	_, exists := GetConverter(typeName)
	return exists
}

// GetAllBuiltinTypes returns all convertible type names including aliases, sorted
func GetAllBuiltinTypes() []string {
	convertersMu.RLock()
	defer convertersMu.RUnlock()

	types := make([]string, 0, len(BuiltinConverters)+len(ConverterAliases))
	for typeName := range BuiltinConverters {
		types = append(types, typeName)
	}
	for alias := range ConverterAliases {
		types = append(types, alias)
	}
	sort.Strings(types)
	return types
}

// ConvertValue converts value to dataType. An empty data type or "any"
// keeps the value as it is. Values that already have the target Go type
// pass through; string slices are reduced to their first element.
func ConvertValue(dataType string, value any) (any, error) {
	if dataType == "" || dataType == "any" || value == nil {
		return value, nil
	}

	converter, ok := GetConverter(dataType)
	if !ok {
		return nil, fmt.Errorf("no converter for type %q", dataType)
	}

	if converter.GoType != nil && reflect.TypeOf(value) == converter.GoType {
		return value, nil
	}

	switch v := value.(type) {
	case string:
		return converter.Parse(v)
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty value for type %q", dataType)
		}
		return converter.Parse(v[0])
	case fmt.Stringer:
		return converter.Parse(v.String())
	default:
		return converter.Parse(fmt.Sprint(v))
	}
}
