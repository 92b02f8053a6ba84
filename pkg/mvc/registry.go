package mvc

import (
	"sort"
	"strings"
	"sync"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
)

// ControllerFactory builds a fresh controller for one dispatch pass
type ControllerFactory func() Controller

// ControllerInfo contains metadata about a registered controller
type ControllerInfo struct {
	// PackageKey is the package the controller was registered under
	PackageKey string

	// Name is the controller name used for routing
	Name string

	// Actions lists the action names when the controller exposes them
	Actions []string

	// SupportedRequestTypes lists the request tags the controller accepts
	SupportedRequestTypes []RequestType
}

// ControllerRegistry maps package keys and controller names to factories
type ControllerRegistry interface {
	// Register adds a controller factory. Registering the same package and
	// name twice fails.
	Register(packageKey, name string, factory ControllerFactory) error

	// Resolve builds the controller registered under packageKey and name
	Resolve(packageKey, name string) (Controller, error)

	// Controllers returns all registered controllers sorted by package and name
	Controllers() []ControllerInfo
}

type controllerEntry struct {
	packageKey string
	name       string
	factory    ControllerFactory
}

// InMemoryControllerRegistry implements ControllerRegistry with a map.
// Lookups ignore case.
type InMemoryControllerRegistry struct {
	mu          sync.RWMutex
	controllers map[string]controllerEntry
}

// NewInMemoryControllerRegistry creates an empty registry
func NewInMemoryControllerRegistry() *InMemoryControllerRegistry {
	return &InMemoryControllerRegistry{
		controllers: make(map[string]controllerEntry),
	}
}

func registryKey(packageKey, name string) string {
	return strings.ToLower(packageKey) + "/" + strings.ToLower(name)
}

func (r *InMemoryControllerRegistry) Register(packageKey, name string, factory ControllerFactory) error {
	if name == "" {
		return axonerrors.WrapRegisterError("controller", packageKey+"/"+name,
			axonerrors.New(axonerrors.RegistrationErrorCode, "controller name must not be empty"))
	}
	if factory == nil {
		return axonerrors.WrapRegisterError("controller", packageKey+"/"+name,
			axonerrors.New(axonerrors.RegistrationErrorCode, "controller factory must not be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(packageKey, name)
	if _, exists := r.controllers[key]; exists {
		return axonerrors.WrapRegisterError("controller", packageKey+"/"+name,
			axonerrors.New(axonerrors.RegistrationErrorCode, "controller is already registered"))
	}
	r.controllers[key] = controllerEntry{
		packageKey: packageKey,
		name:       name,
		factory:    factory,
	}
	return nil
}

func (r *InMemoryControllerRegistry) Resolve(packageKey, name string) (Controller, error) {
	r.mu.RLock()
	entry, ok := r.controllers[registryKey(packageKey, name)]
	r.mu.RUnlock()
	if !ok {
		return nil, NewNoSuchControllerError(packageKey, name)
	}
	return entry.factory(), nil
}

func (r *InMemoryControllerRegistry) Controllers() []ControllerInfo {
	r.mu.RLock()
	entries := make([]controllerEntry, 0, len(r.controllers))
	for _, entry := range r.controllers {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].packageKey != entries[j].packageKey {
			return entries[i].packageKey < entries[j].packageKey
		}
		return entries[i].name < entries[j].name
	})

	result := make([]ControllerInfo, 0, len(entries))
	for _, entry := range entries {
		info := ControllerInfo{PackageKey: entry.packageKey, Name: entry.name}
		controller := entry.factory()
		if lister, ok := controller.(interface{ Actions() []string }); ok {
			info.Actions = lister.Actions()
		}
		if typed, ok := controller.(interface{ SupportedRequestTypes() []RequestType }); ok {
			info.SupportedRequestTypes = typed.SupportedRequestTypes()
		}
		result = append(result, info)
	}
	return result
}

// DefaultControllerRegistry is the global controller registry
var DefaultControllerRegistry ControllerRegistry = NewInMemoryControllerRegistry()

// RegisterController registers a factory with the global registry
func RegisterController(packageKey, name string, factory ControllerFactory) error {
	return DefaultControllerRegistry.Register(packageKey, name, factory)
}
