package routing

import (
	"os"

	"gopkg.in/yaml.v3"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
)

// routeDefinition is one entry of a routes file:
//
//	routes:
//	  - name: post
//	    method: GET
//	    pattern: /posts/{post:uuid}
//	    defaults:
//	      "@controller": Posts
//	      "@action": show
type routeDefinition struct {
	Name     string            `yaml:"name"`
	Method   string            `yaml:"method"`
	Pattern  string            `yaml:"pattern"`
	Defaults map[string]string `yaml:"defaults"`
}

type routesDocument struct {
	Routes []yaml.Node `yaml:"routes"`
}

// LoadRoutes reads a YAML routes file
func LoadRoutes(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, axonerrors.WrapFileSystemError("read", path, err)
	}
	return parseRoutes(path, data)
}

// ParseRoutes parses a YAML routes document
func ParseRoutes(data []byte) (Table, error) {
	return parseRoutes("<routes>", data)
}

func parseRoutes(source string, data []byte) (Table, error) {
	var doc routesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, axonerrors.WrapConfigurationError("routes", "parse", err).
			WithLocation(axonerrors.SourceLocation{File: source})
	}

	table := make(Table, 0, len(doc.Routes))
	names := make(map[string]int)
	errs := axonerrors.NewMultipleErrors()

	for i := range doc.Routes {
		node := &doc.Routes[i]
		loc := axonerrors.SourceLocation{File: source, Line: node.Line, Column: node.Column}

		var def routeDefinition
		if err := node.Decode(&def); err != nil {
			errs.Add(axonerrors.WrapConfigurationError("routes", "decode", err).WithLocation(loc))
			continue
		}
		if def.Name == "" {
			errs.Add(axonerrors.Newf(axonerrors.RoutingErrorCode, "route #%d has no name", i+1).WithLocation(loc))
			continue
		}
		if line, dup := names[def.Name]; dup {
			errs.Add(axonerrors.Newf(axonerrors.RoutingErrorCode, "route %q is already defined on line %d", def.Name, line).
				WithLocation(loc))
			continue
		}
		names[def.Name] = node.Line

		route, err := NewRoute(def.Name, def.Method, def.Pattern, def.Defaults)
		if err != nil {
			errs.Add(axonerrors.Wrapf(axonerrors.RoutingErrorCode, err, "route %q", def.Name).WithLocation(loc))
			continue
		}
		table = append(table, route)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return table, nil
}
