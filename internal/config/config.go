// Package config resolves kong flags from an optional YAML file.
//
// Keys match flag names. A flag that belongs to a subcommand may also be set
// under the command path, so `habit: {add: {skip-once-in: 3}}` only applies
// to `habit add`, while a top-level `skip-once-in: 3` applies wherever that
// flag exists. Underscores are accepted in place of dashes.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader for YAML documents
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	var f kong.ResolverFunc = func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		raw, ok := lookup(values, commandPath(parent), flag.Name)
		if !ok {
			return nil, nil
		}
		return normalize(raw)
	}
	return f, nil
}

// commandPath lists the command names from the root down to the node owning the flag
func commandPath(parent *kong.Path) []string {
	if parent == nil {
		return nil
	}
	var path []string
	for n := parent.Node(); n != nil; n = n.Parent {
		if n.Type == kong.CommandNode {
			path = append([]string{n.Name}, path...)
		}
	}
	return path
}

// lookup tries the most specific command scope first, then each enclosing one
func lookup(values map[string]any, path []string, name string) (any, bool) {
	for depth := len(path); depth >= 0; depth-- {
		scope, ok := descend(values, path[:depth])
		if !ok {
			continue
		}
		v, ok := field(scope, name)
		if !ok {
			continue
		}
		// a mapping under a flag's name is a command scope, not a value
		if _, isScope := v.(map[string]any); isScope {
			continue
		}
		return v, true
	}
	return nil, false
}

func descend(values map[string]any, path []string) (map[string]any, bool) {
	cur := values
	for _, part := range path {
		v, ok := field(cur, part)
		if !ok {
			return nil, false
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func field(m map[string]any, name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	v, ok := m[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}

// normalize turns YAML values into the string forms kong's mappers accept
func normalize(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("nested values are not supported in lists")
			}
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ","), nil
	case map[string]any:
		return nil, fmt.Errorf("expected a value, found a mapping")
	default:
		return fmt.Sprint(v), nil
	}
}
