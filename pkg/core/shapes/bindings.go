// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Bindings maps symbolic dimension names to concrete values.
// Used to resolve symbolic shapes to concrete shapes, once the values are known.
type Bindings map[string]int

// Key returns a canonical string representation for map keying.
// Format: "name1=val1,name2=val2" with names sorted alphabetically.
// Returns empty string for empty or nil bindings.
func (b Bindings) Key() string {
	if len(b) == 0 {
		return ""
	}
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, b[name])
	}
	return strings.Join(parts, ",")
}

// Merge combines bindings from another Bindings into this one.
// Returns an error if there are conflicting values for the same name.
func (b Bindings) Merge(other Bindings) error {
	for name, val := range other {
		if existing, ok := b[name]; ok && existing != val {
			return errors.Errorf("conflicting values for symbolic dimension %q: %d vs %d", name, existing, val)
		}
		b[name] = val
	}
	return nil
}

// ParseBinding parses a "name=value" string, as given in command-line flags.
func ParseBinding(text string) (Bindings, error) {
	name, valueStr, found := strings.Cut(text, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return nil, errors.Errorf("invalid binding %q, expected format \"name=value\"", text)
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid value in binding %q", text)
	}
	if value < 0 {
		return nil, errors.Errorf("invalid binding %q, dimensions cannot be negative", text)
	}
	return Bindings{name: value}, nil
}

// Resolve replaces symbolic dimensions with the values from bindings, folding arithmetic expressions.
// Symbols without a binding remain symbolic. Tuples are resolved element-wise.
func (s Shape) Resolve(bindings Bindings) Shape {
	result := s.Clone()
	if len(bindings) == 0 {
		return result
	}
	for ii, element := range result.TupleShapes {
		result.TupleShapes[ii] = element.Resolve(bindings)
	}
	for axis, dim := range result.Dimensions {
		result.Dimensions[axis] = dim.Resolve(bindings)
	}
	return result
}
