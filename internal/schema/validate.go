package schema

import (
	"fmt"
	"reflect"
)

// MismatchError reports a structural validation failure at a specific path.
// Its Error() format is "<path>: expected <type>, got <value-descriptor>",
// matching the engine's required error message shape.
type MismatchError struct {
	Path     Path
	Expected Type
	Actual   any
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Path.String(), e.Reason)
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Path.String(), Describe(e.Expected), describeValue(e.Actual))
}

func missingField(path Path, field string) error {
	return &MismatchError{
		Path:   path.Field(field),
		Reason: "missing required field",
	}
}

// Validate checks value against t, returning a *MismatchError describing the
// first violation found, or nil if value conforms.
func Validate(value any, t Type, path Path) error {
	switch typ := t.(type) {
	case Any, nil:
		return nil
	case Primitive:
		return validatePrimitive(value, typ, path)
	case Array:
		return validateArray(value, typ, path)
	case Mapping:
		return validateMapping(value, typ, path)
	case Shape:
		return validateShape(value, typ, path)
	case Optional:
		if value == nil {
			return nil
		}
		return Validate(value, typ.Elem, path)
	case Enum:
		return validateEnum(value, typ, path)
	case Union:
		return validateUnion(value, typ, path)
	default:
		return &MismatchError{Path: path, Reason: fmt.Sprintf("unknown type descriptor %T", t)}
	}
}

func validatePrimitive(value any, t Primitive, path Path) error {
	ok := false
	switch t.Class {
	case ClassString:
		_, ok = value.(string)
	case ClassInt:
		switch value.(type) {
		case int, int8, int16, int32, int64:
			ok = true
		}
	case ClassFloat:
		switch value.(type) {
		case float32, float64:
			ok = true
		}
	case ClassBool:
		_, ok = value.(bool)
	case ClassSymbol:
		_, ok = value.(string)
	}
	if !ok {
		return &MismatchError{Path: path, Expected: t, Actual: value}
	}
	return nil
}

func validateArray(value any, t Array, path Path) error {
	seq, ok := toSlice(value)
	if !ok {
		return &MismatchError{Path: path, Expected: t, Actual: value}
	}
	for i, elem := range seq {
		if err := Validate(elem, t.Elem, path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func validateMapping(value any, t Mapping, path Path) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &MismatchError{Path: path, Expected: t, Actual: value}
	}
	for k, v := range m {
		if err := Validate(k, t.Key, path); err != nil {
			return err
		}
		if err := Validate(v, t.Value, path.Field(k)); err != nil {
			return err
		}
	}
	return nil
}

func validateShape(value any, t Shape, path Path) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &MismatchError{Path: path, Expected: t, Actual: value}
	}
	for name, field := range t.Fields {
		v, present := m[name]
		if !present {
			if field.Optional {
				continue
			}
			return missingField(path, name)
		}
		if err := Validate(v, field.Type, path.Field(name)); err != nil {
			return err
		}
	}
	return nil
}

func validateEnum(value any, t Enum, path Path) error {
	for _, candidate := range t.Values {
		if candidate == value {
			return nil
		}
	}
	return &MismatchError{Path: path, Expected: t, Actual: value}
}

func validateUnion(value any, t Union, path Path) error {
	for _, branch := range t.Branches {
		if Validate(value, branch, path) == nil {
			return nil
		}
	}
	return &MismatchError{Path: path, Expected: t, Actual: value}
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}

// Describe renders a type descriptor for use in error messages.
func Describe(t Type) string {
	switch typ := t.(type) {
	case nil:
		return "any"
	case Any:
		return "any"
	case Primitive:
		return string(typ.Class)
	case Array:
		return fmt.Sprintf("array[%s]", Describe(typ.Elem))
	case Mapping:
		return fmt.Sprintf("mapping[%s, %s]", Describe(typ.Key), Describe(typ.Value))
	case Shape:
		return "shape"
	case Optional:
		return fmt.Sprintf("optional[%s]", Describe(typ.Elem))
	case Enum:
		return fmt.Sprintf("enum%v", typ.Values)
	case Union:
		names := make([]string, len(typ.Branches))
		for i, b := range typ.Branches {
			names[i] = Describe(b)
		}
		return fmt.Sprintf("union%v", names)
	default:
		return fmt.Sprintf("%T", t)
	}
}

// Equal reports whether two type descriptors are structurally identical,
// treating a nil type as a wildcard that matches anything (used by the
// stage's parallel type-consistency check).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}
