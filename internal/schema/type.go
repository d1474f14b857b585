// Package schema implements the declarative type descriptors and the
// recursive structural validator described by the pipeline engine's data
// model: a closed sum type over primitive, container, object-shape, Any,
// Optional, Enum, and Union variants.
package schema

// Type is the sealed interface every type descriptor implements. The
// unexported marker method keeps the set of variants closed to this
// package, matching the "recursive sum type" design note: adding a new
// variant requires a deliberate change here rather than ad hoc
// reflection-driven dispatch.
type Type interface {
	isType()
}

// Primitive identifies one of the scalar value classes.
type Primitive struct {
	Class PrimitiveClass
}

// PrimitiveClass enumerates the primitive token vocabulary.
type PrimitiveClass string

const (
	ClassString PrimitiveClass = "string"
	ClassInt    PrimitiveClass = "int"
	ClassFloat  PrimitiveClass = "float"
	ClassBool   PrimitiveClass = "bool"
	ClassSymbol PrimitiveClass = "symbol"
)

func (Primitive) isType() {}

// String is shorthand for Primitive{Class: ClassString}.
func String() Type { return Primitive{Class: ClassString} }

// Int is shorthand for Primitive{Class: ClassInt}.
func Int() Type { return Primitive{Class: ClassInt} }

// Float is shorthand for Primitive{Class: ClassFloat}.
func Float() Type { return Primitive{Class: ClassFloat} }

// Bool is shorthand for Primitive{Class: ClassBool}.
func Bool() Type { return Primitive{Class: ClassBool} }

// Symbol is shorthand for Primitive{Class: ClassSymbol}.
func Symbol() Type { return Primitive{Class: ClassSymbol} }

// Array describes a homogeneous sequence. An empty sequence always matches.
type Array struct {
	Elem Type
}

func (Array) isType() {}

// Mapping describes a homogeneous key/value container.
type Mapping struct {
	Key   Type
	Value Type
}

func (Mapping) isType() {}

// ShapeField is one declared field of a Shape descriptor.
type ShapeField struct {
	Type     Type
	Optional bool
}

// Shape describes an object with declared fields; fields not named in the
// shape are permitted on the value and are not validated.
type Shape struct {
	Fields map[string]ShapeField
}

func (Shape) isType() {}

// Any matches every value unconditionally.
type Any struct{}

func (Any) isType() {}

// Optional wraps T; nil matches unconditionally, any other value must match T.
type Optional struct {
	Elem Type
}

func (Optional) isType() {}

// Enum matches a fixed set of literal values.
type Enum struct {
	Values []any
}

func (Enum) isType() {}

// Union matches if any branch matches.
type Union struct {
	Branches []Type
}

func (Union) isType() {}
