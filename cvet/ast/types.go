package ast

import (
	"fmt"
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

// A TypeSpec is the syntactic spelling of a type, before semantic
// resolution. The analyzer lowers these into type descriptors.
type TypeSpec interface {
	Kind() TypeSpecKind
	Span() errors.Span
	String() string
}

type TypeSpecKind uint8

const (
	BaseTypeSpecKind TypeSpecKind = iota
	NamedTypeSpecKind
	RecordTypeSpecKind
	EnumTypeSpecKind
	PointerTypeSpecKind
	ArrayTypeSpecKind
	FuncTypeSpecKind
)

//
// Base type: a combination of builtin specifiers
//

type BaseType uint8

const (
	BaseVoid BaseType = iota
	BaseChar
	BaseShort
	BaseInt
	BaseLong
	BaseFloat
	BaseDouble
)

func (self BaseType) String() string {
	switch self {
	case BaseVoid:
		return "void"
	case BaseChar:
		return "char"
	case BaseShort:
		return "short"
	case BaseInt:
		return "int"
	case BaseLong:
		return "long"
	case BaseFloat:
		return "float"
	case BaseDouble:
		return "double"
	default:
		panic("A new base type was introduced without updating this code")
	}
}

type BaseTypeSpec struct {
	Base     BaseType
	Unsigned bool
	Const    bool
	Range    errors.Span
}

func (self BaseTypeSpec) Kind() TypeSpecKind { return BaseTypeSpecKind }
func (self BaseTypeSpec) Span() errors.Span  { return self.Range }
func (self BaseTypeSpec) String() string {
	out := ""
	if self.Const {
		out += "const "
	}
	if self.Unsigned {
		out += "unsigned "
	}
	return out + self.Base.String()
}

//
// Named type: a typedef-introduced name
//

type NamedTypeSpec struct {
	Ident SpannedIdent
	Const bool
	Range errors.Span
}

func (self NamedTypeSpec) Kind() TypeSpecKind { return NamedTypeSpecKind }
func (self NamedTypeSpec) Span() errors.Span  { return self.Range }
func (self NamedTypeSpec) String() string {
	if self.Const {
		return "const " + self.Ident.Ident()
	}
	return self.Ident.Ident()
}

//
// Record type: struct / union
//

type RecordMember struct {
	Ident SpannedIdent
	Type  TypeSpec
	Range errors.Span
}

func (self RecordMember) String() string {
	return fmt.Sprintf("%s %s;", self.Type, self.Ident)
}

type RecordTypeSpec struct {
	IsUnion bool
	Tag     SpannedIdent // zero ident on anonymous records
	Members []RecordMember
	// HasBody distinguishes `struct s { ... }` from a bare reference `struct s`
	HasBody bool
	Range   errors.Span
}

func (self RecordTypeSpec) Kind() TypeSpecKind { return RecordTypeSpecKind }
func (self RecordTypeSpec) Span() errors.Span  { return self.Range }
func (self RecordTypeSpec) String() string {
	keyword := "struct"
	if self.IsUnion {
		keyword = "union"
	}

	tag := ""
	if self.Tag.Ident() != "" {
		tag = " " + self.Tag.Ident()
	}

	if !self.HasBody {
		return keyword + tag
	}

	members := make([]string, 0)
	for _, member := range self.Members {
		members = append(members, "    "+member.String())
	}
	return fmt.Sprintf("%s%s {\n%s\n}", keyword, tag, strings.Join(members, "\n"))
}

//
// Enum type
//

type Enumerator struct {
	Ident SpannedIdent
	Value Expression // nil when implicit
	Range errors.Span
}

func (self Enumerator) String() string {
	if self.Value == nil {
		return self.Ident.Ident()
	}
	return fmt.Sprintf("%s = %s", self.Ident, self.Value)
}

type EnumTypeSpec struct {
	Tag         SpannedIdent
	Enumerators []Enumerator
	HasBody     bool
	Range       errors.Span
}

func (self EnumTypeSpec) Kind() TypeSpecKind { return EnumTypeSpecKind }
func (self EnumTypeSpec) Span() errors.Span  { return self.Range }
func (self EnumTypeSpec) String() string {
	tag := ""
	if self.Tag.Ident() != "" {
		tag = " " + self.Tag.Ident()
	}

	if !self.HasBody {
		return "enum" + tag
	}

	enumerators := make([]string, 0)
	for _, enumerator := range self.Enumerators {
		enumerators = append(enumerators, "    "+enumerator.String()+",")
	}
	return fmt.Sprintf("enum%s {\n%s\n}", tag, strings.Join(enumerators, "\n"))
}

//
// Derived types built by declarators
//

type PointerTypeSpec struct {
	Inner TypeSpec
	Range errors.Span
}

func (self PointerTypeSpec) Kind() TypeSpecKind { return PointerTypeSpecKind }
func (self PointerTypeSpec) Span() errors.Span  { return self.Range }
func (self PointerTypeSpec) String() string     { return self.Inner.String() + "*" }

type ArrayTypeSpec struct {
	Inner  TypeSpec
	Length Expression // nil for an unsized array
	Range  errors.Span
}

func (self ArrayTypeSpec) Kind() TypeSpecKind { return ArrayTypeSpecKind }
func (self ArrayTypeSpec) Span() errors.Span  { return self.Range }
func (self ArrayTypeSpec) String() string {
	if self.Length == nil {
		return self.Inner.String() + "[]"
	}
	return fmt.Sprintf("%s[%s]", self.Inner, self.Length)
}

type FuncTypeSpec struct {
	Return TypeSpec
	Params []Parameter
	Range  errors.Span
}

func (self FuncTypeSpec) Kind() TypeSpecKind { return FuncTypeSpecKind }
func (self FuncTypeSpec) Span() errors.Span  { return self.Range }
func (self FuncTypeSpec) String() string {
	params := make([]string, 0)
	for _, param := range self.Params {
		params = append(params, param.String())
	}
	return fmt.Sprintf("%s(%s)", self.Return, strings.Join(params, ", "))
}
