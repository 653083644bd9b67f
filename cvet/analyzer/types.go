package analyzer

import (
	"fmt"
	"strings"
)

type TypeKind uint8

const (
	// ErrorTypeKind is the sentinel for expressions whose real type could
	// not be determined. It silently propagates so one root cause never
	// cascades into follow-up diagnostics.
	ErrorTypeKind TypeKind = iota
	VoidTypeKind
	IntTypeKind
	FloatTypeKind
	PointerTypeKind
	ArrayTypeKind
	FuncTypeKind
	RecordTypeKind
)

type Type interface {
	Kind() TypeKind
	String() string
}

//
// Error type sentinel
//

type ErrorType struct{}

func (self ErrorType) Kind() TypeKind { return ErrorTypeKind }
func (self ErrorType) String() string { return "<error>" }
func NewErrorType() Type              { return Type(ErrorType{}) }

//
// Void type
//

type VoidType struct{}

func (self VoidType) Kind() TypeKind { return VoidTypeKind }
func (self VoidType) String() string { return "void" }
func NewVoidType() Type              { return Type(VoidType{}) }

//
// Integer types: char, short, int and long of either signedness
//

type IntType struct {
	Width  uint8 // bits
	Signed bool
}

func (self IntType) Kind() TypeKind { return IntTypeKind }
func (self IntType) String() string {
	name := ""
	switch self.Width {
	case 8:
		name = "char"
	case 16:
		name = "short"
	case 32:
		name = "int"
	case 64:
		name = "long"
	default:
		panic("A new integer width was introduced without updating this code")
	}
	if !self.Signed {
		return "unsigned " + name
	}
	return name
}

func NewIntType(width uint8, signed bool) Type { return Type(IntType{Width: width, Signed: signed}) }

//
// Floating-point types: float and double
//

type FloatType struct {
	Width uint8 // bits
}

func (self FloatType) Kind() TypeKind { return FloatTypeKind }
func (self FloatType) String() string {
	if self.Width == 32 {
		return "float"
	}
	return "double"
}

func NewFloatType(width uint8) Type { return Type(FloatType{Width: width}) }

//
// Pointer type
//

type PointerType struct {
	Inner Type
}

func (self PointerType) Kind() TypeKind { return PointerTypeKind }
func (self PointerType) String() string { return self.Inner.String() + "*" }
func NewPointerType(inner Type) Type    { return Type(PointerType{Inner: inner}) }

//
// Array type
//

type ArrayType struct {
	Elem        Type
	Length      int64
	LengthKnown bool
}

func (self ArrayType) Kind() TypeKind { return ArrayTypeKind }
func (self ArrayType) String() string {
	if !self.LengthKnown {
		return self.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", self.Elem, self.Length)
}

//
// Function type
//

type FuncType struct {
	Params []Type
	Return Type
}

func (self FuncType) Kind() TypeKind { return FuncTypeKind }
func (self FuncType) String() string {
	params := make([]string, 0)
	for _, param := range self.Params {
		params = append(params, param.String())
	}
	return fmt.Sprintf("%s(%s)", self.Return, strings.Join(params, ", "))
}

//
// Record type: struct / union. Members may be nil while the record is
// incomplete (tag reference without a body seen yet); the same value is
// completed in place, hence the pointer shape.
//

type RecordMember struct {
	Name string
	Type Type
}

type RecordType struct {
	Union   bool
	Tag     string
	Members []RecordMember
}

func (self *RecordType) Kind() TypeKind { return RecordTypeKind }
func (self *RecordType) String() string {
	keyword := "struct"
	if self.Union {
		keyword = "union"
	}
	if self.Tag == "" {
		return keyword + " <anonymous>"
	}
	return keyword + " " + self.Tag
}

// Member returns the named member, or false when the record does not
// have it (or is incomplete).
func (self *RecordType) Member(name string) (RecordMember, bool) {
	for _, member := range self.Members {
		if member.Name == name {
			return member, true
		}
	}
	return RecordMember{}, false
}

//
// Compatibility predicates. Structural equality drives the checks;
// records compare by tag, matching C's nominal struct identity.
//

func isError(typ Type) bool { return typ.Kind() == ErrorTypeKind }

func isArithmetic(typ Type) bool {
	return typ.Kind() == IntTypeKind || typ.Kind() == FloatTypeKind
}

func isInteger(typ Type) bool { return typ.Kind() == IntTypeKind }

func isScalar(typ Type) bool {
	return isArithmetic(typ) || typ.Kind() == PointerTypeKind || typ.Kind() == ArrayTypeKind
}

func typesEqual(lhs Type, rhs Type) bool {
	if lhs.Kind() != rhs.Kind() {
		return false
	}

	switch lhsTyp := lhs.(type) {
	case ErrorType, VoidType:
		return true
	case IntType:
		rhsTyp := rhs.(IntType)
		return lhsTyp.Width == rhsTyp.Width && lhsTyp.Signed == rhsTyp.Signed
	case FloatType:
		return lhsTyp.Width == rhs.(FloatType).Width
	case PointerType:
		return typesEqual(lhsTyp.Inner, rhs.(PointerType).Inner)
	case ArrayType:
		rhsTyp := rhs.(ArrayType)
		if lhsTyp.LengthKnown && rhsTyp.LengthKnown && lhsTyp.Length != rhsTyp.Length {
			return false
		}
		return typesEqual(lhsTyp.Elem, rhsTyp.Elem)
	case FuncType:
		rhsTyp := rhs.(FuncType)
		if len(lhsTyp.Params) != len(rhsTyp.Params) {
			return false
		}
		for idx, param := range lhsTyp.Params {
			if !typesEqual(param, rhsTyp.Params[idx]) {
				return false
			}
		}
		return typesEqual(lhsTyp.Return, rhsTyp.Return)
	case *RecordType:
		rhsTyp := rhs.(*RecordType)
		return lhsTyp.Union == rhsTyp.Union && lhsTyp.Tag == rhsTyp.Tag
	default:
		panic("A new type kind was introduced without updating this code")
	}
}

// arithmeticResult applies the usual arithmetic conversions: float
// dominates integer, the wider width dominates, unsigned dominates
// signed at equal width. Both operands must be arithmetic.
func arithmeticResult(lhs Type, rhs Type) Type {
	lhsFloat, lhsIsFloat := lhs.(FloatType)
	rhsFloat, rhsIsFloat := rhs.(FloatType)

	if lhsIsFloat && rhsIsFloat {
		if rhsFloat.Width > lhsFloat.Width {
			return rhsFloat
		}
		return lhsFloat
	}
	if lhsIsFloat {
		return lhsFloat
	}
	if rhsIsFloat {
		return rhsFloat
	}

	lhsInt := lhs.(IntType)
	rhsInt := rhs.(IntType)

	// promotion: nothing smaller than int takes part in arithmetic
	if lhsInt.Width < 32 {
		lhsInt = IntType{Width: 32, Signed: true}
	}
	if rhsInt.Width < 32 {
		rhsInt = IntType{Width: 32, Signed: true}
	}

	if rhsInt.Width > lhsInt.Width {
		return rhsInt
	}
	if lhsInt.Width > rhsInt.Width {
		return lhsInt
	}
	return IntType{Width: lhsInt.Width, Signed: lhsInt.Signed && rhsInt.Signed}
}

// decay converts array values to pointers to their element type, as
// happens in every expression context except sizeof.
func decay(typ Type) Type {
	if array, isArray := typ.(ArrayType); isArray {
		return NewPointerType(array.Elem)
	}
	return typ
}

// assignable reports whether a value of type `src` can be assigned to a
// target of type `dst`. Array and function targets are rejected before
// this is consulted.
func assignable(dst Type, src Type) bool {
	if isError(dst) || isError(src) {
		return true
	}

	src = decay(src)

	if isArithmetic(dst) && isArithmetic(src) {
		return true
	}

	dstPtr, dstIsPtr := dst.(PointerType)
	srcPtr, srcIsPtr := src.(PointerType)
	if dstIsPtr && srcIsPtr {
		// void* converts freely in either direction
		if dstPtr.Inner.Kind() == VoidTypeKind || srcPtr.Inner.Kind() == VoidTypeKind {
			return true
		}
		return typesEqual(dstPtr.Inner, srcPtr.Inner)
	}

	if dst.Kind() == RecordTypeKind && src.Kind() == RecordTypeKind {
		return typesEqual(dst, src)
	}

	return false
}
