package ast

import (
	"fmt"
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

type Declaration interface {
	Kind() DeclarationKind
	Span() errors.Span
	String() string
}

type DeclarationKind uint8

const (
	FunctionDefinitionKind DeclarationKind = iota
	VariableDeclarationKind
	TypedefDeclarationKind
	RecordDeclarationKind
	EnumDeclarationKind
	BlockDeclarationKind
	ErrorDeclarationKind
)

//
// Function definition (or prototype, when Body is nil)
//

type Parameter struct {
	Ident SpannedIdent // zero ident when unnamed (prototypes)
	Type  TypeSpec
	Range errors.Span
}

func (self Parameter) String() string {
	if self.Ident.Ident() == "" {
		return self.Type.String()
	}
	return fmt.Sprintf("%s %s", self.Type, self.Ident)
}

type FunctionDefinition struct {
	Ident      SpannedIdent
	ReturnType TypeSpec
	Params     []Parameter
	Body       *BlockStatement // nil for a prototype
	Range      errors.Span
}

func (self FunctionDefinition) Kind() DeclarationKind { return FunctionDefinitionKind }
func (self FunctionDefinition) Span() errors.Span     { return self.Range }
func (self FunctionDefinition) String() string {
	params := make([]string, 0)
	for _, param := range self.Params {
		params = append(params, param.String())
	}

	head := fmt.Sprintf("%s %s(%s)", self.ReturnType, self.Ident, strings.Join(params, ", "))
	if self.Body == nil {
		return head + ";"
	}
	return fmt.Sprintf("%s %s", head, self.Body)
}

//
// Variable declaration
//

// A Declarator is one declared name of a declaration; its Type is the
// full derived type after pointer and array wrapping.
type Declarator struct {
	Ident       SpannedIdent
	Type        TypeSpec
	Initializer Expression // nil when absent
	Range       errors.Span
}

func (self Declarator) String() string {
	if self.Initializer == nil {
		return self.Ident.Ident()
	}
	return fmt.Sprintf("%s = %s", self.Ident, self.Initializer)
}

type VariableDeclaration struct {
	Base        TypeSpec
	Declarators []Declarator
	Range       errors.Span
}

func (self VariableDeclaration) Kind() DeclarationKind { return VariableDeclarationKind }
func (self VariableDeclaration) Span() errors.Span     { return self.Range }
func (self VariableDeclaration) String() string {
	declarators := make([]string, 0)
	for _, declarator := range self.Declarators {
		declarators = append(declarators, declarator.String())
	}
	return fmt.Sprintf("%s %s;", self.Base, strings.Join(declarators, ", "))
}

//
// Typedef declaration
//

type TypedefDeclaration struct {
	Ident SpannedIdent
	Type  TypeSpec
	Range errors.Span
}

func (self TypedefDeclaration) Kind() DeclarationKind { return TypedefDeclarationKind }
func (self TypedefDeclaration) Span() errors.Span     { return self.Range }
func (self TypedefDeclaration) String() string {
	return fmt.Sprintf("typedef %s %s;", self.Type, self.Ident)
}

//
// Standalone record declaration: `struct s { ... };`
//

type RecordDeclaration struct {
	Record RecordTypeSpec
	Range  errors.Span
}

func (self RecordDeclaration) Kind() DeclarationKind { return RecordDeclarationKind }
func (self RecordDeclaration) Span() errors.Span     { return self.Range }
func (self RecordDeclaration) String() string        { return self.Record.String() + ";" }

//
// Standalone enum declaration: `enum e { ... };`
//

type EnumDeclaration struct {
	Enum  EnumTypeSpec
	Range errors.Span
}

func (self EnumDeclaration) Kind() DeclarationKind { return EnumDeclarationKind }
func (self EnumDeclaration) Span() errors.Span     { return self.Range }
func (self EnumDeclaration) String() string        { return self.Enum.String() + ";" }

//
// Block declaration: a free-standing `{ ... }` at translation-unit
// level; its contents get a scope of their own
//

type BlockDeclaration struct {
	Block BlockStatement
	Range errors.Span
}

func (self BlockDeclaration) Kind() DeclarationKind { return BlockDeclarationKind }
func (self BlockDeclaration) Span() errors.Span     { return self.Range }
func (self BlockDeclaration) String() string        { return self.Block.String() }

//
// Error declaration: a recovered gap at translation-unit level
//

type ErrorDeclaration struct {
	Range errors.Span
}

func (self ErrorDeclaration) Kind() DeclarationKind { return ErrorDeclarationKind }
func (self ErrorDeclaration) Span() errors.Span     { return self.Range }
func (self ErrorDeclaration) String() string        { return "/* error */" }
