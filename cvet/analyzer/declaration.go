package analyzer

import (
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
)

func (self *Analyzer) declaration(node ast.Declaration) *errors.Error {
	if err := self.cancelled(); err != nil {
		return err
	}

	switch node := node.(type) {
	case ast.FunctionDefinition:
		return self.functionDefinition(node)
	case ast.VariableDeclaration:
		self.variableDeclaration(node)
	case ast.TypedefDeclaration:
		self.typedefDeclaration(node)
	case ast.RecordDeclaration:
		self.lowerRecordSpec(node.Record)
	case ast.EnumDeclaration:
		self.lowerEnumSpec(node.Enum)
	case ast.BlockDeclaration:
		return self.blockStatement(node.Block)
	case ast.ErrorDeclaration:
		// gap left behind by parser recovery, nothing to check
	default:
		panic("A new declaration kind was added without updating this code")
	}
	return nil
}

//
// Function definitions and prototypes
//

func (self *Analyzer) functionDefinition(node ast.FunctionDefinition) *errors.Error {
	returnType := self.lowerTypeSpec(node.ReturnType)

	paramTypes := make([]Type, 0)
	for _, param := range node.Params {
		paramType := self.lowerTypeSpec(param.Type)
		if paramType.Kind() == VoidTypeKind {
			self.semanticError(
				diagnostic.VoidVariable,
				fmt.Sprintf("Parameter '%s' has type 'void'", param.Ident.Ident()),
				param.Range,
			)
			paramType = NewErrorType()
		}
		// arrays in parameter position decay to pointers
		paramTypes = append(paramTypes, decay(paramType))
	}

	funcType := FuncType{Params: paramTypes, Return: returnType}

	symbol := self.declareFunction(node.Ident, funcType, node.Body != nil)
	if node.Body == nil {
		return nil
	}

	symbol.Defined = true
	self.currentFunction = &functionContext{
		ident:      node.Ident.Ident(),
		returnType: returnType,
		returnSpan: node.ReturnType.Span(),
	}
	defer func() { self.currentFunction = nil }()

	// parameters live in the same scope as the body's own declarations
	self.pushScope()
	defer self.dropScope()

	for _, param := range node.Params {
		// unnamed parameters are legal in prototypes and cannot be
		// referenced in a body, so there is nothing to declare
		if param.Ident.Ident() == "" {
			continue
		}
		paramSymbol := &Symbol{
			Name:        param.Ident.Ident(),
			Kind:        ParameterSymbolKind,
			Type:        decay(self.lowerTypeSpec(param.Type)),
			Span:        param.Ident.Span(),
			Initialized: true,
		}
		self.declareSymbol(paramSymbol)
	}

	for _, statement := range node.Body.Statements {
		if err := self.statement(statement); err != nil {
			return err
		}
	}
	return nil
}

// declareFunction handles the prototype / definition interplay that the
// plain duplicate check cannot: repeating a compatible prototype is
// fine, as is defining a previously declared function once.
func (self *Analyzer) declareFunction(ident ast.SpannedIdent, funcType FuncType, isDefinition bool) *Symbol {
	previous, found := self.current.Lookup(ident.Ident())
	if !found {
		symbol := &Symbol{
			Name:        ident.Ident(),
			Kind:        FunctionSymbolKind,
			Type:        funcType,
			Span:        ident.Span(),
			Initialized: true,
		}
		self.table.Insert(self.current, symbol)
		return symbol
	}

	if previous.Kind != FunctionSymbolKind {
		self.semanticError(
			diagnostic.DuplicateDeclaration,
			fmt.Sprintf("Duplicate declaration of '%s' in the same scope", ident.Ident()),
			ident.Span(),
			fmt.Sprintf("'%s' was previously declared at %s", ident.Ident(), previous.Span),
		)
		return previous
	}

	if previous.Defined && isDefinition {
		self.semanticError(
			diagnostic.DuplicateDeclaration,
			fmt.Sprintf("Redefinition of function '%s'", ident.Ident()),
			ident.Span(),
			fmt.Sprintf("'%s' was previously defined at %s", ident.Ident(), previous.Span),
		)
		return previous
	}

	if !typesEqual(previous.Type, funcType) {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf(
				"Conflicting declaration of function '%s': previously '%s', now '%s'",
				ident.Ident(), previous.Type, funcType,
			),
			ident.Span(),
			fmt.Sprintf("'%s' was previously declared at %s", ident.Ident(), previous.Span),
		)
		return previous
	}

	return previous
}

//
// Variable declarations
//

func (self *Analyzer) variableDeclaration(node ast.VariableDeclaration) {
	atFileScope := self.current == self.table.Global

	for _, declarator := range node.Declarators {
		typ := self.lowerTypeSpec(declarator.Type)

		switch typ.Kind() {
		case VoidTypeKind:
			self.semanticError(
				diagnostic.VoidVariable,
				fmt.Sprintf("Variable '%s' has type 'void'", declarator.Ident.Ident()),
				declarator.Range,
				"Only pointers may refer to 'void', a variable cannot hold it",
			)
			typ = NewErrorType()
		case FuncTypeKind:
			// a block-scope prototype declares a function, not a variable
			self.declareFunction(declarator.Ident, typ.(FuncType), false)
			continue
		}

		symbol := &Symbol{
			Name: declarator.Ident.Ident(),
			Kind: VariableSymbolKind,
			Type: typ,
			Span: declarator.Ident.Span(),
			// file-scope variables are zero-initialized; aggregates are
			// typically filled element by element, so only block-scope
			// scalars take part in uninitialized-use tracking
			Initialized: atFileScope ||
				declarator.Initializer != nil ||
				typ.Kind() == ArrayTypeKind ||
				typ.Kind() == RecordTypeKind,
		}
		self.declareSymbol(symbol)

		if declarator.Initializer == nil {
			continue
		}
		initType := self.expression(declarator.Initializer)
		if typ.Kind() == ArrayTypeKind {
			self.semanticError(
				diagnostic.NotAssignable,
				fmt.Sprintf("Array '%s' cannot be initialized by assignment", declarator.Ident.Ident()),
				declarator.Initializer.Span(),
			)
			continue
		}
		if !assignable(typ, initType) {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Mismatched types: expected '%s', found '%s'", typ, decay(initType)),
				declarator.Initializer.Span(),
			)
		}
	}
}

//
// Typedef declarations
//

func (self *Analyzer) typedefDeclaration(node ast.TypedefDeclaration) {
	aliased := self.lowerTypeSpec(node.Type)
	symbol := &Symbol{
		Name:        node.Ident.Ident(),
		Kind:        TypeSymbolKind,
		Type:        aliased,
		Span:        node.Ident.Span(),
		Initialized: true,
	}
	self.declareSymbol(symbol)
}

//
// Type lowering: syntactic type specs become type descriptors
//

func (self *Analyzer) lowerTypeSpec(spec ast.TypeSpec) Type {
	switch spec := spec.(type) {
	case ast.BaseTypeSpec:
		return lowerBaseType(spec)
	case ast.NamedTypeSpec:
		return self.lowerNamedSpec(spec)
	case ast.RecordTypeSpec:
		return self.lowerRecordSpec(spec)
	case ast.EnumTypeSpec:
		return self.lowerEnumSpec(spec)
	case ast.PointerTypeSpec:
		return NewPointerType(self.lowerTypeSpec(spec.Inner))
	case ast.ArrayTypeSpec:
		return self.lowerArraySpec(spec)
	case ast.FuncTypeSpec:
		params := make([]Type, 0)
		for _, param := range spec.Params {
			params = append(params, decay(self.lowerTypeSpec(param.Type)))
		}
		return FuncType{Params: params, Return: self.lowerTypeSpec(spec.Return)}
	default:
		panic("A new type spec kind was added without updating this code")
	}
}

func lowerBaseType(spec ast.BaseTypeSpec) Type {
	switch spec.Base {
	case ast.BaseVoid:
		return NewVoidType()
	case ast.BaseChar:
		return NewIntType(8, !spec.Unsigned)
	case ast.BaseShort:
		return NewIntType(16, !spec.Unsigned)
	case ast.BaseInt:
		return NewIntType(32, !spec.Unsigned)
	case ast.BaseLong:
		return NewIntType(64, !spec.Unsigned)
	case ast.BaseFloat:
		return NewFloatType(32)
	case ast.BaseDouble:
		return NewFloatType(64)
	default:
		panic("A new base type was introduced without updating this code")
	}
}

func (self *Analyzer) lowerNamedSpec(spec ast.NamedTypeSpec) Type {
	symbol, found := self.resolveSymbol(spec.Ident.Ident(), spec.Ident.Span())
	if !found {
		return NewErrorType()
	}
	symbol.Used = true
	if symbol.Kind != TypeSymbolKind {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("'%s' does not name a type", spec.Ident.Ident()),
			spec.Ident.Span(),
			fmt.Sprintf("'%s' is a %s, declared at %s", spec.Ident.Ident(), symbol.Kind, symbol.Span),
		)
		return NewErrorType()
	}
	return symbol.Type
}

func (self *Analyzer) lowerRecordSpec(spec ast.RecordTypeSpec) Type {
	tag := spec.Tag.Ident()

	if !spec.HasBody {
		if existing, found := self.records[tag]; found && tag != "" {
			if existing.Union != spec.IsUnion {
				self.semanticError(
					diagnostic.TypeMismatch,
					fmt.Sprintf("Tag '%s' refers to a %s", tag, existing),
					spec.Tag.Span(),
				)
				return NewErrorType()
			}
			return existing
		}
		// forward reference, completed once a body shows up
		record := &RecordType{Union: spec.IsUnion, Tag: tag}
		if tag != "" {
			self.records[tag] = record
		}
		return record
	}

	var record *RecordType
	if existing, found := self.records[tag]; found && tag != "" {
		if existing.Members != nil {
			self.semanticError(
				diagnostic.DuplicateDeclaration,
				fmt.Sprintf("Redefinition of '%s'", existing),
				spec.Tag.Span(),
			)
			return existing
		}
		record = existing
	} else {
		record = &RecordType{Union: spec.IsUnion, Tag: tag}
		if tag != "" {
			self.records[tag] = record
		}
	}

	members := make([]RecordMember, 0)
	for _, member := range spec.Members {
		memberType := self.lowerTypeSpec(member.Type)
		if memberType.Kind() == VoidTypeKind {
			self.semanticError(
				diagnostic.VoidVariable,
				fmt.Sprintf("Member '%s' has type 'void'", member.Ident.Ident()),
				member.Range,
			)
			memberType = NewErrorType()
		}
		duplicate := false
		for _, seen := range members {
			if seen.Name == member.Ident.Ident() {
				self.semanticError(
					diagnostic.DuplicateDeclaration,
					fmt.Sprintf("Duplicate member '%s' in %s", member.Ident.Ident(), record),
					member.Ident.Span(),
				)
				duplicate = true
				break
			}
		}
		if !duplicate {
			members = append(members, RecordMember{Name: member.Ident.Ident(), Type: memberType})
		}
	}
	record.Members = members
	return record
}

// lowerEnumSpec declares the enumerators of an enum body as constants
// of the enclosing scope. The enum itself is represented as int.
func (self *Analyzer) lowerEnumSpec(spec ast.EnumTypeSpec) Type {
	enumType := NewIntType(32, true)
	if !spec.HasBody {
		return enumType
	}

	for _, enumerator := range spec.Enumerators {
		if enumerator.Value != nil {
			valueType := self.expression(enumerator.Value)
			if !isError(valueType) && !isInteger(valueType) {
				self.semanticError(
					diagnostic.TypeMismatch,
					fmt.Sprintf("Enumerator value must be an integer, found '%s'", valueType),
					enumerator.Value.Span(),
				)
			}
		}
		symbol := &Symbol{
			Name:        enumerator.Ident.Ident(),
			Kind:        EnumConstantSymbolKind,
			Type:        enumType,
			Span:        enumerator.Ident.Span(),
			Initialized: true,
		}
		self.declareSymbol(symbol)
	}
	return enumType
}

func (self *Analyzer) lowerArraySpec(spec ast.ArrayTypeSpec) Type {
	elem := self.lowerTypeSpec(spec.Inner)
	if elem.Kind() == VoidTypeKind {
		self.semanticError(
			diagnostic.VoidVariable,
			"Array elements cannot have type 'void'",
			spec.Range,
		)
		elem = NewErrorType()
	}

	array := ArrayType{Elem: elem}
	if spec.Length == nil {
		return array
	}

	lengthType := self.expression(spec.Length)
	if !isError(lengthType) && !isInteger(lengthType) {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Array length must be an integer, found '%s'", lengthType),
			spec.Length.Span(),
		)
		return array
	}

	if literal, isLiteral := spec.Length.(ast.IntLiteralExpression); isLiteral {
		if literal.Value < 0 {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Array length must not be negative, found %d", literal.Value),
				spec.Length.Span(),
			)
			return array
		}
		array.Length = literal.Value
		array.LengthKnown = true
	}
	return array
}
