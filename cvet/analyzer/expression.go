package analyzer

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
)

// expression type-checks an expression and returns its type. Operands
// of the error type never produce further diagnostics; the error
// silently propagates towards the root instead.
func (self *Analyzer) expression(node ast.Expression) Type {
	switch node := node.(type) {
	case ast.IdentExpression:
		return self.identExpression(node)
	case ast.IntLiteralExpression:
		return NewIntType(32, true)
	case ast.FloatLiteralExpression:
		return NewFloatType(64)
	case ast.CharLiteralExpression:
		return NewIntType(8, true)
	case ast.StringLiteralExpression:
		return NewPointerType(NewIntType(8, true))
	case ast.PrefixExpression:
		return self.prefixExpression(node)
	case ast.PostfixExpression:
		return self.postfixExpression(node)
	case ast.InfixExpression:
		return self.infixExpression(node)
	case ast.AssignExpression:
		return self.assignExpression(node)
	case ast.ConditionalExpression:
		return self.conditionalExpression(node)
	case ast.CallExpression:
		return self.callExpression(node)
	case ast.IndexExpression:
		return self.indexExpression(node)
	case ast.MemberExpression:
		return self.memberExpression(node)
	case ast.CastExpression:
		return self.castExpression(node)
	case ast.SizeofExpression:
		return self.sizeofExpression(node)
	case ast.CommaExpression:
		self.expression(node.Lhs)
		return self.expression(node.Rhs)
	case ast.ErrorExpression:
		return NewErrorType()
	default:
		panic("A new expression kind was added without updating this code")
	}
}

func (self *Analyzer) identExpression(node ast.IdentExpression) Type {
	symbol, found := self.resolveSymbol(node.Ident.Ident(), node.Ident.Span())
	if !found {
		return NewErrorType()
	}
	symbol.Used = true

	if symbol.Kind == VariableSymbolKind && !symbol.Initialized && !symbol.warnedUninitialized {
		symbol.warnedUninitialized = true
		self.semanticWarning(
			diagnostic.UninitializedUse,
			fmt.Sprintf("Variable '%s' may be used before it is initialized", symbol.Name),
			node.Ident.Span(),
			fmt.Sprintf("'%s' is declared without an initializer at %s", symbol.Name, symbol.Span),
		)
	}
	return symbol.Type
}

//
// Prefix operators
//

func (self *Analyzer) prefixExpression(node ast.PrefixExpression) Type {
	// taking the address of a plain variable does not read it and may
	// well be how it gets initialized
	if node.Operator == ast.PrefixAddrOfOperator {
		if ident, isIdent := node.Operand.(ast.IdentExpression); isIdent {
			symbol, found := self.resolveSymbol(ident.Ident.Ident(), ident.Ident.Span())
			if !found {
				return NewErrorType()
			}
			symbol.Used = true
			symbol.Initialized = true
			return NewPointerType(symbol.Type)
		}
	}

	operandType := self.expression(node.Operand)
	if isError(operandType) {
		return NewErrorType()
	}

	switch node.Operator {
	case ast.PrefixPlusOperator, ast.PrefixMinusOperator:
		if !isArithmetic(operandType) {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Unary '%s' requires an arithmetic operand, found '%s'", node.Operator, operandType),
				node.Operand.Span(),
			)
			return NewErrorType()
		}
		return arithmeticResult(operandType, IntType{Width: 32, Signed: true})
	case ast.PrefixNotOperator:
		if !isScalar(decay(operandType)) {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Unary '!' requires a scalar operand, found '%s'", operandType),
				node.Operand.Span(),
			)
			return NewErrorType()
		}
		return NewIntType(32, true)
	case ast.PrefixBitNotOperator:
		if !isInteger(operandType) {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Unary '~' requires an integer operand, found '%s'", operandType),
				node.Operand.Span(),
			)
			return NewErrorType()
		}
		return arithmeticResult(operandType, IntType{Width: 32, Signed: true})
	case ast.PrefixDerefOperator:
		pointer, isPointer := decay(operandType).(PointerType)
		if !isPointer {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Cannot dereference a value of type '%s'", operandType),
				node.Operand.Span(),
			)
			return NewErrorType()
		}
		if pointer.Inner.Kind() == VoidTypeKind {
			self.semanticError(
				diagnostic.TypeMismatch,
				"Cannot dereference a pointer to 'void'",
				node.Operand.Span(),
				"Cast the pointer to a concrete pointer type first",
			)
			return NewErrorType()
		}
		return pointer.Inner
	case ast.PrefixAddrOfOperator:
		if !isLvalue(node.Operand) {
			self.semanticError(
				diagnostic.NotAssignable,
				"Cannot take the address of a temporary value",
				node.Operand.Span(),
			)
			return NewErrorType()
		}
		return NewPointerType(operandType)
	case ast.PrefixIncrementOperator, ast.PrefixDecrementOperator:
		return self.checkIncDec(node.Operand, operandType, node.Operator.String())
	default:
		panic("A new prefix operator was introduced without updating this code")
	}
}

func (self *Analyzer) postfixExpression(node ast.PostfixExpression) Type {
	operandType := self.expression(node.Operand)
	if isError(operandType) {
		return NewErrorType()
	}
	return self.checkIncDec(node.Operand, operandType, node.Operator.String())
}

func (self *Analyzer) checkIncDec(operand ast.Expression, operandType Type, operator string) Type {
	if !isLvalue(operand) {
		self.semanticError(
			diagnostic.NotAssignable,
			fmt.Sprintf("Operand of '%s' must be assignable", operator),
			operand.Span(),
		)
		return NewErrorType()
	}
	if !isArithmetic(operandType) && operandType.Kind() != PointerTypeKind {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Operand of '%s' must be arithmetic or a pointer, found '%s'", operator, operandType),
			operand.Span(),
		)
		return NewErrorType()
	}
	return operandType
}

//
// Infix operators
//

func (self *Analyzer) infixExpression(node ast.InfixExpression) Type {
	lhsType := decay(self.expression(node.Lhs))
	rhsType := decay(self.expression(node.Rhs))
	if isError(lhsType) || isError(rhsType) {
		return NewErrorType()
	}
	return self.checkInfixOperands(node.Operator, lhsType, rhsType, node.Range)
}

func (self *Analyzer) checkInfixOperands(operator ast.InfixOperator, lhsType Type, rhsType Type, span errors.Span) Type {
	invalid := func() Type {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Invalid operands to '%s': '%s' and '%s'", operator, lhsType, rhsType),
			span,
		)
		return NewErrorType()
	}

	if operator.IsIntegerOnly() {
		if !isInteger(lhsType) || !isInteger(rhsType) {
			return invalid()
		}
		return arithmeticResult(lhsType, rhsType)
	}

	if operator == ast.AndInfixOperator || operator == ast.OrInfixOperator {
		if !isScalar(lhsType) || !isScalar(rhsType) {
			return invalid()
		}
		return NewIntType(32, true)
	}

	if operator.IsComparison() {
		if isArithmetic(lhsType) && isArithmetic(rhsType) {
			return NewIntType(32, true)
		}
		lhsPtr, lhsIsPtr := lhsType.(PointerType)
		rhsPtr, rhsIsPtr := rhsType.(PointerType)
		if lhsIsPtr && rhsIsPtr {
			if typesEqual(lhsPtr.Inner, rhsPtr.Inner) ||
				lhsPtr.Inner.Kind() == VoidTypeKind || rhsPtr.Inner.Kind() == VoidTypeKind {
				return NewIntType(32, true)
			}
		}
		return invalid()
	}

	switch operator {
	case ast.AddInfixOperator:
		if lhsPtr, isPtr := lhsType.(PointerType); isPtr && isInteger(rhsType) {
			return lhsPtr
		}
		if rhsPtr, isPtr := rhsType.(PointerType); isPtr && isInteger(lhsType) {
			return rhsPtr
		}
	case ast.SubInfixOperator:
		lhsPtr, lhsIsPtr := lhsType.(PointerType)
		rhsPtr, rhsIsPtr := rhsType.(PointerType)
		if lhsIsPtr && isInteger(rhsType) {
			return lhsPtr
		}
		if lhsIsPtr && rhsIsPtr && typesEqual(lhsPtr.Inner, rhsPtr.Inner) {
			// pointer difference: ptrdiff_t
			return NewIntType(64, true)
		}
	}

	if isArithmetic(lhsType) && isArithmetic(rhsType) {
		return arithmeticResult(lhsType, rhsType)
	}
	return invalid()
}

//
// Assignments
//

func (self *Analyzer) assignExpression(node ast.AssignExpression) Type {
	rhsType := self.expression(node.Rhs)

	// assignment to a bare name: resolve it by hand so that a plain
	// write does not count as a read of an uninitialized variable
	if ident, isIdent := node.Lhs.(ast.IdentExpression); isIdent {
		return self.assignToIdent(node, ident, rhsType)
	}

	lhsType := self.expression(node.Lhs)
	if !isLvalue(node.Lhs) {
		self.semanticError(
			diagnostic.NotAssignable,
			"Expression is not assignable",
			node.Lhs.Span(),
		)
		return NewErrorType()
	}
	return self.checkAssignment(node, lhsType, rhsType)
}

func (self *Analyzer) assignToIdent(node ast.AssignExpression, ident ast.IdentExpression, rhsType Type) Type {
	symbol, found := self.resolveSymbol(ident.Ident.Ident(), ident.Ident.Span())
	if !found {
		return NewErrorType()
	}

	switch symbol.Kind {
	case FunctionSymbolKind, TypeSymbolKind, EnumConstantSymbolKind:
		self.semanticError(
			diagnostic.NotAssignable,
			fmt.Sprintf("Cannot assign to %s '%s'", symbol.Kind, symbol.Name),
			ident.Ident.Span(),
		)
		return NewErrorType()
	}

	// a compound assignment reads the variable before writing it
	if node.Operator != ast.PlainAssignOperator {
		symbol.Used = true
		if !symbol.Initialized && !symbol.warnedUninitialized {
			symbol.warnedUninitialized = true
			self.semanticWarning(
				diagnostic.UninitializedUse,
				fmt.Sprintf("Variable '%s' may be used before it is initialized", symbol.Name),
				ident.Ident.Span(),
				fmt.Sprintf("'%s' is declared without an initializer at %s", symbol.Name, symbol.Span),
			)
		}
	}
	symbol.Initialized = true

	return self.checkAssignment(node, symbol.Type, rhsType)
}

func (self *Analyzer) checkAssignment(node ast.AssignExpression, lhsType Type, rhsType Type) Type {
	if isError(lhsType) || isError(rhsType) {
		return lhsType
	}

	switch lhsType.Kind() {
	case ArrayTypeKind, FuncTypeKind:
		self.semanticError(
			diagnostic.NotAssignable,
			fmt.Sprintf("Cannot assign to a value of type '%s'", lhsType),
			node.Lhs.Span(),
		)
		return NewErrorType()
	}

	if node.Operator != ast.PlainAssignOperator {
		result := self.checkInfixOperands(node.Operator.Operation(), lhsType, decay(rhsType), node.Range)
		if isError(result) {
			return NewErrorType()
		}
		if !assignable(lhsType, result) {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("Mismatched types: expected '%s', found '%s'", lhsType, result),
				node.Rhs.Span(),
			)
			return NewErrorType()
		}
		return lhsType
	}

	if !assignable(lhsType, rhsType) {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Mismatched types: expected '%s', found '%s'", lhsType, decay(rhsType)),
			node.Rhs.Span(),
		)
		return NewErrorType()
	}
	return lhsType
}

//
// Conditional expression
//

func (self *Analyzer) conditionalExpression(node ast.ConditionalExpression) Type {
	self.condition(node.Condition)

	thenType := decay(self.expression(node.Then))
	elseType := decay(self.expression(node.Else))
	if isError(thenType) {
		return elseType
	}
	if isError(elseType) {
		return thenType
	}

	if typesEqual(thenType, elseType) {
		return thenType
	}
	if isArithmetic(thenType) && isArithmetic(elseType) {
		return arithmeticResult(thenType, elseType)
	}

	thenPtr, thenIsPtr := thenType.(PointerType)
	elsePtr, elseIsPtr := elseType.(PointerType)
	if thenIsPtr && elseIsPtr {
		if thenPtr.Inner.Kind() == VoidTypeKind {
			return elsePtr
		}
		if elsePtr.Inner.Kind() == VoidTypeKind {
			return thenPtr
		}
	}

	self.semanticError(
		diagnostic.TypeMismatch,
		fmt.Sprintf("Mismatched types in conditional expression: '%s' and '%s'", thenType, elseType),
		node.Range,
	)
	return NewErrorType()
}

//
// Calls
//

func (self *Analyzer) callExpression(node ast.CallExpression) Type {
	calleeType := decay(self.expression(node.Callee))

	// calling through a function pointer is the same call
	if pointer, isPointer := calleeType.(PointerType); isPointer {
		calleeType = pointer.Inner
	}

	funcType, isFunc := calleeType.(FuncType)
	if !isFunc {
		for _, argument := range node.Arguments {
			self.expression(argument)
		}
		if !isError(calleeType) {
			self.semanticError(
				diagnostic.NotCallable,
				fmt.Sprintf("Cannot call a value of type '%s'", calleeType),
				node.Callee.Span(),
			)
		}
		return NewErrorType()
	}

	callee := "function"
	if ident, isIdent := node.Callee.(ast.IdentExpression); isIdent {
		callee = fmt.Sprintf("'%s'", ident.Ident.Ident())
	}

	if len(node.Arguments) != len(funcType.Params) {
		for _, argument := range node.Arguments {
			self.expression(argument)
		}
		self.semanticError(
			diagnostic.ArgumentMismatch,
			fmt.Sprintf(
				"%s expects %d argument(s), found %d",
				capitalized(callee), len(funcType.Params), len(node.Arguments),
			),
			node.Range,
			fmt.Sprintf("The signature is '%s'", funcType),
		)
		return funcType.Return
	}

	for idx, argument := range node.Arguments {
		argumentType := self.expression(argument)
		if !assignable(funcType.Params[idx], argumentType) {
			self.semanticError(
				diagnostic.ArgumentMismatch,
				fmt.Sprintf(
					"Argument %d to %s: expected '%s', found '%s'",
					idx+1, callee, funcType.Params[idx], decay(argumentType),
				),
				argument.Span(),
			)
		}
	}
	return funcType.Return
}

//
// Subscripts
//

func (self *Analyzer) indexExpression(node ast.IndexExpression) Type {
	baseType := decay(self.expression(node.Base))

	indexType := self.expression(node.Index)
	if !isError(indexType) && !isInteger(indexType) {
		self.semanticError(
			diagnostic.InvalidSubscript,
			fmt.Sprintf("Array subscript must be an integer, found '%s'", indexType),
			node.Index.Span(),
		)
	}

	if isError(baseType) {
		return NewErrorType()
	}
	pointer, isPointer := baseType.(PointerType)
	if !isPointer {
		self.semanticError(
			diagnostic.InvalidSubscript,
			fmt.Sprintf("Cannot subscript a value of type '%s'", baseType),
			node.Base.Span(),
		)
		return NewErrorType()
	}
	if pointer.Inner.Kind() == VoidTypeKind {
		self.semanticError(
			diagnostic.InvalidSubscript,
			"Cannot subscript a pointer to 'void'",
			node.Base.Span(),
		)
		return NewErrorType()
	}
	return pointer.Inner
}

//
// Member access
//

func (self *Analyzer) memberExpression(node ast.MemberExpression) Type {
	baseType := self.expression(node.Base)
	if isError(baseType) {
		return NewErrorType()
	}

	if node.Deref {
		pointer, isPointer := decay(baseType).(PointerType)
		if !isPointer {
			self.semanticError(
				diagnostic.TypeMismatch,
				fmt.Sprintf("'->' requires a pointer to a struct or union, found '%s'", baseType),
				node.Base.Span(),
			)
			return NewErrorType()
		}
		baseType = pointer.Inner
	}

	record, isRecord := baseType.(*RecordType)
	if !isRecord {
		operator := "."
		if node.Deref {
			operator = "->"
		}
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("'%s' requires a struct or union, found '%s'", operator, baseType),
			node.Base.Span(),
		)
		return NewErrorType()
	}

	if record.Members == nil {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Member access on incomplete type '%s'", record),
			node.Base.Span(),
			fmt.Sprintf("The body of '%s' has not been declared at this point", record),
		)
		return NewErrorType()
	}

	member, found := record.Member(node.Member.Ident())
	if !found {
		notes := make([]string, 0)
		if closest := closestMember(record, node.Member.Ident()); closest != "" {
			notes = append(notes, fmt.Sprintf("A member with a similar name exists: did you mean '%s'?", closest))
		}
		self.semanticError(
			diagnostic.UnknownMember,
			fmt.Sprintf("Type '%s' has no member named '%s'", record, node.Member.Ident()),
			node.Member.Span(),
			notes...,
		)
		return NewErrorType()
	}
	return member.Type
}

func closestMember(record *RecordType, name string) string {
	best := ""
	bestDistance := suggestionDistance + 1
	for _, member := range record.Members {
		distance := levenshtein.ComputeDistance(name, member.Name)
		if distance < bestDistance || (distance == bestDistance && (best == "" || member.Name < best)) {
			best = member.Name
			bestDistance = distance
		}
	}
	return best
}

//
// Casts and sizeof
//

func (self *Analyzer) castExpression(node ast.CastExpression) Type {
	target := self.lowerTypeSpec(node.Target)
	operandType := decay(self.expression(node.Operand))
	if isError(target) || isError(operandType) {
		return target
	}

	// casting to void discards the value
	if target.Kind() == VoidTypeKind {
		return target
	}

	if !isScalar(target) || !isScalar(operandType) {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Cannot cast '%s' to '%s'", operandType, target),
			node.Range,
		)
		return NewErrorType()
	}
	return target
}

func (self *Analyzer) sizeofExpression(node ast.SizeofExpression) Type {
	if node.Target != nil {
		self.lowerTypeSpec(node.Target)
	} else {
		self.expression(node.Operand)
	}
	// size_t
	return NewIntType(64, false)
}

// isLvalue reports whether an expression designates storage that can be
// assigned to or have its address taken.
func isLvalue(node ast.Expression) bool {
	switch node := node.(type) {
	case ast.IdentExpression, ast.IndexExpression, ast.MemberExpression:
		return true
	case ast.PrefixExpression:
		return node.Operator == ast.PrefixDerefOperator
	default:
		return false
	}
}
