package parser

import (
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
)

func (self *Parser) isTypeSpecifierStart() bool {
	switch self.currToken.Kind {
	case lexer.Void, lexer.Char, lexer.Short, lexer.Int, lexer.Long,
		lexer.Float, lexer.Double, lexer.Signed, lexer.Unsigned,
		lexer.Const, lexer.Struct, lexer.Union, lexer.Enum:
		return true
	case lexer.Identifier:
		// typedef names fed forward from completed declarations; an
		// unresolved identifier stays an identifier and the semantic
		// phase flags the fallout
		_, isTypedef := self.typedefs[self.currToken.Value]
		return isTypedef
	default:
		return false
	}
}

func (self *Parser) isDeclarationStart() bool {
	return self.currToken.Kind == lexer.Typedef || self.isTypeSpecifierStart()
}

// declaration parses one external or block-scope declaration. At top
// level a declarator with a function type and a following `{` becomes a
// function definition.
func (self *Parser) declaration(topLevel bool) (ast.Declaration, *errors.Error) {
	startLoc := self.currToken.Span.Start

	if self.currToken.Kind == lexer.Typedef {
		return self.typedefDeclaration()
	}

	base := self.typeSpecifier()

	// standalone record / enum declaration: `struct s { ... };`
	if self.currToken.Kind == lexer.Semicolon {
		self.next()
		span := self.spanFrom(startLoc)
		switch spec := base.(type) {
		case ast.RecordTypeSpec:
			return ast.RecordDeclaration{Record: spec, Range: span}, nil
		case ast.EnumTypeSpec:
			return ast.EnumDeclaration{Enum: spec, Range: span}, nil
		default:
			self.syntaxError(
				diagnostic.ExpectedDeclaration,
				"Declaration declares nothing",
				span,
			)
			return ast.ErrorDeclaration{Range: span}, nil
		}
	}

	first, params, isFunc := self.declarator(base)

	if isFunc && self.currToken.Kind == lexer.LCurly {
		if !topLevel {
			self.syntaxError(
				diagnostic.ExpectedDeclaration,
				"Function definitions are only allowed at file scope",
				self.currToken.Span,
			)
		}

		body, err := self.blockStatement()
		if err != nil {
			return nil, err
		}

		funcType := first.Type.(ast.FuncTypeSpec)
		return ast.FunctionDefinition{
			Ident:      first.Ident,
			ReturnType: funcType.Return,
			Params:     params,
			Body:       &body,
			Range:      self.spanFrom(startLoc),
		}, nil
	}

	if isFunc {
		// prototype: optionally followed by more declarators is not
		// supported, the prototype owns the whole declaration
		self.expectRecoverable(lexer.Semicolon)
		funcType := first.Type.(ast.FuncTypeSpec)
		return ast.FunctionDefinition{
			Ident:      first.Ident,
			ReturnType: funcType.Return,
			Params:     params,
			Body:       nil,
			Range:      self.spanFrom(startLoc),
		}, nil
	}

	declarators := []ast.Declarator{self.initializer(first)}

	for self.currToken.Kind == lexer.Comma {
		self.next()
		next, _, nextIsFunc := self.declarator(base)
		if nextIsFunc {
			self.syntaxError(
				diagnostic.ExpectedDeclaration,
				"Function declarators cannot share a declaration with variables",
				next.Range,
			)
			continue
		}
		declarators = append(declarators, self.initializer(next))
	}

	self.expectRecoverable(lexer.Semicolon)

	return ast.VariableDeclaration{
		Base:        base,
		Declarators: declarators,
		Range:       self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) initializer(declarator ast.Declarator) ast.Declarator {
	if self.currToken.Kind != lexer.Assign {
		return declarator
	}
	self.next()
	declarator.Initializer = self.assignmentExpression()
	declarator.Range = declarator.Range.Until(declarator.Initializer.Span())
	return declarator
}

//
// Typedef
//

func (self *Parser) typedefDeclaration() (ast.Declaration, *errors.Error) {
	startLoc := self.currToken.Span.Start

	// skip the `typedef`
	self.next()

	base := self.typeSpecifier()
	declarator, _, isFunc := self.declarator(base)
	if isFunc {
		self.syntaxError(
			diagnostic.ExpectedDeclaration,
			"Function typedefs are not supported",
			declarator.Range,
		)
	}
	self.expectRecoverable(lexer.Semicolon)

	if declarator.Ident.Ident() != "" {
		self.typedefs[declarator.Ident.Ident()] = struct{}{}
	}

	return ast.TypedefDeclaration{
		Ident: declarator.Ident,
		Type:  declarator.Type,
		Range: self.spanFrom(startLoc),
	}, nil
}

//
// Type specifiers
//

func (self *Parser) typeSpecifier() ast.TypeSpec {
	startLoc := self.currToken.Span.Start

	isConst := false
	for self.currToken.Kind == lexer.Const {
		isConst = true
		self.next()
	}

	switch self.currToken.Kind {
	case lexer.Struct, lexer.Union:
		return self.recordTypeSpec()
	case lexer.Enum:
		return self.enumTypeSpec()
	case lexer.Identifier:
		ident := ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
		self.next()
		return ast.NamedTypeSpec{
			Ident: ident,
			Const: isConst,
			Range: self.spanFrom(startLoc),
		}
	default:
		return self.builtinTypeSpec(startLoc, isConst)
	}
}

// builtinTypeSpec folds a run of builtin specifier keywords (for example
// `unsigned long int`) into one base type.
func (self *Parser) builtinTypeSpec(startLoc errors.Location, isConst bool) ast.TypeSpec {
	unsigned := false
	sawSigned := false
	base := ast.BaseInt
	sawBase := false

	for {
		switch self.currToken.Kind {
		case lexer.Unsigned:
			unsigned = true
		case lexer.Signed:
			sawSigned = true
		case lexer.Void:
			base = ast.BaseVoid
			sawBase = true
		case lexer.Char:
			base = ast.BaseChar
			sawBase = true
		case lexer.Short:
			base = ast.BaseShort
			sawBase = true
		case lexer.Long:
			// `long long` collapses to long
			if base != ast.BaseDouble {
				base = ast.BaseLong
			}
			sawBase = true
		case lexer.Int:
			if base != ast.BaseShort && base != ast.BaseLong {
				base = ast.BaseInt
			}
			sawBase = true
		case lexer.Float:
			base = ast.BaseFloat
			sawBase = true
		case lexer.Double:
			base = ast.BaseDouble
			sawBase = true
		case lexer.Const:
			isConst = true
		default:
			if !sawBase && !unsigned && !sawSigned {
				self.syntaxError(
					diagnostic.ExpectedToken,
					fmt.Sprintf("Expected type specifier, found '%s'", self.currToken.Kind),
					self.currToken.Span,
				)
			}
			return ast.BaseTypeSpec{
				Base:     base,
				Unsigned: unsigned,
				Const:    isConst,
				Range:    self.spanFrom(startLoc),
			}
		}
		self.next()
	}
}

func (self *Parser) recordTypeSpec() ast.TypeSpec {
	startLoc := self.currToken.Span.Start
	isUnion := self.currToken.Kind == lexer.Union

	// skip the `struct` / `union`
	self.next()

	tag := ast.SpannedIdent{}
	if self.currToken.Kind == lexer.Identifier {
		tag = ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
		self.next()
	}

	if self.currToken.Kind != lexer.LCurly {
		if tag.Ident() == "" {
			self.syntaxError(
				diagnostic.ExpectedToken,
				"Expected tag or member list after 'struct'",
				self.currToken.Span,
			)
		}
		return ast.RecordTypeSpec{
			IsUnion: isUnion,
			Tag:     tag,
			HasBody: false,
			Range:   self.spanFrom(startLoc),
		}
	}

	// skip the `{`
	self.next()

	members := make([]ast.RecordMember, 0)
	for self.currToken.Kind != lexer.RCurly && self.currToken.Kind != lexer.EOF {
		if !self.isTypeSpecifierStart() {
			errToken := self.currToken
			_, count := self.syncStatement()
			self.diags.Emit(diagnostic.Diagnostic{
				Phase:    diagnostic.PhaseSyntax,
				Level:    diagnostic.LevelError,
				Code:     diagnostic.ExpectedDeclaration,
				Message:  fmt.Sprintf("Expected member declaration, found '%s'", errToken.Kind),
				Span:     errToken.Span,
				Recovery: fmt.Sprintf("skipped %d token(s) inside the member list", count),
			})
			continue
		}

		memberStart := self.currToken.Span.Start
		base := self.typeSpecifier()
		declarator, _, isFunc := self.declarator(base)
		if isFunc {
			self.syntaxError(
				diagnostic.ExpectedDeclaration,
				"Function members are not allowed",
				declarator.Range,
			)
		}
		self.expectRecoverable(lexer.Semicolon)

		members = append(members, ast.RecordMember{
			Ident: declarator.Ident,
			Type:  declarator.Type,
			Range: self.spanFrom(memberStart),
		})
	}

	self.expectRecoverable(lexer.RCurly)

	return ast.RecordTypeSpec{
		IsUnion: isUnion,
		Tag:     tag,
		Members: members,
		HasBody: true,
		Range:   self.spanFrom(startLoc),
	}
}

func (self *Parser) enumTypeSpec() ast.TypeSpec {
	startLoc := self.currToken.Span.Start

	// skip the `enum`
	self.next()

	tag := ast.SpannedIdent{}
	if self.currToken.Kind == lexer.Identifier {
		tag = ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
		self.next()
	}

	if self.currToken.Kind != lexer.LCurly {
		if tag.Ident() == "" {
			self.syntaxError(
				diagnostic.ExpectedToken,
				"Expected tag or enumerator list after 'enum'",
				self.currToken.Span,
			)
		}
		return ast.EnumTypeSpec{
			Tag:     tag,
			HasBody: false,
			Range:   self.spanFrom(startLoc),
		}
	}

	// skip the `{`
	self.next()

	enumerators := make([]ast.Enumerator, 0)
	for self.currToken.Kind != lexer.RCurly && self.currToken.Kind != lexer.EOF {
		if self.currToken.Kind != lexer.Identifier {
			errToken := self.currToken
			_, count := self.syncStatement()
			self.diags.Emit(diagnostic.Diagnostic{
				Phase:    diagnostic.PhaseSyntax,
				Level:    diagnostic.LevelError,
				Code:     diagnostic.ExpectedToken,
				Message:  fmt.Sprintf("Expected enumerator name, found '%s'", errToken.Kind),
				Span:     errToken.Span,
				Recovery: fmt.Sprintf("skipped %d token(s) inside the enumerator list", count),
			})
			continue
		}

		enumStart := self.currToken.Span.Start
		ident := ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
		self.next()

		var value ast.Expression
		if self.currToken.Kind == lexer.Assign {
			self.next()
			value = self.assignmentExpression()
		}

		enumerators = append(enumerators, ast.Enumerator{
			Ident: ident,
			Value: value,
			Range: self.spanFrom(enumStart),
		})

		if self.currToken.Kind != lexer.Comma {
			break
		}
		self.next()
	}

	self.expectRecoverable(lexer.RCurly)

	return ast.EnumTypeSpec{
		Tag:         tag,
		Enumerators: enumerators,
		HasBody:     true,
		Range:       self.spanFrom(startLoc),
	}
}

//
// Declarators
//

// declarator parses pointer stars, the declared name and array/function
// suffixes over the given base type. The returned declarator carries the
// fully derived type.
func (self *Parser) declarator(base ast.TypeSpec) (declarator ast.Declarator, params []ast.Parameter, isFunc bool) {
	startLoc := self.currToken.Span.Start
	typ := base

	for self.currToken.Kind == lexer.Star {
		self.next()
		typ = ast.PointerTypeSpec{
			Inner: typ,
			Range: self.spanFrom(startLoc),
		}
	}

	ident := ast.SpannedIdent{}
	if self.currToken.Kind == lexer.Identifier {
		ident = ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
		self.next()
	} else {
		self.syntaxError(
			diagnostic.ExpectedToken,
			fmt.Sprintf("Expected identifier, found '%s'", self.currToken.Kind),
			self.currToken.Span,
		)
	}

	if self.currToken.Kind == lexer.LParen {
		params = self.parameterList()
		typ = ast.FuncTypeSpec{
			Return: typ,
			Params: params,
			Range:  self.spanFrom(startLoc),
		}
		return ast.Declarator{
			Ident: ident,
			Type:  typ,
			Range: self.spanFrom(startLoc),
		}, params, true
	}

	for self.currToken.Kind == lexer.LBracket {
		self.next()
		var length ast.Expression
		if self.currToken.Kind != lexer.RBracket {
			length = self.assignmentExpression()
		}
		self.expectRecoverable(lexer.RBracket)
		typ = ast.ArrayTypeSpec{
			Inner:  typ,
			Length: length,
			Range:  self.spanFrom(startLoc),
		}
	}

	return ast.Declarator{
		Ident: ident,
		Type:  typ,
		Range: self.spanFrom(startLoc),
	}, nil, false
}

// abstractDeclarator derives a type without a declared name, as used in
// casts and sizeof.
func (self *Parser) abstractDeclarator(base ast.TypeSpec) ast.TypeSpec {
	startLoc := self.currToken.Span.Start
	typ := base

	for self.currToken.Kind == lexer.Star {
		self.next()
		typ = ast.PointerTypeSpec{
			Inner: typ,
			Range: self.spanFrom(startLoc),
		}
	}

	for self.currToken.Kind == lexer.LBracket {
		self.next()
		var length ast.Expression
		if self.currToken.Kind != lexer.RBracket {
			length = self.assignmentExpression()
		}
		self.expectRecoverable(lexer.RBracket)
		typ = ast.ArrayTypeSpec{
			Inner:  typ,
			Length: length,
			Range:  self.spanFrom(startLoc),
		}
	}

	return typ
}

func (self *Parser) parameterList() []ast.Parameter {
	// skip the `(`
	self.next()

	params := make([]ast.Parameter, 0)

	if self.currToken.Kind == lexer.RParen {
		self.next()
		return params
	}

	for {
		paramStart := self.currToken.Span.Start

		if !self.isTypeSpecifierStart() {
			errToken := self.currToken
			_, count := self.syncParameter()
			self.diags.Emit(diagnostic.Diagnostic{
				Phase:    diagnostic.PhaseSyntax,
				Level:    diagnostic.LevelError,
				Code:     diagnostic.ExpectedToken,
				Message:  fmt.Sprintf("Expected parameter type, found '%s'", errToken.Kind),
				Span:     errToken.Span,
				Recovery: fmt.Sprintf("skipped %d token(s) inside the parameter list", count),
			})
			if self.currToken.Kind != lexer.Comma {
				break
			}
			self.next()
			continue
		}

		base := self.typeSpecifier()

		typ := base
		for self.currToken.Kind == lexer.Star {
			self.next()
			typ = ast.PointerTypeSpec{
				Inner: typ,
				Range: self.spanFrom(paramStart),
			}
		}

		ident := ast.SpannedIdent{}
		if self.currToken.Kind == lexer.Identifier {
			ident = ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
			self.next()
		}

		for self.currToken.Kind == lexer.LBracket {
			self.next()
			var length ast.Expression
			if self.currToken.Kind != lexer.RBracket {
				length = self.assignmentExpression()
			}
			self.expectRecoverable(lexer.RBracket)
			typ = ast.ArrayTypeSpec{
				Inner:  typ,
				Length: length,
				Range:  self.spanFrom(paramStart),
			}
		}

		params = append(params, ast.Parameter{
			Ident: ident,
			Type:  typ,
			Range: self.spanFrom(paramStart),
		})

		if self.currToken.Kind != lexer.Comma {
			break
		}
		self.next()
	}

	self.expectRecoverable(lexer.RParen)

	// `(void)` declares an empty parameter list
	if len(params) == 1 && params[0].Ident.Ident() == "" {
		if base, isBase := params[0].Type.(ast.BaseTypeSpec); isBase && base.Base == ast.BaseVoid {
			return params[:0]
		}
	}

	return params
}

// syncParameter discards tokens up to the next `,`, `)` or `;`.
func (self *Parser) syncParameter() (errors.Span, int) {
	startLoc := self.currToken.Span.Start
	skipped := 0
	for {
		switch self.currToken.Kind {
		case lexer.EOF, lexer.Comma, lexer.RParen, lexer.Semicolon, lexer.LCurly:
			return self.spanFrom(startLoc), skipped
		default:
			self.next()
			skipped++
		}
	}
}
