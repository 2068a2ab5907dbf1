// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaparse validates that a token stream produced by
// [github.com/JEBANERD/luaucheck/internal/lualex] forms a syntactically valid Luau
// chunk.
//
// The parser is a recursive-descent predictive parser over a materialized
// token vector: unlike a compiler front end, it performs
// no code generation and builds no abstract syntax tree. Its sole job is to
// accept or reject, producing at most one [SyntaxError] per call to
// [Validate]. Luau's type annotations are not validated against a type
// grammar; the parser tolerantly skips a balanced run of tokens wherever a
// type would appear (see skipBalanced).
package luaparse

import (
	"fmt"

	"github.com/JEBANERD/luaucheck/internal/lualex"
)

// A SyntaxError reports a syntactically invalid Luau chunk.
type SyntaxError struct {
	Position lualex.Position
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s", e.Position, e.Message)
}

func syntaxErrorf(pos lualex.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Position: pos, Message: fmt.Sprintf(format, args...)}
}

// Validate reports whether tokens form a syntactically valid Luau chunk.
// tokens must end with exactly one [lualex.EOFToken], as returned by
// [lualex.Tokenize]. Validate returns nil on success or a *[SyntaxError] on
// the first syntax error encountered; it performs no error recovery.
func Validate(tokens []lualex.Token) error {
	p := &parser{tokens: tokens}
	return p.block(blockEnders)
}

// parser is the in-progress state of a [Validate] call.
type parser struct {
	tokens []lualex.Token
	pos    int
}

func (p *parser) cur() lualex.Token {
	return p.tokens[p.pos]
}

// peek returns the token after the current one, or the EOF token if there is none.
func (p *parser) peek() lualex.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// advance returns the current token and moves to the next one,
// unless the current token is EOF.
func (p *parser) advance() lualex.Token {
	tok := p.cur()
	if tok.Kind != lualex.EOFToken {
		p.pos++
	}
	return tok
}

func (p *parser) check(kind lualex.TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *parser) checkAny(kinds ...lualex.TokenKind) bool {
	cur := p.cur().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// checkName reports whether the current token is an identifier
// spelled exactly as name. It is used for Luau's contextual keywords
// ("type") which lex as ordinary identifiers.
func (p *parser) checkName(name string) bool {
	tok := p.cur()
	return tok.Kind == lualex.IdentifierToken && tok.Value == name
}

func (p *parser) match(kinds ...lualex.TokenKind) bool {
	if p.checkAny(kinds...) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) consume(kind lualex.TokenKind, message string) (lualex.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lualex.Token{}, syntaxErrorf(p.cur().Position, "%s", message)
}

// blockEnders is the set of tokens that can terminate the top-level chunk block.
var blockEnders = []lualex.TokenKind{lualex.EOFToken}

// block parses a sequence of statements until a token in enders is reached.
func (p *parser) block(enders []lualex.TokenKind) error {
	for !p.checkAny(enders...) && !p.check(lualex.EOFToken) {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) statement() error {
	if p.match(lualex.SemiToken) {
		return nil
	}
	tok := p.cur()
	switch tok.Kind {
	case lualex.IfToken:
		return p.ifStatement()
	case lualex.WhileToken:
		p.advance()
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.consume(lualex.DoToken, "expected 'do' after while condition"); err != nil {
			return err
		}
		if err := p.block(endOnly); err != nil {
			return err
		}
		_, err := p.consume(lualex.EndToken, "expected 'end' after while block")
		return err
	case lualex.DoToken:
		p.advance()
		if err := p.block(endOnly); err != nil {
			return err
		}
		_, err := p.consume(lualex.EndToken, "expected 'end' after do block")
		return err
	case lualex.RepeatToken:
		p.advance()
		if err := p.block(untilOnly); err != nil {
			return err
		}
		if _, err := p.consume(lualex.UntilToken, "expected 'until' to close repeat"); err != nil {
			return err
		}
		return p.expression()
	case lualex.ForToken:
		return p.forStatement()
	case lualex.FunctionToken:
		p.advance()
		return p.functionStatement()
	case lualex.LocalToken:
		p.advance()
		return p.localStatement()
	case lualex.ReturnToken:
		p.advance()
		if !p.checkAny(lualex.EndToken, lualex.ElseToken, lualex.ElseifToken, lualex.UntilToken, lualex.EOFToken) {
			if err := p.expressionList(); err != nil {
				return err
			}
		}
		return nil
	case lualex.BreakToken, lualex.ContinueToken:
		p.advance()
		return nil
	case lualex.GotoToken:
		p.advance()
		_, err := p.consume(lualex.IdentifierToken, "expected label name after 'goto'")
		return err
	case lualex.LabelToken:
		p.advance()
		if _, err := p.consume(lualex.IdentifierToken, "expected label name after '::'"); err != nil {
			return err
		}
		_, err := p.consume(lualex.LabelToken, "expected closing '::' for label")
		return err
	case lualex.ExportToken:
		p.advance()
		return p.exportStatement()
	case lualex.IdentifierToken:
		if tok.Value == "type" {
			p.advance()
			return p.typeAlias()
		}
	}
	return p.assignmentOrCall()
}

var endOnly = []lualex.TokenKind{lualex.EndToken}
var untilOnly = []lualex.TokenKind{lualex.UntilToken}
var ifBlockEnders = []lualex.TokenKind{lualex.EndToken, lualex.ElseToken, lualex.ElseifToken}

func (p *parser) ifStatement() error {
	p.advance()
	if err := p.expression(); err != nil {
		return err
	}
	if _, err := p.consume(lualex.ThenToken, "expected 'then' after if condition"); err != nil {
		return err
	}
	if err := p.block(ifBlockEnders); err != nil {
		return err
	}
	for p.match(lualex.ElseifToken) {
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.consume(lualex.ThenToken, "expected 'then' after elseif condition"); err != nil {
			return err
		}
		if err := p.block(ifBlockEnders); err != nil {
			return err
		}
	}
	if p.match(lualex.ElseToken) {
		if err := p.block(endOnly); err != nil {
			return err
		}
	}
	_, err := p.consume(lualex.EndToken, "expected 'end' to close if")
	return err
}

var forNumericStop = []lualex.TokenKind{lualex.CommaToken, lualex.InToken, lualex.DoToken}
var forInStop = []lualex.TokenKind{lualex.CommaToken, lualex.InToken}

func (p *parser) forStatement() error {
	p.advance()
	if _, err := p.consume(lualex.IdentifierToken, "expected identifier after 'for'"); err != nil {
		return err
	}
	if p.check(lualex.ColonToken) {
		if err := p.skipTypeAnnotation(forNumericStop, false); err != nil {
			return err
		}
	}
	if p.match(lualex.AssignToken) {
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.consume(lualex.CommaToken, "expected ',' in numeric for"); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
		if p.match(lualex.CommaToken) {
			if err := p.expression(); err != nil {
				return err
			}
		}
		if _, err := p.consume(lualex.DoToken, "expected 'do' after for range"); err != nil {
			return err
		}
		if err := p.block(endOnly); err != nil {
			return err
		}
		_, err := p.consume(lualex.EndToken, "expected 'end' after for loop")
		return err
	}
	for p.match(lualex.CommaToken) {
		if _, err := p.consume(lualex.IdentifierToken, "expected identifier in for-in list"); err != nil {
			return err
		}
		if p.check(lualex.ColonToken) {
			if err := p.skipTypeAnnotation(forInStop, false); err != nil {
				return err
			}
		}
	}
	if _, err := p.consume(lualex.InToken, "expected 'in' in for-in loop"); err != nil {
		return err
	}
	if err := p.expressionList(); err != nil {
		return err
	}
	if _, err := p.consume(lualex.DoToken, "expected 'do' after for-in iterator"); err != nil {
		return err
	}
	if err := p.block(endOnly); err != nil {
		return err
	}
	_, err := p.consume(lualex.EndToken, "expected 'end' after for-in loop")
	return err
}

func (p *parser) functionStatement() error {
	if err := p.functionName(); err != nil {
		return err
	}
	if err := p.functionGenericParamsOptional(); err != nil {
		return err
	}
	return p.functionBody()
}

func (p *parser) functionName() error {
	if _, err := p.consume(lualex.IdentifierToken, "expected function name"); err != nil {
		return err
	}
	for p.match(lualex.DotToken) {
		if _, err := p.consume(lualex.IdentifierToken, "expected field name after '.'"); err != nil {
			return err
		}
	}
	if p.match(lualex.ColonToken) {
		if _, err := p.consume(lualex.IdentifierToken, "expected method name after ':'"); err != nil {
			return err
		}
	}
	return nil
}

// functionGenericParamsOptional skips an optional `< ... >` generic
// parameter list following a function name or a type alias name.
func (p *parser) functionGenericParamsOptional() error {
	if !p.match(lualex.LessToken) {
		return nil
	}
	depth := 1
	for depth > 0 {
		if p.check(lualex.EOFToken) {
			return syntaxErrorf(p.cur().Position, "unterminated generic parameter list")
		}
		tok := p.advance()
		switch tok.Kind {
		case lualex.VarargToken:
			if p.check(lualex.IdentifierToken) {
				p.advance()
			}
		case lualex.IdentifierToken, lualex.CommaToken:
			// Continue.
		case lualex.GreaterToken:
			depth--
		case lualex.LessToken:
			depth++
		default:
			return syntaxErrorf(tok.Position, "unexpected token in generic parameter list")
		}
	}
	return nil
}

var functionBodyReturnStop = []lualex.TokenKind{
	lualex.EndToken, lualex.LocalToken, lualex.IfToken, lualex.ForToken,
	lualex.WhileToken, lualex.RepeatToken, lualex.ReturnToken, lualex.FunctionToken,
	lualex.DoToken, lualex.BreakToken, lualex.ContinueToken, lualex.GotoToken,
	lualex.SemiToken, lualex.EOFToken,
}
var paramListStop = []lualex.TokenKind{lualex.CommaToken, lualex.RParenToken}

func (p *parser) functionBody() error {
	if _, err := p.consume(lualex.LParenToken, "expected '(' to start parameter list"); err != nil {
		return err
	}
	if !p.check(lualex.RParenToken) {
		for {
			if p.match(lualex.VarargToken) {
				if p.check(lualex.IdentifierToken) {
					p.advance()
				}
				if p.check(lualex.ColonToken) {
					if err := p.skipTypeAnnotation(paramListStop, false); err != nil {
						return err
					}
				}
				break
			}
			if _, err := p.consume(lualex.IdentifierToken, "expected parameter name"); err != nil {
				return err
			}
			if p.check(lualex.ColonToken) {
				if err := p.skipTypeAnnotation(paramListStop, false); err != nil {
					return err
				}
			}
			if !p.match(lualex.CommaToken) {
				break
			}
		}
	}
	if _, err := p.consume(lualex.RParenToken, "expected ')' after parameters"); err != nil {
		return err
	}
	if p.check(lualex.ColonToken) {
		if err := p.skipTypeAnnotation(functionBodyReturnStop, true); err != nil {
			return err
		}
	}
	if err := p.block(endOnly); err != nil {
		return err
	}
	_, err := p.consume(lualex.EndToken, "expected 'end' after function body")
	return err
}

var localTypeStop = []lualex.TokenKind{
	lualex.CommaToken, lualex.AssignToken, lualex.LocalToken, lualex.FunctionToken,
	lualex.IfToken, lualex.ForToken, lualex.WhileToken, lualex.RepeatToken,
	lualex.ReturnToken, lualex.BreakToken, lualex.ContinueToken, lualex.GotoToken,
	lualex.EndToken, lualex.ElseToken, lualex.ElseifToken, lualex.UntilToken, lualex.ExportToken,
}

func (p *parser) localStatement() error {
	if p.match(lualex.FunctionToken) {
		if _, err := p.consume(lualex.IdentifierToken, "expected function name"); err != nil {
			return err
		}
		if err := p.functionGenericParamsOptional(); err != nil {
			return err
		}
		return p.functionBody()
	}
	if p.checkName("type") {
		p.advance()
		return p.typeAlias()
	}
	for {
		if _, err := p.consume(lualex.IdentifierToken, "expected local variable name"); err != nil {
			return err
		}
		if p.check(lualex.ColonToken) {
			if err := p.skipTypeAnnotation(localTypeStop, true); err != nil {
				return err
			}
		}
		if !p.match(lualex.CommaToken) {
			break
		}
	}
	if p.match(lualex.AssignToken) {
		return p.expressionList()
	}
	return nil
}

func (p *parser) exportStatement() error {
	if p.checkName("type") {
		p.advance()
		return p.typeAlias()
	}
	return syntaxErrorf(p.cur().Position, "only 'export type' statements are supported")
}

func (p *parser) typeAlias() error {
	if _, err := p.consume(lualex.IdentifierToken, "expected type name"); err != nil {
		return err
	}
	if err := p.functionGenericParamsOptional(); err != nil {
		return err
	}
	if _, err := p.consume(lualex.AssignToken, "expected '=' in type definition"); err != nil {
		return err
	}
	return p.skipTypeExpression()
}

var typeExpressionStop = []lualex.TokenKind{
	lualex.SemiToken, lualex.LocalToken, lualex.FunctionToken, lualex.IfToken,
	lualex.ForToken, lualex.WhileToken, lualex.RepeatToken, lualex.ReturnToken,
	lualex.BreakToken, lualex.ContinueToken, lualex.GotoToken, lualex.ExportToken, lualex.EndToken,
}

func (p *parser) skipTypeExpression() error {
	return p.skipBalanced(typeExpressionStop, false, true)
}

func (p *parser) skipTypeAnnotation(stop []lualex.TokenKind, stopOnName bool) error {
	if _, err := p.consume(lualex.ColonToken, "expected ':' for type annotation"); err != nil {
		return err
	}
	return p.skipBalanced(stop, false, stopOnName)
}

// exprBoundary is the set of tokens that always terminate a tolerant type
// skip when encountered outside any bracket nesting.
//
// BitAndToken ('&') and BitOrToken ('|') are deliberately absent: lualex
// lexes '&' and '|' to these same kinds in type position, where they mean
// intersection and union, not bitwise and/or (matching the reference
// checker's EXPR_BOUNDARY_TOKENS, which never lists the PIPE/AMP token
// names it actually produces, only the dead BITAND/BITOR ones its own
// lexer never emits). Treating them as boundaries here would make every
// `A | B` or `A & B` type annotation a syntax error. BitXorToken ('~') has
// no meaning in type position either, but including it is harmless since
// Luau type syntax has no other use for a bare '~'.
var exprBoundary = map[lualex.TokenKind]bool{
	lualex.CommaToken: true, lualex.RParenToken: true, lualex.RBracketToken: true,
	lualex.RBraceToken: true, lualex.AddToken: true, lualex.SubToken: true,
	lualex.MulToken: true, lualex.DivToken: true, lualex.IntDivToken: true,
	lualex.ModToken: true, lualex.PowToken: true, lualex.EqualToken: true,
	lualex.NotEqualToken: true, lualex.LessToken: true, lualex.LessEqualToken: true,
	lualex.GreaterToken: true, lualex.GreaterEqualToken: true, lualex.LShiftToken: true,
	lualex.RShiftToken: true, lualex.BitXorToken: true, lualex.ConcatToken: true,
	lualex.AndToken: true, lualex.OrToken: true, lualex.ThenToken: true,
	lualex.ElseToken: true, lualex.ElseifToken: true, lualex.UntilToken: true,
	lualex.EndToken: true, lualex.AssignToken: true,
}

// suffixBoundary is the set of tokens that terminate a tolerant type skip
// when allowSuffix is set and the previous token was a type-end token.
var suffixBoundary = map[lualex.TokenKind]bool{
	lualex.DotToken: true, lualex.ColonToken: true, lualex.LParenToken: true,
	lualex.LBracketToken: true, lualex.StringToken: true,
}

// typeEnd is the set of tokens that can plausibly end a type expression,
// used to decide whether a following NAME or suffix boundary token starts a
// new statement rather than continuing the type.
var typeEnd = map[lualex.TokenKind]bool{
	lualex.IdentifierToken: true, lualex.NumeralToken: true, lualex.StringToken: true,
	lualex.NilToken: true, lualex.TrueToken: true, lualex.FalseToken: true,
	lualex.RBraceToken: true, lualex.RBracketToken: true, lualex.RParenToken: true,
	lualex.QuestionToken: true, lualex.GreaterToken: true, lualex.VarargToken: true,
}

// skipBalanced tolerantly consumes a run of tokens that make up a Luau type
// expression, without validating the type grammar itself. It tracks nesting
// depth across `( ) [ ] { } < >` so that commas and `>` inside generics do
// not terminate the skip prematurely, and stops at the first token in stop
// or in the general expression-boundary set once nesting returns to zero.
func (p *parser) skipBalanced(stop []lualex.TokenKind, allowSuffix, stopOnName bool) error {
	var depthStack []lualex.TokenKind
	var lastKind lualex.TokenKind
	haveLast := false
	stopSet := make(map[lualex.TokenKind]bool, len(stop))
	for _, k := range stop {
		stopSet[k] = true
	}
	for {
		tok := p.cur()
		if tok.Kind == lualex.EOFToken {
			return nil
		}
		if len(depthStack) == 0 {
			if stopSet[tok.Kind] || exprBoundary[tok.Kind] {
				return nil
			}
			if allowSuffix && suffixBoundary[tok.Kind] && haveLast && typeEnd[lastKind] {
				return nil
			}
			if stopOnName && tok.Kind == lualex.IdentifierToken && haveLast && typeEnd[lastKind] {
				return nil
			}
		}
		p.advance()
		lastKind = tok.Kind
		haveLast = true
		switch tok.Kind {
		case lualex.LParenToken, lualex.LBraceToken, lualex.LBracketToken:
			depthStack = append(depthStack, tok.Kind)
		case lualex.LessToken:
			depthStack = append(depthStack, lualex.LessToken)
		case lualex.RParenToken:
			if len(depthStack) > 0 && depthStack[len(depthStack)-1] == lualex.LParenToken {
				depthStack = depthStack[:len(depthStack)-1]
			}
		case lualex.RBraceToken:
			if len(depthStack) > 0 && depthStack[len(depthStack)-1] == lualex.LBraceToken {
				depthStack = depthStack[:len(depthStack)-1]
			}
		case lualex.RBracketToken:
			if len(depthStack) > 0 && depthStack[len(depthStack)-1] == lualex.LBracketToken {
				depthStack = depthStack[:len(depthStack)-1]
			}
		case lualex.GreaterToken:
			if len(depthStack) > 0 && depthStack[len(depthStack)-1] == lualex.LessToken {
				depthStack = depthStack[:len(depthStack)-1]
			}
		}
	}
}

var compoundAssignOps = map[lualex.TokenKind]bool{
	lualex.AddToken: true, lualex.SubToken: true, lualex.MulToken: true,
	lualex.DivToken: true, lualex.IntDivToken: true, lualex.ModToken: true,
	lualex.PowToken: true, lualex.ConcatToken: true, lualex.LShiftToken: true,
	lualex.RShiftToken: true, lualex.BitAndToken: true, lualex.BitOrToken: true,
}

func (p *parser) assignmentOrCall() error {
	firstIsCall, err := p.prefixExpression()
	if err != nil {
		return err
	}
	targetCount := 1
	for p.match(lualex.CommaToken) {
		if _, err := p.prefixExpression(); err != nil {
			return err
		}
		targetCount++
	}
	if p.match(lualex.AssignToken) {
		return p.expressionList()
	}
	if compoundAssignOps[p.cur().Kind] && p.peek().Kind == lualex.AssignToken {
		p.advance()
		p.advance()
		return p.expression()
	}
	if !firstIsCall || targetCount > 1 {
		return syntaxErrorf(p.cur().Position, "expected function call in statement")
	}
	return nil
}

func (p *parser) expressionList() error {
	if err := p.expression(); err != nil {
		return err
	}
	for p.match(lualex.CommaToken) {
		if err := p.expression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) expression() error {
	if p.check(lualex.IfToken) {
		p.advance()
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.consume(lualex.ThenToken, "expected 'then' in if expression"); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.consume(lualex.ElseToken, "expected 'else' in if expression"); err != nil {
			return err
		}
		return p.expression()
	}
	return p.orExpression()
}

func (p *parser) orExpression() error {
	if err := p.andExpression(); err != nil {
		return err
	}
	for p.match(lualex.OrToken) {
		if err := p.andExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) andExpression() error {
	if err := p.comparisonExpression(); err != nil {
		return err
	}
	for p.match(lualex.AndToken) {
		if err := p.comparisonExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) comparisonExpression() error {
	if err := p.bitwiseOrExpression(); err != nil {
		return err
	}
	for p.checkAny(lualex.LessToken, lualex.LessEqualToken, lualex.GreaterToken, lualex.GreaterEqualToken, lualex.EqualToken, lualex.NotEqualToken) {
		p.advance()
		if err := p.bitwiseOrExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) bitwiseOrExpression() error {
	if err := p.bitwiseXorExpression(); err != nil {
		return err
	}
	for p.match(lualex.BitOrToken) {
		if err := p.bitwiseXorExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) bitwiseXorExpression() error {
	if err := p.bitwiseAndExpression(); err != nil {
		return err
	}
	for p.match(lualex.BitXorToken) {
		if err := p.bitwiseAndExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) bitwiseAndExpression() error {
	if err := p.shiftExpression(); err != nil {
		return err
	}
	for p.match(lualex.BitAndToken) {
		if err := p.shiftExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) shiftExpression() error {
	if err := p.concatExpression(); err != nil {
		return err
	}
	for p.checkAny(lualex.LShiftToken, lualex.RShiftToken) {
		p.advance()
		if err := p.concatExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) concatExpression() error {
	if err := p.addExpression(); err != nil {
		return err
	}
	for p.match(lualex.ConcatToken) {
		if err := p.addExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) addExpression() error {
	if err := p.mulExpression(); err != nil {
		return err
	}
	for p.checkAny(lualex.AddToken, lualex.SubToken) {
		p.advance()
		if err := p.mulExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) mulExpression() error {
	if err := p.unaryExpression(); err != nil {
		return err
	}
	for p.checkAny(lualex.MulToken, lualex.DivToken, lualex.IntDivToken, lualex.ModToken) {
		p.advance()
		if err := p.unaryExpression(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) unaryExpression() error {
	if p.checkAny(lualex.NotToken, lualex.SubToken, lualex.LenToken, lualex.BitXorToken) {
		p.advance()
		return p.unaryExpression()
	}
	return p.powerExpression()
}

func (p *parser) powerExpression() error {
	isCall, err := p.primaryExpression()
	_ = isCall
	if err != nil {
		return err
	}
	for p.match(lualex.PowToken) {
		if err := p.unaryExpression(); err != nil {
			return err
		}
	}
	return nil
}

// primaryExpression parses a primary expression and any trailing suffixes,
// reporting whether the outermost suffix was a call.
func (p *parser) primaryExpression() (bool, error) {
	tok := p.cur()
	switch tok.Kind {
	case lualex.NumeralToken, lualex.StringToken, lualex.NilToken, lualex.TrueToken, lualex.FalseToken, lualex.VarargToken:
		p.advance()
		return false, nil
	case lualex.FunctionToken:
		p.advance()
		if err := p.functionGenericParamsOptional(); err != nil {
			return false, err
		}
		return false, p.functionBody()
	case lualex.LBraceToken:
		return false, p.tableConstructor()
	case lualex.LParenToken:
		p.advance()
		if err := p.expression(); err != nil {
			return false, err
		}
		if _, err := p.consume(lualex.RParenToken, "expected ')' to close expression"); err != nil {
			return false, err
		}
		return p.suffixExpression()
	case lualex.IdentifierToken:
		p.advance()
		return p.suffixExpression()
	default:
		return false, syntaxErrorf(tok.Position, "unexpected expression")
	}
}

// prefixExpression parses a prefix expression (the left side of an
// assignment or the callee of a call statement), reporting whether its
// outermost suffix was a call.
func (p *parser) prefixExpression() (bool, error) {
	if p.match(lualex.LParenToken) {
		if err := p.expression(); err != nil {
			return false, err
		}
		if _, err := p.consume(lualex.RParenToken, "expected ')' in expression"); err != nil {
			return false, err
		}
	} else if !p.match(lualex.IdentifierToken) {
		return false, syntaxErrorf(p.cur().Position, "expected expression")
	}
	return p.suffixExpression()
}

var typeCastStop = []lualex.TokenKind{lualex.CommaToken, lualex.RParenToken, lualex.RBracketToken, lualex.RBraceToken}

func (p *parser) suffixExpression() (bool, error) {
	isCall := false
	for {
		tok := p.cur()
		switch tok.Kind {
		case lualex.LBracketToken:
			p.advance()
			if err := p.expression(); err != nil {
				return false, err
			}
			if _, err := p.consume(lualex.RBracketToken, "expected ']' after indexing expression"); err != nil {
				return false, err
			}
			isCall = false
			continue
		case lualex.DotToken:
			p.advance()
			if _, err := p.consume(lualex.IdentifierToken, "expected field name after '.'"); err != nil {
				return false, err
			}
			isCall = false
			continue
		case lualex.ColonToken:
			p.advance()
			if _, err := p.consume(lualex.IdentifierToken, "expected method name after ':'"); err != nil {
				return false, err
			}
			if err := p.parseArgs(); err != nil {
				return false, err
			}
			isCall = true
			continue
		case lualex.LParenToken, lualex.LBraceToken, lualex.StringToken:
			if err := p.parseArgs(); err != nil {
				return false, err
			}
			isCall = true
			continue
		case lualex.LabelToken:
			p.advance()
			if err := p.skipBalanced(typeCastStop, true, true); err != nil {
				return false, err
			}
			isCall = false
			continue
		}
		break
	}
	return isCall, nil
}

func (p *parser) parseArgs() error {
	tok := p.cur()
	switch tok.Kind {
	case lualex.LParenToken:
		p.advance()
		if !p.check(lualex.RParenToken) {
			if err := p.expressionList(); err != nil {
				return err
			}
		}
		_, err := p.consume(lualex.RParenToken, "expected ')' after arguments")
		return err
	case lualex.LBraceToken:
		return p.tableConstructor()
	case lualex.StringToken:
		p.advance()
		return nil
	default:
		return syntaxErrorf(tok.Position, "invalid argument list")
	}
}

var fieldTypeStop = []lualex.TokenKind{lualex.CommaToken, lualex.RBraceToken}
var tableEnders = map[lualex.TokenKind]bool{
	lualex.LocalToken: true, lualex.FunctionToken: true, lualex.IfToken: true,
	lualex.ForToken: true, lualex.WhileToken: true, lualex.RepeatToken: true,
	lualex.ReturnToken: true, lualex.BreakToken: true, lualex.ContinueToken: true,
	lualex.GotoToken: true, lualex.ExportToken: true,
}

func (p *parser) tableConstructor() error {
	if _, err := p.consume(lualex.LBraceToken, "expected '{' for table constructor"); err != nil {
		return err
	}
	if !p.check(lualex.RBraceToken) {
		for {
			switch {
			case p.match(lualex.LBracketToken):
				if err := p.expression(); err != nil {
					return err
				}
				if _, err := p.consume(lualex.RBracketToken, "expected ']' in table constructor"); err != nil {
					return err
				}
				switch {
				case p.match(lualex.AssignToken):
					if err := p.expression(); err != nil {
						return err
					}
				case p.check(lualex.ColonToken):
					if err := p.skipTypeAnnotation(fieldTypeStop, false); err != nil {
						return err
					}
				default:
					return syntaxErrorf(p.cur().Position, "expected '=' or ':' after table key")
				}
			case p.check(lualex.IdentifierToken) && (p.peek().Kind == lualex.AssignToken || p.peek().Kind == lualex.ColonToken):
				p.advance()
				if p.match(lualex.AssignToken) {
					if err := p.expression(); err != nil {
						return err
					}
				} else if err := p.skipTypeAnnotation(fieldTypeStop, false); err != nil {
					return err
				}
			default:
				if err := p.expression(); err != nil {
					return err
				}
			}
			if p.match(lualex.CommaToken, lualex.SemiToken) {
				if p.check(lualex.RBraceToken) {
					break
				}
				next := p.cur()
				if tableEnders[next.Kind] || p.checkName("type") {
					break
				}
			} else {
				break
			}
		}
	}
	_, err := p.consume(lualex.RBraceToken, "expected '}' after table constructor")
	return err
}
