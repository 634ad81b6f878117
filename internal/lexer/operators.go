package lexer

import (
	"strings"

	"github.com/gnolang/condfix/internal/token"
)

type operator struct {
	text string
	kind token.Kind
}

// operators is ordered longest first so the first match is the longest one.
var operators = []operator{
	{"<<=", token.KindAssignOp},
	{">>=", token.KindAssignOp},
	{"**=", token.KindAssignOp},
	{"===", token.KindIsIdentical},
	{"!==", token.KindIsNotIdentical},
	{"<=>", token.KindSpaceship},
	{"??=", token.KindCoalesceEqual},
	{"?->", token.KindNullsafeObjectOperator},
	{"...", token.KindEllipsis},

	{"==", token.KindIsEqual},
	{"!=", token.KindIsNotEqual},
	{"<>", token.KindIsNotEqual},
	{"<=", token.KindIsSmallerOrEqual},
	{">=", token.KindIsGreaterOrEqual},
	{"&&", token.KindBooleanAnd},
	{"||", token.KindBooleanOr},
	{"??", token.KindCoalesce},
	{"->", token.KindObjectOperator},
	{"=>", token.KindDoubleArrow},
	{"::", token.KindDoubleColon},
	{"++", token.KindInc},
	{"--", token.KindDec},
	{"**", token.KindPow},
	{"<<", token.KindShiftLeft},
	{">>", token.KindShiftRight},
	{"+=", token.KindAssignOp},
	{"-=", token.KindAssignOp},
	{"*=", token.KindAssignOp},
	{"/=", token.KindAssignOp},
	{".=", token.KindAssignOp},
	{"%=", token.KindAssignOp},
	{"&=", token.KindAssignOp},
	{"|=", token.KindAssignOp},
	{"^=", token.KindAssignOp},
}

// singleChars are the bytes lexed as one-character punctuation tokens.
const singleChars = "()[];,?:=!&|^+-*/%.<>@~$"

func matchOperator(s string) (token.Kind, int, bool) {
	for _, op := range operators {
		if strings.HasPrefix(s, op.text) {
			return op.kind, len(op.text), true
		}
	}
	return 0, 0, false
}

var keywords = map[string]token.Kind{
	"if":         token.KindIf,
	"elseif":     token.KindElseIf,
	"else":       token.KindElse,
	"return":     token.KindReturn,
	"throw":      token.KindThrow,
	"goto":       token.KindGoto,
	"case":       token.KindCase,
	"echo":       token.KindEcho,
	"print":      token.KindPrint,
	"yield":      token.KindYield,
	"isset":      token.KindIsset,
	"empty":      token.KindEmpty,
	"instanceof": token.KindInstanceof,
	"new":        token.KindNew,
	"function":   token.KindFunction,
	"fn":         token.KindFunction,
	"and":        token.KindLogicalAnd,
	"or":         token.KindLogicalOr,
	"xor":        token.KindLogicalXor,

	"abstract":     token.KindKeyword,
	"array":        token.KindKeyword,
	"as":           token.KindKeyword,
	"break":        token.KindKeyword,
	"callable":     token.KindKeyword,
	"catch":        token.KindKeyword,
	"class":        token.KindKeyword,
	"clone":        token.KindKeyword,
	"const":        token.KindKeyword,
	"continue":     token.KindKeyword,
	"declare":      token.KindKeyword,
	"default":      token.KindKeyword,
	"die":          token.KindKeyword,
	"do":           token.KindKeyword,
	"enddeclare":   token.KindKeyword,
	"endfor":       token.KindKeyword,
	"endforeach":   token.KindKeyword,
	"endif":        token.KindKeyword,
	"endswitch":    token.KindKeyword,
	"endwhile":     token.KindKeyword,
	"eval":         token.KindKeyword,
	"exit":         token.KindKeyword,
	"extends":      token.KindKeyword,
	"final":        token.KindKeyword,
	"finally":      token.KindKeyword,
	"for":          token.KindKeyword,
	"foreach":      token.KindKeyword,
	"global":       token.KindKeyword,
	"implements":   token.KindKeyword,
	"include":      token.KindKeyword,
	"include_once": token.KindKeyword,
	"insteadof":    token.KindKeyword,
	"interface":    token.KindKeyword,
	"list":         token.KindKeyword,
	"match":        token.KindKeyword,
	"namespace":    token.KindKeyword,
	"private":      token.KindKeyword,
	"protected":    token.KindKeyword,
	"public":       token.KindKeyword,
	"readonly":     token.KindKeyword,
	"require":      token.KindKeyword,
	"require_once": token.KindKeyword,
	"switch":       token.KindKeyword,
	"trait":        token.KindKeyword,
	"try":          token.KindKeyword,
	"unset":        token.KindKeyword,
	"use":          token.KindKeyword,
	"var":          token.KindKeyword,
	"while":        token.KindKeyword,
}
