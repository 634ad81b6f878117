package token

// Kind defines the lexical category of a token.
type Kind int

const (
	KindInlineHTML Kind = iota
	KindOpenTag
	KindOpenTagWithEcho
	KindCloseTag
	KindWhitespace
	KindComment
	KindDocComment

	KindVariable
	KindString // identifiers, including true/false/null
	KindNumber
	KindConstantString
	KindHeredoc
	KindCast

	KindNsSeparator
	KindDoubleColon
	KindObjectOperator
	KindNullsafeObjectOperator
	KindDoubleArrow
	KindEllipsis

	KindIsEqual
	KindIsNotEqual
	KindIsIdentical
	KindIsNotIdentical
	KindIsSmallerOrEqual
	KindIsGreaterOrEqual
	KindSpaceship

	KindBooleanAnd
	KindBooleanOr
	KindLogicalAnd
	KindLogicalOr
	KindLogicalXor

	KindCoalesce
	KindCoalesceEqual
	KindAssignOp // compound assignment: .= += -= *= /= %= **= &= |= ^= <<= >>=
	KindInc
	KindDec
	KindPow
	KindShiftLeft
	KindShiftRight

	KindIf
	KindElseIf
	KindElse
	KindReturn
	KindThrow
	KindGoto
	KindCase
	KindEcho
	KindPrint
	KindYield
	KindIsset
	KindEmpty
	KindInstanceof
	KindNew
	KindFunction
	KindKeyword // any other reserved word

	KindDynamicPropBraceOpen
	KindDynamicPropBraceClose
	KindAttributeOpen

	KindChar // single-character punctuation or operator

	kindCount
)

var kindNames = [...]string{
	KindInlineHTML:             "InlineHTML",
	KindOpenTag:                "OpenTag",
	KindOpenTagWithEcho:        "OpenTagWithEcho",
	KindCloseTag:               "CloseTag",
	KindWhitespace:             "Whitespace",
	KindComment:                "Comment",
	KindDocComment:             "DocComment",
	KindVariable:               "Variable",
	KindString:                 "String",
	KindNumber:                 "Number",
	KindConstantString:         "ConstantString",
	KindHeredoc:                "Heredoc",
	KindCast:                   "Cast",
	KindNsSeparator:            "NsSeparator",
	KindDoubleColon:            "DoubleColon",
	KindObjectOperator:         "ObjectOperator",
	KindNullsafeObjectOperator: "NullsafeObjectOperator",
	KindDoubleArrow:            "DoubleArrow",
	KindEllipsis:               "Ellipsis",
	KindIsEqual:                "IsEqual",
	KindIsNotEqual:             "IsNotEqual",
	KindIsIdentical:            "IsIdentical",
	KindIsNotIdentical:         "IsNotIdentical",
	KindIsSmallerOrEqual:       "IsSmallerOrEqual",
	KindIsGreaterOrEqual:       "IsGreaterOrEqual",
	KindSpaceship:              "Spaceship",
	KindBooleanAnd:             "BooleanAnd",
	KindBooleanOr:              "BooleanOr",
	KindLogicalAnd:             "LogicalAnd",
	KindLogicalOr:              "LogicalOr",
	KindLogicalXor:             "LogicalXor",
	KindCoalesce:               "Coalesce",
	KindCoalesceEqual:          "CoalesceEqual",
	KindAssignOp:               "AssignOp",
	KindInc:                    "Inc",
	KindDec:                    "Dec",
	KindPow:                    "Pow",
	KindShiftLeft:              "ShiftLeft",
	KindShiftRight:             "ShiftRight",
	KindIf:                     "If",
	KindElseIf:                 "ElseIf",
	KindElse:                   "Else",
	KindReturn:                 "Return",
	KindThrow:                  "Throw",
	KindGoto:                   "Goto",
	KindCase:                   "Case",
	KindEcho:                   "Echo",
	KindPrint:                  "Print",
	KindYield:                  "Yield",
	KindIsset:                  "Isset",
	KindEmpty:                  "Empty",
	KindInstanceof:             "Instanceof",
	KindNew:                    "New",
	KindFunction:               "Function",
	KindKeyword:                "Keyword",
	KindDynamicPropBraceOpen:   "DynamicPropBraceOpen",
	KindDynamicPropBraceClose:  "DynamicPropBraceClose",
	KindAttributeOpen:          "AttributeOpen",
	KindChar:                   "Char",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// KindSet is an immutable set of token kinds.
type KindSet struct {
	bits [(kindCount + 63) / 64]uint64
}

// NewKindSet builds a set holding the given kinds.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s.bits[k/64] |= 1 << (uint(k) % 64)
	}
	return s
}

// Has reports whether k is a member of the set.
func (s KindSet) Has(k Kind) bool {
	if k < 0 || k >= kindCount {
		return false
	}
	return s.bits[k/64]&(1<<(uint(k)%64)) != 0
}

// Union returns a new set holding the members of both sets.
func (s KindSet) Union(other KindSet) KindSet {
	for i := range s.bits {
		s.bits[i] |= other.bits[i]
	}
	return s
}

var (
	// EqualityKinds are the equality-family comparison operators.
	EqualityKinds = NewKindSet(KindIsEqual, KindIsNotEqual, KindIsIdentical, KindIsNotIdentical)

	// LogicalKinds are the logical AND/OR operators a composite condition is split on.
	LogicalKinds = NewKindSet(KindBooleanAnd, KindBooleanOr, KindLogicalAnd, KindLogicalOr, KindLogicalXor)

	// ConditionKinds mark the statements whose parenthesised condition is rewritten.
	ConditionKinds = NewKindSet(KindIf, KindElseIf)
)
