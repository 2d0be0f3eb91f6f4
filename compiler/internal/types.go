package internal

import "strings"

// TypeKind tags the variants of a checked type. ErrorTypeKind is the sentinel
// produced by failed checks; it compares unequal to every type including itself
// so that a subtree which already failed never matches anything downstream.
type TypeKind int

const (
	IntTypeKind TypeKind = iota
	BoolTypeKind
	VoidTypeKind
	StringTypeKind
	ErrorTypeKind
	StructTypeKind    // a variable of some declared struct type
	StructDefTypeKind // the struct type name itself
	FnTypeKind
)

type Type struct {
	Kind TypeKind
	// Def is the defining struct symbol for StructTypeKind and StructDefTypeKind.
	Def *SymbolDesc
	// Params and Ret are set for FnTypeKind.
	Params []Type
	Ret    *Type
}

var (
	IntType    = Type{Kind: IntTypeKind}
	BoolType   = Type{Kind: BoolTypeKind}
	VoidType   = Type{Kind: VoidTypeKind}
	StringType = Type{Kind: StringTypeKind}
	ErrorType  = Type{Kind: ErrorTypeKind}
)

func MakeStructType(def *SymbolDesc) Type {
	return Type{Kind: StructTypeKind, Def: def}
}

func MakeStructDefType(def *SymbolDesc) Type {
	return Type{Kind: StructDefTypeKind, Def: def}
}

func MakeFnType(params []Type, ret Type) Type {
	return Type{Kind: FnTypeKind, Params: params, Ret: &ret}
}

func (t Type) IsInt() bool       { return t.Kind == IntTypeKind }
func (t Type) IsBool() bool      { return t.Kind == BoolTypeKind }
func (t Type) IsVoid() bool      { return t.Kind == VoidTypeKind }
func (t Type) IsString() bool    { return t.Kind == StringTypeKind }
func (t Type) IsError() bool     { return t.Kind == ErrorTypeKind }
func (t Type) IsStruct() bool    { return t.Kind == StructTypeKind }
func (t Type) IsStructDef() bool { return t.Kind == StructDefTypeKind }
func (t Type) IsFn() bool        { return t.Kind == FnTypeKind }

// Equal reports whether two types match for assignment and equality checks.
// Struct types match only when they share the defining symbol, not when the
// declared names merely spell alike.
func (t Type) Equal(other Type) bool {
	if t.IsError() || other.IsError() {
		return false
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case StructTypeKind, StructDefTypeKind:
		return t.Def == other.Def
	case FnTypeKind:
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i, param := range t.Params {
			if !param.Equal(other.Params[i]) {
				return false
			}
		}
		return t.Ret.Equal(*other.Ret)
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Kind {
	case IntTypeKind:
		return "int"
	case BoolTypeKind:
		return "bool"
	case VoidTypeKind:
		return "void"
	case StringTypeKind:
		return "string"
	case ErrorTypeKind:
		return "error"
	case StructTypeKind, StructDefTypeKind:
		return "struct " + t.Def.Name
	case FnTypeKind:
		params := make([]string, len(t.Params))
		for i, param := range t.Params {
			params[i] = param.String()
		}
		return "(" + strings.Join(params, ", ") + ") -> " + t.Ret.String()
	}
	return "unknown"
}
