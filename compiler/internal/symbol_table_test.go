package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable_PushPop(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.PopScope()
	assert.Equal(t, ErrEmptyTable, err)

	table.PushScope()
	table.PushScope()
	assert.Equal(t, 2, table.Depth())
	_, err = table.PopScope()
	assert.Nil(t, err)
	_, err = table.PopScope()
	assert.Nil(t, err)
	_, err = table.PopScope()
	assert.Equal(t, ErrEmptyTable, err)
}

func TestSymbolTable_InsertRejectsDuplicates(t *testing.T) {
	table := NewSymbolTable()
	assert.Equal(t, ErrEmptyTable, table.InsertLocal("x", &SymbolDesc{Name: "x"}))

	table.PushScope()
	require.Nil(t, table.InsertLocal("x", &SymbolDesc{Name: "x", Type: IntType}))
	assert.Equal(t, ErrDuplicate, table.InsertLocal("x", &SymbolDesc{Name: "x", Type: BoolType}))

	// Shadowing in an inner scope is fine.
	table.PushScope()
	assert.Nil(t, table.InsertLocal("x", &SymbolDesc{Name: "x", Type: BoolType}))
}

func TestSymbolTable_Lookup(t *testing.T) {
	table := NewSymbolTable()
	table.PushScope()
	outer := &SymbolDesc{Name: "x", Type: IntType}
	require.Nil(t, table.InsertLocal("x", outer))

	table.PushScope()
	assert.Nil(t, table.LookupLocal("x"))
	assert.Equal(t, outer, table.LookupGlobal("x"))

	inner := &SymbolDesc{Name: "x", Type: BoolType}
	require.Nil(t, table.InsertLocal("x", inner))
	assert.Equal(t, inner, table.LookupLocal("x"))
	assert.Equal(t, inner, table.LookupGlobal("x"))

	_, err := table.PopScope()
	require.Nil(t, err)
	assert.Equal(t, outer, table.LookupGlobal("x"))
	assert.Nil(t, table.LookupGlobal("y"))
}

func TestTypeEquality(t *testing.T) {
	assert.True(t, IntType.Equal(IntType))
	assert.False(t, IntType.Equal(BoolType))

	// The error type matches nothing, not even itself.
	assert.False(t, ErrorType.Equal(ErrorType))
	assert.False(t, ErrorType.Equal(IntType))
	assert.False(t, IntType.Equal(ErrorType))

	defA := &SymbolDesc{Name: "A"}
	defB := &SymbolDesc{Name: "A"}
	assert.True(t, MakeStructType(defA).Equal(MakeStructType(defA)))
	// Same spelling, different defining symbol.
	assert.False(t, MakeStructType(defA).Equal(MakeStructType(defB)))
	assert.False(t, MakeStructType(defA).Equal(MakeStructDefType(defA)))

	fn1 := MakeFnType([]Type{IntType}, VoidType)
	fn2 := MakeFnType([]Type{IntType}, VoidType)
	fn3 := MakeFnType([]Type{BoolType}, VoidType)
	assert.True(t, fn1.Equal(fn2))
	assert.False(t, fn1.Equal(fn3))
}

func TestSymbolDescKinds(t *testing.T) {
	plain := &SymbolDesc{Name: "x", Type: IntType}
	assert.False(t, plain.IsFn())
	assert.False(t, plain.IsStructDef())
	assert.False(t, plain.IsStructVar())

	fn := &SymbolDesc{Name: "f", Fn: &FnSymbolDesc{}}
	assert.True(t, fn.IsFn())

	def := &SymbolDesc{Name: "S", StructDef: &StructDefDesc{Fields: NewSymbolTable()}}
	assert.True(t, def.IsStructDef())

	variable := &SymbolDesc{Name: "s", StructVarDef: def}
	assert.True(t, variable.IsStructVar())
}
