package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chunkdb/internal/types"
)

// columnRef is a stand-in for the column-reference type a consumer package
// would instantiate Expression with (lqp.ColumnOrigin or operator.ColumnID).
type columnRef struct {
	Node int
	Col  int
}

func TestDeepCopyIsIndependent(t *testing.T) {
	orig := NewArithmetic(Add, NewLiteral[columnRef](types.NewInt32(1)), NewColumn(columnRef{Node: 1, Col: 0}))
	cp := orig.DeepCopy()

	assert.True(t, orig.Equal(cp))

	cp.Children[0].Literal = types.NewInt32(99)
	assert.False(t, orig.Equal(cp))
	assert.Equal(t, int32(1), orig.Children[0].Literal.Int32())
}

func TestEqualityIgnoresIdentityComparesStructure(t *testing.T) {
	a := NewComparison(Eq, NewColumn(columnRef{Col: 0}), NewLiteral[columnRef](types.NewString("x")))
	b := NewComparison(Eq, NewColumn(columnRef{Col: 0}), NewLiteral[columnRef](types.NewString("x")))
	c := NewComparison(Eq, NewColumn(columnRef{Col: 1}), NewLiteral[columnRef](types.NewString("x")))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.NotSame(t, a, b)
}

func TestEqualityComparesAlias(t *testing.T) {
	a := NewColumn(columnRef{Col: 0}).WithAlias("x")
	b := NewColumn(columnRef{Col: 0}).WithAlias("y")
	c := NewColumn(columnRef{Col: 0})

	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestClassifiers(t *testing.T) {
	arith := NewArithmetic(Mul, NewLiteral[columnRef](types.NewInt32(2)), NewLiteral[columnRef](types.NewInt32(3)))
	assert.True(t, arith.IsOperator())
	assert.True(t, arith.IsArithmeticOperator())
	assert.True(t, arith.IsBinaryOperator())
	assert.False(t, arith.IsUnaryOperator())
	assert.False(t, arith.IsOperand())

	not := NewLogical(Not, NewLiteral[columnRef](types.NewInt32(1)))
	assert.True(t, not.IsUnaryOperator())
	assert.False(t, not.IsBinaryOperator())

	star := NewStar[columnRef]()
	assert.True(t, star.IsOperand())
	assert.False(t, star.IsOperator())

	null := NewLiteral[columnRef](types.Null)
	assert.True(t, null.IsNullLiteral())
	assert.True(t, null.IsOperand())

	nonNull := NewLiteral[columnRef](types.NewInt32(0))
	assert.False(t, nonNull.IsNullLiteral())

	fn := NewFunction(Sum, NewColumn(columnRef{Col: 0}))
	assert.True(t, fn.IsOperand())
	assert.False(t, fn.IsOperator())
}

func TestStringParenthesizesNonRootBinaryOperators(t *testing.T) {
	inner := NewArithmetic(Add, NewColumn(columnRef{Col: 0}), NewLiteral[columnRef](types.NewInt32(1)))
	outer := NewArithmetic(Mul, inner, NewLiteral[columnRef](types.NewInt32(2)))

	assert.Equal(t, "({0 0} + 1) * 2", outer.String())
}

func TestStringBetween(t *testing.T) {
	e := NewComparison(Between,
		NewColumn(columnRef{Col: 0}),
		NewLiteral[columnRef](types.NewInt32(1)),
		NewLiteral[columnRef](types.NewInt32(10)))
	assert.Equal(t, "{0 0} BETWEEN 1 AND 10", e.String())
}

func TestComparisonOpInverse(t *testing.T) {
	assert.Equal(t, Gt, Lt.Inverse())
	assert.Equal(t, Lt, Gt.Inverse())
	assert.Equal(t, Ge, Le.Inverse())
	assert.Equal(t, Le, Ge.Inverse())
	assert.Equal(t, Eq, Eq.Inverse())
	assert.Equal(t, Ne, Ne.Inverse())
}
