package mbo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referencesVar reports whether any live row carries x.
func referencesVar(rows []Row, x VarID) bool {
	for i := range rows {
		for j := range rows[i].Vars {
			if rows[i].Vars[j].ID == x {
				return true
			}
		}
	}
	return false
}

func TestProjectMutualElimination(t *testing.T) {
	// x - y <= 0 and y - x <= 0 together imply x == y; projecting y must
	// leave a trivial residual and the model value of x alone
	tab := New()
	x := tab.AddVar(rat(1, 1))
	y := tab.AddVar(rat(1, 1))
	tab.AddLe([]Var{Term(x, rat(1, 1)), Term(y, rat(-1, 1))}, rat(0, 1))
	tab.AddLe([]Var{Term(x, rat(-1, 1)), Term(y, rat(1, 1))}, rat(0, 1))

	tab.Project(y)
	require.True(t, tab.invariant())
	assert.Equal(t, 0, tab.Value(x).Cmp(rat(1, 1)))

	rows := tab.LiveRows()
	assert.False(t, referencesVar(rows, y))
	for _, r := range rows {
		assert.Empty(t, r.Vars, "residual of mutually eliminable rows is trivial")
		assert.True(t, r.Value.Sign() <= 0)
	}
}

func TestProjectEqualityDominates(t *testing.T) {
	// y = x pins y; projecting y substitutes it into y <= 5, leaving x <= 5
	tab := New()
	x := tab.AddVar(rat(1, 1))
	y := tab.AddVar(rat(1, 1))
	tab.AddEq([]Var{Term(x, rat(-1, 1)), Term(y, rat(1, 1))}, rat(0, 1)) // y - x = 0
	tab.AddLe([]Var{Term(y, rat(1, 1))}, rat(-5, 1))                     // y <= 5

	tab.Project(y)
	require.True(t, tab.invariant())

	rows := tab.LiveRows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Vars, 1)
	assert.Equal(t, x, rows[0].Vars[0].ID)
	assert.Equal(t, 0, rows[0].Vars[0].Coeff.Cmp(rat(1, 1)))
	assert.Equal(t, 0, rows[0].Constant.Cmp(rat(-5, 1)))
	assert.Equal(t, Le, rows[0].Relation)
}

func TestProjectOneSided(t *testing.T) {
	// x bounded from above only: every referencing row drops
	tab := New()
	x := tab.AddVar(rat(0, 1))
	y := tab.AddVar(rat(0, 1))
	tab.AddLe([]Var{Term(x, rat(1, 1))}, rat(-5, 1))  // x <= 5
	tab.AddLe([]Var{Term(x, rat(1, 1))}, rat(-10, 1)) // x <= 10
	tab.AddLe([]Var{Term(y, rat(1, 1))}, rat(-2, 1))  // y <= 2, untouched

	tab.Project(x)
	require.True(t, tab.invariant())

	rows := tab.LiveRows()
	require.Len(t, rows, 1)
	assert.Equal(t, y, rows[0].Vars[0].ID)
}

func TestProjectPivotOnSmallerSide(t *testing.T) {
	// two upper bounds, one lower bound: the glb row is the pivot and the
	// residual keeps one row per upper bound
	tab := New()
	x := tab.AddVar(rat(2, 1))
	tab.AddLe([]Var{Term(x, rat(1, 1))}, rat(-3, 1))  // x <= 3
	tab.AddLe([]Var{Term(x, rat(1, 1))}, rat(-4, 1))  // x <= 4
	tab.AddLe([]Var{Term(x, rat(-1, 1))}, rat(1, 1))  // x >= 1

	tab.Project(x)
	require.True(t, tab.invariant())

	rows := tab.LiveRows()
	require.Len(t, rows, 2)
	assert.False(t, referencesVar(rows, x))
	for _, r := range rows {
		// 1 <= 3 and 1 <= 4 survive as satisfied constant rows
		assert.Empty(t, r.Vars)
		assert.True(t, r.Value.Sign() < 0)
	}
}

func TestProjectStrictness(t *testing.T) {
	// x < 3 resolved against x >= 1 keeps the combination strict
	tab := New()
	x := tab.AddVar(rat(2, 1))
	tab.AddLt([]Var{Term(x, rat(1, 1))}, rat(-3, 1)) // x < 3
	tab.AddLe([]Var{Term(x, rat(-1, 1))}, rat(1, 1)) // x >= 1

	tab.Project(x)
	require.True(t, tab.invariant())

	rows := tab.LiveRows()
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Vars)
	assert.Equal(t, Lt, rows[0].Relation, "a strict bound must keep the resolvent strict")
	assert.Equal(t, 0, rows[0].Value.Cmp(rat(-2, 1))) // 1 - 3 < 0
}

func TestProjectSeveralVariables(t *testing.T) {
	// triangle 0 <= x, 0 <= y, x + y <= 2; projecting x then y must leave a
	// satisfiable residual with no reference to either
	tab := New()
	x := tab.AddVar(rat(1, 2))
	y := tab.AddVar(rat(1, 2))
	tab.AddLe([]Var{Term(x, rat(-1, 1))}, rat(0, 1))
	tab.AddLe([]Var{Term(y, rat(-1, 1))}, rat(0, 1))
	tab.AddLe([]Var{Term(x, rat(1, 1)), Term(y, rat(1, 1))}, rat(-2, 1))

	tab.Project(x, y)
	require.True(t, tab.invariant())

	rows := tab.LiveRows()
	assert.False(t, referencesVar(rows, x))
	assert.False(t, referencesVar(rows, y))
	for _, r := range rows {
		assert.True(t, satisfied(r.Relation, &r.Value))
	}
}

func TestProjectLeavesModelUsable(t *testing.T) {
	// after projection the surviving system can still be maximized
	tab := New()
	x := tab.AddVar(rat(1, 1))
	y := tab.AddVar(rat(1, 1))
	tab.AddLe([]Var{Term(x, rat(1, 1)), Term(y, rat(1, 1))}, rat(-4, 1)) // x + y <= 4
	tab.AddLe([]Var{Term(y, rat(-1, 1))}, rat(1, 1))                     // y >= 1

	tab.Project(y)
	require.True(t, tab.invariant())
	rows := tab.LiveRows()
	assert.False(t, referencesVar(rows, y))

	// residual implies x <= 3
	tab.SetObjective([]Var{Term(x, rat(1, 1))}, rat(0, 1))
	opt := tab.Maximize()
	require.False(t, opt.Unbounded)
	assert.Equal(t, 0, opt.Value.Cmp(rat(3, 1)))
}
