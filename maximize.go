package mbo

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/mbo/internal/debug"
	"github.com/consensys/mbo/logger"
)

// Optimum is the outcome of Maximize. The objective is either unbounded from
// above or admits a finite supremum Value. Strict marks a supremum that is
// approached but never attained (the terminal objective relation was strict):
// the optimum then reads as Value minus an infinitesimal.
type Optimum struct {
	Unbounded bool
	Value     big.Rat
	Strict    bool
}

func (o Optimum) String() string {
	if o.Unbounded {
		return "+oo"
	}
	if o.Strict {
		return o.Value.RatString() + " - eps"
	}
	return o.Value.RatString()
}

// findBound scans the live rows referencing x for the tightest bound on x in
// the direction needed by the objective: the least upper bound when isPos,
// the greatest lower bound otherwise. Equality rows bind in either direction.
// On exact value ties a strict row displaces the incumbent, so the tightest
// surviving bound stays strict.
//
// The displaced and remaining same-direction candidates are collected into
// t.above; rows bounding the opposite direction go to t.below. ok is false
// when nothing bounds x, which signals an unbounded objective.
func (t *Tableau) findBound(x VarID, isPos bool) (boundRow uint32, boundCoeff big.Rat, ok bool) {
	t.above = t.above[:0]
	t.below = t.below[:0]
	var boundVal, val, tmp big.Rat
	xVal := &t.varValues[x]
	visited := bitset.New(uint(len(t.rows)))
	for _, rowID := range t.varRows[x] {
		debug.Assert(rowID != objectiveID)
		if visited.Test(uint(rowID)) {
			continue
		}
		visited.Set(uint(rowID))
		r := &t.rows[rowID]
		if !r.Alive {
			continue
		}
		a := t.coefficient(rowID, x)
		if a == nil {
			continue
		}
		if (a.Sign() > 0) != isPos && r.Relation != Eq {
			t.below = append(t.below, rowID)
			continue
		}
		// implied bound on x: x_val - value/a
		tmp.Quo(&r.Value, a)
		val.Sub(xVal, &tmp)
		switch {
		case !ok:
			boundVal.Set(&val)
			boundRow = rowID
			boundCoeff.Set(a)
			ok = true
		case (val.Cmp(&boundVal) == 0 && r.Relation == Lt) ||
			(isPos && val.Cmp(&boundVal) < 0) ||
			(!isPos && val.Cmp(&boundVal) > 0):
			t.above = append(t.above, boundRow)
			boundVal.Set(&val)
			boundRow = rowID
			boundCoeff.Set(a)
		default:
			t.above = append(t.above, rowID)
		}
	}
	return boundRow, boundCoeff, ok
}

// Maximize eliminates every variable from the objective row: for the trailing
// objective variable it finds the tightest bound among the constraints,
// resolves that bound row against every other row sharing the variable, folds
// it into the objective and retires it. When no bound exists the objective is
// unbounded, a first-class outcome, and the model is restored to consistency
// before returning. Otherwise, once the objective is variable free, the
// retired bound rows are back-substituted to move the model onto the optimum
// and the objective's residual constant is the result.
//
// Maximize consumes the objective and the bound rows it used; clone the
// tableau first to keep the original system.
func (t *Tableau) Maximize() Optimum {
	if debug.Debug {
		debug.Assert(t.invariant())
	}
	log := logger.Logger()
	var boundVars []VarID
	var boundTrail []uint32
	obj := &t.rows[objectiveID]
	for len(obj.Vars) > 0 {
		v := &obj.Vars[len(obj.Vars)-1]
		x := v.ID
		boundRow, boundCoeff, ok := t.findBound(x, v.Coeff.Sign() > 0)
		if !ok {
			log.Debug().Uint32("var", uint32(x)).Msg("objective unbounded")
			t.updateValues(boundVars, boundTrail)
			return Optimum{Unbounded: true}
		}
		debug.Assert(boundCoeff.Sign() != 0)
		for _, rowID := range t.above {
			t.resolve(boundRow, &boundCoeff, rowID, x)
		}
		for _, rowID := range t.below {
			t.resolve(boundRow, &boundCoeff, rowID, x)
		}
		// coeff*x + obj <= ub together with a*x + t2 <= 0 gives
		// obj + (coeff/a)*t2 <= ub, eliminating x from the objective
		var c big.Rat
		c.Quo(&v.Coeff, &boundCoeff)
		c.Neg(&c)
		t.mulAdd(false, objectiveID, &c, boundRow)
		t.rows[boundRow].Alive = false
		boundVars = append(boundVars, x)
		boundTrail = append(boundTrail, boundRow)
	}

	// move the model onto the bounds that were substituted in
	t.updateValues(boundVars, boundTrail)

	var opt Optimum
	opt.Value.Set(&obj.Value)
	opt.Strict = obj.Relation == Lt
	return opt
}

// updateValues back-substitutes the bound trail in reverse elimination order:
// each variable is recomputed from the remaining terms of its bound row and,
// for strict rows, nudged off the boundary by half the distance to its old
// value, capped at 1, in the strictly feasible direction. The change is then
// propagated to every row referencing a trail variable for full
// re-validation.
func (t *Tableau) updateValues(boundVars []VarID, boundTrail []uint32) {
	one := big.NewRat(1, 1)
	half := big.NewRat(1, 2)
	var val, tmp, eps, newVal big.Rat
	for i := len(boundTrail) - 1; i >= 0; i-- {
		x := boundVars[i]
		r := &t.rows[boundTrail[i]]
		val.Set(&r.Constant)
		var xCoeff *big.Rat
		for j := range r.Vars {
			v := &r.Vars[j]
			if v.ID == x {
				xCoeff = &v.Coeff
			} else {
				tmp.Mul(&v.Coeff, &t.varValues[v.ID])
				val.Add(&val, &tmp)
			}
		}
		debug.Assert(xCoeff != nil && xCoeff.Sign() != 0)
		newVal.Quo(&val, xCoeff)
		newVal.Neg(&newVal)
		if r.Relation == Lt {
			eps.Sub(&t.varValues[x], &newVal)
			eps.Abs(&eps)
			eps.Mul(&eps, half)
			if eps.Cmp(one) > 0 {
				eps.Set(one)
			}
			debug.Assert(eps.Sign() != 0)
			// a*x + t < 0 pins x < -t/a for a > 0 and x > -t/a for a < 0;
			// step away from the boundary accordingly
			if xCoeff.Sign() > 0 {
				newVal.Sub(&newVal, &eps)
			} else {
				newVal.Add(&newVal, &eps)
			}
		}
		t.varValues[x].Set(&newVal)
		t.rowValue(&r.Value, r)
		if debug.Debug {
			debug.Assert(t.checkRow(boundTrail[i]))
		}
	}

	// refresh and re-check every row sharing a trail variable
	for i := len(boundTrail) - 1; i >= 0; i-- {
		for _, rowID := range t.varRows[boundVars[i]] {
			r := &t.rows[rowID]
			t.rowValue(&r.Value, r)
			if debug.Debug {
				debug.Assert(t.checkRow(rowID))
			}
		}
	}
	if debug.Debug {
		debug.Assert(t.invariant())
	}
}
