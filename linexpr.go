package mbo

import (
	"math/big"

	"github.com/consensys/mbo/internal/debug"
)

// coefficient returns the coefficient of x in the given row, or nil when the
// row does not reference x. The result points into the row and must not be
// mutated.
func (t *Tableau) coefficient(rowID uint32, x VarID) *big.Rat {
	vars := t.rows[rowID].Vars
	lo, hi := 0, len(vars)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if vars[mid].ID < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(vars) && vars[lo].ID == x {
		return &vars[lo].Coeff
	}
	return nil
}

// mulAdd adds c times the source row into the destination row, the primitive
// every elimination step is built on: dst <- dst + c*src. The two sorted
// terms are merged in a single pass; entries whose coefficient cancels to
// exactly zero are dropped. Constant and cached value follow the same linear
// combination. Variables the source newly introduces into the destination are
// recorded in the variable index, except on the objective row, which is never
// indexed.
//
// sameSign tells whether both rows carry the variable being eliminated with
// the same coefficient sign; it only affects the strictness of the resulting
// relation: a sign-opposite combination with a strict source is strict, while
// two strict bounds of the same direction combine to a non-strict one.
func (t *Tableau) mulAdd(sameSign bool, dstID uint32, c *big.Rat, srcID uint32) {
	if c.Sign() == 0 {
		return
	}
	debug.Assert(dstID != srcID, "row combined with itself")
	dst := &t.rows[dstID]
	src := &t.rows[srcID]
	merged := t.merged[:0]
	var tmp big.Rat
	i, j := 0, 0
	for i < len(dst.Vars) || j < len(src.Vars) {
		switch {
		case j == len(src.Vars) || (i < len(dst.Vars) && dst.Vars[i].ID < src.Vars[j].ID):
			merged = appendTerm(merged, dst.Vars[i].ID, &dst.Vars[i].Coeff)
			i++
		case i == len(dst.Vars) || src.Vars[j].ID < dst.Vars[i].ID:
			tmp.Mul(c, &src.Vars[j].Coeff)
			merged = appendTerm(merged, src.Vars[j].ID, &tmp)
			if dstID != objectiveID {
				t.varRows[src.Vars[j].ID] = append(t.varRows[src.Vars[j].ID], dstID)
			}
			j++
		default:
			tmp.Mul(c, &src.Vars[j].Coeff)
			tmp.Add(&tmp, &dst.Vars[i].Coeff)
			if tmp.Sign() != 0 {
				merged = appendTerm(merged, dst.Vars[i].ID, &tmp)
			}
			i++
			j++
		}
	}
	tmp.Mul(c, &src.Constant)
	dst.Constant.Add(&dst.Constant, &tmp)
	tmp.Mul(c, &src.Value)
	dst.Value.Add(&dst.Value, &tmp)
	// recycle the replaced term storage as the next merge scratch
	t.merged = dst.Vars[:0]
	dst.Vars = merged

	if !sameSign && src.Relation == Lt {
		dst.Relation = Lt
	} else if sameSign && dst.Relation == Lt && src.Relation == Lt {
		dst.Relation = Le
	}
	if debug.Debug {
		debug.Assert(t.checkRow(dstID))
	}
}

// appendTerm appends (x, c) to terms, overwriting the slot's coefficient
// storage in place when the slice has spare capacity.
func appendTerm(terms []Var, x VarID, c *big.Rat) []Var {
	if len(terms) < cap(terms) {
		terms = terms[:len(terms)+1]
	} else {
		terms = append(terms, Var{})
	}
	v := &terms[len(terms)-1]
	v.ID = x
	v.Coeff.Set(c)
	return terms
}

// resolve cancels x's contribution in the destination row by adding a
// suitable multiple of the source row, which carries x with coefficient a1.
// Dead destinations and destinations not referencing x are left untouched.
func (t *Tableau) resolve(srcID uint32, a1 *big.Rat, dstID uint32, x VarID) {
	debug.Assert(a1.Sign() != 0)
	debug.Assert(srcID != dstID, "row resolved against itself")
	if !t.rows[dstID].Alive {
		return
	}
	a2 := t.coefficient(dstID, x)
	if a2 == nil {
		return
	}
	var c big.Rat
	c.Quo(a2, a1)
	c.Neg(&c)
	sameSign := dstID != objectiveID && a1.Sign() == a2.Sign()
	t.mulAdd(sameSign, dstID, &c, srcID)
}
