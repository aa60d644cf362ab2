package mbo

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/mbo/internal/debug"
	"github.com/consensys/mbo/logger"
)

// Project eliminates the given variables from the live constraint set, one at
// a time in argument order. Projection is existential: the surviving rows are
// satisfied by the current model, and any model of the surviving rows extends
// to the eliminated variables. Eliminated variables must not be referenced in
// later calls.
func (t *Tableau) Project(xs ...VarID) {
	for _, x := range xs {
		t.project(x)
	}
}

// project eliminates x by model-guided Fourier-Motzkin resolution. The live
// rows referencing x split into upper bounds (positive coefficient) and lower
// bounds (negative coefficient); within each side the row realizing the
// tightest implied bound at the current model is the representative, with the
// same strict-preferred tie-break as findBound. The representative of the
// smaller side becomes the pivot, so fewer pairwise resolutions are needed,
// and every other referencing row is resolved against it before the pivot is
// retired. An equality on x pins x exactly and short-circuits the whole
// search, see solveFor. When x is bounded from one side only, every
// referencing row is dropped: x can always be moved to satisfy them.
func (t *Tableau) project(x VarID) {
	lubs := t.lubs[:0]
	glbs := t.glbs[:0]
	var lubIndex, glbIndex uint32
	var haveLub, haveGlb bool
	var lubStrict, glbStrict bool
	var lubVal, glbVal, val, tmp big.Rat
	xVal := &t.varValues[x]
	visited := bitset.New(uint(len(t.rows)))
	for _, rowID := range t.varRows[x] {
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
		if r.Relation == Eq {
			t.lubs, t.glbs = lubs, glbs
			t.solveFor(rowID, x)
			return
		}
		tmp.Quo(&r.Value, a)
		val.Sub(xVal, &tmp)
		if a.Sign() > 0 {
			if !haveLub || val.Cmp(&lubVal) < 0 ||
				(val.Cmp(&lubVal) == 0 && r.Relation == Lt && !lubStrict) {
				lubVal.Set(&val)
				lubIndex = rowID
				lubStrict = r.Relation == Lt
				haveLub = true
			}
			lubs = append(lubs, rowID)
		} else {
			if !haveGlb || val.Cmp(&glbVal) > 0 ||
				(val.Cmp(&glbVal) == 0 && r.Relation == Lt && !glbStrict) {
				glbVal.Set(&val)
				glbIndex = rowID
				glbStrict = r.Relation == Lt
				haveGlb = true
			}
			glbs = append(glbs, rowID)
		}
	}

	pivot, havePivot := glbIndex, haveGlb
	if len(lubs) <= len(glbs) {
		pivot, havePivot = lubIndex, haveLub
	}
	rows := append(glbs, lubs...)
	t.lubs, t.glbs = lubs, glbs

	log := logger.Logger()
	if !havePivot {
		// one-sided: x absorbs every remaining bound
		for _, rowID := range rows {
			debug.Assert(t.rows[rowID].Alive)
			t.rows[rowID].Alive = false
		}
		log.Debug().Uint32("var", uint32(x)).Int("rows", len(rows)).Msg("projected unconstrained variable")
		return
	}
	var a big.Rat
	a.Set(t.coefficient(pivot, x))
	for _, rowID := range rows {
		if rowID != pivot {
			t.resolve(pivot, &a, rowID, x)
		}
	}
	t.rows[pivot].Alive = false
	log.Debug().Uint32("var", uint32(x)).Uint32("pivot", pivot).Int("rows", len(rows)).Msg("projected variable")
}

// solveFor eliminates x through a live equality row: every other live row
// referencing x resolves against the equality, canceling x exactly with no
// bound selection involved, and the equality is retired.
func (t *Tableau) solveFor(rowID uint32, x VarID) {
	r := &t.rows[rowID]
	debug.Assert(r.Relation == Eq)
	debug.Assert(r.Alive)
	var a big.Rat
	a.Set(t.coefficient(rowID, x))
	debug.Assert(a.Sign() != 0)
	visited := bitset.New(uint(len(t.rows)))
	visited.Set(uint(rowID))
	for _, otherID := range t.varRows[x] {
		if visited.Test(uint(otherID)) {
			continue
		}
		visited.Set(uint(otherID))
		t.resolve(rowID, &a, otherID, x)
	}
	r.Alive = false
}
