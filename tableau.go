package mbo

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/mbo/internal/debug"
)

// objectiveID is the reserved slot of the objective row.
const objectiveID uint32 = 0

// A Tableau is an append-only arena of constraint rows, a model assigning an
// exact rational to every variable, and a variable to row-ids index. Row ids
// are stable: retiring a row flips its Alive flag and never moves or removes
// it, so the index never dangles.
//
// All preconditions (valid variable ids, non-zero coefficients, a model
// satisfying every constraint handed in) are caller contracts; violating them
// panics. A Tableau is not safe for concurrent use.
type Tableau struct {
	rows      []Row
	varValues []big.Rat  // model, indexed by VarID
	varRows   [][]uint32 // VarID -> ids of rows referencing it; append-only, may hold duplicates

	// scratch buffers, reset by the operations using them
	above, below []uint32
	lubs, glbs   []uint32
	merged       []Var
}

// New returns an empty tableau with the objective slot (row 0) reserved.
func New() *Tableau {
	return &Tableau{rows: make([]Row, 1)}
}

// Clone returns a deep copy of the tableau. Maximize and Project are
// destructive, so an embedding solver that needs to backtrack snapshots the
// tableau with Clone first.
func (t *Tableau) Clone() *Tableau {
	c := &Tableau{
		rows:      make([]Row, len(t.rows)),
		varValues: make([]big.Rat, len(t.varValues)),
		varRows:   make([][]uint32, len(t.varRows)),
	}
	for i := range t.rows {
		c.rows[i] = t.rows[i].Clone()
	}
	for i := range t.varValues {
		c.varValues[i].Set(&t.varValues[i])
	}
	for i := range t.varRows {
		c.varRows[i] = append([]uint32(nil), t.varRows[i]...)
	}
	return c
}

// AddVar allocates a fresh variable with the given model value and returns
// its identifier.
func (t *Tableau) AddVar(val *big.Rat) VarID {
	x := VarID(len(t.varValues))
	t.varValues = append(t.varValues, big.Rat{})
	t.varValues[x].Set(val)
	t.varRows = append(t.varRows, nil)
	return x
}

// NumVars returns the number of variables.
func (t *Tableau) NumVars() int {
	return len(t.varValues)
}

// NumRows returns the number of rows ever created, dead rows included.
func (t *Tableau) NumRows() int {
	return len(t.rows)
}

// Value returns a copy of x's current model value.
func (t *Tableau) Value(x VarID) *big.Rat {
	return new(big.Rat).Set(&t.varValues[x])
}

// AddConstraint appends the live row "terms + constant (rel) 0". The terms
// need not be sorted but must reference distinct known variables with
// non-zero coefficients, and the current model must satisfy the new row.
func (t *Tableau) AddConstraint(terms []Var, constant *big.Rat, rel Relation) {
	rowID := uint32(len(t.rows))
	t.rows = append(t.rows, Row{})
	t.setRow(rowID, terms, constant, rel)
	for i := range terms {
		x := terms[i].ID
		t.varRows[x] = append(t.varRows[x], rowID)
	}
}

// AddLe appends the constraint terms + constant <= 0.
func (t *Tableau) AddLe(terms []Var, constant *big.Rat) {
	t.AddConstraint(terms, constant, Le)
}

// AddLt appends the constraint terms + constant < 0.
func (t *Tableau) AddLt(terms []Var, constant *big.Rat) {
	t.AddConstraint(terms, constant, Lt)
}

// AddEq appends the constraint terms + constant = 0.
func (t *Tableau) AddEq(terms []Var, constant *big.Rat) {
	t.AddConstraint(terms, constant, Eq)
}

// SetObjective populates row 0 with "terms + constant", the quantity Maximize
// maximizes, as a non-strict upper-bound row. Setting a new objective
// discards the previous one. The objective row is not entered in the
// variable index.
func (t *Tableau) SetObjective(terms []Var, constant *big.Rat) {
	t.rows[objectiveID] = Row{}
	t.setRow(objectiveID, terms, constant, Le)
}

// setRow populates an empty row slot and validates the caller contract.
func (t *Tableau) setRow(rowID uint32, terms []Var, constant *big.Rat, rel Relation) {
	r := &t.rows[rowID]
	debug.Assert(len(r.Vars) == 0, "row slot not empty")
	r.Vars = make([]Var, len(terms))
	for i := range terms {
		if int(terms[i].ID) >= len(t.varValues) {
			panic(fmt.Sprintf("mbo: unknown variable v%d", terms[i].ID))
		}
		if terms[i].Coeff.Sign() == 0 {
			panic(fmt.Sprintf("mbo: zero coefficient on v%d", terms[i].ID))
		}
		r.Vars[i].ID = terms[i].ID
		r.Vars[i].Coeff.Set(&terms[i].Coeff)
	}
	sort.Slice(r.Vars, func(i, j int) bool { return r.Vars[i].ID < r.Vars[j].ID })
	for i := 1; i < len(r.Vars); i++ {
		if r.Vars[i-1].ID == r.Vars[i].ID {
			panic(fmt.Sprintf("mbo: duplicate variable v%d", r.Vars[i].ID))
		}
	}
	r.Constant.Set(constant)
	r.Relation = rel
	r.Alive = true
	t.rowValue(&r.Value, r)
	if rowID != objectiveID && !satisfied(rel, &r.Value) {
		panic(fmt.Sprintf("mbo: model does not satisfy new constraint: %v", r))
	}
	if debug.Debug {
		debug.Assert(t.checkRow(rowID))
	}
}

// LiveRows returns deep copies of all live rows, the objective row included
// while an objective is set and not yet consumed. Callers typically hand the
// result back to a surrounding solver after Project.
func (t *Tableau) LiveRows() []Row {
	var rows []Row
	for i := range t.rows {
		if t.rows[i].Alive {
			rows = append(rows, t.rows[i].Clone())
		}
	}
	return rows
}

// rowValue evaluates r's term under the current model into dst.
func (t *Tableau) rowValue(dst *big.Rat, r *Row) {
	var tmp big.Rat
	dst.Set(&r.Constant)
	for i := range r.Vars {
		v := &r.Vars[i]
		tmp.Mul(&v.Coeff, &t.varValues[v.ID])
		dst.Add(dst, &tmp)
	}
}

// SetValue moves x's model value and folds the delta into the cached value
// of every row referencing x, live or dead, which keeps the row invariant
// cheap to maintain. The new value must still satisfy every live row; a
// violation is a caller error.
func (t *Tableau) SetValue(x VarID, val *big.Rat) {
	var delta, tmp big.Rat
	delta.Sub(val, &t.varValues[x])
	t.varValues[x].Set(val)
	for _, rowID := range t.varRows[x] {
		a := t.coefficient(rowID, x)
		if a == nil {
			continue
		}
		r := &t.rows[rowID]
		tmp.Mul(a, &delta)
		r.Value.Add(&r.Value, &tmp)
		if debug.Debug {
			debug.Assert(t.checkRow(rowID))
		}
	}
}

// invariant re-validates every row. It is the debug-build and test oracle for
// the tableau's correctness conditions, and is idempotent.
func (t *Tableau) invariant() bool {
	for i := range t.rows {
		if !t.checkRow(uint32(i)) {
			return false
		}
	}
	return true
}

// checkRow validates one row: variables strictly sorted by id with non-zero
// coefficients, cached value equal to the evaluation under the model, and the
// relation satisfied by the cached value. The objective row is exempt from
// the satisfaction check; its value is slack, not a satisfied constraint.
func (t *Tableau) checkRow(rowID uint32) bool {
	r := &t.rows[rowID]
	for i := range r.Vars {
		if i+1 < len(r.Vars) && r.Vars[i].ID >= r.Vars[i+1].ID {
			return false
		}
		if r.Vars[i].Coeff.Sign() == 0 {
			return false
		}
	}
	var val big.Rat
	t.rowValue(&val, r)
	if val.Cmp(&r.Value) != 0 {
		return false
	}
	if r.Relation == Eq && r.Value.Sign() != 0 {
		return false
	}
	if rowID != objectiveID && !satisfied(r.Relation, &r.Value) {
		return false
	}
	return true
}
