package mbo

import "math/big"

// VarID identifies a tableau variable. Identifiers are dense, assigned in
// creation order by Tableau.AddVar.
type VarID uint32

// Var is a non-zero coefficient on a variable inside a row.
type Var struct {
	ID    VarID
	Coeff big.Rat
}

// Term builds a Var carrying a copy of the given coefficient.
func Term(x VarID, c *big.Rat) Var {
	v := Var{ID: x}
	v.Coeff.Set(c)
	return v
}

// Relation relates a row's linear term to zero.
type Relation uint8

const (
	// Eq constrains the term to equal zero.
	Eq Relation = iota
	// Lt constrains the term to be strictly negative.
	Lt
	// Le constrains the term to be non-positive.
	Le
)

func (rel Relation) String() string {
	switch rel {
	case Eq:
		return "="
	case Lt:
		return "<"
	case Le:
		return "<="
	default:
		panic("invalid relation")
	}
}

// A Row is one linear constraint, or the objective: a sparse linear term
// Vars + Constant, a relation to zero, and Value, the cached evaluation of
// the term under the current model. Vars is sorted by ID with at most one
// entry per variable and never a zero coefficient.
//
// Dead rows (Alive == false) are permanently retired but keep their slot, so
// row identifiers stay stable for the whole life of the tableau.
type Row struct {
	Vars     []Var
	Constant big.Rat
	Value    big.Rat
	Relation Relation
	Alive    bool
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() Row {
	c := Row{
		Vars:     make([]Var, len(r.Vars)),
		Relation: r.Relation,
		Alive:    r.Alive,
	}
	for i := range r.Vars {
		c.Vars[i].ID = r.Vars[i].ID
		c.Vars[i].Coeff.Set(&r.Vars[i].Coeff)
	}
	c.Constant.Set(&r.Constant)
	c.Value.Set(&r.Value)
	return c
}

// satisfied reports whether a value satisfies a relation to zero.
func satisfied(rel Relation, v *big.Rat) bool {
	switch rel {
	case Eq:
		return v.Sign() == 0
	case Lt:
		return v.Sign() < 0
	default:
		return v.Sign() <= 0
	}
}
