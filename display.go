package mbo

import (
	"fmt"
	"strconv"
	"strings"
)

func (v Var) String() string {
	return v.Coeff.RatString() + "*v" + strconv.FormatUint(uint64(v.ID), 10)
}

// String renders the row as in "+ 2*v0 + -1/3*v1 - 5 <= 0; value: -2". The
// leading marker is "+" for live rows and "-" for dead ones.
func (r Row) String() string {
	var sb strings.Builder
	if r.Alive {
		sb.WriteString("+ ")
	} else {
		sb.WriteString("- ")
	}
	for i := range r.Vars {
		if i > 0 && r.Vars[i].Coeff.Sign() > 0 {
			sb.WriteString("+ ")
		}
		sb.WriteString(r.Vars[i].String())
		sb.WriteByte(' ')
	}
	if r.Constant.Sign() > 0 {
		sb.WriteString("+ ")
		sb.WriteString(r.Constant.RatString())
		sb.WriteByte(' ')
	} else if r.Constant.Sign() < 0 {
		sb.WriteString(r.Constant.RatString())
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Relation.String())
	sb.WriteString(" 0; value: ")
	sb.WriteString(r.Value.RatString())
	return sb.String()
}

// String dumps the whole tableau for debugging: every row, dead ones
// included, then the model value and referencing rows of every variable.
func (t *Tableau) String() string {
	var sb strings.Builder
	for i := range t.rows {
		sb.WriteString(t.rows[i].String())
		sb.WriteByte('\n')
	}
	for x := range t.varRows {
		fmt.Fprintf(&sb, "v%d = %s:", x, t.varValues[x].RatString())
		for _, rowID := range t.varRows[x] {
			fmt.Fprintf(&sb, " %d", rowID)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
