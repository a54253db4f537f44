package cole

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// CompareOp is a comparison operator for filters
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

func (op CompareOp) String() string {
	switch op {
	case OpEQ:
		return "eq"
	case OpNE:
		return "ne"
	case OpLT:
		return "lt"
	case OpLE:
		return "le"
	case OpGT:
		return "gt"
	case OpGE:
		return "ge"
	default:
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
}

// ParseCompareOp parses the CLI spelling of a comparison operator
func ParseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "eq":
		return OpEQ, nil
	case "ne":
		return OpNE, nil
	case "lt":
		return OpLT, nil
	case "le":
		return OpLE, nil
	case "gt":
		return OpGT, nil
	case "ge":
		return OpGE, nil
	default:
		return 0, serrors.InvalidArg("parse_compare_op",
			fmt.Sprintf("invalid comparison operator %q", s))
	}
}

// Predicate compares an integer column against a constant. Predicates are
// AND-conjoined by the Scanner.
type Predicate struct {
	Column string
	Op     CompareOp
	Value  int64
}

func (p Predicate) evaluate(v int64) bool {
	switch p.Op {
	case OpEQ:
		return v == p.Value
	case OpNE:
		return v != p.Value
	case OpLT:
		return v < p.Value
	case OpLE:
		return v <= p.Value
	case OpGT:
		return v > p.Value
	case OpGE:
		return v >= p.Value
	default:
		return false
	}
}

// EvaluateInt32 applies the predicate to one int32 value
func (p Predicate) EvaluateInt32(v int32) bool {
	return p.evaluate(int64(v))
}

// EvaluateInt64 applies the predicate to one int64 value
func (p Predicate) EvaluateInt64(v int64) bool {
	return p.evaluate(v)
}

// CanSkipPage reports whether the page's stats prove the predicate is
// unsatisfiable for every row of the page. Absent stats disable skipping.
func (p Predicate) CanSkipPage(stats format.PageStats) bool {
	if !stats.HasMinMax() {
		return false
	}
	lo, hi := *stats.MinInt, *stats.MaxInt

	switch p.Op {
	case OpEQ:
		return p.Value < lo || p.Value > hi
	case OpNE:
		return lo == hi && lo == p.Value
	case OpLT:
		return lo >= p.Value
	case OpLE:
		return lo > p.Value
	case OpGT:
		return hi <= p.Value
	case OpGE:
		return hi < p.Value
	default:
		return false
	}
}
