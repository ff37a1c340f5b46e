// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

// Operator describe the potential (binary) operations available on an Apply or
// a Product. For ZDD, only the operators mapping (false, false) to false make
// sense (OPand, OPxor, OPor, OPdiff, OPless).
type Operator int

const (
	OPand    Operator = iota // Boolean conjunction
	OPxor                    // Exclusive or
	OPor                     // Disjunction
	OPnand                   // Negation of and
	OPnor                    // Negation of or
	OPimp                    // Implication
	OPbiimp                  // Equivalence
	OPdiff                   // Difference
	OPless                   // Set difference
	OPinvimp                 // Reverse implication
)

var opnames = [10]string{
	OPand:    "and",
	OPxor:    "xor",
	OPor:     "or",
	OPnand:   "nand",
	OPnor:    "nor",
	OPimp:    "imp",
	OPbiimp:  "biimp",
	OPdiff:   "diff",
	OPless:   "less",
	OPinvimp: "invimp",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return "unknown"
	}
	return opnames[op]
}

// ParseOperator returns the operator with the given name.
func ParseOperator(name string) (Operator, bool) {
	for k, v := range opnames {
		if v == name {
			return Operator(k), true
		}
	}
	return 0, false
}

var opres = [10][2][2]bool{
	//                      00     01                 10     11
	OPand:    {0: [2]bool{0: false, 1: false}, 1: [2]bool{0: false, 1: true}}, // 0001
	OPxor:    {0: [2]bool{0: false, 1: true}, 1: [2]bool{0: true, 1: false}},  // 0110
	OPor:     {0: [2]bool{0: false, 1: true}, 1: [2]bool{0: true, 1: true}},   // 0111
	OPnand:   {0: [2]bool{0: true, 1: true}, 1: [2]bool{0: true, 1: false}},   // 1110
	OPnor:    {0: [2]bool{0: true, 1: false}, 1: [2]bool{0: false, 1: false}}, // 1000
	OPimp:    {0: [2]bool{0: true, 1: true}, 1: [2]bool{0: false, 1: true}},   // 1101
	OPbiimp:  {0: [2]bool{0: true, 1: false}, 1: [2]bool{0: false, 1: true}},  // 1001
	OPdiff:   {0: [2]bool{0: false, 1: false}, 1: [2]bool{0: true, 1: false}}, // 0010
	OPless:   {0: [2]bool{0: false, 1: true}, 1: [2]bool{0: false, 1: false}}, // 0100
	OPinvimp: {0: [2]bool{0: true, 1: false}, 1: [2]bool{0: true, 1: true}},   // 1011
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (op Operator) valid() bool {
	return op >= OPand && op <= OPinvimp
}

// eval is the truth table of op.
func (op Operator) eval(l, r bool) bool {
	return opres[op][b2i(l)][b2i(r)]
}

// leftShortcut reports whether the result of op is fixed once its left operand
// is known to be v.
func (op Operator) leftShortcut(v bool) bool {
	return op.eval(v, false) == op.eval(v, true)
}

// rightShortcut is the symmetric of leftShortcut.
func (op Operator) rightShortcut(v bool) bool {
	return op.eval(false, v) == op.eval(true, v)
}

// zddCompatible reports whether op maps (false, false) to false, which is
// required for operations over ZDD.
func (op Operator) zddCompatible() bool {
	return op.valid() && !op.eval(false, false)
}
