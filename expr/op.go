// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr

import "strconv"

// Op is an expression opcode.
//
type Op uint8

// Opcodes. Unary operators take their operand from the right child.
//
const (
	Static   Op = iota // constant value
	Sig                // signal reference
	Xor                // l ^ r
	Multiply           // l * r
	Divide             // l / r
	Mod                // l % r
	Add                // l + r
	Subtract           // l - r
	And                // l & r
	Or                 // l | r
	Nand               // l ~& r
	Nor                // l ~| r
	Nxor               // l ~^ r
	Lt                 // l < r
	Gt                 // l > r
	Lshift             // l << r
	Rshift             // l >> r
	Eq                 // l == r
	Ceq                // l === r
	Le                 // l <= r
	Ge                 // l >= r
	Ne                 // l != r
	Cne                // l !== r
	Lor                // l || r
	Land               // l && r
	Cond               // l ? r, where r is a CondSel
	CondSel            // l : r
	Uinv               // ~r
	Uand               // &r
	Unot               // !r
	Uor                // |r
	Uxor               // ^r
	Unand              // ~&r
	Unor               // ~|r
	Unxor              // ~^r
	SbitSel            // sig[l]
	MbitSel            // sig[l:r]
	Expand             // {l{r}}
	Concat             // {r}
	List               // l, r
	Pedge              // posedge r
	Nedge              // negedge r
	Aedge              // r (any edge)
	Eor                // l or r (event list)
	Delay              // #r
	Case               // case l: r
	Casex              // casex l: r
	Casez              // casez l: r
	Default            // default case item
	Assign             // assign l = r
	Bassign            // l = r
	Nassign            // l <= r
	Param              // parameter value

	opCount
)

var opNames = [...]string{
	Static:   "STATIC",
	Sig:      "SIG",
	Xor:      "XOR",
	Multiply: "MULTIPLY",
	Divide:   "DIVIDE",
	Mod:      "MOD",
	Add:      "ADD",
	Subtract: "SUBTRACT",
	And:      "AND",
	Or:       "OR",
	Nand:     "NAND",
	Nor:      "NOR",
	Nxor:     "NXOR",
	Lt:       "LT",
	Gt:       "GT",
	Lshift:   "LSHIFT",
	Rshift:   "RSHIFT",
	Eq:       "EQ",
	Ceq:      "CEQ",
	Le:       "LE",
	Ge:       "GE",
	Ne:       "NE",
	Cne:      "CNE",
	Lor:      "LOR",
	Land:     "LAND",
	Cond:     "COND",
	CondSel:  "COND_SEL",
	Uinv:     "UINV",
	Uand:     "UAND",
	Unot:     "UNOT",
	Uor:      "UOR",
	Uxor:     "UXOR",
	Unand:    "UNAND",
	Unor:     "UNOR",
	Unxor:    "UNXOR",
	SbitSel:  "SBIT_SEL",
	MbitSel:  "MBIT_SEL",
	Expand:   "EXPAND",
	Concat:   "CONCAT",
	List:     "LIST",
	Pedge:    "PEDGE",
	Nedge:    "NEDGE",
	Aedge:    "AEDGE",
	Eor:      "EOR",
	Delay:    "DELAY",
	Case:     "CASE",
	Casex:    "CASEX",
	Casez:    "CASEZ",
	Default:  "DEFAULT",
	Assign:   "ASSIGN",
	Bassign:  "BASSIGN",
	Nassign:  "NASSIGN",
	Param:    "PARAM",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Valid returns true if op is a known opcode.
//
func (op Op) Valid() bool { return op < opCount }

// IsRef returns true for opcodes that reference a signal. Their value is
// bound to the signal rather than stored in the database.
//
func (op Op) IsRef() bool {
	return op == Sig || op == SbitSel || op == MbitSel
}

// IsUnary returns true for opcodes that only use their right child.
//
func (op Op) IsUnary() bool {
	switch op {
	case Uinv, Uand, Unot, Uor, Uxor, Unand, Unor, Unxor, Concat, Pedge, Nedge, Aedge, Delay:
		return true
	}
	return false
}

// IsAssign returns true for assignment opcodes.
//
func (op Op) IsAssign() bool {
	return op == Assign || op == Bassign || op == Nassign
}

// IsEvent returns true for edge and event list opcodes.
//
func (op Op) IsEvent() bool {
	switch op {
	case Pedge, Nedge, Aedge, Eor, Delay:
		return true
	}
	return false
}

// Measurable returns true if the value of an expression with this opcode is a
// strict true/false result that combinational coverage is computed on.
//
func (op Op) Measurable() bool {
	switch op {
	case Static, Param, Sig, SbitSel, MbitSel, Cond, CondSel, Expand, Concat, List,
		Pedge, Nedge, Aedge, Eor, Delay, Default, Assign, Bassign, Nassign:
		return false
	}
	return true
}

// AlwaysEvalLeft returns true for opcodes whose left child must be evaluated
// even when not flagged as changed.
//
func (op Op) AlwaysEvalLeft() bool {
	switch op {
	case Case, Casex, Casez, Eor:
		return true
	}
	return false
}

// AlwaysEvalRight returns true for opcodes whose right child must be
// evaluated even when not flagged as changed.
//
func (op Op) AlwaysEvalRight() bool {
	return op == Eor
}
