// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"strconv"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// Tribool is the result of comparing dimensions that may not be statically known.
//
// Maybe is a real third state: it means the comparison could not be decided at
// graph construction time, and it is never silently converted to Yes or No.
type Tribool int8

const (
	Maybe Tribool = iota
	Yes
	No
)

// String implements fmt.Stringer.
func (t Tribool) String() string {
	switch t {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Maybe"
	}
}

// Not returns the negation, Maybe stays Maybe.
func (t Tribool) Not() Tribool {
	switch t {
	case Yes:
		return No
	case No:
		return Yes
	default:
		return Maybe
	}
}

// And combines two Tribool values: any No wins, then any Maybe.
func (t Tribool) And(t2 Tribool) Tribool {
	if t == No || t2 == No {
		return No
	}
	if t == Maybe || t2 == Maybe {
		return Maybe
	}
	return Yes
}

type dimKind uint8

const (
	unknownDim dimKind = iota
	staticDim
	symbolicDim
)

// Dim is the size of one axis. It is either:
//
//   - static: a known non-negative integer;
//   - symbolic: a named variable (see Sym) or an arithmetic expression over variables and constants;
//   - unknown: nothing is known about it. The zero value of Dim is unknown.
//
// Symbolic dimensions are only equal to each other when they are structurally identical:
// "n" and "n" are equal, "n" and "m" are undecided (they may be bound to the same value later),
// and "n" compared with 3 is undecided as well.
//
// Dim values are immutable.
type Dim struct {
	kind dimKind
	size int
	expr *symExpr
}

// symExpr is a node of a symbolic expression. Leaves have op == 0 and a name.
type symExpr struct {
	op       byte
	name     string
	lhs, rhs Dim
	key      string
}

// D returns a static dimension. It panics for negative values.
func D[T constraints.Integer](size T) Dim {
	if size < 0 {
		exceptions.Panicf("shapes.D(%d): dimensions cannot be negative", size)
	}
	return Dim{kind: staticDim, size: int(size)}
}

// Sym returns a symbolic dimension with the given name.
func Sym(name string) Dim {
	if name == "" {
		exceptions.Panicf("shapes.Sym(): symbolic dimensions require a name")
	}
	return Dim{kind: symbolicDim, expr: &symExpr{name: name, key: name}}
}

// Unknown returns a dimension about which nothing is known.
func Unknown() Dim { return Dim{} }

// Dims converts a list of static sizes to a list of Dim.
func Dims[T constraints.Integer](sizes ...T) []Dim {
	dims := make([]Dim, len(sizes))
	for ii, size := range sizes {
		dims[ii] = D(size)
	}
	return dims
}

// IsStatic returns whether the dimension is a known integer.
func (d Dim) IsStatic() bool { return d.kind == staticDim }

// IsSymbolic returns whether the dimension is a symbolic expression.
func (d Dim) IsSymbolic() bool { return d.kind == symbolicDim }

// IsUnknown returns whether nothing is known about the dimension.
func (d Dim) IsUnknown() bool { return d.kind == unknownDim }

// Value returns the static value of the dimension, and whether it is static.
func (d Dim) Value() (int, bool) {
	if d.kind != staticDim {
		return 0, false
	}
	return d.size, true
}

// IsValue returns whether the dimension is static and equal to v.
func (d Dim) IsValue(v int) bool { return d.kind == staticDim && d.size == v }

// String implements fmt.Stringer. Unknown dimensions are printed as "?".
func (d Dim) String() string {
	switch d.kind {
	case staticDim:
		return strconv.Itoa(d.size)
	case symbolicDim:
		key := d.expr.key
		if d.expr.op != 0 && len(key) > 2 {
			return key[1 : len(key)-1]
		}
		return key
	default:
		return "?"
	}
}

func (d Dim) key() string {
	if d.kind == symbolicDim {
		return d.expr.key
	}
	return d.String()
}

// Identical returns whether the two dimensions are structurally the same: same static value,
// same symbolic expression, or both unknown.
func (d Dim) Identical(d2 Dim) bool {
	if d.kind != d2.kind {
		return false
	}
	switch d.kind {
	case staticDim:
		return d.size == d2.size
	case symbolicDim:
		return d.expr.key == d2.expr.key
	default:
		return true
	}
}

// Compare returns Yes if both dimensions are provably equal, No if they are provably different,
// and Maybe otherwise.
func (d Dim) Compare(d2 Dim) Tribool {
	switch {
	case d.kind == staticDim && d2.kind == staticDim:
		if d.size == d2.size {
			return Yes
		}
		return No
	case d.kind == symbolicDim && d2.kind == symbolicDim && d.expr.key == d2.expr.key:
		return Yes
	default:
		return Maybe
	}
}

// Unify returns the most informative dimension among two dimensions that are assumed to be equal:
// static wins over symbolic, and symbolic wins over unknown. Two different symbols unify to unknown.
// The caller is responsible for checking first that Compare didn't return No.
func (d Dim) Unify(d2 Dim) Dim {
	switch {
	case d.kind == staticDim:
		return d
	case d2.kind == staticDim:
		return d2
	case d.kind == unknownDim:
		return d2
	case d2.kind == unknownDim:
		return d
	case d.expr.key == d2.expr.key:
		return d
	default:
		return Unknown()
	}
}

func binarySym(op byte, lhs, rhs Dim) Dim {
	if op == '+' || op == '*' {
		// Canonical order for commutative operations: constants first ("4 * n"), then by key.
		switch {
		case rhs.IsStatic() && !lhs.IsStatic():
			lhs, rhs = rhs, lhs
		case lhs.IsStatic() == rhs.IsStatic() && lhs.key() > rhs.key():
			lhs, rhs = rhs, lhs
		}
	}
	var key string
	switch op {
	case 'c':
		key = fmt.Sprintf("(ceildiv(%s, %s))", lhs.key(), rhs.key())
	default:
		key = fmt.Sprintf("(%s %c %s)", lhs.key(), op, rhs.key())
	}
	return Dim{kind: symbolicDim, expr: &symExpr{op: op, lhs: lhs, rhs: rhs, key: key}}
}

// Add returns d + d2.
func (d Dim) Add(d2 Dim) Dim {
	switch {
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D(d.size + d2.size)
	case d.IsValue(0):
		return d2
	case d2.IsValue(0):
		return d
	}
	return binarySym('+', d, d2)
}

// Sub returns d - d2. Static results that would be negative are returned as 0.
func (d Dim) Sub(d2 Dim) Dim {
	switch {
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D(max(d.size-d2.size, 0))
	case d2.IsValue(0):
		return d
	case d.Identical(d2):
		return D(0)
	}
	return binarySym('-', d, d2)
}

// Mul returns d * d2. A static 0 multiplied by anything, including unknown dimensions, is 0.
func (d Dim) Mul(d2 Dim) Dim {
	switch {
	case d.IsValue(0) || d2.IsValue(0):
		return D(0)
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D(d.size * d2.size)
	case d.IsValue(1):
		return d2
	case d2.IsValue(1):
		return d
	}
	// Fold constants: c1 * (c2 * e) = (c1*c2) * e.
	if d2.IsStatic() {
		d, d2 = d2, d
	}
	if d.IsStatic() {
		if c, rest, ok := d2.constantFactor(); ok {
			return D(d.size * c).Mul(rest)
		}
	}
	return binarySym('*', d, d2)
}

// constantFactor returns c and e if d is the product c * e, with c static.
func (d Dim) constantFactor() (c int, rest Dim, ok bool) {
	if d.kind != symbolicDim || d.expr.op != '*' {
		return 0, Dim{}, false
	}
	c, ok = d.expr.lhs.Value()
	return c, d.expr.rhs, ok
}

func (d Dim) checkDivisor(name string, d2 Dim) {
	if d2.IsValue(0) {
		exceptions.Panicf("shapes.Dim.%s(%s, %s): division by zero", name, d, d2)
	}
}

// divisibleProduct returns, for d = c * e with static c a multiple of d2, the quotient (c/d2) * e.
func (d Dim) divisibleProduct(d2 Dim) (quotient Dim, ok bool) {
	if d.kind != symbolicDim || d.expr.op != '*' || !d2.IsStatic() || d2.size == 0 {
		return Dim{}, false
	}
	c, isStatic := d.expr.lhs.Value()
	if !isStatic || c%d2.size != 0 {
		return Dim{}, false
	}
	return D(c / d2.size).Mul(d.expr.rhs), true
}

// FloorDiv returns floor(d / d2). It panics if d2 is statically 0.
func (d Dim) FloorDiv(d2 Dim) Dim {
	d.checkDivisor("FloorDiv", d2)
	switch {
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D(d.size / d2.size)
	case d2.IsValue(1):
		return d
	case d.Identical(d2):
		return D(1)
	}
	if quotient, ok := d.divisibleProduct(d2); ok {
		return quotient
	}
	return binarySym('/', d, d2)
}

// CeilDiv returns ceil(d / d2). It panics if d2 is statically 0.
func (d Dim) CeilDiv(d2 Dim) Dim {
	d.checkDivisor("CeilDiv", d2)
	switch {
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D((d.size + d2.size - 1) / d2.size)
	case d2.IsValue(1):
		return d
	}
	if quotient, ok := d.divisibleProduct(d2); ok {
		return quotient
	}
	return binarySym('c', d, d2)
}

// FloorMod returns d mod d2. It panics if d2 is statically 0.
func (d Dim) FloorMod(d2 Dim) Dim {
	d.checkDivisor("FloorMod", d2)
	switch {
	case d.IsUnknown() || d2.IsUnknown():
		return Unknown()
	case d.IsStatic() && d2.IsStatic():
		return D(d.size % d2.size)
	case d2.IsValue(1) || d.Identical(d2):
		return D(0)
	}
	if _, ok := d.divisibleProduct(d2); ok {
		return D(0)
	}
	return binarySym('%', d, d2)
}

// Symbols returns the names of the symbolic variables used by the dimension, in order of appearance.
func (d Dim) Symbols() []string {
	if d.kind != symbolicDim {
		return nil
	}
	if d.expr.op == 0 {
		return []string{d.expr.name}
	}
	names := d.expr.lhs.Symbols()
	for _, name := range d.expr.rhs.Symbols() {
		found := false
		for _, existing := range names {
			if existing == name {
				found = true
				break
			}
		}
		if !found {
			names = append(names, name)
		}
	}
	return names
}

// Resolve replaces symbolic variables with the values in bindings and folds the result.
// Variables not in bindings are kept symbolic.
func (d Dim) Resolve(bindings Bindings) Dim {
	if d.kind != symbolicDim || len(bindings) == 0 {
		return d
	}
	e := d.expr
	if e.op == 0 {
		if value, found := bindings[e.name]; found {
			return D(value)
		}
		return d
	}
	lhs, rhs := e.lhs.Resolve(bindings), e.rhs.Resolve(bindings)
	if rhs.IsValue(0) && (e.op == '/' || e.op == 'c' || e.op == '%') {
		// Binding made the divisor zero: nothing sensible to fold.
		return Unknown()
	}
	switch e.op {
	case '+':
		return lhs.Add(rhs)
	case '-':
		return lhs.Sub(rhs)
	case '*':
		return lhs.Mul(rhs)
	case '/':
		return lhs.FloorDiv(rhs)
	case 'c':
		return lhs.CeilDiv(rhs)
	case '%':
		return lhs.FloorMod(rhs)
	}
	exceptions.Panicf("shapes.Dim.Resolve(): unknown symbolic operation %q in %s", e.op, d)
	return d
}
