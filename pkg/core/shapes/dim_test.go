// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimKinds(t *testing.T) {
	static := D(3)
	require.True(t, static.IsStatic())
	v, ok := static.Value()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, "3", static.String())

	n := Sym("n")
	require.True(t, n.IsSymbolic())
	_, ok = n.Value()
	require.False(t, ok)
	require.Equal(t, "n", n.String())

	var zero Dim
	require.True(t, zero.IsUnknown())
	require.Equal(t, "?", zero.String())

	require.Panics(t, func() { _ = D(-1) })
	require.Panics(t, func() { _ = Sym("") })
	require.Equal(t, []Dim{D(1), D(2)}, Dims(int64(1), int64(2)))
}

func TestDimCompare(t *testing.T) {
	n, m := Sym("n"), Sym("m")
	require.Equal(t, Yes, D(3).Compare(D(3)))
	require.Equal(t, No, D(3).Compare(D(5)))
	require.Equal(t, Yes, n.Compare(Sym("n")))
	require.Equal(t, Maybe, n.Compare(m))
	require.Equal(t, Maybe, n.Compare(D(3)))
	require.Equal(t, Maybe, Unknown().Compare(Unknown()))
	require.Equal(t, Maybe, Unknown().Compare(D(1)))

	// Structurally identical expressions are equal, regardless of construction order.
	require.Equal(t, Yes, n.Mul(D(4)).Compare(D(4).Mul(n)))
	require.Equal(t, Yes, n.Add(m).Compare(m.Add(n)))
	require.Equal(t, Maybe, n.Sub(m).Compare(m.Sub(n)))

	require.Equal(t, No, Yes.Not())
	require.Equal(t, Maybe, Maybe.Not())
	require.Equal(t, No, Yes.And(No))
	require.Equal(t, Maybe, Yes.And(Maybe))
	require.Equal(t, No, Maybe.And(No))
}

func TestDimUnify(t *testing.T) {
	n := Sym("n")
	require.True(t, D(3).Unify(n).IsValue(3))
	require.True(t, n.Unify(D(3)).IsValue(3))
	require.True(t, Unknown().Unify(n).Identical(n))
	require.True(t, n.Unify(Unknown()).Identical(n))
	require.True(t, n.Unify(Sym("m")).IsUnknown())
	require.True(t, n.Unify(Sym("n")).Identical(n))
}

func TestDimArithmetic(t *testing.T) {
	n, m := Sym("n"), Sym("m")

	require.True(t, D(3).Add(D(4)).IsValue(7))
	require.True(t, D(7).Sub(D(4)).IsValue(3))
	require.True(t, D(2).Sub(D(4)).IsValue(0))
	require.True(t, D(3).Mul(D(4)).IsValue(12))
	require.True(t, D(10).FloorDiv(D(3)).IsValue(3))
	require.True(t, D(10).CeilDiv(D(3)).IsValue(4))
	require.True(t, D(10).FloorMod(D(3)).IsValue(1))

	// Identities.
	require.True(t, n.Add(D(0)).Identical(n))
	require.True(t, n.Mul(D(1)).Identical(n))
	require.True(t, n.FloorDiv(D(1)).Identical(n))
	require.True(t, n.CeilDiv(D(1)).Identical(n))
	require.True(t, n.FloorMod(D(1)).IsValue(0))
	require.True(t, n.Sub(n).IsValue(0))

	// Zero absorbs even unknown dimensions.
	require.True(t, Unknown().Mul(D(0)).IsValue(0))
	require.True(t, Unknown().Add(D(1)).IsUnknown())

	// Symbolic expressions.
	require.Equal(t, "4 * n", n.Mul(D(4)).String())
	require.Equal(t, "m + n", n.Add(m).String())
	require.Equal(t, "ceildiv(n, 3)", n.CeilDiv(D(3)).String())
	require.Equal(t, "(1 + n) / 2", n.Add(D(1)).FloorDiv(D(2)).String())
	require.Equal(t, []string{"m", "n"}, n.Mul(m.Add(n)).Symbols())

	// Division of multiples simplifies.
	require.True(t, n.Mul(D(12)).FloorDiv(D(12)).Identical(n))
	require.Equal(t, "3 * n", n.Mul(D(12)).CeilDiv(D(4)).String())
	require.True(t, n.Mul(D(12)).FloorMod(D(6)).IsValue(0))
	require.True(t, n.FloorDiv(n).IsValue(1))
	require.Equal(t, "(4 * n) / 3", n.Mul(D(4)).FloorDiv(D(3)).String())
	require.True(t, n.Mul(D(3)).Mul(D(4)).Identical(D(12).Mul(n)))

	require.Panics(t, func() { _ = n.FloorDiv(D(0)) })
}

func TestDimResolve(t *testing.T) {
	n := Sym("n")
	expr := n.Add(D(1)).FloorMod(D(4))
	require.True(t, expr.Resolve(Bindings{"n": 6}).IsValue(3))
	require.True(t, expr.Resolve(Bindings{"m": 6}).Identical(expr))
	require.True(t, D(5).CeilDiv(n).Resolve(Bindings{"n": 0}).IsUnknown())
}
