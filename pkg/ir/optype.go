// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

// OpType enumerates the tensor manipulation operators. Its String method returns the operator
// name, as used in the textual IR and in LookupOp.
//
// It is a closed set: adding a new operator requires a new OpType, an entry in the registry
// (see OpDef) and an inference rule.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -transform=snake -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota
	OpTypeBroadcastTo
	OpTypeConcat
	OpTypeExpandDims
	OpTypeFlatten
	OpTypeLayoutTransform
	OpTypePermuteDims
	OpTypeReshape
	OpTypeSplit
	OpTypeSqueeze
	OpTypeStack
	OpTypeCollapseSumLike
	OpTypeCollapseSumTo
	OpTypeRepeat
	OpTypeTile
	OpTypeFlip
	OpTypeGatherElements
	OpTypeGatherND
	OpTypeIndexTensor
	OpTypeIndexPut
	OpTypeMeshgrid
	OpTypeScatterElements
	OpTypeScatterND
	OpTypeOneHot

	// OpTypeLast should always be kept the last, it is used as a counter/marker for OpType.
	OpTypeLast
)

// IsValid returns whether op is one of the defined operators.
func (op OpType) IsValid() bool {
	return op > OpTypeInvalid && op < OpTypeLast
}

// OpTypes returns all valid operator types, in declaration order.
func OpTypes() []OpType {
	ops := make([]OpType, 0, int(OpTypeLast)-1)
	for op := OpTypeInvalid + 1; op < OpTypeLast; op++ {
		ops = append(ops, op)
	}
	return ops
}
