// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/tensorir/pkg/core/indexmap"
)

// Attrs is the attributes record of one operator application. There is one record type per
// operator, and OpType tells which one it belongs to.
//
// Fields are tagged with `attr:"name"`, the attribute name used by the registry schema.
type Attrs interface {
	OpType() OpType
}

// attrsCloner is implemented by the records holding slices: cloneAttrs returns a deep copy.
type attrsCloner interface {
	cloneAttrs() Attrs
}

// CloneAttrs returns a copy of the record that doesn't share any slice with attrs.
func CloneAttrs(attrs Attrs) Attrs {
	if c, ok := attrs.(attrsCloner); ok {
		return c.cloneAttrs()
	}
	return attrs
}

func cloneOptionalInts(o Optional[[]int]) Optional[[]int] {
	if !o.valid {
		return o
	}
	return Some(slices.Clone(o.value))
}

// Optional holds a value that may be absent, e.g. "axis=None".
type Optional[T any] struct {
	value T
	valid bool
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] { return Optional[T]{value: value, valid: true} }

// None returns an empty Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }

// IsSome returns whether the value is present.
func (o Optional[T]) IsSome() bool { return o.valid }

// Or returns the value if present, otherwise defaultValue.
func (o Optional[T]) Or(defaultValue T) T {
	if o.valid {
		return o.value
	}
	return defaultValue
}

// String implements fmt.Stringer.
func (o Optional[T]) String() string {
	if !o.valid {
		return "None"
	}
	return fmt.Sprintf("%v", o.value)
}

// IndicesOrSections is the variant attribute of split: either a number of sections (Sections)
// or a list of split points (Indices).
type IndicesOrSections interface {
	isIndicesOrSections()
}

// Sections splits an axis in that many sections of (almost) equal size.
type Sections int

func (Sections) isIndicesOrSections() {}

// Indices splits an axis at the given (increasing) positions.
type Indices []int

func (Indices) isIndicesOrSections() {}

// ScatterReduction is the combining operation used when scattering updates.
type ScatterReduction string

const (
	ReductionUpdate ScatterReduction = "update"
	ReductionAdd    ScatterReduction = "add"
	ReductionMul    ScatterReduction = "mul"
	ReductionMean   ScatterReduction = "mean"
	ReductionMax    ScatterReduction = "max"
	ReductionMin    ScatterReduction = "min"
)

// MeshgridIndexing is the indexing mode of meshgrid: "ij" (matrix) or "xy" (cartesian).
type MeshgridIndexing string

const (
	IndexingIJ MeshgridIndexing = "ij"
	IndexingXY MeshgridIndexing = "xy"
)

// BroadcastToAttrs has no attributes: the target shape is an argument.
type BroadcastToAttrs struct{}

func (BroadcastToAttrs) OpType() OpType { return OpTypeBroadcastTo }

type ConcatAttrs struct {
	Axis Optional[int] `attr:"axis"`
}

func (ConcatAttrs) OpType() OpType { return OpTypeConcat }

type ExpandDimsAttrs struct {
	Axis []int `attr:"axis"`
}

func (ExpandDimsAttrs) OpType() OpType { return OpTypeExpandDims }

func (a ExpandDimsAttrs) cloneAttrs() Attrs {
	a.Axis = slices.Clone(a.Axis)
	return a
}

type FlattenAttrs struct{}

func (FlattenAttrs) OpType() OpType { return OpTypeFlatten }

// LayoutTransformAttrs for layout_transform.
//
// AxisSeparators split the output axes in groups that are flattened together in the physical
// layout; InputAxisSeparators do the same for the input buffer. They don't change the logical shape.
type LayoutTransformAttrs struct {
	IndexMap            *indexmap.IndexMap `attr:"index_map"`
	PadValue            Optional[PrimValue] `attr:"pad_value"`
	AxisSeparators      Optional[[]int]     `attr:"axis_separators"`
	InputAxisSeparators Optional[[]int]     `attr:"input_axis_separators"`
}

func (LayoutTransformAttrs) OpType() OpType { return OpTypeLayoutTransform }

// cloneAttrs copies the separators. The IndexMap is immutable and is shared.
func (a LayoutTransformAttrs) cloneAttrs() Attrs {
	a.AxisSeparators = cloneOptionalInts(a.AxisSeparators)
	a.InputAxisSeparators = cloneOptionalInts(a.InputAxisSeparators)
	return a
}

type PermuteDimsAttrs struct {
	Axes Optional[[]int] `attr:"axes"`
}

func (PermuteDimsAttrs) OpType() OpType { return OpTypePermuteDims }

func (a PermuteDimsAttrs) cloneAttrs() Attrs {
	a.Axes = cloneOptionalInts(a.Axes)
	return a
}

// ReshapeAttrs has no attributes: the target shape is an argument.
type ReshapeAttrs struct{}

func (ReshapeAttrs) OpType() OpType { return OpTypeReshape }

type SplitAttrs struct {
	IndicesOrSections IndicesOrSections `attr:"indices_or_sections"`
	Axis              int               `attr:"axis"`
}

func (SplitAttrs) OpType() OpType { return OpTypeSplit }

func (a SplitAttrs) cloneAttrs() Attrs {
	if indices, ok := a.IndicesOrSections.(Indices); ok {
		a.IndicesOrSections = slices.Clone(indices)
	}
	return a
}

type SqueezeAttrs struct {
	Axis Optional[[]int] `attr:"axis"`
}

func (SqueezeAttrs) OpType() OpType { return OpTypeSqueeze }

func (a SqueezeAttrs) cloneAttrs() Attrs {
	a.Axis = cloneOptionalInts(a.Axis)
	return a
}

type StackAttrs struct {
	Axis Optional[int] `attr:"axis"`
}

func (StackAttrs) OpType() OpType { return OpTypeStack }

type CollapseSumLikeAttrs struct{}

func (CollapseSumLikeAttrs) OpType() OpType { return OpTypeCollapseSumLike }

type CollapseSumToAttrs struct{}

func (CollapseSumToAttrs) OpType() OpType { return OpTypeCollapseSumTo }

type RepeatAttrs struct {
	Repeats int           `attr:"repeats"`
	Axis    Optional[int] `attr:"axis"`
}

func (RepeatAttrs) OpType() OpType { return OpTypeRepeat }

type TileAttrs struct {
	Repeats []int `attr:"repeats"`
}

func (TileAttrs) OpType() OpType { return OpTypeTile }

func (a TileAttrs) cloneAttrs() Attrs {
	a.Repeats = slices.Clone(a.Repeats)
	return a
}

type FlipAttrs struct {
	Axis int `attr:"axis"`
}

func (FlipAttrs) OpType() OpType { return OpTypeFlip }

type GatherElementsAttrs struct {
	Axis int `attr:"axis"`
}

func (GatherElementsAttrs) OpType() OpType { return OpTypeGatherElements }

type GatherNDAttrs struct {
	BatchDims int `attr:"batch_dims"`
}

func (GatherNDAttrs) OpType() OpType { return OpTypeGatherND }

type IndexTensorAttrs struct{}

func (IndexTensorAttrs) OpType() OpType { return OpTypeIndexTensor }

type IndexPutAttrs struct {
	Accumulate bool `attr:"accumulate"`
}

func (IndexPutAttrs) OpType() OpType { return OpTypeIndexPut }

type MeshgridAttrs struct {
	Indexing MeshgridIndexing `attr:"indexing"`
}

func (MeshgridAttrs) OpType() OpType { return OpTypeMeshgrid }

type ScatterElementsAttrs struct {
	Axis      int              `attr:"axis"`
	Reduction ScatterReduction `attr:"reduction"`
}

func (ScatterElementsAttrs) OpType() OpType { return OpTypeScatterElements }

type ScatterNDAttrs struct {
	Reduction ScatterReduction `attr:"reduction"`
}

func (ScatterNDAttrs) OpType() OpType { return OpTypeScatterND }

type OneHotAttrs struct {
	Depth int `attr:"depth"`
	Axis  int `attr:"axis"`
}

func (OneHotAttrs) OpType() OpType { return OpTypeOneHot }

// FormatAttrs returns the attributes as a comma-separated list of "name=value", in the order of the
// record's fields. Absent optional attributes are omitted.
func FormatAttrs(attrs Attrs) string {
	if attrs == nil {
		return ""
	}
	value := reflect.ValueOf(attrs)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	recordType := value.Type()
	var parts []string
	for ii := range recordType.NumField() {
		name := recordType.Field(ii).Tag.Get("attr")
		if name == "" {
			continue
		}
		field := value.Field(ii).Interface()
		if opt, ok := field.(interface{ IsSome() bool }); ok && !opt.IsSome() {
			continue
		}
		if field == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, field))
	}
	return strings.Join(parts, ", ")
}

// attrNames returns the attribute names declared by the tags of the record type.
func attrNames(attrs Attrs) []string {
	recordType := reflect.TypeOf(attrs)
	var names []string
	for ii := range recordType.NumField() {
		if name := recordType.Field(ii).Tag.Get("attr"); name != "" {
			names = append(names, name)
		}
	}
	return names
}
