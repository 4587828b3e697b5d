// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/pkg/core/indexmap"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// ArgRole is the role of an argument of an operator.
type ArgRole int

//go:generate go tool enumer -type=ArgRole -trimprefix=Role -transform=snake -output=gen_argrole_enumer.go registry.go

const (
	// RoleData is a tensor holding data.
	RoleData ArgRole = iota

	// RoleIndices is an integer tensor of indices.
	RoleIndices

	// RoleShape is a shape value (ShapeExpr or ShapeVar).
	RoleShape

	// RoleTensors is a tuple of tensors, or a tuple-typed node.
	RoleTensors

	// RoleIndicesTuple is a tuple of integer index tensors.
	RoleIndicesTuple

	// RoleShapeOf is a tensor whose shape (not its values) is used.
	RoleShapeOf

	// RoleScalar is a static scalar value (PrimValue).
	RoleScalar
)

// ArgSpec describes one positional argument of an operator.
type ArgSpec struct {
	Name string
	Role ArgRole
}

// AttrKind is the kind of value accepted by an attribute.
type AttrKind int

//go:generate go tool enumer -type=AttrKind -trimprefix=Attr -transform=snake -output=gen_attrkind_enumer.go registry.go

const (
	AttrInt AttrKind = iota
	AttrOptionalInt
	AttrInts
	AttrOptionalInts
	AttrBool
	AttrString
	AttrIndexMap
	AttrOptionalPrimValue
	AttrIndicesOrSections
)

// isOptional returns whether a missing value without a default means "None".
func (k AttrKind) isOptional() bool {
	return k == AttrOptionalInt || k == AttrOptionalInts || k == AttrOptionalPrimValue
}

// AttrSpec describes one attribute of an operator.
type AttrSpec struct {
	Name     string
	Kind     AttrKind
	Required bool
	Default  any      // Used when the attribute is not given and not Required. Nil for optional kinds means None.
	Enum     []string // If set, the valid values of a string attribute.
}

// OpDef is the registry entry of one operator: its arguments and attributes schema.
// Entries are created during package initialization and never modified afterwards.
type OpDef struct {
	Type  OpType
	Args  []ArgSpec
	Attrs []AttrSpec

	// newAttrs returns a zero attributes record for the operator.
	newAttrs func() Attrs
}

// Name of the operator.
func (def *OpDef) Name() string { return def.Type.String() }

// Arity is the number of positional arguments.
func (def *OpDef) Arity() int { return len(def.Args) }

// CheckArity returns a SchemaError if numArgs is not the operator's arity.
func (def *OpDef) CheckArity(numArgs int) error {
	if numArgs != len(def.Args) {
		names := make([]string, len(def.Args))
		for ii, arg := range def.Args {
			names[ii] = arg.Name
		}
		return Schemaf(def.Name(), "expected %d arguments (%s), got %d", len(def.Args), strings.Join(names, ", "), numArgs)
	}
	return nil
}

// Attr returns the spec of the named attribute, or nil if the operator has no such attribute.
func (def *OpDef) Attr(name string) *AttrSpec {
	for ii := range def.Attrs {
		if def.Attrs[ii].Name == name {
			return &def.Attrs[ii]
		}
	}
	return nil
}

// ResolveAttrs validates the attribute values given by name (e.g. parsed from a text format),
// fills in the defaults, and returns the attributes record of the operator.
//
// Unknown attributes, missing required attributes, values of the wrong kind and values outside an
// enum are all reported together, in one SchemaError. A value explicitly set to nil for an optional
// attribute means None.
func (def *OpDef) ResolveAttrs(values map[string]any) (Attrs, error) {
	var err error
	for name := range values {
		if def.Attr(name) == nil {
			err = multierr.Append(err, errors.Errorf("unknown attribute %q", name))
		}
	}
	record := reflect.New(reflect.TypeOf(def.newAttrs())).Elem()
	for _, spec := range def.Attrs {
		raw, found := values[spec.Name]
		if !found {
			if spec.Required {
				err = multierr.Append(err, errors.Errorf("missing required attribute %q", spec.Name))
				continue
			}
			raw = spec.Default
		}
		value, convErr := spec.convert(raw)
		if convErr != nil {
			err = multierr.Append(err, errors.WithMessagef(convErr, "attribute %q", spec.Name))
			continue
		}
		setField(record, spec.Name, value)
	}
	if err != nil {
		return nil, Schemaf(def.Name(), "%s", err)
	}
	return record.Interface().(Attrs), nil
}

// convert the raw value of an attribute to the Go type used in the attributes records.
func (spec *AttrSpec) convert(raw any) (any, error) {
	switch spec.Kind {
	case AttrInt:
		return toInt(raw)
	case AttrOptionalInt:
		if raw == nil {
			return None[int](), nil
		}
		if opt, ok := raw.(Optional[int]); ok {
			return opt, nil
		}
		v, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	case AttrInts:
		return toInts(raw)
	case AttrOptionalInts:
		if raw == nil {
			return None[[]int](), nil
		}
		if opt, ok := raw.(Optional[[]int]); ok {
			return opt, nil
		}
		v, err := toInts(raw)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	case AttrBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, errors.Errorf("expected a bool, got %T", raw)
		}
		return v, nil
	case AttrString:
		v, ok := raw.(string)
		if !ok {
			if s, isStringer := raw.(fmt.Stringer); isStringer {
				v = s.String()
			} else if rv := reflect.ValueOf(raw); rv.Kind() == reflect.String {
				v = rv.String()
			} else {
				return nil, errors.Errorf("expected a string, got %T", raw)
			}
		}
		if len(spec.Enum) > 0 && !slices.Contains(spec.Enum, v) {
			return nil, errors.Errorf("invalid value %q, valid values are %q", v, spec.Enum)
		}
		return v, nil
	case AttrIndexMap:
		switch v := raw.(type) {
		case *indexmap.IndexMap:
			if v == nil {
				return nil, errors.New("index map is required")
			}
			return v, nil
		case string:
			return indexmap.Parse(v)
		}
		return nil, errors.Errorf("expected an index map, got %T", raw)
	case AttrOptionalPrimValue:
		switch v := raw.(type) {
		case nil:
			return None[PrimValue](), nil
		case Optional[PrimValue]:
			return v, nil
		case PrimValue:
			return Some(v), nil
		}
		v, err := NewPrimValue(raw)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	case AttrIndicesOrSections:
		switch v := raw.(type) {
		case Sections, Indices:
			return v, nil
		case []int, []any:
			indices, err := toInts(v)
			if err != nil {
				return nil, err
			}
			return Indices(indices), nil
		}
		v, err := toInt(raw)
		if err != nil {
			return nil, errors.Errorf("expected a number of sections or a list of indices, got %T", raw)
		}
		return Sections(v), nil
	}
	return nil, errors.Errorf("unsupported attribute kind %s", spec.Kind)
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Errorf("expected an integer, got %g", v)
		}
		return int(v), nil
	}
	return 0, errors.Errorf("expected an integer, got %T", raw)
}

func toInts(raw any) ([]int, error) {
	switch v := raw.(type) {
	case []int:
		return slices.Clone(v), nil
	case Indices:
		return slices.Clone([]int(v)), nil
	case []any:
		result := make([]int, len(v))
		for ii, element := range v {
			var err error
			result[ii], err = toInt(element)
			if err != nil {
				return nil, errors.WithMessagef(err, "element #%d", ii)
			}
		}
		return result, nil
	}
	// A single integer is accepted as a list of one element.
	v, err := toInt(raw)
	if err != nil {
		return nil, errors.Errorf("expected a list of integers, got %T", raw)
	}
	return []int{v}, nil
}

// setField sets the field tagged with `attr:"name"` of the record.
func setField(record reflect.Value, name string, value any) {
	recordType := record.Type()
	for ii := range recordType.NumField() {
		if recordType.Field(ii).Tag.Get("attr") != name {
			continue
		}
		field := record.Field(ii)
		v := reflect.ValueOf(value)
		if !v.Type().AssignableTo(field.Type()) {
			v = v.Convert(field.Type())
		}
		field.Set(v)
		return
	}
	exceptions.Panicf("attributes record %s has no field for attribute %q", recordType, name)
}

var registry [OpTypeLast]*OpDef

// register adds the definition of an operator. It panics on inconsistent declarations.
func register(op OpType, newAttrs func() Attrs, args []ArgSpec, attrs ...AttrSpec) {
	if registry[op] != nil {
		exceptions.Panicf("operator %s registered more than once", op)
	}
	def := &OpDef{Type: op, Args: args, Attrs: attrs, newAttrs: newAttrs}
	record := newAttrs()
	if record.OpType() != op {
		exceptions.Panicf("operator %s registered with attributes record %T of %s", op, record, record.OpType())
	}
	declared := attrNames(record)
	specNames := make([]string, len(attrs))
	for ii, spec := range attrs {
		specNames[ii] = spec.Name
		if spec.Kind.isOptional() && spec.Required {
			exceptions.Panicf("operator %s: optional attribute %q can't be required", op, spec.Name)
		}
	}
	if !slices.Equal(declared, specNames) {
		exceptions.Panicf("operator %s: attributes schema %v doesn't match record %T fields %v", op, specNames, record, declared)
	}
	registry[op] = def
}

// Def returns the registry entry of the operator. It panics for an invalid OpType.
func (op OpType) Def() *OpDef {
	if !op.IsValid() || registry[op] == nil {
		exceptions.Panicf("operator %s is not registered", op)
	}
	return registry[op]
}

// LookupOp returns the registry entry for the operator with the given name, and whether it was found.
func LookupOp(name string) (*OpDef, bool) {
	op, err := OpTypeString(name)
	if err != nil || !op.IsValid() {
		return nil, false
	}
	def := registry[op]
	return def, def != nil
}

// Defs returns all registered operators, in OpType order.
func Defs() []*OpDef {
	defs := make([]*OpDef, 0, len(registry))
	for _, def := range registry {
		if def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

func args(specs ...ArgSpec) []ArgSpec { return specs }

var (
	scatterElementsReductions = []string{
		string(ReductionUpdate), string(ReductionAdd), string(ReductionMul),
		string(ReductionMean), string(ReductionMax), string(ReductionMin),
	}
	scatterNDReductions = []string{
		string(ReductionUpdate), string(ReductionAdd), string(ReductionMul),
		string(ReductionMax), string(ReductionMin),
	}
)

func init() {
	x := ArgSpec{"x", RoleData}
	data := ArgSpec{"data", RoleData}
	indices := ArgSpec{"indices", RoleIndices}
	updates := ArgSpec{"updates", RoleData}
	tensors := ArgSpec{"tensors", RoleTensors}
	shape := ArgSpec{"shape", RoleShape}

	register(OpTypeBroadcastTo, func() Attrs { return BroadcastToAttrs{} }, args(x, shape))
	register(OpTypeConcat, func() Attrs { return ConcatAttrs{} }, args(tensors),
		AttrSpec{Name: "axis", Kind: AttrOptionalInt, Default: 0})
	register(OpTypeExpandDims, func() Attrs { return ExpandDimsAttrs{} }, args(x),
		AttrSpec{Name: "axis", Kind: AttrInts, Required: true})
	register(OpTypeFlatten, func() Attrs { return FlattenAttrs{} }, args(x))
	register(OpTypeLayoutTransform, func() Attrs { return LayoutTransformAttrs{} }, args(x),
		AttrSpec{Name: "index_map", Kind: AttrIndexMap, Required: true},
		AttrSpec{Name: "pad_value", Kind: AttrOptionalPrimValue},
		AttrSpec{Name: "axis_separators", Kind: AttrOptionalInts},
		AttrSpec{Name: "input_axis_separators", Kind: AttrOptionalInts})
	register(OpTypePermuteDims, func() Attrs { return PermuteDimsAttrs{} }, args(x),
		AttrSpec{Name: "axes", Kind: AttrOptionalInts})
	register(OpTypeReshape, func() Attrs { return ReshapeAttrs{} }, args(x, shape))
	register(OpTypeSplit, func() Attrs { return SplitAttrs{} }, args(x),
		AttrSpec{Name: "indices_or_sections", Kind: AttrIndicesOrSections, Required: true},
		AttrSpec{Name: "axis", Kind: AttrInt, Default: 0})
	register(OpTypeSqueeze, func() Attrs { return SqueezeAttrs{} }, args(x),
		AttrSpec{Name: "axis", Kind: AttrOptionalInts})
	register(OpTypeStack, func() Attrs { return StackAttrs{} }, args(tensors),
		AttrSpec{Name: "axis", Kind: AttrOptionalInt})
	register(OpTypeCollapseSumLike, func() Attrs { return CollapseSumLikeAttrs{} },
		args(data, ArgSpec{"collapse_target", RoleShapeOf}))
	register(OpTypeCollapseSumTo, func() Attrs { return CollapseSumToAttrs{} }, args(data, shape))
	register(OpTypeRepeat, func() Attrs { return RepeatAttrs{} }, args(data),
		AttrSpec{Name: "repeats", Kind: AttrInt, Required: true},
		AttrSpec{Name: "axis", Kind: AttrOptionalInt})
	register(OpTypeTile, func() Attrs { return TileAttrs{} }, args(data),
		AttrSpec{Name: "repeats", Kind: AttrInts, Required: true})
	register(OpTypeFlip, func() Attrs { return FlipAttrs{} }, args(data),
		AttrSpec{Name: "axis", Kind: AttrInt, Required: true})
	register(OpTypeGatherElements, func() Attrs { return GatherElementsAttrs{} }, args(data, indices),
		AttrSpec{Name: "axis", Kind: AttrInt, Default: 0})
	register(OpTypeGatherND, func() Attrs { return GatherNDAttrs{} }, args(data, indices),
		AttrSpec{Name: "batch_dims", Kind: AttrInt, Default: 0})
	register(OpTypeIndexTensor, func() Attrs { return IndexTensorAttrs{} },
		args(data, ArgSpec{"indices", RoleIndicesTuple}))
	register(OpTypeIndexPut, func() Attrs { return IndexPutAttrs{} },
		args(data, ArgSpec{"indices", RoleIndicesTuple}, ArgSpec{"values", RoleData}),
		AttrSpec{Name: "accumulate", Kind: AttrBool, Default: false})
	register(OpTypeMeshgrid, func() Attrs { return MeshgridAttrs{} }, args(tensors),
		AttrSpec{Name: "indexing", Kind: AttrString, Default: string(IndexingIJ),
			Enum: []string{string(IndexingIJ), string(IndexingXY)}})
	register(OpTypeScatterElements, func() Attrs { return ScatterElementsAttrs{} }, args(data, indices, updates),
		AttrSpec{Name: "axis", Kind: AttrInt, Default: 0},
		AttrSpec{Name: "reduction", Kind: AttrString, Default: string(ReductionUpdate), Enum: scatterElementsReductions})
	register(OpTypeScatterND, func() Attrs { return ScatterNDAttrs{} }, args(data, indices, updates),
		AttrSpec{Name: "reduction", Kind: AttrString, Default: string(ReductionUpdate), Enum: scatterNDReductions})
	register(OpTypeOneHot, func() Attrs { return OneHotAttrs{} },
		args(indices, ArgSpec{"on_value", RoleScalar}, ArgSpec{"off_value", RoleScalar}),
		AttrSpec{Name: "depth", Kind: AttrInt, Required: true},
		AttrSpec{Name: "axis", Kind: AttrInt, Default: -1})

	klog.V(1).Infof("tensorir: %d operators registered", len(Defs()))
}

// ValidReductions returns the valid reduction modes of the scatter operator.
func ValidReductions(op OpType) []ScatterReduction {
	var names []string
	switch op {
	case OpTypeScatterElements:
		names = scatterElementsReductions
	case OpTypeScatterND:
		names = scatterNDReductions
	default:
		return nil
	}
	result := make([]ScatterReduction, len(names))
	for ii, name := range names {
		result[ii] = ScatterReduction(name)
	}
	return result
}
