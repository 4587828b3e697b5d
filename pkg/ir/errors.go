// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// SchemaError is returned when the arguments of an operator don't follow its declared schema:
// wrong arity, unknown or missing attributes, or attribute values outside their declared domain
// (e.g. an unrecognized reduction mode).
type SchemaError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid arguments: %s", e.Op, e.Reason)
}

// ShapeError is returned when the shapes or dtypes of the arguments are provably illegal for
// the operator: rank mismatch, incompatible broadcast, non-divisible reshape, axis out of range, etc.
type ShapeError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: invalid shapes: %s", e.Op, e.Reason)
}

// Schemaf returns a SchemaError for the operator, with a stack trace attached.
func Schemaf(op string, format string, args ...any) error {
	return errors.WithStack(&SchemaError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// Shapef returns a ShapeError for the operator, with a stack trace attached.
func Shapef(op string, format string, args ...any) error {
	return errors.WithStack(&ShapeError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// IsSchemaError returns whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsShapeError returns whether err is or wraps a *ShapeError.
func IsShapeError(err error) bool {
	var target *ShapeError
	return errors.As(err, &target)
}

// IsInvalidArgument returns whether err is one of the construction errors: a SchemaError or a ShapeError.
func IsInvalidArgument(err error) bool {
	return IsSchemaError(err) || IsShapeError(err)
}

// DeferredCheck describes a legality condition that is deliberately not verified when the node
// is built, because it depends on runtime values (e.g. the integer values inside an indices tensor)
// or on symbolic dimensions. Verifying it is the responsibility of the execution stage.
type DeferredCheck struct {
	Op          string
	Description string
}

// String implements fmt.Stringer.
func (c DeferredCheck) String() string {
	return fmt.Sprintf("%s: %s", c.Op, c.Description)
}
