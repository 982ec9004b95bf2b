package compiler

import (
	"fmt"
	"iter"

	"github.com/bjoto/simple-binary-encoding/internal/ir"
)

// Schema validation error codes (E200-E299)
const (
	ErrCodeDuplicateTemplateID = "E201" // two messages share a template id
	ErrCodeDuplicateMemberID   = "E202" // two members of one scope share an id
	ErrCodeConstantMismatch    = "E203" // constant representation incompatible with field type
	ErrCodeUnresolvedType      = "E204" // type reference does not resolve
	ErrCodeTypeCycle           = "E205" // composite references itself, directly or transitively
	ErrCodeBadDimension        = "E206" // group dimension composite has the wrong shape
	ErrCodeBadVarData          = "E207" // data encoding composite has the wrong shape
)

// SchemaValidationError reports a structural violation in the entity
// graph. Validation is all-or-nothing: the first violation aborts
// construction and no partial graph is returned.
type SchemaValidationError struct {
	Code    string // error category, E2xx
	Entity  string // offending entity ("message NewOrder", "NewOrder.legs")
	Message string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Entity, e.Message)
}

// ValidateSchema cross-checks a fully constructed graph: template id
// uniqueness, member id uniqueness per scope, constant/type
// compatibility, dimension and var-data composite shapes, and composite
// reference cycles. It fails fast on the first violation.
func ValidateSchema(schema *ir.MessageSchema) error {
	if err := checkTemplateIDs(schema); err != nil {
		return err
	}
	for m := range schema.Messages() {
		if err := checkScope(fmt.Sprintf("message %s", m.Name()), m.Entries()); err != nil {
			return err
		}
	}
	return checkTypeCycles(schema)
}

func checkTemplateIDs(schema *ir.MessageSchema) error {
	seen := make(map[uint16]string)
	for m := range schema.Messages() {
		if prev, taken := seen[m.TemplateID()]; taken {
			return &SchemaValidationError{
				Code:    ErrCodeDuplicateTemplateID,
				Entity:  "message " + m.Name(),
				Message: fmt.Sprintf("duplicate template id %d, already used by message %s", m.TemplateID(), prev),
			}
		}
		seen[m.TemplateID()] = m.Name()
	}
	return nil
}

// checkScope walks one member scope: ids must be unique among the direct
// members, constants must match their field types, groups and data must
// reference composites of the right shape. Nested groups recurse as
// fresh scopes.
func checkScope(scope string, entries iter.Seq[ir.Entry]) error {
	seen := make(map[uint16]string)
	for e := range entries {
		if prev, taken := seen[e.MemberID()]; taken {
			return &SchemaValidationError{
				Code:    ErrCodeDuplicateMemberID,
				Entity:  scope,
				Message: fmt.Sprintf("duplicate member id %d on %q, already used by %q", e.MemberID(), e.EntryName(), prev),
			}
		}
		seen[e.MemberID()] = e.EntryName()

		switch member := e.(type) {
		case *ir.Field:
			if err := checkFieldConstant(scope, member); err != nil {
				return err
			}
		case *ir.Group:
			if !member.Dimension().IsGroupDimension() {
				return &SchemaValidationError{
					Code:    ErrCodeBadDimension,
					Entity:  scope + "." + member.EntryName(),
					Message: fmt.Sprintf("dimension composite %q must be a block length and a repeat count", member.Dimension().TypeName()),
				}
			}
			if err := checkScope(scope+"."+member.EntryName(), member.Entries()); err != nil {
				return err
			}
		case *ir.Data:
			if !member.Encoding().IsVarDataEncoding() {
				return &SchemaValidationError{
					Code:    ErrCodeBadVarData,
					Entity:  scope + "." + member.EntryName(),
					Message: fmt.Sprintf("encoding composite %q must be a length prefix and a variable payload", member.Encoding().TypeName()),
				}
			}
		}
	}
	return nil
}

// checkFieldConstant verifies a constant value carries the
// representation its field's primitive type demands: integrals for
// integer types and single chars, floats for float/double, raw bytes
// for character arrays.
func checkFieldConstant(scope string, field *ir.Field) error {
	value, ok := field.Const()
	if !ok {
		return nil
	}
	entity := scope + "." + field.EntryName()

	et, ok := field.Type().(*ir.EncodedType)
	if !ok {
		return &SchemaValidationError{
			Code:    ErrCodeConstantMismatch,
			Entity:  entity,
			Message: "constant declared on a composite-typed field",
		}
	}

	var err error
	switch {
	case et.Primitive() == ir.Char && et.Length() > 1:
		_, err = ir.AsRawBytes(value)
	case et.Primitive().IsFloatingPoint():
		_, err = ir.AsFloating(value)
	default:
		_, err = ir.AsIntegral(value)
	}
	if err != nil {
		return &SchemaValidationError{
			Code:    ErrCodeConstantMismatch,
			Entity:  entity,
			Message: fmt.Sprintf("constant %s incompatible with %s: %v", value, et.Primitive(), err),
		}
	}
	return nil
}
