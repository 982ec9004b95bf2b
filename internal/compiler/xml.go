package compiler

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bjoto/simple-binary-encoding/internal/ir"
)

// ParseError reports a malformed schema document: bad XML, a bad
// attribute, or an element this front end does not understand.
type ParseError struct {
	Element string // offending element ("type qty", "message NewOrder")
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Element, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Element, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// xmlDocument mirrors the root messageSchema element.
type xmlDocument struct {
	XMLName         xml.Name     `xml:"messageSchema"`
	Package         string       `xml:"package,attr"`
	SemanticVersion string       `xml:"semanticVersion,attr"`
	Description     string       `xml:"description,attr"`
	ByteOrder       string       `xml:"byteOrder,attr"`
	HeaderType      string       `xml:"headerType,attr"`
	TypeSections    []xmlTypes   `xml:"types"`
	Messages        []xmlMessage `xml:"message"`
}

// xmlTypes keeps type and composite declarations in document order, so
// later declarations may reference earlier ones.
type xmlTypes struct {
	Nodes []xmlTypeNode `xml:",any"`
}

// xmlTypeNode is a <type>, <composite>, or <ref> element. The same shape
// serves composite members.
type xmlTypeNode struct {
	XMLName           xml.Name
	Name              string        `xml:"name,attr"`
	PrimitiveType     string        `xml:"primitiveType,attr"`
	Length            string        `xml:"length,attr"`
	Presence          string        `xml:"presence,attr"`
	SemanticType      string        `xml:"semanticType,attr"`
	CharacterEncoding string        `xml:"characterEncoding,attr"`
	NullValue         string        `xml:"nullValue,attr"`
	MinValue          string        `xml:"minValue,attr"`
	MaxValue          string        `xml:"maxValue,attr"`
	Type              string        `xml:"type,attr"` // <ref> target
	Members           []xmlTypeNode `xml:",any"`
	Text              string        `xml:",chardata"`
}

type xmlMessage struct {
	Name        string     `xml:"name,attr"`
	ID          uint16     `xml:"id,attr"`
	Description string     `xml:"description,attr"`
	Members     []xmlEntry `xml:",any"`
}

// xmlEntry is a <field>, <group>, or <data> element; groups nest
// recursively.
type xmlEntry struct {
	XMLName       xml.Name
	ID            uint16     `xml:"id,attr"`
	Name          string     `xml:"name,attr"`
	Type          string     `xml:"type,attr"`
	Presence      string     `xml:"presence,attr"`
	SinceVersion  int        `xml:"sinceVersion,attr"`
	DimensionType string     `xml:"dimensionType,attr"`
	Members       []xmlEntry `xml:",any"`
	Text          string     `xml:",chardata"`
}

// ParseSchema reads a schema document, builds the entity graph in
// document order, validates it, and returns the sealed schema. Any
// failure aborts construction; no partial graph is returned.
func ParseSchema(r io.Reader) (*ir.MessageSchema, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Element: "messageSchema", Message: "malformed schema document", Err: err}
	}

	order, err := parseByteOrder(doc.ByteOrder)
	if err != nil {
		return nil, err
	}

	schema := ir.NewMessageSchema(ir.SchemaSpec{
		Package:         doc.Package,
		SemanticVersion: doc.SemanticVersion,
		Description:     doc.Description,
		ByteOrder:       order,
		HeaderTypeName:  doc.HeaderType,
	})

	for _, section := range doc.TypeSections {
		for _, node := range section.Nodes {
			if err := addTypeNode(schema, node); err != nil {
				return nil, err
			}
		}
	}

	for _, msg := range doc.Messages {
		children, err := buildEntries(schema, msg.Name, msg.Members)
		if err != nil {
			return nil, err
		}
		if _, err := schema.AddMessage(msg.ID, msg.Name, msg.Description, children); err != nil {
			return nil, err
		}
	}

	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	if err := schema.Seal(); err != nil {
		return nil, err
	}

	slog.Debug("schema sealed",
		"package", schema.Package(),
		"version", schema.SemanticVersion(),
		"messages", len(doc.Messages))

	return schema, nil
}

func parseByteOrder(attr string) (ir.ByteOrder, error) {
	switch attr {
	case "", string(ir.LittleEndian):
		return ir.LittleEndian, nil
	case string(ir.BigEndian):
		return ir.BigEndian, nil
	default:
		return "", &ParseError{Element: "messageSchema", Message: fmt.Sprintf("unknown byteOrder %q", attr)}
	}
}

func addTypeNode(schema *ir.MessageSchema, node xmlTypeNode) error {
	switch node.XMLName.Local {
	case "type":
		et, err := buildEncodedType(node)
		if err != nil {
			return err
		}
		return schema.AddType(et)
	case "composite":
		ct, err := buildComposite(schema, node)
		if err != nil {
			return err
		}
		return schema.AddType(ct)
	default:
		return &ParseError{
			Element: "types",
			Message: fmt.Sprintf("unknown declaration <%s>", node.XMLName.Local),
		}
	}
}

func buildEncodedType(node xmlTypeNode) (*ir.EncodedType, error) {
	element := "type " + node.Name

	primitive, ok := ir.PrimitiveTypeByName(node.PrimitiveType)
	if !ok {
		return nil, &ParseError{Element: element, Message: fmt.Sprintf("unknown primitiveType %q", node.PrimitiveType)}
	}

	length := 1
	if node.Length != "" {
		n, err := strconv.Atoi(node.Length)
		if err != nil || n < 0 {
			return nil, &ParseError{Element: element, Message: fmt.Sprintf("bad length %q", node.Length), Err: err}
		}
		length = n
	}

	spec := ir.EncodedTypeSpec{
		Name:              node.Name,
		Primitive:         primitive,
		Length:            length,
		SemanticType:      node.SemanticType,
		CharacterEncoding: node.CharacterEncoding,
	}

	if node.Presence == "constant" {
		value, err := parseLiteral(strings.TrimSpace(node.Text), primitive, length, node.CharacterEncoding)
		if err != nil {
			return nil, &ParseError{Element: element, Message: "bad constant value", Err: err}
		}
		spec.Const = value
	}

	overrides := []struct {
		attr   string
		target *ir.PrimitiveValue
	}{
		{node.NullValue, &spec.NullOverride},
		{node.MinValue, &spec.MinOverride},
		{node.MaxValue, &spec.MaxOverride},
	}
	for _, o := range overrides {
		if o.attr == "" {
			continue
		}
		value, err := ir.Parse(o.attr, primitive)
		if err != nil {
			return nil, &ParseError{Element: element, Message: "bad sentinel override", Err: err}
		}
		*o.target = value
	}

	return ir.NewEncodedType(spec), nil
}

// parseLiteral routes a constant literal to the right PrimitiveValue
// constructor: fixed-length character arrays become raw bytes, anything
// else parses per the primitive's grammar.
func parseLiteral(text string, primitive ir.PrimitiveType, length int, characterEncoding string) (ir.PrimitiveValue, error) {
	if primitive == ir.Char && length > 1 {
		encodingName := characterEncoding
		if encodingName == "" {
			encodingName = "US-ASCII"
		}
		return ir.ParseRaw(text, primitive, length, encodingName)
	}
	return ir.Parse(text, primitive)
}

func buildComposite(schema *ir.MessageSchema, node xmlTypeNode) (*ir.CompositeType, error) {
	element := "composite " + node.Name

	var members []ir.Type
	for _, member := range node.Members {
		switch member.XMLName.Local {
		case "type":
			et, err := buildEncodedType(member)
			if err != nil {
				return nil, err
			}
			members = append(members, et)
		case "ref":
			target, ok := schema.TypeByName(member.Type)
			if !ok {
				return nil, &SchemaValidationError{
					Code:    ErrCodeUnresolvedType,
					Entity:  element,
					Message: fmt.Sprintf("ref %q does not resolve to a declared type", member.Type),
				}
			}
			members = append(members, target)
		default:
			return nil, &ParseError{Element: element, Message: fmt.Sprintf("unknown member <%s>", member.XMLName.Local)}
		}
	}

	return ir.NewCompositeType(node.Name, members), nil
}

func buildEntries(schema *ir.MessageSchema, scope string, members []xmlEntry) ([]ir.EntryID, error) {
	var children []ir.EntryID
	for _, member := range members {
		switch member.XMLName.Local {
		case "field":
			id, err := buildField(schema, scope, member)
			if err != nil {
				return nil, err
			}
			children = append(children, id)

		case "group":
			nested, err := buildEntries(schema, scope+"."+member.Name, member.Members)
			if err != nil {
				return nil, err
			}
			dimension, err := resolveComposite(schema, scope, member.Name, dimensionTypeName(member))
			if err != nil {
				return nil, err
			}
			_, id, err := schema.NewGroup(member.ID, member.Name, dimension, nested)
			if err != nil {
				return nil, err
			}
			children = append(children, id)

		case "data":
			encoding, err := resolveComposite(schema, scope, member.Name, member.Type)
			if err != nil {
				return nil, err
			}
			id, err := schema.AddEntry(ir.NewData(member.ID, member.Name, encoding))
			if err != nil {
				return nil, err
			}
			children = append(children, id)

		default:
			return nil, &ParseError{
				Element: scope,
				Message: fmt.Sprintf("unknown member <%s>", member.XMLName.Local),
			}
		}
	}
	return children, nil
}

func dimensionTypeName(member xmlEntry) string {
	if member.DimensionType != "" {
		return member.DimensionType
	}
	return "groupSizeEncoding"
}

func buildField(schema *ir.MessageSchema, scope string, member xmlEntry) (ir.EntryID, error) {
	entity := scope + "." + member.Name

	fieldType, err := resolveFieldType(schema, entity, member.Type)
	if err != nil {
		return 0, err
	}

	spec := ir.FieldSpec{
		ID:           member.ID,
		Name:         member.Name,
		Type:         fieldType,
		SinceVersion: member.SinceVersion,
	}

	if member.Presence == "constant" {
		et, ok := fieldType.(*ir.EncodedType)
		if !ok {
			return 0, &ParseError{Element: entity, Message: "constant fields require a primitive-typed encoding"}
		}
		value, err := parseLiteral(strings.TrimSpace(member.Text), et.Primitive(), et.Length(), et.CharacterEncoding())
		if err != nil {
			return 0, &ParseError{Element: entity, Message: "bad constant value", Err: err}
		}
		spec.Const = value
	} else if c, ok := constOf(fieldType); ok {
		// A field of a constant-presence type inherits the constant.
		spec.Const = c
	}

	return schema.AddEntry(ir.NewField(spec))
}

func constOf(t ir.Type) (ir.PrimitiveValue, bool) {
	if et, ok := t.(*ir.EncodedType); ok {
		return et.Const()
	}
	return nil, false
}

// resolveFieldType resolves a field's type attribute against the
// declared types, falling back to a bare primitive name ("uint32"),
// which synthesizes an anonymous scalar encoding.
func resolveFieldType(schema *ir.MessageSchema, entity, name string) (ir.Type, error) {
	if t, ok := schema.TypeByName(name); ok {
		return t, nil
	}
	if primitive, ok := ir.PrimitiveTypeByName(name); ok {
		return ir.NewEncodedType(ir.EncodedTypeSpec{Name: name, Primitive: primitive, Length: 1}), nil
	}
	return nil, &SchemaValidationError{
		Code:    ErrCodeUnresolvedType,
		Entity:  entity,
		Message: fmt.Sprintf("type %q does not resolve to a declared type", name),
	}
}

func resolveComposite(schema *ir.MessageSchema, scope, member, name string) (*ir.CompositeType, error) {
	entity := scope + "." + member
	t, ok := schema.TypeByName(name)
	if !ok {
		return nil, &SchemaValidationError{
			Code:    ErrCodeUnresolvedType,
			Entity:  entity,
			Message: fmt.Sprintf("type %q does not resolve to a declared type", name),
		}
	}
	ct, ok := t.(*ir.CompositeType)
	if !ok {
		return nil, &SchemaValidationError{
			Code:    ErrCodeUnresolvedType,
			Entity:  entity,
			Message: fmt.Sprintf("type %q is not a composite", name),
		}
	}
	return ct, nil
}
