package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// ByteOrder is the schema-wide endianness applied by default to every
// primitive field.
type ByteOrder string

const (
	LittleEndian ByteOrder = "littleEndian"
	BigEndian    ByteOrder = "bigEndian"
)

// Binary returns the encoding/binary order for use by generated codecs.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ErrSealed is returned by every mutating method once a schema has been
// sealed.
var ErrSealed = errors.New("schema is sealed")

// Type is the sealed interface over schema type declarations. Only
// EncodedType and CompositeType implement it.
type Type interface {
	schemaType() // sealed

	// TypeName returns the declared name of the type.
	TypeName() string

	// EncodedLength returns the fixed footprint of the type in bytes. A
	// variable-length payload member reports 0.
	EncodedLength() int
}

// EncodedType is a named alias for a primitive wire type, optionally a
// fixed-length array, optionally carrying a constant value and explicit
// null/min/max overrides. Length 1 is a scalar; length 0 marks a
// variable-length payload member inside a var-data composite.
type EncodedType struct {
	name              string
	primitive         PrimitiveType
	length            int
	semanticType      string
	characterEncoding string
	constValue        PrimitiveValue
	nullOverride      PrimitiveValue
	minOverride       PrimitiveValue
	maxOverride       PrimitiveValue
}

// EncodedTypeSpec carries the declaration attributes of an EncodedType.
type EncodedTypeSpec struct {
	Name              string
	Primitive         PrimitiveType
	Length            int // 1 scalar, >1 fixed array, 0 variable payload
	SemanticType      string
	CharacterEncoding string
	Const             PrimitiveValue // non-nil for constant presence
	NullOverride      PrimitiveValue
	MinOverride       PrimitiveValue
	MaxOverride       PrimitiveValue
}

// NewEncodedType builds an EncodedType from its declaration attributes.
func NewEncodedType(spec EncodedTypeSpec) *EncodedType {
	return &EncodedType{
		name:              spec.Name,
		primitive:         spec.Primitive,
		length:            spec.Length,
		semanticType:      spec.SemanticType,
		characterEncoding: spec.CharacterEncoding,
		constValue:        spec.Const,
		nullOverride:      spec.NullOverride,
		minOverride:       spec.MinOverride,
		maxOverride:       spec.MaxOverride,
	}
}

func (*EncodedType) schemaType() {}

func (t *EncodedType) TypeName() string { return t.name }

// Primitive returns the underlying wire type.
func (t *EncodedType) Primitive() PrimitiveType { return t.primitive }

// Length returns the declared element count.
func (t *EncodedType) Length() int { return t.length }

func (t *EncodedType) EncodedLength() int {
	return t.primitive.Size() * t.length
}

// SemanticType returns the optional semantic tag ("Price", "UTCTimestamp").
func (t *EncodedType) SemanticType() string { return t.semanticType }

// CharacterEncoding returns the declared text encoding of a character
// array, or "".
func (t *EncodedType) CharacterEncoding() string { return t.characterEncoding }

// Const returns the constant value and true when the type declares
// constant presence.
func (t *EncodedType) Const() (PrimitiveValue, bool) {
	return t.constValue, t.constValue != nil
}

// Null returns the effective null sentinel: the declared override if
// present, the catalog sentinel otherwise.
func (t *EncodedType) Null() PrimitiveValue {
	if t.nullOverride != nil {
		return t.nullOverride
	}
	return t.primitive.Null()
}

// Min returns the effective lower bound of the operating range.
func (t *EncodedType) Min() PrimitiveValue {
	if t.minOverride != nil {
		return t.minOverride
	}
	return t.primitive.Min()
}

// Max returns the effective upper bound of the operating range.
func (t *EncodedType) Max() PrimitiveValue {
	if t.maxOverride != nil {
		return t.maxOverride
	}
	return t.primitive.Max()
}

// CompositeType is a named, ordered aggregate of encoded types and nested
// composite references. Three member shapes are structurally privileged:
// the message header, the group dimension, and the var-data encoding.
type CompositeType struct {
	name    string
	members []Type
}

// NewCompositeType builds a composite from its ordered members.
func NewCompositeType(name string, members []Type) *CompositeType {
	return &CompositeType{name: name, members: members}
}

func (*CompositeType) schemaType() {}

func (t *CompositeType) TypeName() string { return t.name }

// Members returns the ordered member types. Callers must not mutate the
// returned slice.
func (t *CompositeType) Members() []Type { return t.members }

func (t *CompositeType) EncodedLength() int {
	total := 0
	for _, m := range t.members {
		total += m.EncodedLength()
	}
	return total
}

// memberScalar returns the primitive of member i when it is a
// fixed-length scalar encoded type.
func (t *CompositeType) memberScalar(i int) (PrimitiveType, bool) {
	if i >= len(t.members) {
		return NoPrimitive, false
	}
	et, ok := t.members[i].(*EncodedType)
	if !ok || et.length != 1 {
		return NoPrimitive, false
	}
	return et.primitive, true
}

// IsMessageHeader reports whether the composite has the shape of a
// message header: at least three leading unsigned-integer scalars (block
// length, template id, schema version), every member fixed-length.
func (t *CompositeType) IsMessageHeader() bool {
	if len(t.members) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		p, ok := t.memberScalar(i)
		if !ok || !p.IsUnsigned() {
			return false
		}
	}
	for _, m := range t.members {
		if m.EncodedLength() == 0 {
			return false
		}
	}
	return true
}

// IsGroupDimension reports whether the composite has the shape of a
// group dimension: exactly two unsigned-integer scalars (block length,
// repeat count).
func (t *CompositeType) IsGroupDimension() bool {
	if len(t.members) != 2 {
		return false
	}
	for i := range t.members {
		p, ok := t.memberScalar(i)
		if !ok || !p.IsUnsigned() {
			return false
		}
	}
	return true
}

// IsVarDataEncoding reports whether the composite has the shape of a
// variable-data encoding: an unsigned-integer length scalar followed by
// a variable-length char or uint8 payload member.
func (t *CompositeType) IsVarDataEncoding() bool {
	if len(t.members) != 2 {
		return false
	}
	p, ok := t.memberScalar(0)
	if !ok || !p.IsUnsigned() {
		return false
	}
	payload, ok := t.members[1].(*EncodedType)
	if !ok || payload.length != 0 {
		return false
	}
	return payload.primitive == Char || payload.primitive == Uint8
}

// EntryID is a stable index into the schema's entry arena. Groups and
// messages hold child EntryIDs rather than owning entries directly, so
// arbitrarily deep nesting stays a flat walk.
type EntryID int

// Entry is the sealed interface over message members. Only *Field,
// *Group, and *Data implement it.
type Entry interface {
	entry() // sealed

	// MemberID returns the numeric id, unique within the direct
	// enclosing message or group.
	MemberID() uint16

	// EntryName returns the declared member name.
	EntryName() string
}

// Field is a fixed-position member of a message or group record.
type Field struct {
	id           uint16
	name         string
	typ          Type
	constValue   PrimitiveValue
	sinceVersion int
	offset       int
}

// FieldSpec carries the declaration attributes of a Field.
type FieldSpec struct {
	ID           uint16
	Name         string
	Type         Type
	Const        PrimitiveValue
	SinceVersion int
}

// NewField builds a Field. Its byte offset is assigned when the schema
// is sealed.
func NewField(spec FieldSpec) *Field {
	return &Field{
		id:           spec.ID,
		name:         spec.Name,
		typ:          spec.Type,
		constValue:   spec.Const,
		sinceVersion: spec.SinceVersion,
		offset:       -1,
	}
}

func (*Field) entry() {}

func (f *Field) MemberID() uint16  { return f.id }
func (f *Field) EntryName() string { return f.name }

// Type returns the resolved field type.
func (f *Field) Type() Type { return f.typ }

// Const returns the constant value and true when the field is constant.
func (f *Field) Const() (PrimitiveValue, bool) {
	return f.constValue, f.constValue != nil
}

// SinceVersion returns the schema version the field first appeared in.
func (f *Field) SinceVersion() int { return f.sinceVersion }

// Offset returns the byte offset within the enclosing fixed block, or -1
// when the field follows variable-length content and has no static
// offset.
func (f *Field) Offset() int { return f.offset }

// Group is a repeating structure. Its dimension composite carries the
// per-record block length and the runtime repeat count; the repeat-count
// field is embedded in the dimension rather than declared as a sibling
// Field, so the group is one logical entity addressable both as a
// dimension and, through its numeric id, as an ordinary member.
type Group struct {
	id          uint16
	name        string
	dimension   *CompositeType
	children    []EntryID
	schema      *MessageSchema
	blockLength int
}

func (*Group) entry() {}

func (g *Group) MemberID() uint16  { return g.id }
func (g *Group) EntryName() string { return g.name }

// Dimension returns the group's dimension composite.
func (g *Group) Dimension() *CompositeType { return g.dimension }

// CountType returns the primitive type of the embedded repeat-count
// member, which bounds the maximum repeat count.
func (g *Group) CountType() PrimitiveType {
	p, _ := g.dimension.memberScalar(1)
	return p
}

// BlockLength returns the fixed footprint of one repeated record,
// computed at seal time. A reader can skip an unparsed record by
// advancing this many bytes past its fixed block.
func (g *Group) BlockLength() int { return g.blockLength }

// Entries yields the group's direct members in declaration order. The
// sequence is lazy and restartable; nested groups descend recursively
// through their own Entries.
func (g *Group) Entries() iter.Seq[Entry] {
	return g.schema.entrySeq(g.children)
}

// MemberByID resolves a direct member of the group by numeric id.
func (g *Group) MemberByID(id uint16) (Entry, bool) {
	return g.schema.memberByID(g.children, id)
}

// Data is a variable-length trailing member: a length prefix followed by
// raw bytes, described by a var-data encoding composite.
type Data struct {
	id       uint16
	name     string
	encoding *CompositeType
}

// NewData builds a Data entry over a var-data encoding composite.
func NewData(id uint16, name string, encoding *CompositeType) *Data {
	return &Data{id: id, name: name, encoding: encoding}
}

func (*Data) entry() {}

func (d *Data) MemberID() uint16  { return d.id }
func (d *Data) EntryName() string { return d.name }

// Encoding returns the var-data composite describing the member.
func (d *Data) Encoding() *CompositeType { return d.encoding }

// LengthType returns the primitive type of the length prefix, which
// bounds the maximum payload size.
func (d *Data) LengthType() PrimitiveType {
	p, _ := d.encoding.memberScalar(0)
	return p
}

// PayloadType returns the primitive type of the payload member: char
// for text, uint8 for opaque bytes. Distinct from the length role.
func (d *Data) PayloadType() PrimitiveType {
	if len(d.encoding.members) < 2 {
		return NoPrimitive
	}
	if et, ok := d.encoding.members[1].(*EncodedType); ok {
		return et.primitive
	}
	return NoPrimitive
}

// Message is a top-level message definition with a unique template id
// and an ordered sequence of fields, groups, and data members.
type Message struct {
	templateID  uint16
	name        string
	description string
	children    []EntryID
	schema      *MessageSchema
	blockLength int
}

// TemplateID returns the message's schema-unique numeric id.
func (m *Message) TemplateID() uint16 { return m.templateID }

// Name returns the declared message name.
func (m *Message) Name() string { return m.name }

// Description returns the free-text message description.
func (m *Message) Description() string { return m.description }

// BlockLength returns the fixed footprint of the message's root fields,
// computed at seal time. It is the skip distance a reader uses to reach
// the first group or data member without understanding the fields.
func (m *Message) BlockLength() int { return m.blockLength }

// Entries yields the message's direct members in declaration order.
// Downstream consumers compute cumulative byte offsets by iterating in
// exactly this order.
func (m *Message) Entries() iter.Seq[Entry] {
	return m.schema.entrySeq(m.children)
}

// MemberByID resolves a direct member of the message by numeric id.
// Groups resolve by their declared id even though the repeat-count field
// lives inside the dimension composite.
func (m *Message) MemberByID(id uint16) (Entry, bool) {
	return m.schema.memberByID(m.children, id)
}

// MessageSchema is the root of the entity graph. It is built in document
// order by internal/compiler, sealed exactly once, and immutable
// thereafter.
type MessageSchema struct {
	pkg             string
	semanticVersion string
	description     string
	byteOrder       ByteOrder
	headerTypeName  string

	typeOrder []Type
	types     map[string]Type

	messages     []*Message
	messagesByID map[uint16]*Message

	entries []Entry // arena; all fields/groups/data across all messages
	sealed  bool
}

// SchemaSpec carries the root attributes of a schema document.
type SchemaSpec struct {
	Package         string
	SemanticVersion string
	Description     string
	ByteOrder       ByteOrder
	HeaderTypeName  string // composite naming the message header; "messageHeader" if empty
}

// NewMessageSchema starts an unsealed schema graph.
func NewMessageSchema(spec SchemaSpec) *MessageSchema {
	header := spec.HeaderTypeName
	if header == "" {
		header = "messageHeader"
	}
	order := spec.ByteOrder
	if order == "" {
		order = LittleEndian
	}
	return &MessageSchema{
		pkg:             spec.Package,
		semanticVersion: spec.SemanticVersion,
		description:     spec.Description,
		byteOrder:       order,
		headerTypeName:  header,
		types:           make(map[string]Type),
		messagesByID:    make(map[uint16]*Message),
	}
}

// Package returns the schema's package name.
func (s *MessageSchema) Package() string { return s.pkg }

// SemanticVersion returns the schema's declared semantic version.
func (s *MessageSchema) SemanticVersion() string { return s.semanticVersion }

// Description returns the schema's free-text description.
func (s *MessageSchema) Description() string { return s.description }

// ByteOrder returns the schema-wide default endianness.
func (s *MessageSchema) ByteOrder() ByteOrder { return s.byteOrder }

// Sealed reports whether construction has completed.
func (s *MessageSchema) Sealed() bool { return s.sealed }

// AddType registers a type declaration. Types must be added before any
// message that references them; a duplicate name is a construction
// error.
func (s *MessageSchema) AddType(t Type) error {
	if s.sealed {
		return ErrSealed
	}
	name := t.TypeName()
	if _, exists := s.types[name]; exists {
		return fmt.Errorf("type %q declared twice", name)
	}
	s.types[name] = t
	s.typeOrder = append(s.typeOrder, t)
	return nil
}

// TypeByName resolves a declared type.
func (s *MessageSchema) TypeByName(name string) (Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Types yields declared types in document order.
func (s *MessageSchema) Types() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, t := range s.typeOrder {
			if !yield(t) {
				return
			}
		}
	}
}

// Header returns the composite declared as the message header.
func (s *MessageSchema) Header() (*CompositeType, bool) {
	t, ok := s.types[s.headerTypeName]
	if !ok {
		return nil, false
	}
	c, ok := t.(*CompositeType)
	return c, ok
}

// AddEntry places an entry in the arena and returns its stable id.
func (s *MessageSchema) AddEntry(e Entry) (EntryID, error) {
	if s.sealed {
		return 0, ErrSealed
	}
	s.entries = append(s.entries, e)
	return EntryID(len(s.entries) - 1), nil
}

// NewGroup builds a group entry over previously added children and
// places it in the arena.
func (s *MessageSchema) NewGroup(id uint16, name string, dimension *CompositeType, children []EntryID) (*Group, EntryID, error) {
	g := &Group{
		id:        id,
		name:      name,
		dimension: dimension,
		children:  children,
		schema:    s,
	}
	eid, err := s.AddEntry(g)
	if err != nil {
		return nil, 0, err
	}
	return g, eid, nil
}

// AddMessage registers a message over previously added entries.
// Duplicate template ids are left for the validator so it can name both
// definitions.
func (s *MessageSchema) AddMessage(templateID uint16, name, description string, children []EntryID) (*Message, error) {
	if s.sealed {
		return nil, ErrSealed
	}
	m := &Message{
		templateID:  templateID,
		name:        name,
		description: description,
		children:    children,
		schema:      s,
	}
	s.messages = append(s.messages, m)
	if _, taken := s.messagesByID[templateID]; !taken {
		s.messagesByID[templateID] = m
	}
	return m, nil
}

// MessageByID looks up a message by template id.
func (s *MessageSchema) MessageByID(templateID uint16) (*Message, bool) {
	m, ok := s.messagesByID[templateID]
	return m, ok
}

// Messages yields messages in document order.
func (s *MessageSchema) Messages() iter.Seq[*Message] {
	return func(yield func(*Message) bool) {
		for _, m := range s.messages {
			if !yield(m) {
				return
			}
		}
	}
}

// Seal freezes the graph, computing field offsets and message/group block
// lengths with one declaration-order walk each. Sealing twice is an
// error.
func (s *MessageSchema) Seal() error {
	if s.sealed {
		return ErrSealed
	}
	for _, m := range s.messages {
		m.blockLength = s.layoutBlock(m.children)
	}
	for _, e := range s.entries {
		if g, ok := e.(*Group); ok {
			g.blockLength = s.layoutBlock(g.children)
		}
	}
	s.sealed = true
	return nil
}

// layoutBlock assigns offsets to the leading fixed fields of a message
// or group record and returns the block length. Fields after the first
// group or data member have no static offset.
func (s *MessageSchema) layoutBlock(children []EntryID) int {
	offset := 0
	fixed := true
	for _, id := range children {
		f, ok := s.entries[id].(*Field)
		if !ok {
			fixed = false
			continue
		}
		if !fixed {
			f.offset = -1
			continue
		}
		f.offset = offset
		if _, isConst := f.Const(); !isConst {
			offset += f.typ.EncodedLength()
		}
	}
	return offset
}

func (s *MessageSchema) entrySeq(children []EntryID) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, id := range children {
			if !yield(s.entries[id]) {
				return
			}
		}
	}
}

func (s *MessageSchema) memberByID(children []EntryID, id uint16) (Entry, bool) {
	for _, cid := range children {
		if e := s.entries[cid]; e.MemberID() == id {
			return e, true
		}
	}
	return nil, false
}
