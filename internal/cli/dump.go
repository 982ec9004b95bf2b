package cli

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bjoto/simple-binary-encoding/internal/ir"
)

// SchemaSummary is the serializable projection of a sealed schema used
// for CLI output and compiled IR files.
type SchemaSummary struct {
	Package         string           `json:"package"`
	SemanticVersion string           `json:"semantic_version,omitempty"`
	Description     string           `json:"description,omitempty"`
	ByteOrder       string           `json:"byte_order"`
	Types           []TypeSummary    `json:"types,omitempty"`
	Messages        []MessageSummary `json:"messages"`
}

// TypeSummary describes one declared type.
type TypeSummary struct {
	Name          string        `json:"name"`
	Kind          string        `json:"kind"` // "encoded" or "composite"
	Primitive     string        `json:"primitive,omitempty"`
	Length        int           `json:"length,omitempty"`
	EncodedLength int           `json:"encoded_length"`
	Const         string        `json:"const,omitempty"`
	Members       []TypeSummary `json:"members,omitempty"`
}

// MessageSummary describes one message definition.
type MessageSummary struct {
	Name        string          `json:"name"`
	TemplateID  uint16          `json:"template_id"`
	BlockLength int             `json:"block_length"`
	Members     []MemberSummary `json:"members,omitempty"`
}

// MemberSummary describes one field, group, or data member.
type MemberSummary struct {
	Kind        string          `json:"kind"` // "field", "group", or "data"
	ID          uint16          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type,omitempty"`
	Offset      *int            `json:"offset,omitempty"`
	Const       string          `json:"const,omitempty"`
	BlockLength int             `json:"block_length,omitempty"`
	LengthType  string          `json:"length_type,omitempty"`
	PayloadType string          `json:"payload_type,omitempty"`
	Members     []MemberSummary `json:"members,omitempty"`
}

// Summarize projects a sealed schema into its serializable form,
// preserving declaration order throughout.
func Summarize(schema *ir.MessageSchema) SchemaSummary {
	summary := SchemaSummary{
		Package:         schema.Package(),
		SemanticVersion: schema.SemanticVersion(),
		Description:     schema.Description(),
		ByteOrder:       string(schema.ByteOrder()),
	}
	for t := range schema.Types() {
		summary.Types = append(summary.Types, summarizeType(t))
	}
	for m := range schema.Messages() {
		summary.Messages = append(summary.Messages, MessageSummary{
			Name:        m.Name(),
			TemplateID:  m.TemplateID(),
			BlockLength: m.BlockLength(),
			Members:     summarizeEntries(m.Entries()),
		})
	}
	return summary
}

func summarizeType(t ir.Type) TypeSummary {
	switch typ := t.(type) {
	case *ir.EncodedType:
		ts := TypeSummary{
			Name:          typ.TypeName(),
			Kind:          "encoded",
			Primitive:     typ.Primitive().String(),
			Length:        typ.Length(),
			EncodedLength: typ.EncodedLength(),
		}
		if c, ok := typ.Const(); ok {
			ts.Const = c.String()
		}
		return ts
	case *ir.CompositeType:
		ts := TypeSummary{
			Name:          typ.TypeName(),
			Kind:          "composite",
			EncodedLength: typ.EncodedLength(),
		}
		for _, m := range typ.Members() {
			ts.Members = append(ts.Members, summarizeType(m))
		}
		return ts
	}
	return TypeSummary{}
}

func summarizeEntries(entries iter.Seq[ir.Entry]) []MemberSummary {
	var members []MemberSummary
	for e := range entries {
		switch m := e.(type) {
		case *ir.Field:
			offset := m.Offset()
			ms := MemberSummary{
				Kind:   "field",
				ID:     m.MemberID(),
				Name:   m.EntryName(),
				Type:   m.Type().TypeName(),
				Offset: &offset,
			}
			if c, ok := m.Const(); ok {
				ms.Const = c.String()
			}
			members = append(members, ms)
		case *ir.Group:
			members = append(members, MemberSummary{
				Kind:        "group",
				ID:          m.MemberID(),
				Name:        m.EntryName(),
				Type:        m.Dimension().TypeName(),
				BlockLength: m.BlockLength(),
				Members:     summarizeEntries(m.Entries()),
			})
		case *ir.Data:
			members = append(members, MemberSummary{
				Kind:        "data",
				ID:          m.MemberID(),
				Name:        m.EntryName(),
				Type:        m.Encoding().TypeName(),
				LengthType:  m.LengthType().String(),
				PayloadType: m.PayloadType().String(),
			})
		}
	}
	return members
}

// renderText writes the human-readable form of a schema summary.
func renderText(s SchemaSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %s (version %s, %s)\n", s.Package, s.SemanticVersion, s.ByteOrder)
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "message %s id=%d blockLength=%d\n", m.Name, m.TemplateID, m.BlockLength)
		renderMembers(&b, m.Members, 1)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMembers(b *strings.Builder, members []MemberSummary, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, m := range members {
		switch m.Kind {
		case "field":
			offset := -1
			if m.Offset != nil {
				offset = *m.Offset
			}
			fmt.Fprintf(b, "%sfield %s id=%d type=%s offset=%d", indent, m.Name, m.ID, m.Type, offset)
			if m.Const != "" {
				fmt.Fprintf(b, " const=%s", m.Const)
			}
			b.WriteString("\n")
		case "group":
			fmt.Fprintf(b, "%sgroup %s id=%d dimension=%s blockLength=%d\n", indent, m.Name, m.ID, m.Type, m.BlockLength)
			renderMembers(b, m.Members, depth+1)
		case "data":
			fmt.Fprintf(b, "%sdata %s id=%d length=%s payload=%s\n", indent, m.Name, m.ID, m.LengthType, m.PayloadType)
		}
	}
}
