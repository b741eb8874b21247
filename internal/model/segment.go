package model

import (
	"encoding/json"
	"fmt"
)

// FieldType identifies what kind of value a variable pattern segment
// extracts from a message body.
type FieldType string

// Field type constants.
const (
	FieldAmount          FieldType = "AMOUNT"
	FieldMerchant        FieldType = "MERCHANT"
	FieldBalance         FieldType = "BALANCE"
	FieldCardLast4       FieldType = "CARD_LAST_4"
	FieldDate            FieldType = "DATE"
	FieldTransactionType FieldType = "TRANSACTION_TYPE"
)

// Valid reports whether f is one of the six known field types.
func (f FieldType) Valid() bool {
	switch f {
	case FieldAmount, FieldMerchant, FieldBalance, FieldCardLast4,
		FieldDate, FieldTransactionType:
		return true
	}
	return false
}

// SegmentKind discriminates the two pattern segment variants.
type SegmentKind string

// Segment kind constants. The strings are part of the persisted JSON shape.
const (
	SegmentFixedText SegmentKind = "fixedText"
	SegmentVariable  SegmentKind = "variable"
)

// PatternSegment is one piece of an inferred extraction template: either a
// literal text anchor or a variable field to extract.
type PatternSegment struct {
	Kind         SegmentKind
	Text         string    // fixedText only
	Field        FieldType // variable only
	FuzzyAllowed bool      // fixedText only
}

// FixedText builds a literal anchor segment.
func FixedText(text string, fuzzyAllowed bool) PatternSegment {
	return PatternSegment{Kind: SegmentFixedText, Text: text, FuzzyAllowed: fuzzyAllowed}
}

// Variable builds a field extraction segment.
func Variable(field FieldType) PatternSegment {
	return PatternSegment{Kind: SegmentVariable, Field: field}
}

type fixedTextJSON struct {
	Type         string `json:"type"`
	Text         string `json:"text"`
	FuzzyAllowed bool   `json:"fuzzyAllowed"`
}

type variableJSON struct {
	Type      string    `json:"type"`
	FieldType FieldType `json:"fieldType"`
}

// MarshalJSON serializes the segment with its stable on-disk shape: a
// "type" tag of "fixedText" or "variable" plus the variant's fields.
func (s PatternSegment) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SegmentFixedText:
		return json.Marshal(fixedTextJSON{Type: string(SegmentFixedText), Text: s.Text, FuzzyAllowed: s.FuzzyAllowed})
	case SegmentVariable:
		return json.Marshal(variableJSON{Type: string(SegmentVariable), FieldType: s.Field})
	}
	return nil, fmt.Errorf("unknown segment kind %q", s.Kind)
}

// UnmarshalJSON restores a segment from its tagged JSON form.
func (s *PatternSegment) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to read segment tag: %w", err)
	}

	switch SegmentKind(tag.Type) {
	case SegmentFixedText:
		var v fixedTextJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to decode fixedText segment: %w", err)
		}
		*s = FixedText(v.Text, v.FuzzyAllowed)
		return nil
	case SegmentVariable:
		var v variableJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to decode variable segment: %w", err)
		}
		if !v.FieldType.Valid() {
			return fmt.Errorf("unknown field type %q", v.FieldType)
		}
		*s = Variable(v.FieldType)
		return nil
	}
	return fmt.Errorf("unknown segment type %q", tag.Type)
}

// InferredPattern is an ordered, non-empty sequence of segments derived from
// user-labeled examples.
type InferredPattern struct {
	Segments []PatternSegment `json:"segments"`
}

// Validate checks the structural invariants of a pattern.
func (p InferredPattern) Validate() error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("pattern has no segments")
	}
	for i, seg := range p.Segments {
		switch seg.Kind {
		case SegmentFixedText:
			// Empty anchors are legal; the matcher treats them as no-ops.
		case SegmentVariable:
			if !seg.Field.Valid() {
				return fmt.Errorf("segment %d: unknown field type %q", i, seg.Field)
			}
		default:
			return fmt.Errorf("segment %d: unknown kind %q", i, seg.Kind)
		}
	}
	return nil
}

// FieldTypes returns the ordered field types of the pattern's variable
// segments.
func (p InferredPattern) FieldTypes() []FieldType {
	var out []FieldType
	for _, seg := range p.Segments {
		if seg.Kind == SegmentVariable {
			out = append(out, seg.Field)
		}
	}
	return out
}
