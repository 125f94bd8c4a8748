package sheet

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldKind distinguishes input fields from computed fields.
type FieldKind int

const (
	Constant FieldKind = iota
	Formula
)

func (k FieldKind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Formula:
		return "formula"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FieldKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "constant":
		*k = Constant
	case "formula":
		*k = Formula
	default:
		return fmt.Errorf("unknown field kind %q", string(text))
	}
	return nil
}

// FieldType is the declared type of a constant field.
// It drives the coercion applied to raw values.
type FieldType int

const (
	Untyped FieldType = iota
	Number
	Text
	Boolean
	Date
)

var fieldTypeNames = map[FieldType]string{
	Untyped: "",
	Number:  "number",
	Text:    "text",
	Boolean: "boolean",
	Date:    "date",
}

func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for typ, name := range fieldTypeNames {
		if name == s {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q", string(text))
}

// FieldSpec describes one field of a calculation sheet.
type FieldSpec struct {
	Name string    `json:"name" mapstructure:"name"`
	Kind FieldKind `json:"kind" mapstructure:"kind"`
	Type FieldType `json:"type,omitempty" mapstructure:"type"`
	// Value is the default used when no raw value is supplied for a constant.
	Value interface{} `json:"value,omitempty" mapstructure:"value"`
	// Formula is the formula source text of a formula field.
	Formula string `json:"formula,omitempty" mapstructure:"formula"`
}

func (f FieldSpec) IsFormula() bool {
	return f.Kind == Formula
}

// Template is a named list of fields in declaration order.
type Template struct {
	Name   string      `json:"name" mapstructure:"name"`
	Fields []FieldSpec `json:"fields" mapstructure:"fields"`
}

// Validate checks that every field has a unique non-empty name
// and that formula fields carry formula text.
func (t Template) Validate() error {
	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: must specify a name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q: duplicate name", f.Name)
		}
		seen[f.Name] = true
		if f.Kind == Formula && strings.TrimSpace(f.Formula) == "" {
			return fmt.Errorf("field %q: formula field must specify a formula", f.Name)
		}
	}
	return nil
}

// Field returns the field named name.
func (t Template) Field(name string) (FieldSpec, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func invalidTemplate(err error, name string) error {
	return errors.Wrapf(err, "invalid template %q", name)
}

// dedupe returns fields with unique names. A later definition replaces an
// earlier one but keeps the position of the first.
func dedupe(fields []FieldSpec) []FieldSpec {
	index := make(map[string]int, len(fields))
	out := make([]FieldSpec, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.Name]; ok {
			out[i] = f
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}
