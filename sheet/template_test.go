package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		fields []FieldSpec
		err    string
	}{
		{
			name: "valid",
			fields: []FieldSpec{
				{Name: "A", Kind: Constant, Type: Number},
				{Name: "B", Kind: Formula, Formula: "A*2"},
			},
		},
		{
			name:   "missing name",
			fields: []FieldSpec{{Name: "A"}, {Kind: Constant}},
			err:    "field 1: must specify a name",
		},
		{
			name:   "duplicate",
			fields: []FieldSpec{{Name: "A"}, {Name: "A", Kind: Formula, Formula: "1"}},
			err:    `field "A": duplicate name`,
		},
		{
			name:   "empty formula",
			fields: []FieldSpec{{Name: "A", Kind: Formula, Formula: "  "}},
			err:    `field "A": formula field must specify a formula`,
		},
	}
	for _, tc := range testCases {
		err := Template{Name: tc.name, Fields: tc.fields}.Validate()
		if tc.err == "" {
			assert.NoError(t, err, tc.name)
			continue
		}
		if assert.Error(t, err, tc.name) {
			assert.Equal(t, tc.err, err.Error(), tc.name)
		}
	}
}

func TestFieldKind_Text(t *testing.T) {
	assert := assert.New(t)

	var k FieldKind
	assert.NoError(k.UnmarshalText([]byte("Formula")))
	assert.Equal(Formula, k)
	assert.NoError(k.UnmarshalText([]byte("")))
	assert.Equal(Constant, k)
	assert.EqualError(k.UnmarshalText([]byte("derived")), `unknown field kind "derived"`)

	text, err := Formula.MarshalText()
	assert.NoError(err)
	assert.Equal("formula", string(text))
	assert.Equal("FieldKind(7)", FieldKind(7).String())
}

func TestFieldType_Text(t *testing.T) {
	assert := assert.New(t)

	for _, typ := range []FieldType{Untyped, Number, Text, Boolean, Date} {
		text, err := typ.MarshalText()
		assert.NoError(err)
		var got FieldType
		assert.NoError(got.UnmarshalText(text))
		assert.Equal(typ, got)
	}

	var typ FieldType
	assert.NoError(typ.UnmarshalText([]byte("BOOLEAN")))
	assert.Equal(Boolean, typ)
	assert.EqualError(typ.UnmarshalText([]byte("money")), `unknown field type "money"`)
}

func TestTemplate_Field(t *testing.T) {
	tmpl := Template{Fields: []FieldSpec{{Name: "A"}, {Name: "B", Kind: Formula, Formula: "A"}}}
	f, ok := tmpl.Field("B")
	assert.True(t, ok)
	assert.True(t, f.IsFormula())
	_, ok = tmpl.Field("C")
	assert.False(t, ok)
}

func TestDedupe(t *testing.T) {
	fields := dedupe([]FieldSpec{
		{Name: "A", Value: 1},
		{Name: "B"},
		{Name: "A", Value: 2},
		{Name: "C"},
	})
	assert.Equal(t, []FieldSpec{
		{Name: "A", Value: 2},
		{Name: "B"},
		{Name: "C"},
	}, fields)
}
