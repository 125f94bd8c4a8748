package calcsheet_test

import (
	"testing"

	"github.com/influxdata/calcsheet"
	"github.com/influxdata/calcsheet/eval"
	"github.com/influxdata/calcsheet/sheet"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		formula string
		context map[string]interface{}
		exp     eval.Value
	}{
		{formula: "2+3*4", exp: eval.NewNumber(14)},
		{formula: "(2+3)*4", exp: eval.NewNumber(20)},
		{formula: "2^3^2", exp: eval.NewNumber(512)},
		{formula: "2%", exp: eval.NewNumber(0.02)},
		{formula: "FO4*2%", context: map[string]interface{}{"FO4": 100}, exp: eval.NewNumber(2)},
		{formula: "100+50%", exp: eval.NewNumber(100.5)},
		{formula: "10*5%", exp: eval.NewNumber(0.5)},
		{formula: "10/0", exp: eval.NewError(eval.ErrDivZero)},
		{formula: "VALEUR_INEXISTANTE+10", context: map[string]interface{}{}, exp: eval.NewError(eval.ErrRef)},
		{formula: "SUM(10,20,30)", exp: eval.NewNumber(60)},
		{formula: "AVG()", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "IF(1>0, 'yes', 'no')", exp: eval.NewString("yes")},
		{formula: "SUM(A, VALEUR_INEXISTANTE)", context: map[string]interface{}{"A": 5}, exp: eval.NewNumber(5)},
		{formula: "UNKNOWN_FN(1)", exp: eval.NewError(eval.ErrGeneric)},
	}
	for _, tc := range testCases {
		pr := calcsheet.ParseFormula(tc.formula)
		if !pr.Success {
			t.Errorf("%s: unexpected parse error %s", tc.formula, pr.Error)
			continue
		}
		got := calcsheet.EvaluateFormula(pr.AST, tc.context)
		if !got.Value.Equal(tc.exp) {
			t.Errorf("%s: got %v exp %v", tc.formula, got.Value, tc.exp)
		}
		if got.IsError != tc.exp.IsError() {
			t.Errorf("%s: unexpected IsError %v", tc.formula, got.IsError)
		}
	}
}

func TestParseFormula_Failure(t *testing.T) {
	for _, source := range []string{"", "1 +", "(1", "1)", "SUM(1,", "2 $ 3", "'open"} {
		pr := calcsheet.ParseFormula(source)
		if pr.Success {
			t.Errorf("%q: expected failure", source)
			continue
		}
		if pr.Error == "" {
			t.Errorf("%q: expected a diagnostic", source)
		}
		got := calcsheet.EvaluateFormula(pr.AST, nil)
		if !got.IsError || !got.Value.Equal(eval.NewError(eval.ErrGeneric)) {
			t.Errorf("%q: expected #ERR, got %v", source, got.Value)
		}
	}
}

func TestParseFormula_Idempotent(t *testing.T) {
	assert := assert.New(t)
	source := "IF(SUM(A, B) >= 10%, ROUND(A/B, 2), CONCAT('x', -A^2))"
	first := calcsheet.ParseFormula(source)
	second := calcsheet.ParseFormula(source)
	assert.True(first.Success)
	assert.True(first.AST.Equal(second.AST))

	context := map[string]interface{}{"A": 3, "B": 4}
	assert.Equal(calcsheet.EvaluateFormula(first.AST, context), calcsheet.EvaluateFormula(first.AST, context))
	assert.True(calcsheet.EvaluateFormula(first.AST, context).Value.Equal(eval.NewNumber(0.75)))
}

func TestCalculateAllValues(t *testing.T) {
	assert := assert.New(t)
	values := calcsheet.CalculateAllValues([]calcsheet.FieldSpec{
		{Name: "HEURES_REAL", Kind: sheet.Constant, Type: sheet.Number, Value: 20},
		{Name: "TARIF_H", Kind: sheet.Constant, Type: sheet.Number, Value: 200},
		{Name: "MONTANT_BRUT", Kind: sheet.Formula, Formula: "HEURES_REAL*TARIF_H"},
		{Name: "A", Kind: sheet.Formula, Formula: "B"},
		{Name: "B", Kind: sheet.Formula, Formula: "A"},
	}, map[string]interface{}{})
	assert.Len(values, 5)
	assert.True(values["HEURES_REAL"].Equal(eval.NewNumber(20)))
	assert.True(values["TARIF_H"].Equal(eval.NewNumber(200)))
	assert.True(values["MONTANT_BRUT"].Equal(eval.NewNumber(4000)))
	assert.True(values["A"].Equal(eval.NewError(eval.ErrRef)))
	assert.True(values["B"].Equal(eval.NewError(eval.ErrRef)))
}
