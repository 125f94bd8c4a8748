package eval_test

import (
	"testing"

	"github.com/influxdata/calcsheet/eval"
)

func TestFunctions_Aggregates(t *testing.T) {
	scope := map[string]interface{}{
		"a":    10,
		"b":    "20",
		"text": "abc",
		"none": nil,
	}
	runEvalTests(t, []evalTestCase{
		{formula: "SUM(10,20,30)", exp: eval.NewNumber(60)},
		{formula: "SUM()", exp: eval.NewNumber(0)},
		{formula: "sum(a, b, text, none)", scope: scope, exp: eval.NewNumber(30)},
		{formula: "SUM(a, missing, 5)", scope: scope, exp: eval.NewNumber(15)},
		{formula: "SUM(1/0, 2)", exp: eval.NewNumber(2)},
		{formula: "AVG()", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "AVG(1, 2, 3, 4)", exp: eval.NewNumber(2.5)},
		{formula: "AVG(a, text)", scope: scope, exp: eval.NewNumber(5)},
		{formula: "AVG(a, missing)", scope: scope, exp: eval.NewError(eval.ErrRef)},
		{formula: "MIN(3, 1, 2)", exp: eval.NewNumber(1)},
		{formula: "MAX(3, '7', 2)", exp: eval.NewNumber(7)},
		{formula: "MIN(-1, text)", scope: scope, exp: eval.NewNumber(-1)},
		{formula: "MAX()", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "MAX('x', 'y')", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "MIN(1, missing)", exp: eval.NewError(eval.ErrRef)},
		{formula: "COUNT(a, b, text, none)", scope: scope, exp: eval.NewNumber(3)},
		{formula: "COUNT(a, missing, '')", scope: scope, exp: eval.NewNumber(2)},
		{formula: "COUNT()", exp: eval.NewNumber(0)},
	})
}

func TestFunctions_Logic(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{formula: "IF(1>0, 'yes', 'no')", exp: eval.NewString("yes")},
		{formula: "IF(1<0, 'yes', 'no')", exp: eval.NewString("no")},
		{formula: "IF(0, 'yes')", exp: eval.Null},
		{formula: "IF('', 1, 2)", exp: eval.NewNumber(2)},
		{formula: "IF('x', 1, 2)", exp: eval.NewNumber(1)},
		{formula: "IF(none, 1, 2)", scope: map[string]interface{}{"none": nil}, exp: eval.NewNumber(2)},
		{formula: "IF(true)", exp: eval.Null},
		{formula: "IF()", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "IF(1, 2, 1/0)", exp: eval.NewError(eval.ErrDivZero)},
		{formula: "COALESCE(none, '', missing, 0, 5)", scope: map[string]interface{}{"none": nil}, exp: eval.NewNumber(0)},
		{formula: "COALESCE(none, 'first')", scope: map[string]interface{}{"none": nil}, exp: eval.NewString("first")},
		{formula: "COALESCE()", exp: eval.Null},
		{formula: "coalesce(1/0)", exp: eval.Null},
	})
}

func TestFunctions_Math(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{formula: "ROUND(2.5)", exp: eval.NewNumber(3)},
		{formula: "ROUND(-2.5)", exp: eval.NewNumber(-3)},
		{formula: "ROUND(3.14159, 2)", exp: eval.NewNumber(3.14)},
		{formula: "ROUND(1234, -2)", exp: eval.NewNumber(1200)},
		{formula: "ROUND('x')", exp: eval.NewError(eval.ErrType)},
		{formula: "ROUND(1.5, 'x')", exp: eval.NewError(eval.ErrType)},
		{formula: "ROUND()", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "FLOOR(2.7)", exp: eval.NewNumber(2)},
		{formula: "FLOOR(-2.2)", exp: eval.NewNumber(-3)},
		{formula: "CEIL(2.2)", exp: eval.NewNumber(3)},
		{formula: "ABS(-4)", exp: eval.NewNumber(4)},
		{formula: "ABS('-4')", exp: eval.NewNumber(4)},
		{formula: "ABS(true)", exp: eval.NewError(eval.ErrType)},
		{formula: "FLOOR('')", exp: eval.NewError(eval.ErrType)},
		{formula: "NUMBER('42.5')", exp: eval.NewNumber(42.5)},
		{formula: "NUMBER('4x')", exp: eval.NewError(eval.ErrType)},
		{formula: "NUMBER(7)", exp: eval.NewNumber(7)},
	})
}

func TestFunctions_Text(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{formula: "LEN('hello')", exp: eval.NewNumber(5)},
		{formula: "LEN('été')", exp: eval.NewNumber(3)},
		{formula: "LEN(12.50)", exp: eval.NewNumber(4)},
		{formula: "LEN(none)", scope: map[string]interface{}{"none": nil}, exp: eval.NewNumber(0)},
		{formula: "CONCAT('a', 1, true, none, 'b')", scope: map[string]interface{}{"none": nil}, exp: eval.NewString("a1trueb")},
		{formula: "CONCAT()", exp: eval.NewString("")},
		{formula: "CONCAT('a', missing)", exp: eval.NewError(eval.ErrRef)},
	})
}

func TestFunctions_Dates(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{formula: "DATE(2024, 3, 9)", exp: eval.NewString("2024-03-09")},
		{formula: "DATE(2024, 13, 1)", exp: eval.NewString("2025-01-01")},
		{formula: "DATE(2024, 2, 30)", exp: eval.NewString("2024-03-01")},
		{formula: "DATE(2024.9, '3', 9)", exp: eval.NewString("2024-03-09")},
		{formula: "DATE(2024, 'x', 1)", exp: eval.NewError(eval.ErrType)},
		{formula: "DATE(2024, 1)", exp: eval.NewError(eval.ErrGeneric)},
		{formula: "YEAR('2024-03-09')", exp: eval.NewNumber(2024)},
		{formula: "MONTH('2024-03-09T10:00:00Z')", exp: eval.NewNumber(3)},
		{formula: "DAY('2024-03-09 10:00:00')", exp: eval.NewNumber(9)},
		{formula: "DAY('2024/03/09')", exp: eval.NewNumber(9)},
		{formula: "YEAR(DATE(1999, 12, 31))", exp: eval.NewNumber(1999)},
		{formula: "YEAR(0)", exp: eval.NewNumber(1970)},
		{formula: "MONTH(86400000 * 40)", exp: eval.NewNumber(2)},
		{formula: "YEAR('soon')", exp: eval.NewError(eval.ErrType)},
		{formula: "YEAR(true)", exp: eval.NewError(eval.ErrType)},
		{formula: "DAY(none)", scope: map[string]interface{}{"none": nil}, exp: eval.NewError(eval.ErrType)},
	})
}

func TestFunctions_CaseInsensitive(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{formula: "Sum(1, 2)", exp: eval.NewNumber(3)},
		{formula: "round(1.25, 1)", exp: eval.NewNumber(1.3)},
		{formula: "iF(1, 'a', 'b')", exp: eval.NewString("a")},
	})
}

func TestNewFunctions(t *testing.T) {
	funcs := eval.NewFunctions()
	if got, exp := len(funcs.Names()), 19; got != exp {
		t.Errorf("unexpected number of builtins: got %d exp %d", got, exp)
	}
	delete(funcs, "SUM")
	if _, ok := eval.NewFunctions()["SUM"]; !ok {
		t.Error("deleting from a copy changed the builtin table")
	}
}
