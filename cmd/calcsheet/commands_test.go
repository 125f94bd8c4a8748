package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceTemplate = `
name: invoice
fields:
  - name: HEURES_REAL
    type: number
  - name: TARIF_H
    type: number
    value: 200
  - name: MONTANT_BRUT
    kind: formula
    formula: HEURES_REAL*TARIF_H
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	err := app.Run(append([]string{"calcsheet"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0600))
	return p
}

func TestEval(t *testing.T) {
	testCases := []struct {
		args []string
		exp  string
	}{
		{args: []string{"eval", "2+3*4"}, exp: "14\n"},
		{args: []string{"eval", "--var", "FO4=100", "FO4*2%"}, exp: "2\n"},
		{args: []string{"eval", "-v", "A=3", "-v", "B=x", "CONCAT(B, A^2)"}, exp: "x9\n"},
		{args: []string{"eval", "--var", "OK=true", "IF(OK, 'yes', 'no')"}, exp: "yes\n"},
		{args: []string{"eval", "10/0"}, exp: "#DIV/0!\n"},
		{args: []string{"eval", "MISSING+1"}, exp: "#REF!\n"},
		{args: []string{"eval", "1 +"}, exp: "#ERR\n"},
	}
	for _, tc := range testCases {
		stdout, _, err := run(t, "", tc.args...)
		if assert.NoError(t, err, "%v", tc.args) {
			assert.Equal(t, tc.exp, stdout, "%v", tc.args)
		}
	}
}

func TestEval_Stdin(t *testing.T) {
	stdout, _, err := run(t, " SUM(1, 2, 3)\n", "eval", "-")
	require.NoError(t, err)
	assert.Equal(t, "6\n", stdout)
}

func TestEval_Errors(t *testing.T) {
	_, _, err := run(t, "", "eval")
	assert.EqualError(t, err, "must provide exactly one formula")

	_, _, err = run(t, "", "eval", "--var", "=3", "1")
	assert.EqualError(t, err, `invalid value "=3", must be NAME=VALUE`)

	_, _, err = run(t, "", "--log-level", "loud", "eval", "1")
	assert.EqualError(t, err, "invalid logging config: unknown logging level loud")
}

func TestParse(t *testing.T) {
	stdout, _, err := run(t, "", "parse", "--json", "--", "-2^2")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "unary", got["typeOf"])

	stdout, _, err = run(t, "", "parse", "A+1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "BinaryNode")

	_, _, err = run(t, "", "parse", "(1")
	if assert.Error(t, err) {
		assert.True(t, strings.HasPrefix(err.Error(), "parser: unexpected EOF"), err.Error())
	}
}

func TestFmt(t *testing.T) {
	stdout, _, err := run(t, "", "fmt", "((a + b)) *  sum( 1 ,2 )")
	require.NoError(t, err)
	assert.Equal(t, "(a + b) * sum(1, 2)\n", stdout)
}

func TestCalc(t *testing.T) {
	tmpl := writeFile(t, "invoice.yaml", invoiceTemplate)
	values := writeFile(t, "values.json", `{"HEURES_REAL": 20}`)

	stdout, _, err := run(t, "", "calc", "--template", tmpl, "--values", values)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"FIELD", "KIND", "VALUE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"HEURES_REAL", "constant", "20"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"TARIF_H", "constant", "200"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"MONTANT_BRUT", "formula", "4000"}, strings.Fields(lines[3]))

	stdout, _, err = run(t, "", "calc", "-t", tmpl, "--set", "HEURES_REAL=7.5", "--human")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1,500")

	stdout, _, err = run(t, "", "calc", "--template", tmpl, "--set", "HEURES_REAL=1", "--json")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, map[string]interface{}{
		"HEURES_REAL":  float64(1),
		"TARIF_H":      float64(200),
		"MONTANT_BRUT": float64(200),
	}, got)

	_, _, err = run(t, "", "calc")
	assert.Error(t, err)
}

func TestCalc_CyclicWarning(t *testing.T) {
	tmpl := writeFile(t, "cycle.yaml", "fields:\n  - name: A\n    kind: formula\n    formula: B\n  - name: B\n    kind: formula\n    formula: A\n")
	stdout, stderr, err := run(t, "", "--log-level", "warn", "calc", "--template", tmpl)
	require.NoError(t, err)
	assert.Contains(t, stdout, "#REF!")
	assert.Contains(t, stderr, `msg="cyclic fields detected"`)
	assert.Contains(t, stderr, "service=sheet")
}

func TestDeps(t *testing.T) {
	tmpl := writeFile(t, "invoice.yaml", invoiceTemplate)
	stdout, _, err := run(t, "", "deps", "--template", tmpl)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"MONTANT_BRUT", "HEURES_REAL,", "TARIF_H"}, strings.Fields(lines[1]))

	stdout, _, err = run(t, "", "deps", "--json", "--template", tmpl)
	require.NoError(t, err)
	var got struct {
		Order  []string `json:"order"`
		Passes int      `json:"passes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []string{"MONTANT_BRUT"}, got.Order)
	assert.Equal(t, 1, got.Passes)
}
