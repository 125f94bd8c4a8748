/*
	A formula engine for calculation sheets.

	A calculation sheet is a list of named fields. Constant fields hold input
	values, formula fields compute their value from other fields with a small
	spreadsheet expression language:

		HEURES_REAL*TARIF_H
		IF(TOTAL>1000, TOTAL*5%, 0)
		ROUND(SUM(A, B, C) / 3, 2)

	Code Organization:

	The ast package tokenizes and parses formulas and formats them back to text.
	The eval package compiles an AST into evaluators and holds the value model,
	the coercion rules and the builtin functions.
	The sheet package orders formula fields by their references and computes every field.
	Its Engine caches parsed formulas and evaluation plans across recalculations.

	Errors:

	Nothing in the engine fails with a Go error once input has been loaded.
	Failures are values: #ERR for unparseable formulas and unknown functions,
	#REF! for unresolved references and reference cycles, #TYPE! for values
	that cannot be coerced and #DIV/0! for division by zero.
*/
package calcsheet
