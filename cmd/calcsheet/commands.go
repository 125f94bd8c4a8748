package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"text/tabwriter"

	humanize "github.com/dustin/go-humanize"
	"github.com/influxdata/calcsheet/ast"
	"github.com/influxdata/calcsheet/eval"
	"github.com/influxdata/calcsheet/logging"
	"github.com/influxdata/calcsheet/sheet"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "calcsheet",
		Usage:     "Evaluate formulas and compute calculation sheets",
		UsageText: "calcsheet [global options] command [command options] [arguments...]",
		Version:   fmt.Sprintf("%s (git: %s)", version, commit),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to a TOML configuration file",
				EnvVars:   []string{"CALCSHEET_CONFIG_PATH"},
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level, one of debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination, STDERR, STDOUT or a file path",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			newEvalCmd(),
			newParseCmd(),
			newFmtCmd(),
			newCalcCmd(),
			newDepsCmd(),
		},
	}
}

func setup(ctx *cli.Context) error {
	c, err := ParseConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	if err := c.ApplyEnvOverrides(); err != nil {
		return errors.Wrap(err, "failed to apply env overrides")
	}
	if level := ctx.String("log-level"); level != "" {
		c.Logging.Level = level
	}
	if file := ctx.String("log-file"); file != "" {
		c.Logging.File = file
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(c.Logging, zapcore.AddSync(ctx.App.Writer), zapcore.AddSync(ctx.App.ErrWriter))
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	ctx.App.Metadata["logger"] = logger

	engine, err := sheet.NewEngine(c.Sheet, sheet.WithLogger(logger.Root().With(zap.String("service", "sheet"))))
	if err != nil {
		return err
	}
	ctx.App.Metadata["engine"] = engine
	return nil
}

func teardown(ctx *cli.Context) error {
	if l, ok := ctx.App.Metadata["logger"].(*logging.Logger); ok {
		return l.Close()
	}
	return nil
}

func getEngine(ctx *cli.Context) *sheet.Engine {
	e, ok := ctx.App.Metadata["engine"].(*sheet.Engine)
	if !ok {
		panic("missing sheet engine")
	}
	return e
}

func newEvalCmd() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate a formula",
		ArgsUsage: "[formula or '-' for stdin]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "var",
				Aliases: []string{"v"},
				Usage:   "Set a value as NAME=VALUE, may be repeated",
			},
		},
		Action: func(ctx *cli.Context) error {
			source, err := readFormula(ctx)
			if err != nil {
				return err
			}
			vars, err := parseVars(ctx.StringSlice("var"))
			if err != nil {
				return err
			}
			res := getEngine(ctx).Evaluate(source, vars)
			fmt.Fprintln(ctx.App.Writer, res.Value)
			return nil
		},
	}
}

func newParseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the syntax tree of a formula",
		ArgsUsage: "[formula or '-' for stdin]",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx *cli.Context) error {
			source, err := readFormula(ctx)
			if err != nil {
				return err
			}
			n, err := getEngine(ctx).Parse(source)
			if err != nil {
				return err
			}
			if ctx.Bool("json") {
				return writeJSON(ctx.App.Writer, n)
			}
			fmt.Fprintln(ctx.App.Writer, n)
			return nil
		},
	}
}

func newFmtCmd() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Print a formula in canonical form",
		ArgsUsage: "[formula or '-' for stdin]",
		Action: func(ctx *cli.Context) error {
			source, err := readFormula(ctx)
			if err != nil {
				return err
			}
			n, err := getEngine(ctx).Parse(source)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, ast.Format(n))
			return nil
		},
	}
}

func templateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      "template",
		Aliases:   []string{"t"},
		Usage:     "Path to a YAML, JSON or TOML template",
		Required:  true,
		TakesFile: true,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output data as JSON",
	}
}

func newCalcCmd() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Compute every field of a template",
		Flags: []cli.Flag{
			templateFlag(),
			&cli.StringFlag{
				Name:      "values",
				Usage:     "Path to a YAML, JSON or TOML file of raw values",
				TakesFile: true,
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Set a raw value as NAME=VALUE, may be repeated",
			},
			jsonFlag(),
			&cli.BoolFlag{
				Name:  "human",
				Usage: "Render numbers with thousands separators",
			},
		},
		Action: func(ctx *cli.Context) error {
			tmpl, err := sheet.LoadTemplate(ctx.String("template"))
			if err != nil {
				return err
			}
			raw := make(map[string]interface{})
			if p := ctx.String("values"); p != "" {
				if raw, err = sheet.LoadValues(p); err != nil {
					return err
				}
			}
			sets, err := parseVars(ctx.StringSlice("set"))
			if err != nil {
				return err
			}
			for name, v := range sets {
				raw[name] = v
			}

			values := getEngine(ctx).Calculate(tmpl.Fields, raw)
			if ctx.Bool("json") {
				return writeJSON(ctx.App.Writer, values)
			}

			w := tabwriter.NewWriter(ctx.App.Writer, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tKIND\tVALUE")
			for _, f := range tmpl.Fields {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Kind, formatValue(values[f.Name], ctx.Bool("human")))
			}
			return w.Flush()
		},
	}
}

func newDepsCmd() *cli.Command {
	return &cli.Command{
		Name:  "deps",
		Usage: "Print the evaluation order of the formula fields of a template",
		Flags: []cli.Flag{templateFlag(), jsonFlag()},
		Action: func(ctx *cli.Context) error {
			tmpl, err := sheet.LoadTemplate(ctx.String("template"))
			if err != nil {
				return err
			}
			deps := getEngine(ctx).Dependencies(tmpl.Fields)
			if ctx.Bool("json") {
				return writeJSON(ctx.App.Writer, deps)
			}

			w := tabwriter.NewWriter(ctx.App.Writer, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tREFERENCES")
			for _, name := range deps.Order {
				fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(deps.References[name], ", "))
			}
			for _, name := range deps.Cyclic {
				fmt.Fprintf(w, "%s\t%s (cycle)\n", name, strings.Join(deps.References[name], ", "))
			}
			return w.Flush()
		},
	}
}

// readFormula returns the single formula argument, reading stdin for "-".
func readFormula(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.New("must provide exactly one formula")
	}
	source := ctx.Args().First()
	if source != "-" {
		return source, nil
	}
	data, err := ioutil.ReadAll(ctx.App.Reader)
	if err != nil {
		return "", errors.Wrap(err, "failed to read formula from stdin")
	}
	return strings.TrimSpace(string(data)), nil
}

// parseVars parses NAME=VALUE definitions. Decimal values become numbers,
// true and false become booleans and anything else stays text.
func parseVars(defs []string) (map[string]interface{}, error) {
	vars := make(map[string]interface{}, len(defs))
	for _, def := range defs {
		i := strings.Index(def, "=")
		if i <= 0 {
			return nil, errors.Errorf("invalid value %q, must be NAME=VALUE", def)
		}
		vars[def[:i]] = parseLiteral(def[i+1:])
	}
	return vars, nil
}

func parseLiteral(s string) interface{} {
	if n, ok := eval.ToNumber(eval.NewString(s)); ok {
		return n
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func formatValue(v eval.Value, human bool) string {
	if human && v.Type() == eval.TNumber {
		return humanize.Commaf(v.Number())
	}
	return v.String()
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal json")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
