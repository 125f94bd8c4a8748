package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		c   Config
		err string
	}{
		{c: NewConfig()},
		{c: Config{File: "STDOUT", Level: "debug", Encoding: "json"}},
		{c: Config{File: "", Level: "INFO", Encoding: "logfmt"}, err: "must specify a log file, STDERR or STDOUT"},
		{c: Config{File: "STDERR", Level: "LOUD", Encoding: "logfmt"}, err: "unknown logging level LOUD"},
		{c: Config{File: "STDERR", Level: "INFO", Encoding: "xml"}, err: "unknown log encoding xml"},
	}
	for _, tc := range testCases {
		err := tc.c.Validate()
		if tc.err == "" {
			if err != nil {
				t.Errorf("%+v: unexpected error %v", tc.c, err)
			}
			continue
		}
		if err == nil || err.Error() != tc.err {
			t.Errorf("%+v: unexpected error: got %v exp %s", tc.c, err, tc.err)
		}
	}
}

func TestNew_Stdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, err := New(Config{File: "STDOUT", Level: "WARN", Encoding: "json"}, zapcore.AddSync(&stdout), zapcore.AddSync(&stderr))
	if err != nil {
		t.Fatal(err)
	}
	l.Root().Info("hidden")
	l.Root().Warn("cyclic fields detected", zap.Strings("fields", []string{"A", "B"}))

	if stderr.Len() != 0 {
		t.Errorf("unexpected output on stderr: %s", stderr.String())
	}
	out := stdout.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"cyclic fields detected"`) || !strings.Contains(out, `"fields":["A","B"]`) {
		t.Errorf("unexpected output: %s", out)
	}

	if err := l.SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	l.Root().Debug("now visible")
	if !strings.Contains(stdout.String(), "now visible") {
		t.Error("expected debug message after lowering the level")
	}
	if err := l.SetLevel("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_Logfmt(t *testing.T) {
	var stderr bytes.Buffer
	l, err := New(NewConfig(), zapcore.AddSync(&bytes.Buffer{}), zapcore.AddSync(&stderr))
	if err != nil {
		t.Fatal(err)
	}
	l.Root().Info("recalculated", zap.Int("fields", 3))
	out := stderr.String()
	if !strings.Contains(out, "msg=recalculated") || !strings.Contains(out, "fields=3") {
		t.Errorf("unexpected logfmt output: %s", out)
	}
}

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "calcsheet.log")
	l, err := New(Config{File: file, Level: "INFO", Encoding: "console"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	l.Root().Info("written to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("unexpected file content: %s", data)
	}
}
