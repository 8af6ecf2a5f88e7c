package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/eponymouse/columnal-sub000/core"
)

const shopTables = `
units:
  - name: GBP
tables:
  - name: Sales
    columns:
      - name: Item
        type: Text
        values: [tea, cake, scone]
      - name: Price
        type: Number{GBP}
        values: [2, "3.10", 1.5]
  - name: Rates
    columns:
      - name: Rate
        type: Number
        values: [1, 2]
`

func writeTables(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(shopTables), 0o644))
	return path
}

// runColx runs the command line with fresh flags and captures its output.
func runColx(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	defer core.QuietTest(t)()
	t.Setenv("COLX_TABLES", "")
	color.NoColor = true
	envFile, tablesPath, tableName, rowIndex = ".env", "", "", -1
	batchSize, numWorkers, displayForm = 256, 4, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheck(t *testing.T) {
	out, _, err := runColx(t, "check", "1 + 2")
	assert.NilError(t, err)
	assert.Equal(t, out, "Number\n")

	out, _, err = runColx(t, "check", "-t", writeTables(t), "Price * 2")
	assert.NilError(t, err)
	assert.Equal(t, out, "Number{GBP}\n")
}

func TestCheckErrors(t *testing.T) {
	_, stderr, err := runColx(t, "check", `1 + "a"`)
	assert.Assert(t, errors.Is(err, errReported))
	assert.Assert(t, is.Contains(stderr, "error: "))
	assert.Equal(t, ExitCode(err), 1)

	_, stderr, err = runColx(t, "check", "1 2")
	assert.Assert(t, errors.Is(err, errReported))
	assert.Assert(t, is.Contains(stderr, "syntax error"))
}

func TestEval(t *testing.T) {
	path := writeTables(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no tables", []string{"eval", "2 ^ 10"}, "1024\n"},
		{"one row", []string{"eval", "-t", path, "--row", "1", "Price * 2"}, "6.2\n"},
		{"every row", []string{"eval", "-t", path, "Price * 2"}, "0: 4\n1: 6.2\n2: 3\n"},
		{"small batches", []string{"eval", "-t", path, "--batch", "1", "--workers", "2", `Item ; "!"`}, "0: \"tea!\"\n1: \"cake!\"\n2: \"scone!\"\n"},
		{"other table", []string{"eval", "-t", path, "--table", "Rates", "sum(column\\Sales\\Price)"}, "0: 6.6\n1: 6.6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runColx(t, tt.args...)
			assert.NilError(t, err)
			assert.Equal(t, out, tt.want)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	_, stderr, err := runColx(t, "eval", "1 / 0")
	assert.Assert(t, errors.Is(err, errReported))
	assert.Assert(t, is.Contains(stderr, "cannot divide 1 by zero"))

	_, _, err = runColx(t, "eval", "-t", writeTables(t), "--table", "Nope", "1")
	assert.ErrorContains(t, err, "no such table")
	assert.Equal(t, ExitCode(err), 1)
}

func TestExplain(t *testing.T) {
	out, _, err := runColx(t, "explain", "-t", writeTables(t), "--row", "0", "Price * 2")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Price * 2 = 4"))
	assert.Assert(t, is.Contains(out, "  Price = 2 (from Sales.Price row 0)"))
}

func TestFmt(t *testing.T) {
	out, _, err := runColx(t, "fmt", "abs(1 + (2 * x))")
	assert.NilError(t, err)
	assert.Equal(t, out, "abs((1 + (2 * x)))\n")

	out, _, err = runColx(t, "fmt", "--display", "abs(1 + (2 * x))")
	assert.NilError(t, err)
	assert.Equal(t, out, "abs(1 + (2 * x))\n")
}

func TestFunctionsList(t *testing.T) {
	out, _, err := runColx(t, "functions")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "sum :: [Number{u}] -> Number{u}\n    Adds up a list of numbers.\n"))
	assert.Assert(t, is.Contains(out, "from text to :: "))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitCode(nil), 0)
	assert.Equal(t, ExitCode(errReported), 1)
	assert.Equal(t, ExitCode(core.NewInternalError("broken")), 2)
}
