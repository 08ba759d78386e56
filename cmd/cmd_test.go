package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns what it printed. Flag values
// live in package variables, so every flag is reset first.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func decodeResult(t *testing.T, out string) api.Result {
	t.Helper()
	var res api.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestMinifyCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"in/a.json": `[{"id": "a", "name": "x", "note": null}, {"id": "b", "name": "y"}]`,
	})
	out := filepath.Join(dir, "out")
	km := filepath.Join(dir, "km.json")

	stdout, _, err := execute(t, "minify", filepath.Join(dir, "in"),
		"-o", out, "-k", km, "--null-removal", "--keyed", "--compact")
	require.NoError(t, err)

	res := decodeResult(t, stdout)
	assert.Equal(t, api.StatusSuccess, res.Status)
	assert.Equal(t, "minify", res.Mode)
	assert.Equal(t, 2, res.NewEntries)
	assert.Equal(t,
		`{"_schema":{"format":"keyed_json:i","key_field":"i","fields":["n"]},"a":["x"],"b":["y"]}`,
		readFile(t, filepath.Join(out, "a-out.json")))

	stdout, _, err = execute(t, "expand", out, "-k", km, "--from-keyed", "--compact", "-o", filepath.Join(dir, "exp"))
	require.NoError(t, err)
	assert.Equal(t, api.StatusSuccess, decodeResult(t, stdout).Status)
	assert.Equal(t,
		`[{"id":"a","name":"x"},{"id":"b","name":"y"}]`,
		readFile(t, filepath.Join(dir, "exp", "a-out-expanded.json")))
}

func TestMinifyToStdout(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `{"a": null, "b": true}`})

	stdout, stderr, err := execute(t, "minify", filepath.Join(dir, "a.json"), "--null-removal", "--bool-compress")
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":1}\n", stdout)
	assert.Contains(t, stderr, `"mode": "minify"`)
}

func TestKeyedFieldFlag(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `[{"x": 1, "sku": "p"}]`})

	stdout, _, err := execute(t, "minify", filepath.Join(dir, "a.json"), "--keyed=sku", "--compact")
	require.NoError(t, err)
	assert.Equal(t, `{"_schema":{"format":"keyed_json:sku","key_field":"sku","fields":["x"]},"p":[1]}`+"\n", stdout)

	t.Run("separate key field flag", func(t *testing.T) {
		stdout, _, err := execute(t, "minify", filepath.Join(dir, "a.json"), "--keyed", "--key-field", "sku", "--compact")
		require.NoError(t, err)
		assert.Equal(t, `{"_schema":{"format":"keyed_json:sku","key_field":"sku","fields":["x"]},"p":[1]}`+"\n", stdout)
	})

	t.Run("key field alone implies keyed", func(t *testing.T) {
		stdout, _, err := execute(t, "minify", filepath.Join(dir, "a.json"), "--key-field", "sku", "--compact")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"key_field":"sku"`)
	})
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `{}`})

	t.Run("expand needs a keymap flag", func(t *testing.T) {
		_, _, err := execute(t, "expand", filepath.Join(dir, "a.json"))
		assert.Error(t, err)
	})

	t.Run("no inputs", func(t *testing.T) {
		stdout, _, err := execute(t, "minify", filepath.Join(dir, "missing"))
		require.Error(t, err)
		res := decodeResult(t, stdout)
		assert.Equal(t, api.StatusError, res.Status)
		assert.Equal(t, 1, res.ExitCode)
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		_, _, err := execute(t, "--config", filepath.Join(dir, "nope.yaml"), "minify", filepath.Join(dir, "a.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), api.ErrConfig.Error())
	})

	t.Run("compact and pretty conflict", func(t *testing.T) {
		_, _, err := execute(t, "minify", filepath.Join(dir, "a.json"), "--compact", "--pretty")
		assert.Error(t, err)
	})
}

func TestNestCommands(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"protocols-x/a.json": `{"x": 1}`,
		"protocols-x/b.json": "// note\n{\"key\": \"renamed\", \"y\": 2}",
	})
	merged := filepath.Join(dir, "merged.json")

	stdout, _, err := execute(t, "nest", filepath.Join(dir, "protocols-x"), "-o", merged, "--length", "a", "--compact")
	require.NoError(t, err)
	res := decodeResult(t, stdout)
	assert.Equal(t, 2, res.FilesMerged)
	assert.Equal(t, merged, res.OutputFile)
	assert.Equal(t,
		`{"manifest":{"protocols-x_total":1},"a":{"x":1,"__LENGTH__":1},"renamed":{"y":2},"__LENGTH__":1}`,
		readFile(t, merged))

	flat := filepath.Join(dir, "flat.json")
	stdout, _, err = execute(t, "unnest", merged, "-o", flat)
	require.NoError(t, err)
	assert.Equal(t, 2, decodeResult(t, stdout).KeysFlattened)
	assert.Equal(t, "{\n  \"a_x\": 1,\n  \"renamed_y\": 2\n}", readFile(t, flat))
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bad.json":  "{\"a\": 1,}",
		"good.json": `{"a": 1}`,
	})

	stdout, _, err := execute(t, "verify", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ bad.json | SYNTAX: ")
	assert.Contains(t, stdout, "✓ good.json\n")
	assert.Contains(t, stdout, "AUDIT: 1P 0F 1E")

	stdout, _, err = execute(t, "verify", dir, "--auto-fix")
	require.NoError(t, err)
	assert.Contains(t, stdout, "⚙ bad.json | REPAIRED: trailing-commas")
	assert.Contains(t, stdout, "AUDIT: 1P 1F 0E")
	assert.Equal(t, `{"a": 1}`, readFile(t, filepath.Join(dir, "bad.json")))

	stdout, _, err = execute(t, "verify", dir, "--json")
	require.NoError(t, err)
	res := decodeResult(t, stdout)
	assert.Equal(t, &api.Stats{Succeeded: 2}, res.Stats)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "jsonshape.yaml")

	stdout, _, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	cfg, err := config.Load(fsys, path, true)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, _, err = execute(t, "--config", path, "init")
	assert.Error(t, err)

	_, _, err = execute(t, "--config", path, "init", "--force")
	assert.NoError(t, err)
}
