package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCompileText(t *testing.T) {
	buf, err := runCommand(t, "text", filepath.Join("testdata", "orders.xml"))
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "schema market.orders")
	assert.Contains(t, output, "message NewOrder id=1")
	assert.Contains(t, output, "group legs id=10")
	assert.Contains(t, output, "data note id=20")
}

func TestCompileTextGolden(t *testing.T) {
	buf, err := runCommand(t, "text", filepath.Join("testdata", "orders.xml"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "compile_text", buf.Bytes())
}

func TestCompileJSON(t *testing.T) {
	buf, err := runCommand(t, "json", filepath.Join("testdata", "orders.xml"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "market.orders", data["package"])
	assert.Equal(t, "littleEndian", data["byte_order"])
}

func TestCompileOutputFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "orders.ir.json")
	_, err := runCommand(t, "text", filepath.Join("testdata", "orders.xml"), "--output", outputFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var summary SchemaSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "market.orders", summary.Package)
	require.Len(t, summary.Messages, 1)
	assert.Equal(t, 12, summary.Messages[0].BlockLength)
}

func TestCompileOutputDirFromConfig(t *testing.T) {
	tmp := t.TempDir()
	configFile := filepath.Join(tmp, "sbec.yaml")
	outDir := filepath.Join(tmp, "gen")
	require.NoError(t, os.WriteFile(configFile,
		[]byte("output_dir: "+outDir+"\ntarget: golang\n"), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Config: configFile}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "orders.xml")})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(outDir, "market.orders.ir.json"))
	assert.NoError(t, err)
}

func TestCompileMissingFile(t *testing.T) {
	buf, err := runCommand(t, "text", filepath.Join("testdata", "ghost.xml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error ["+ErrCodeNotFound+"]")
}

func TestCompileInvalidSchema(t *testing.T) {
	buf, err := runCommand(t, "text", filepath.Join("testdata", "duplicate.xml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "duplicate template id")
}

func TestCompileBadConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("format: [not, scalar"), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Config: configFile}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "orders.xml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
