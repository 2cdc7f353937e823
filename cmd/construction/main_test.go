package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleTasks = "A;Dig;3;\nB;Frame;2;A\nC;Plumb;4;A\nD;Paint;1;B;C\n"

func writeTaskFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_TextReport(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)

	code, stdout, stderr := runCLI(t, "", path)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasPrefix(stdout, "Total duration of construction: 8 weeks\n\n"))
	assert.Contains(t, stdout, "B must begin between t=3 and t=5\n")
	assert.True(t, strings.HasSuffix(stdout, "D\t(0)\t       =\n\n"))
}

func TestRun_Stdin(t *testing.T) {
	code, stdout, _ := runCLI(t, exampleTasks, "-")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "C must begin at t=3")
}

func TestRun_StrategiesProduceSameReport(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)

	_, worklist, _ := runCLI(t, "", "--strategy", "worklist", path)
	_, topo, _ := runCLI(t, "", "--strategy", "topological", path)
	assert.Equal(t, worklist, topo)
}

func TestRun_JSONInputByExtension(t *testing.T) {
	path := writeTaskFile(t, "tasks.json", `{"tasks": [
		{"id": "A", "duration": 2},
		{"id": "B", "duration": 3, "deps": ["A"]}
	]}`)

	code, stdout, stderr := runCLI(t, "", path)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Total duration of construction: 5 weeks")
}

func TestRun_BracketedIdentifierInTextFile(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", "[A];foundation;3;\nB;walls;2;[A]\n")

	code, stdout, stderr := runCLI(t, "", path)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Total duration of construction: 5 weeks")
	assert.Contains(t, stdout, "[A] must begin at t=0\n")
	assert.Contains(t, stdout, "B must begin at t=3\n")
}

func TestRun_JSONInputBySniffing(t *testing.T) {
	code, stdout, stderr := runCLI(t, `[{"id": "A", "duration": 4}]`, "-")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Total duration of construction: 4 weeks")
}

func TestRun_ColorOnlyStylesTextReport(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)

	code, stdout, _ := runCLI(t, "", "--color", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "\x1b[")

	for _, format := range []string{"json", "dot"} {
		code, stdout, stderr := runCLI(t, "", "--color", "--format", format, path)
		assert.Equal(t, 0, code, format)
		assert.NotContains(t, stdout, "\x1b[", format)
		assert.Empty(t, stderr, format)
	}

	missing := filepath.Join(t.TempDir(), "missing.txt")
	code, _, stderr := runCLI(t, "", "--color", "--format", "json", missing)
	assert.Equal(t, exitFailure, code)
	assert.NotContains(t, stderr, "\x1b[")
	assert.True(t, strings.HasPrefix(stderr, "construction: "))

	code, _, stderr = runCLI(t, "", "--color", missing)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "\x1b[")
}

func TestRun_JSONOutput(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)

	code, stdout, _ := runCLI(t, "", "--format", "json", "--unit", "days", path)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"project_end": 8`)
	assert.Contains(t, stdout, `"unit": "days"`)
}

func TestRun_DOTOutput(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)

	code, stdout, _ := runCLI(t, "", "--format", "dot", path)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "digraph construction {")
}

func TestRun_OutputFile(t *testing.T) {
	path := writeTaskFile(t, "tasks.txt", exampleTasks)
	out := filepath.Join(t.TempDir(), "report.txt")

	code, stdout, _ := runCLI(t, "", "-o", out, path)

	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total duration of construction: 8 weeks")
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "identifier;description;duration")
}

func TestRun_Failures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "empty input"},
		{"malformed", "X;desc;notanumber;\n", "invalid record at line 1"},
		{"duplicate", "A;d;1;\nA;d;1;\n", `duplicate task: "A"`},
		{"missing", "A;d;1;Z\n", `missing dependency: "Z"`},
		{"no root", "A;d;1;B\nB;d;1;A\n", "no task without dependencies"},
		{"cycle", "R;d;1;\nA;d;1;R;B\nB;d;1;A\n", "circular dependency detected around A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTaskFile(t, "tasks.txt", tc.content)

			code, stdout, stderr := runCLI(t, "", path)

			assert.Equal(t, exitFailure, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.want)
			assert.True(t, strings.HasPrefix(stderr, "construction: "))
		})
	}
}

func TestRun_BadArguments(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, _ = runCLI(t, "", "a.txt", "b.txt")
	assert.Equal(t, exitFailure, code)

	code, _, stderr = runCLI(t, "", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "read input")

	path := writeTaskFile(t, "tasks.txt", exampleTasks)
	code, _, stderr = runCLI(t, "", "--format", "xml", path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "unsupported format")

	code, _, stderr = runCLI(t, "", "--strategy", "random", path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "unknown strategy")
}
