package view_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/cleemy-report/cmd/root"
	"fjacquet/cleemy-report/cmd/view"
	"fjacquet/cleemy-report/internal/views"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../internal/loader/testdata/full.json"

func TestMain(m *testing.M) {
	root.Init()
	root.Cmd.AddCommand(view.Commands()...)
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root.SharedFlags = root.CommonFlags{}

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(args)
	t.Cleanup(func() {
		root.Cmd.SetArgs(nil)
		root.Cmd.SetOut(nil)
		root.Cmd.SetErr(nil)
	})

	err := root.Cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cmds := view.Commands()
	require.Len(t, cmds, len(views.Names()))
	for i, name := range views.Names() {
		assert.Equal(t, name, cmds[i].Use)
		assert.NotEmpty(t, cmds[i].Short)
		assert.NotEmpty(t, cmds[i].Long)
		assert.NotNil(t, cmds[i].RunE)
	}
}

func TestViewCommand_PrintsTable(t *testing.T) {
	out, err := execute(t, "natures", "-i", fixture)
	require.NoError(t, err)

	text := ansi.Strip(out)
	assert.Contains(t, text, "Natures & Profiles")
	assert.Contains(t, text, "Cadres")
}

func TestViewCommand_ExportsWithFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.csv")
	out, err := execute(t, "limits", "-i", fixture, "-o", path, "--filter", "Kind=Allowance")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 rows to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cadres,Allowance")
}

func TestViewCommand_RejectsArguments(t *testing.T) {
	_, err := execute(t, "overview", "extra", "-i", fixture)
	assert.Error(t, err)
}

func TestViewCommand_MissingInput(t *testing.T) {
	_, err := execute(t, "overview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input file given")
}
