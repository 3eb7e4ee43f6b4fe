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

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("INKIFY_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("UMAMI_URL", "")
	t.Setenv("INKIFY_CLASSIFIER", "bayes")

	root := newCLI().rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const goSource = `package asset

import (
	"bytes"
	"fmt"
	"os"
	"time"
)

type fileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() os.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return fi.modTime }
func (fi fileInfo) IsDir() bool        { return false }

func read(data []byte, name string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(data); err != nil {
		return nil, fmt.Errorf("read %q: %v", name, err)
	}
	return buf.Bytes(), nil
}
`

func TestThemesAndLanguages(t *testing.T) {
	out, err := run(t, "", "themes")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(out, "\n"), "dracula")

	out, err = run(t, "", "languages")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(out, "\n"), "Go")
}

func TestDetectStdin(t *testing.T) {
	out, err := run(t, goSource, "detect", "--top", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "Go"), lines[0])
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "100.00"), lines[0])
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.py")
	require.NoError(t, os.WriteFile(path, []byte("def main():\n    print('hi')\n\nif __name__ == '__main__':\n    main()\n"), 0o644))

	out, err := run(t, "", "detect", "-n", "1", path)
	require.NoError(t, err)
	assert.Equal(t, "Python", strings.Fields(out)[1])
}

func TestDetectMissingFile(t *testing.T) {
	_, err := run(t, "", "detect", "/no/such/file.go")
	assert.Error(t, err)
}

func TestDetectEmptyInput(t *testing.T) {
	_, err := run(t, "", "detect")
	assert.Error(t, err)
}
