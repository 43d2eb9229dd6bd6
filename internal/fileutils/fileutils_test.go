package fileutils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/payrecon/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0o600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "missing.txt")))
	assert.False(t, fileutils.FileExists(tmpDir))

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestCreateFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "payments.csv")
	f, err := fileutils.CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, fileutils.FileExists(path))
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := fileutils.OpenFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReadHead(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.sta")
	big := filepath.Join(dir, "big.xml")
	require.NoError(t, os.WriteFile(small, []byte(":20:STMT"), 0o600))
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 2*fileutils.HeadSize)), 0o600))

	head, err := fileutils.ReadHead(small)
	require.NoError(t, err)
	assert.Equal(t, ":20:STMT", string(head))

	head, err = fileutils.ReadHead(big)
	require.NoError(t, err)
	assert.Len(t, head, fileutils.HeadSize)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	head, err = fileutils.ReadHead(empty)
	require.NoError(t, err)
	assert.Empty(t, head)
}

func TestListStatementFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.csv", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := fileutils.ListStatementFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.xml")}, files)

	_, err = fileutils.ListStatementFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
