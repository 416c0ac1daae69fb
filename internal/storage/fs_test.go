package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	key, err := s.Put(ReportKey("job-1", "doc-1"), strings.NewReader("# Report"))
	require.NoError(t, err)
	require.Equal(t, "reports/job-1/doc-1.md", key)

	rc, err := s.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "# Report", string(b))

	_, err = os.Stat(filepath.Join(dir, "reports", "job-1", "doc-1.md"))
	require.NoError(t, err)
}

func TestFSStore_Overwrite(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put("a.md", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = s.Put("a.md", strings.NewReader("two"))
	require.NoError(t, err)

	rc, err := s.Get("a.md")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	require.Equal(t, "two", string(b))
}

func TestFSStore_Keys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	_, err = s.Put("  ", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrEmptyKey)

	// traversal is folded back under the root
	key, err := s.Put("../../escape.md", strings.NewReader("x"))
	require.NoError(t, err)
	require.Equal(t, "escape.md", key)
	_, err = os.Stat(filepath.Join(dir, "escape.md"))
	require.NoError(t, err)

	u, err := s.URL(key)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "file://"))
	require.True(t, strings.HasSuffix(u, "/escape.md"))
}
