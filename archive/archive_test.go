package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestPutLookupRoundTrip(t *testing.T) {
	a := openMem(t)
	key := "3 1 1 1 0 0 1 1 0 1 0 1 1 0 0 1"
	require.NoError(t, a.Put(key, "pcu"))

	name, err := a.Lookup(key)
	require.NoError(t, err)
	require.Equal(t, "pcu", name)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	a := openMem(t)
	_, err := a.Lookup("nonexistent key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPutMergesDuplicateNames(t *testing.T) {
	a := openMem(t)
	key := "3 1 1 1 0 0"
	require.NoError(t, a.Put(key, "alpha"))
	require.NoError(t, a.Put(key, "beta"))

	name, err := a.Lookup(key)
	require.NoError(t, err)
	require.Equal(t, "alpha, beta", name)
}

func TestExportImportTextRoundTrip(t *testing.T) {
	a := openMem(t)
	require.NoError(t, a.Put("3 1 1 1 0 0", "pcu"))
	require.NoError(t, a.Put("3 1 2 0 0 0 1 2 1 0 0", "dia"))

	var buf strings.Builder
	require.NoError(t, ExportText(a, &buf, "topogenome"))

	b := openMem(t)
	require.NoError(t, ImportText(b, strings.NewReader(buf.String())))

	name, err := b.Lookup("3 1 1 1 0 0")
	require.NoError(t, err)
	require.Equal(t, "pcu", name)
}

func TestExportImportTextRoundTripsMergedNames(t *testing.T) {
	a := openMem(t)
	key := "3 1 1 1 0 0"
	require.NoError(t, a.Put(key, "alpha"))
	require.NoError(t, a.Put(key, "beta"))

	var buf strings.Builder
	require.NoError(t, ExportText(a, &buf, "topogenome"))

	b := openMem(t)
	require.NoError(t, ImportText(b, strings.NewReader(buf.String())))

	name, err := b.Lookup(key)
	require.NoError(t, err)
	require.Equal(t, "alpha, beta", name)
}

func TestImportTextRejectsVersionMismatch(t *testing.T) {
	b := openMem(t)
	bad := "Made by othertool v9.9.9\n\nkey 3 1 1 1 0 0\nid  pcu\n\n"
	err := ImportText(b, strings.NewReader(bad))
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestNumGenomesCountsByVertexCount(t *testing.T) {
	a := openMem(t)
	require.NoError(t, a.Put("3 1 1 1 0 0", "pcu"))
	require.NoError(t, a.Put("3 1 2 0 0 0 1 2 1 0 0", "dia"))

	n, err := a.NumGenomes(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
