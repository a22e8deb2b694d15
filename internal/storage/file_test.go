package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	dir, err := os.MkdirTemp("", "storage-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sm := NewStorageManager()
	fs := LocalFileSet{Dir: dir, Base: "segment"}
	f, err := OpenFile(sm, fs, "segment")
	require.NoError(t, err)
	return f
}

func TestFileAllocateWriteReadRoundTrip(t *testing.T) {
	f := newTestFile(t)

	page := NewBlankPage()
	pageNo, err := f.AllocatePage(page)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), pageNo)

	_, err = page.InsertTuple([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.WritePage(page))

	reread := NewBlankPage()
	require.NoError(t, f.ReadPageInto(pageNo, reread))
	data, err := reread.ReadTuple(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestFileReadUnallocatedPageIsInvalid(t *testing.T) {
	f := newTestFile(t)

	dst := NewBlankPage()
	err := f.ReadPageInto(5, dst)
	var invalid *InvalidPageError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, uint32(5), invalid.PageNo)
}

func TestFileDeleteThenAllocateReusesPageNumber(t *testing.T) {
	f := newTestFile(t)

	page := NewBlankPage()
	first, err := f.AllocatePage(page)
	require.NoError(t, err)

	second, err := f.AllocatePage(NewBlankPage())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, f.DeletePage(first))

	third, err := f.AllocatePage(NewBlankPage())
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestFileDeleteUnallocatedPageIsInvalid(t *testing.T) {
	f := newTestFile(t)
	err := f.DeletePage(9)
	var invalid *InvalidPageError
	require.ErrorAs(t, err, &invalid)
}
