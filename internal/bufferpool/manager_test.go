package bufferpool

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodenova/bufmgr/internal/storage"
)

func newTestFile(t *testing.T) *storage.File {
	t.Helper()
	dir, err := os.MkdirTemp("", "bufmgr-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sm := storage.NewStorageManager()
	fs := storage.LocalFileSet{Dir: dir, Base: "segment"}
	file, err := storage.OpenFile(sm, fs, "segment")
	require.NoError(t, err)
	return file
}

func allocAndFill(t *testing.T, m *Manager, file *storage.File, tuple []byte) uint32 {
	t.Helper()
	pageNo, page, err := m.AllocPage(file)
	require.NoError(t, err)
	_, err = page.InsertTuple(tuple)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, pageNo, true))
	return pageNo
}

func TestReadPageMissThenHit(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(4)

	pageNo := allocAndFill(t, m, file, []byte("row a"))
	// Write the page back and evict it so the first read below is a miss.
	require.NoError(t, m.FlushFile(file))

	p1, err := m.ReadPage(file, pageNo)
	require.NoError(t, err)
	data, err := p1.ReadTuple(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("row a"), data)

	p2, err := m.ReadPage(file, pageNo)
	require.NoError(t, err)
	assert.Same(t, p1, p2, "a second read of a resident page must hit the same frame")

	require.NoError(t, m.UnpinPage(file, pageNo, false))
	require.NoError(t, m.UnpinPage(file, pageNo, false))
}

func TestAllocPageFillsPoolThenBufferExceeded(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	p1 := allocAndFill(t, m, file, []byte("a"))
	p2 := allocAndFill(t, m, file, []byte("b"))

	// Pin both resident pages so every frame is occupied and pinned.
	_, err := m.ReadPage(file, p1)
	require.NoError(t, err)
	_, err = m.ReadPage(file, p2)
	require.NoError(t, err)

	_, _, err = m.AllocPage(file)
	assert.ErrorIs(t, err, ErrBufferExceeded)
}

func TestEvictionWritesBackDirtyVictim(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(1)

	p1 := allocAndFill(t, m, file, []byte("dirty victim"))

	// Force eviction of p1 by requesting a second page while the pool
	// holds only one frame.
	p2, page2, err := m.AllocPage(file)
	require.NoError(t, err)
	_, err = page2.InsertTuple([]byte("new resident"))
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, p2, true))

	// p1 must have been flushed to disk by the eviction, so a read
	// through a brand new manager (no warm cache) sees its contents.
	m2 := NewManager(1)
	reread, err := m2.ReadPage(file, p1)
	require.NoError(t, err)
	data, err := reread.ReadTuple(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("dirty victim"), data)
}

func TestUnpinUnresidentPageIsHashNotFound(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	err := m.UnpinPage(file, 0, false)
	require.Error(t, err)
	assert.True(t, IsHashNotFound(err))
}

func TestUnpinAlreadyUnpinnedPage(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	pageNo := allocAndFill(t, m, file, []byte("x"))
	err := m.UnpinPage(file, pageNo, false)
	var notPinned *PageNotPinnedError
	require.ErrorAs(t, err, &notPinned)
	assert.Equal(t, pageNo, notPinned.PageNo)
}

func TestFlushFileFailsOnPinnedPage(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	pageNo, _, err := m.AllocPage(file)
	require.NoError(t, err)

	err = m.FlushFile(file)
	var pinned *PagePinnedError
	require.ErrorAs(t, err, &pinned)
	assert.Equal(t, pageNo, pinned.PageNo)
}

func TestDisposeResidentPage(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	pageNo := allocAndFill(t, m, file, []byte("to be disposed"))
	require.NoError(t, m.DisposePage(file, pageNo))

	// The directory entry is gone, so unpinning the page reports HashNotFound.
	err := m.UnpinPage(file, pageNo, false)
	assert.True(t, IsHashNotFound(err))
}

func TestAllocPageReusesDisposedPageNumber(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(2)

	first := allocAndFill(t, m, file, []byte("first"))
	require.NoError(t, m.DisposePage(file, first))

	second, _, err := m.AllocPage(file)
	require.NoError(t, err)
	assert.Equal(t, first, second, "a disposed page number should be reused before extending the file")
}

func TestPrintSelfCountsValidFrames(t *testing.T) {
	file := newTestFile(t)
	m := NewManager(4)

	allocAndFill(t, m, file, []byte("one"))
	allocAndFill(t, m, file, []byte("two"))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	valid := m.PrintSelf(w)
	_ = w.Close()
	_ = r.Close()
	assert.Equal(t, 2, valid)
}
