// Package bufferpool implements a single-threaded buffer pool manager: a
// fixed-size pool of in-memory frames, a page directory mapping resident
// pages to frames, and CLOCK (second-chance) replacement to decide which
// frame gives up its page when the pool is full.
package bufferpool

import (
	"errors"
	"io"

	"github.com/kodenova/bufmgr/internal/storage"
)

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the manager's default logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager is the buffer pool manager. It holds numFrames frames, evicts
// with CLOCK when the pool is full, and tracks residency in a chained
// hash table keyed by (file, page_no). It assumes a single caller at a
// time: it takes no locks of its own.
type Manager struct {
	numFrames int
	frames    *frameTable
	directory *pageDirectory
	clockHand int
	logger    Logger
}

// NewManager builds a buffer pool manager with numFrames frames. The
// clock hand starts at numFrames-1 so the first sweep begins at frame 0.
func NewManager(numFrames int, opts ...Option) *Manager {
	if numFrames <= 0 {
		numFrames = 1
	}
	m := &Manager{
		numFrames: numFrames,
		frames:    newFrameTable(numFrames),
		directory: newPageDirectory(numFrames),
		clockHand: numFrames - 1,
		logger:    defaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) advanceClock() {
	m.clockHand = (m.clockHand + 1) % m.numFrames
}

// allocBuf runs the CLOCK sweep and returns a frame number ready to hold
// a new page: either a never-used frame, or a victim whose dirty page (if
// any) has been written back and removed from the directory.
func (m *Manager) allocBuf() (int, error) {
	allPinned := true
	for i := range m.frames.descriptors {
		if m.frames.descriptors[i].pinCount == 0 {
			allPinned = false
			break
		}
	}
	if allPinned {
		return 0, ErrBufferExceeded
	}

	found := false
	for ticks := 0; ticks < 2*m.numFrames && !found; ticks++ {
		m.advanceClock()
		d := &m.frames.descriptors[m.clockHand]
		switch {
		case !d.valid:
			found = true
		case d.refBit:
			d.refBit = false
			if d.pinCount == 0 {
				found = true
			}
		case d.pinCount == 0:
			found = true
		}
	}
	if !found {
		return 0, ErrBufferExceeded
	}

	frameNo := m.clockHand
	d := &m.frames.descriptors[frameNo]
	if d.valid && d.dirty {
		if err := d.file.WritePage(m.frames.pages[frameNo]); err != nil {
			m.logger.Warn("bufferpool: write-back failed during eviction", "frame", frameNo, "err", err)
			return 0, err
		}
		d.dirty = false
		m.logger.Info("bufferpool: wrote back dirty victim", "file", d.file.Filename(), "page", d.pageNo, "frame", frameNo)
	}
	if d.valid {
		if err := m.directory.remove(d.file, d.pageNo); err != nil {
			return 0, err
		}
	}
	d.clear()
	return frameNo, nil
}

// ReadPage returns the in-memory page for (file, pageNo), pinning it. A
// resident page's pin count is bumped and its reference bit set; a
// non-resident one is loaded into a frame selected by allocBuf.
func (m *Manager) ReadPage(file *storage.File, pageNo uint32) (*storage.Page, error) {
	if frameNo, err := m.directory.lookup(file, pageNo); err == nil {
		d := &m.frames.descriptors[frameNo]
		d.pinCount++
		d.refBit = true
		return m.frames.pages[frameNo], nil
	}

	frameNo, err := m.allocBuf()
	if err != nil {
		return nil, err
	}
	page := m.frames.pages[frameNo]
	if err := file.ReadPageInto(pageNo, page); err != nil {
		return nil, err
	}
	if err := m.directory.insert(file, pageNo, frameNo); err != nil {
		return nil, err
	}
	m.frames.descriptors[frameNo].set(file, pageNo)
	return page, nil
}

// UnpinPage decrements pageNo's pin count, marking it dirty if requested.
// It fails with PageNotPinnedError if the pin count is already zero, and
// propagates HashNotFoundError if the page isn't resident at all — unlike
// the original this is adapted from, which silently ignored that case.
func (m *Manager) UnpinPage(file *storage.File, pageNo uint32, dirty bool) error {
	frameNo, err := m.directory.lookup(file, pageNo)
	if err != nil {
		return err
	}
	d := &m.frames.descriptors[frameNo]
	if dirty {
		d.dirty = true
	}
	if d.pinCount == 0 {
		return &PageNotPinnedError{Filename: file.Filename(), PageNo: pageNo, FrameNo: frameNo}
	}
	d.pinCount--
	return nil
}

// AllocPage allocates a new page in file, pins it in a frame, and
// returns its page number along with the in-memory page, initialized as
// an empty page with no tuples.
func (m *Manager) AllocPage(file *storage.File) (uint32, *storage.Page, error) {
	frameNo, err := m.allocBuf()
	if err != nil {
		return 0, nil, err
	}
	page := m.frames.pages[frameNo]
	pageNo, err := file.AllocatePage(page)
	if err != nil {
		return 0, nil, err
	}
	if err := m.directory.insert(file, pageNo, frameNo); err != nil {
		return 0, nil, err
	}
	m.frames.descriptors[frameNo].set(file, pageNo)
	return pageNo, page, nil
}

// DisposePage retires pageNo from file. If it is currently resident, its
// frame is cleared and its directory entry removed first, regardless of
// pin count — a caller disposing a page it still holds pinned is asking
// to make that pin's contents meaningless, not to be refused.
func (m *Manager) DisposePage(file *storage.File, pageNo uint32) error {
	if frameNo, err := m.directory.lookup(file, pageNo); err == nil {
		m.frames.descriptors[frameNo].clear()
		_ = m.directory.remove(file, pageNo)
	}
	return file.DeletePage(pageNo)
}

// FlushFile writes back every dirty resident page of file and evicts all
// of that file's frames, failing the whole operation before mutating
// anything if any of that file's frames is pinned or inconsistent.
func (m *Manager) FlushFile(file *storage.File) error {
	for i := range m.frames.descriptors {
		d := &m.frames.descriptors[i]
		if d.file != file {
			continue
		}
		if d.pinCount > 0 {
			return &PagePinnedError{Filename: file.Filename(), PageNo: d.pageNo, FrameNo: i}
		}
		if !d.valid {
			return &BadBufferError{FrameNo: i, Dirty: d.dirty, Valid: d.valid, RefBit: d.refBit}
		}
	}

	for i := range m.frames.descriptors {
		d := &m.frames.descriptors[i]
		if d.file != file {
			continue
		}
		if d.dirty {
			if err := file.WritePage(m.frames.pages[i]); err != nil {
				return err
			}
			d.dirty = false
		}
		_ = m.directory.remove(file, d.pageNo)
		d.clear()
	}
	m.logger.Info("bufferpool: flushed file", "file", file.Filename())
	return nil
}

// Close flushes every file that still has a valid, dirty frame resident
// in the pool. It flushes each such file exactly once.
func (m *Manager) Close() error {
	flushed := make(map[*storage.File]bool)
	for i := range m.frames.descriptors {
		d := &m.frames.descriptors[i]
		if d.valid && d.dirty && !flushed[d.file] {
			flushed[d.file] = true
			if err := m.FlushFile(d.file); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintSelf writes one diagnostic line per frame to w and returns the
// number of valid frames, matching the original BufMgr::printSelf this
// is restored from.
func (m *Manager) PrintSelf(w io.Writer) int {
	valid := 0
	for i := range m.frames.descriptors {
		m.frames.descriptors[i].print(w)
		if m.frames.descriptors[i].valid {
			valid++
		}
	}
	return valid
}

// NumFrames reports the pool's fixed capacity.
func (m *Manager) NumFrames() int { return m.numFrames }

// IsHashNotFound reports whether err is a HashNotFoundError, the signal
// a caller sees when probing for a page the directory has no record of.
func IsHashNotFound(err error) bool {
	var e *HashNotFoundError
	return errors.As(err, &e)
}
