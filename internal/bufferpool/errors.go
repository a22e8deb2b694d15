package bufferpool

import (
	"errors"
	"fmt"

	"github.com/kodenova/bufmgr/internal/storage"
)

// ErrBufferExceeded is returned when every frame is pinned and the buffer
// manager has no candidate to evict.
var ErrBufferExceeded = errors.New("bufferpool: all frames pinned, buffer exceeded")

func filenameOf(f *storage.File) string {
	if f == nil {
		return "-"
	}
	return f.Filename()
}

// PageNotPinnedError is returned by UnpinPage when the page is resident
// but has a pin count of zero.
type PageNotPinnedError struct {
	Filename string
	PageNo   uint32
	FrameNo  int
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q (frame %d) is not pinned", e.PageNo, e.Filename, e.FrameNo)
}

// PagePinnedError is returned by FlushFile when a frame belonging to the
// target file still has an outstanding pin.
type PagePinnedError struct {
	Filename string
	PageNo   uint32
	FrameNo  int
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q (frame %d) is pinned", e.PageNo, e.Filename, e.FrameNo)
}

// BadBufferError reports a frame whose descriptor is in a state the
// buffer manager does not know how to handle.
type BadBufferError struct {
	FrameNo int
	Dirty   bool
	Valid   bool
	RefBit  bool
}

func (e *BadBufferError) Error() string {
	return fmt.Sprintf("bufferpool: frame %d is in a bad state (valid=%t dirty=%t ref=%t)",
		e.FrameNo, e.Valid, e.Dirty, e.RefBit)
}

// HashNotFoundError is returned by the page directory when a (file,
// page_no) pair has no entry. On the hot read path this is not surfaced
// as an error to callers of ReadPage — it's the ordinary signal for a
// buffer miss — but UnpinPage propagates it, since unpinning a page the
// directory has no record of is a caller mistake. FlushFile and
// DisposePage do not return it.
type HashNotFoundError struct {
	File   *storage.File
	PageNo uint32
}

func (e *HashNotFoundError) Error() string {
	return fmt.Sprintf("bufferpool: no entry for page %d of %q", e.PageNo, filenameOf(e.File))
}

// HashAlreadyPresentError is returned by the page directory's insert when
// the (file, page_no) pair already has an entry.
type HashAlreadyPresentError struct {
	File   *storage.File
	PageNo uint32
}

func (e *HashAlreadyPresentError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q already has a directory entry", e.PageNo, filenameOf(e.File))
}
