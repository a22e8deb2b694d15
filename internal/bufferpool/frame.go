package bufferpool

import (
	"fmt"
	"io"

	"github.com/kodenova/bufmgr/internal/storage"
)

// frameDescriptor mirrors one entry of the frame descriptor table: the
// bookkeeping the buffer manager keeps about a single in-memory frame,
// independent of the page bytes it currently holds.
type frameDescriptor struct {
	frameNo  int
	valid    bool
	file     *storage.File
	pageNo   uint32
	pinCount int
	dirty    bool
	refBit   bool
}

func (d *frameDescriptor) set(file *storage.File, pageNo uint32) {
	d.valid = true
	d.file = file
	d.pageNo = pageNo
	d.pinCount = 1
	d.dirty = false
	d.refBit = true
}

// clear resets a descriptor to its "frame is free" state, preserving only
// its own frame number.
func (d *frameDescriptor) clear() {
	*d = frameDescriptor{frameNo: d.frameNo}
}

func (d *frameDescriptor) print(w io.Writer) {
	filename := "-"
	if d.file != nil {
		filename = d.file.Filename()
	}
	fmt.Fprintf(w, "frame=%-4d valid=%-5t file=%-20s page=%-8d pin=%-3d dirty=%-5t ref=%-5t\n",
		d.frameNo, d.valid, filename, d.pageNo, d.pinCount, d.dirty, d.refBit)
}

// frameTable is the dense, fixed-size array of frame descriptors plus the
// page-sized buffers they describe. The buffers are allocated once, up
// front: eviction overwrites a buffer's contents in place rather than
// swapping in a freshly allocated one, so a pinned page's backing array
// never moves out from under a caller holding it.
type frameTable struct {
	descriptors []frameDescriptor
	pages       []*storage.Page
}

func newFrameTable(numFrames int) *frameTable {
	ft := &frameTable{
		descriptors: make([]frameDescriptor, numFrames),
		pages:       make([]*storage.Page, numFrames),
	}
	for i := range ft.descriptors {
		ft.descriptors[i].frameNo = i
		ft.pages[i] = storage.NewBlankPage()
	}
	return ft
}

func (ft *frameTable) len() int { return len(ft.descriptors) }
