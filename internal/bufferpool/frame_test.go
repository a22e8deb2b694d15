package bufferpool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kodenova/bufmgr/internal/storage"
)

func TestFrameDescriptorSetAndClear(t *testing.T) {
	var d frameDescriptor
	d.frameNo = 3
	var file storage.File

	d.set(&file, 7)
	assert.True(t, d.valid)
	assert.Equal(t, &file, d.file)
	assert.Equal(t, uint32(7), d.pageNo)
	assert.Equal(t, 1, d.pinCount)
	assert.False(t, d.dirty)
	assert.True(t, d.refBit)

	d.clear()
	assert.False(t, d.valid)
	assert.Nil(t, d.file)
	assert.Equal(t, 3, d.frameNo, "clear must preserve the frame's own number")
}

func TestFrameDescriptorPrintIncludesKeyFields(t *testing.T) {
	var d frameDescriptor
	d.frameNo = 1
	var file storage.File
	d.set(&file, 42)

	var buf bytes.Buffer
	d.print(&buf)
	out := buf.String()
	assert.Contains(t, out, "frame=1")
	assert.Contains(t, out, "page=42")
	assert.Contains(t, out, "valid=true")
}

func TestNewFrameTableAllocatesDistinctBuffers(t *testing.T) {
	ft := newFrameTable(3)
	assert.Equal(t, 3, ft.len())
	for i := range ft.pages {
		for j := range ft.pages {
			if i == j {
				continue
			}
			assert.NotSame(t, ft.pages[i], ft.pages[j])
		}
	}
}
