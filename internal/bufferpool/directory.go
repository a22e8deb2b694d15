package bufferpool

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/kodenova/bufmgr/internal/storage"
)

// pageKey identifies a page by the identity of the file handle that owns
// it, not by the file's name or contents — two *storage.File values that
// happen to share a filename are still distinct keys.
type pageKey struct {
	file   *storage.File
	pageNo uint32
}

func (k pageKey) hash() uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%p", k.file)
	var pn [4]byte
	binary.LittleEndian.PutUint32(pn[:], k.pageNo)
	h.Write(pn[:])
	return h.Sum64()
}

type directoryEntry struct {
	key   pageKey
	frame int
	next  *directoryEntry
}

// pageDirectory is a chained hash table mapping (file, page_no) to a frame
// number, sized the way bcache.go sizes its block-hash table: a handful of
// buckets per frame keeps chains short without needing a resize policy for
// a table whose membership never exceeds numFrames entries.
type pageDirectory struct {
	buckets []*directoryEntry
	count   int
}

func newPageDirectory(numFrames int) *pageDirectory {
	n := int(float64(numFrames)*2.4) + 1
	if n < 1 {
		n = 1
	}
	return &pageDirectory{buckets: make([]*directoryEntry, n)}
}

func (d *pageDirectory) bucketFor(k pageKey) int {
	return int(k.hash() % uint64(len(d.buckets)))
}

func (d *pageDirectory) lookup(file *storage.File, pageNo uint32) (int, error) {
	k := pageKey{file, pageNo}
	for e := d.buckets[d.bucketFor(k)]; e != nil; e = e.next {
		if e.key == k {
			return e.frame, nil
		}
	}
	return 0, &HashNotFoundError{File: file, PageNo: pageNo}
}

func (d *pageDirectory) insert(file *storage.File, pageNo uint32, frame int) error {
	k := pageKey{file, pageNo}
	b := d.bucketFor(k)
	for e := d.buckets[b]; e != nil; e = e.next {
		if e.key == k {
			return &HashAlreadyPresentError{File: file, PageNo: pageNo}
		}
	}
	d.buckets[b] = &directoryEntry{key: k, frame: frame, next: d.buckets[b]}
	d.count++
	return nil
}

func (d *pageDirectory) remove(file *storage.File, pageNo uint32) error {
	k := pageKey{file, pageNo}
	b := d.bucketFor(k)
	var prev *directoryEntry
	for e := d.buckets[b]; e != nil; e = e.next {
		if e.key == k {
			if prev == nil {
				d.buckets[b] = e.next
			} else {
				prev.next = e.next
			}
			d.count--
			return nil
		}
		prev = e
	}
	return &HashNotFoundError{File: file, PageNo: pageNo}
}
