package storage

// File is the buffer manager's view of one logical on-disk file: read and
// write individual pages, allocate fresh ones, and retire old ones. It owns
// no page-sized buffers of its own — callers (the buffer manager's frame
// pool) supply the backing storage for every read.
type File struct {
	sm   *StorageManager
	fs   FileSet
	name string

	allocated map[uint32]bool
	free      freelist
	next      uint32
}

// OpenFile prepares a File backed by fs under the given name, scanning
// existing segments to determine which page numbers are already allocated.
func OpenFile(sm *StorageManager, fs FileSet, name string) (*File, error) {
	count, err := sm.CountPages(fs)
	if err != nil {
		return nil, err
	}
	allocated := make(map[uint32]bool, count)
	for i := uint32(0); i < count; i++ {
		allocated[i] = true
	}
	return &File{
		sm:        sm,
		fs:        fs,
		name:      name,
		allocated: allocated,
		free:      newFreelist(),
		next:      count,
	}, nil
}

func (f *File) Filename() string { return f.name }

// ReadPageInto loads pageNo's bytes into dst's backing buffer in place.
// dst keeps its identity; only its contents change.
func (f *File) ReadPageInto(pageNo uint32, dst *Page) error {
	if !f.allocated[pageNo] {
		return &InvalidPageError{PageNo: pageNo, Filename: f.name}
	}
	if err := f.sm.ReadPage(f.fs, int32(pageNo), dst.Buf); err != nil {
		return err
	}
	if dst.IsUninitialized() {
		dst.init(pageNo)
	}
	return nil
}

// WritePage persists p's current contents to p's own page number.
func (f *File) WritePage(p *Page) error {
	return f.sm.WritePage(f.fs, int32(p.PageID()), p.Buf)
}

// AllocatePage reserves a fresh page number, preferring a disposed one
// over extending the file, and initializes dst's buffer in place for it.
func (f *File) AllocatePage(dst *Page) (uint32, error) {
	pageNo, ok := f.free.allocate()
	if !ok {
		pageNo = f.next
		f.next++
	}
	dst.init(pageNo)
	f.allocated[pageNo] = true
	return pageNo, nil
}

// DeletePage retires pageNo, making it eligible for reuse by a later
// AllocatePage call, and zeroes its on-disk contents.
func (f *File) DeletePage(pageNo uint32) error {
	if !f.allocated[pageNo] {
		return &InvalidPageError{PageNo: pageNo, Filename: f.name}
	}
	delete(f.allocated, pageNo)
	f.free.free(pageNo)
	return f.sm.WritePage(f.fs, int32(pageNo), make([]byte, PageSize))
}
