package storage

import "fmt"

// InvalidPageError reports a page number that is out of range or not
// currently allocated in the named file.
type InvalidPageError struct {
	PageNo   uint32
	Filename string
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("storage: invalid page %d in file %q", e.PageNo, e.Filename)
}
