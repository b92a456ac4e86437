//go:build unix

package rawutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// Packed is a read-only view of a packed sensor dump.
type Packed struct {
	data   []byte
	file   *os.File
	mapped bool
}

// OpenPacked memory-maps the named file read-only.
func OpenPacked(path string) (*Packed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Packed{file: f}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Packed{data: data, file: f, mapped: true}, nil
}

// Bytes returns the file contents. The slice is only valid until Close and
// must not be written to.
func (p *Packed) Bytes() []byte {
	return p.data
}

// Close unmaps the file and closes the underlying file handle.
func (p *Packed) Close() error {
	if p.mapped {
		if err := unix.Munmap(p.data); err != nil {
			return err
		}
		p.mapped = false
	}
	p.data = nil
	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}
