//go:build !unix

package rawutil

import "os"

// Packed is a read-only view of a packed sensor dump.
type Packed struct {
	data []byte
}

// OpenPacked reads the named file into memory.
func OpenPacked(path string) (*Packed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Packed{data: data}, nil
}

// Bytes returns the file contents.
func (p *Packed) Bytes() []byte {
	return p.data
}

// Close releases the contents.
func (p *Packed) Close() error {
	p.data = nil
	return nil
}
