// Package exrio stores developed display buffers as OpenEXR files.
//
// Files are single-part scanline images with R, G and B channels of HALF or
// FLOAT pixels, compressed with NONE, ZIPS or ZIP. Read accepts the same
// subset, which is enough to load anything Write produces and most simple
// RGB files written by other tools.
package exrio

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-rawdev/compression"
)

// File format errors
var (
	ErrInvalidMagic       = errors.New("exrio: not an OpenEXR file")
	ErrUnsupportedVersion = errors.New("exrio: unsupported file version")
	ErrUnsupported        = errors.New("exrio: unsupported feature")
	ErrCorrupt            = errors.New("exrio: corrupt file")
	ErrEmptyImage         = errors.New("exrio: empty display buffer")
)

const (
	magic   uint32 = 20000630
	version uint32 = 2

	// Version field flags this package does not handle.
	flagTiled     uint32 = 0x200
	flagDeep      uint32 = 0x800
	flagMultiPart uint32 = 0x1000
)

// PixelType is the storage type of a channel.
type PixelType int32

// Pixel types.
const (
	PixelTypeUint  PixelType = 0
	PixelTypeHalf  PixelType = 1
	PixelTypeFloat PixelType = 2
)

// Size returns the number of bytes per sample.
func (p PixelType) Size() int {
	if p == PixelTypeHalf {
		return 2
	}
	return 4
}

// String returns the OpenEXR name of the pixel type.
func (p PixelType) String() string {
	switch p {
	case PixelTypeUint:
		return "UINT"
	case PixelTypeHalf:
		return "HALF"
	case PixelTypeFloat:
		return "FLOAT"
	}
	return fmt.Sprintf("PixelType(%d)", int32(p))
}

// Compression identifies a chunk compression method.
type Compression uint8

// Compression methods. Values match the OpenEXR attribute encoding.
const (
	CompressionNone Compression = 0
	CompressionZIPS Compression = 2
	CompressionZIP  Compression = 3
)

// LinesPerChunk returns the number of scanlines stored per chunk.
func (c Compression) LinesPerChunk() int {
	if c == CompressionZIP {
		return 16
	}
	return 1
}

// String returns the OpenEXR name of the compression method.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZIPS:
		return "zips"
	case CompressionZIP:
		return "zip"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression parses "none", "zips" or "zip".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none":
		return CompressionNone, nil
	case "zips":
		return CompressionZIPS, nil
	case "zip":
		return CompressionZIP, nil
	}
	return 0, fmt.Errorf("%w: compression %q", ErrUnsupported, s)
}

// Options configures Write.
type Options struct {
	PixelType   PixelType
	Compression Compression
	Level       compression.Level

	// Comments is stored in the standard "comments" attribute when set.
	Comments string
}

// DefaultOptions returns HALF pixels with ZIP compression.
func DefaultOptions() *Options {
	return &Options{
		PixelType:   PixelTypeHalf,
		Compression: CompressionZIP,
		Level:       compression.LevelDefault,
	}
}

// Header describes a file read by Read.
type Header struct {
	Width       int
	Height      int
	PixelType   PixelType
	Compression Compression
	Channels    []string
	LineOrder   uint8
	Comments    string
}

// channelSlot names a stored channel and its component index in an RGB
// triple.
type channelSlot struct {
	name string
	comp int
}

// channels lists the stored channels in file order (sorted by name).
var channels = []channelSlot{
	{"B", 2},
	{"G", 1},
	{"R", 0},
}
