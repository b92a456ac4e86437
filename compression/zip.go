// Package compression implements the OpenEXR ZIP and ZIPS chunk codecs.
package compression

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZIP compression errors
var (
	ErrZIPCorrupted = errors.New("compression: corrupted ZIP data")
)

// Level is a zlib compression level from -2 (Huffman only) to 9.
type Level int

// Standard compression levels
const (
	LevelHuffmanOnly Level = -2
	LevelDefault     Level = -1
	LevelBestSpeed   Level = 1
	LevelBestSize    Level = 9
)

type zlibWriterPoolItem struct {
	writer *zlib.Writer
	buf    *bytes.Buffer
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		w, _ := zlib.NewWriterLevel(buf, zlib.DefaultCompression)
		return &zlibWriterPoolItem{writer: w, buf: buf}
	},
}

// ZIPCompress filters and deflates one chunk at the default level.
func ZIPCompress(src []byte) ([]byte, error) {
	return ZIPCompressLevel(src, LevelDefault)
}

// ZIPCompressLevel filters src (Interleave then EncodePredictor) and
// deflates it with zlib at level. src is not modified.
func ZIPCompressLevel(src []byte, level Level) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	filtered := make([]byte, len(src))
	Interleave(filtered, src)
	EncodePredictor(filtered)

	if level == LevelDefault {
		item := zlibWriterPool.Get().(*zlibWriterPoolItem)
		defer zlibWriterPool.Put(item)
		item.buf.Reset()
		item.writer.Reset(item.buf)
		return deflate(item.writer, item.buf, filtered)
	}

	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, int(level))
	if err != nil {
		return nil, err
	}
	return deflate(w, buf, filtered)
}

func deflate(w *zlib.Writer, buf *bytes.Buffer, data []byte) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MaxInflateRatio bounds how many output bytes one byte of a zlib stream
// can produce. Deflate cannot exceed roughly 1032:1.
const MaxInflateRatio = 1032

// ZIPDecompress inflates src and reverses the filter. The result must be
// exactly expectedSize bytes.
func ZIPDecompress(src []byte, expectedSize int) ([]byte, error) {
	if expectedSize < 0 || int64(expectedSize) > int64(len(src))*MaxInflateRatio {
		return nil, ErrZIPCorrupted
	}
	if len(src) == 0 {
		if expectedSize != 0 {
			return nil, ErrZIPCorrupted
		}
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, ErrZIPCorrupted
	}
	defer r.Close()

	filtered := make([]byte, expectedSize)
	if _, err := io.ReadFull(r, filtered); err != nil {
		return nil, ErrZIPCorrupted
	}
	// Trailing data means the chunk is larger than declared.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, ErrZIPCorrupted
	}

	DecodePredictor(filtered)
	dst := make([]byte, expectedSize)
	Deinterleave(dst, filtered)
	return dst, nil
}
