package exrio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mrjoshuak/go-rawdev/compression"
	"github.com/mrjoshuak/go-rawdev/half"
	"github.com/mrjoshuak/go-rawdev/internal/xdr"
	"github.com/mrjoshuak/go-rawdev/raw"
)

// Write encodes buf as a scanline OpenEXR file. A nil opts uses
// DefaultOptions.
func Write(w io.Writer, buf *raw.DisplayBuffer, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := checkOptions(opts); err != nil {
		return err
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return ErrEmptyImage
	}
	if len(buf.Pix) != buf.Width*buf.Height*3 {
		return fmt.Errorf("%w: %d components for %dx%d", raw.ErrSizeMismatch, len(buf.Pix), buf.Width, buf.Height)
	}

	header := encodeHeader(buf.Width, buf.Height, opts)
	chunks, err := encodeChunks(buf, opts)
	if err != nil {
		return err
	}

	// Offset table
	table := xdr.NewBufferWriter(8 * len(chunks))
	offset := uint64(len(header) + 8*len(chunks))
	for _, c := range chunks {
		table.WriteUint64(offset)
		offset += uint64(len(c))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if _, err := bw.Write(table.Bytes()); err != nil {
		return err
	}
	for _, c := range chunks {
		if _, err := bw.Write(c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes buf to the named file.
func WriteFile(path string, buf *raw.DisplayBuffer, opts *Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, buf, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkOptions(opts *Options) error {
	switch opts.PixelType {
	case PixelTypeHalf, PixelTypeFloat:
	default:
		return fmt.Errorf("%w: pixel type %v", ErrUnsupported, opts.PixelType)
	}
	switch opts.Compression {
	case CompressionNone, CompressionZIPS, CompressionZIP:
	default:
		return fmt.Errorf("%w: compression %v", ErrUnsupported, opts.Compression)
	}
	return nil
}

func encodeHeader(width, height int, opts *Options) []byte {
	w := xdr.NewBufferWriter(512)
	w.WriteUint32(magic)
	w.WriteUint32(version)

	chans := make([]channel, len(channels))
	for i, c := range channels {
		chans[i] = channel{Name: c.name, PixelType: opts.PixelType, XSampling: 1, YSampling: 1}
	}
	window := box2i{XMax: int32(width - 1), YMax: int32(height - 1)}

	writeAttribute(w, "channels", attrTypeChlist, func(v *xdr.BufferWriter) {
		writeChannelList(v, chans)
	})
	if opts.Comments != "" {
		writeAttribute(w, "comments", attrTypeString, func(v *xdr.BufferWriter) {
			v.WriteBytes([]byte(opts.Comments))
		})
	}
	writeAttribute(w, "compression", attrTypeCompression, func(v *xdr.BufferWriter) {
		v.WriteUint8(uint8(opts.Compression))
	})
	writeAttribute(w, "dataWindow", attrTypeBox2i, func(v *xdr.BufferWriter) {
		writeBox2i(v, window)
	})
	writeAttribute(w, "displayWindow", attrTypeBox2i, func(v *xdr.BufferWriter) {
		writeBox2i(v, window)
	})
	writeAttribute(w, "lineOrder", attrTypeLineOrder, func(v *xdr.BufferWriter) {
		v.WriteUint8(0)
	})
	writeAttribute(w, "pixelAspectRatio", attrTypeFloat, func(v *xdr.BufferWriter) {
		v.WriteFloat32(1)
	})
	writeAttribute(w, "screenWindowCenter", attrTypeV2f, func(v *xdr.BufferWriter) {
		v.WriteFloat32(0)
		v.WriteFloat32(0)
	})
	writeAttribute(w, "screenWindowWidth", attrTypeFloat, func(v *xdr.BufferWriter) {
		v.WriteFloat32(1)
	})
	w.WriteUint8(0)
	return w.Bytes()
}

// encodeChunks builds every framed chunk {y, size, data} in parallel.
func encodeChunks(buf *raw.DisplayBuffer, opts *Options) ([][]byte, error) {
	lines := opts.Compression.LinesPerChunk()
	n := (buf.Height + lines - 1) / lines
	chunks := make([][]byte, n)
	errs := make([]error, n)

	raw.ParallelFor(n, func(i int) {
		y0 := i * lines
		y1 := min(y0+lines, buf.Height)
		data := packLines(buf, y0, y1, opts.PixelType)

		if opts.Compression != CompressionNone {
			packed, err := compression.ZIPCompressLevel(data, opts.Level)
			if err != nil {
				errs[i] = fmt.Errorf("exrio: chunk %d: %w", i, err)
				return
			}
			// Readers treat a chunk of full size as uncompressed.
			if len(packed) < len(data) {
				data = packed
			}
		}

		c := xdr.NewBufferWriter(8 + len(data))
		c.WriteInt32(int32(y0))
		c.WriteInt32(int32(len(data)))
		c.WriteBytes(data)
		chunks[i] = c.Bytes()
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// packLines lays out rows [y0, y1) channel by channel for each line.
func packLines(buf *raw.DisplayBuffer, y0, y1 int, pt PixelType) []byte {
	width := buf.Width
	size := pt.Size()
	out := make([]byte, (y1-y0)*len(channels)*width*size)
	plane := make([]float32, width)

	pos := 0
	for y := y0; y < y1; y++ {
		row := buf.Row(y)
		for _, ch := range channels {
			for x := range plane {
				plane[x] = row[x*3+ch.comp]
			}
			dst := out[pos : pos+width*size]
			if pt == PixelTypeHalf {
				half.PutFloat32s(dst, plane)
			} else {
				for x, v := range plane {
					xdr.ByteOrder.PutUint32(dst[x*4:], math.Float32bits(v))
				}
			}
			pos += width * size
		}
	}
	return out
}
