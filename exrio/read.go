package exrio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/mrjoshuak/go-rawdev/compression"
	"github.com/mrjoshuak/go-rawdev/half"
	"github.com/mrjoshuak/go-rawdev/internal/xdr"
	"github.com/mrjoshuak/go-rawdev/raw"
)

// Read decodes a scanline RGB OpenEXR file into a display buffer.
func Read(r io.Reader) (*raw.DisplayBuffer, *Header, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return decode(data)
}

// ReadFile reads the named file.
func ReadFile(path string) (*raw.DisplayBuffer, *Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return decode(data)
}

// layout is the parsed part of a header needed to locate pixel data.
type layout struct {
	header Header
	window box2i
	// comp maps file channel order to an RGB component index.
	comp []int
}

func decode(data []byte) (*raw.DisplayBuffer, *Header, error) {
	r := xdr.NewReader(data)
	l, err := readHeader(r)
	if err != nil {
		return nil, nil, corrupt(err)
	}
	h := &l.header
	if err := checkWindow(h, len(data)); err != nil {
		return nil, nil, err
	}

	lines := h.Compression.LinesPerChunk()
	n := (h.Height + lines - 1) / lines
	offsets := make([]uint64, n)
	for i := range offsets {
		if offsets[i], err = r.ReadUint64(); err != nil {
			return nil, nil, corrupt(err)
		}
	}

	buf := raw.NewDisplayBuffer(h.Width, h.Height)
	errs := make([]error, n)
	raw.ParallelFor(n, func(i int) {
		errs[i] = decodeChunk(buf, data, i, offsets[i], l)
	})
	for _, err := range errs {
		if err != nil {
			return nil, nil, corrupt(err)
		}
	}
	return buf, h, nil
}

// maxPixels caps the data window of a file accepted by Read.
const maxPixels = 1 << 28

// checkWindow rejects data windows whose pixels could not be stored in a
// file of size bytes.
func checkWindow(h *Header, size int) error {
	w, ht := int64(h.Width), int64(h.Height)
	if w > maxPixels || ht > maxPixels || w*ht > maxPixels {
		return fmt.Errorf("%w: data window %dx%d is too large", ErrCorrupt, w, ht)
	}
	need := w * ht * int64(len(channels)*h.PixelType.Size())
	limit := int64(size)
	if h.Compression != CompressionNone {
		limit *= compression.MaxInflateRatio
	}
	if need > limit {
		return fmt.Errorf("%w: data window %dx%d needs %d pixel bytes, file has %d", ErrCorrupt, w, ht, need, size)
	}
	return nil
}

func corrupt(err error) error {
	if errors.Is(err, xdr.ErrShortBuffer) || errors.Is(err, compression.ErrZIPCorrupted) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return err
}

func readHeader(r *xdr.Reader) (*layout, error) {
	m, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if m != magic {
		return nil, ErrInvalidMagic
	}
	v, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if v&0xFF != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v&0xFF)
	}
	if v&(flagTiled|flagDeep|flagMultiPart) != 0 {
		return nil, fmt.Errorf("%w: version flags %#x", ErrUnsupported, v&^0xFF)
	}

	l := &layout{}
	var chans []channel
	haveWindow := false
	for {
		attr, err := readAttribute(r)
		if err != nil {
			return nil, err
		}
		if attr == nil {
			break
		}
		switch attr.Name {
		case "channels":
			if chans, err = readChannelList(attr.Value); err != nil {
				return nil, err
			}
		case "compression":
			if len(attr.Value) != 1 {
				return nil, fmt.Errorf("%w: compression attribute", ErrCorrupt)
			}
			l.header.Compression = Compression(attr.Value[0])
		case "dataWindow":
			if l.window, err = readBox2i(attr.Value); err != nil {
				return nil, err
			}
			haveWindow = true
		case "lineOrder":
			if len(attr.Value) == 1 {
				l.header.LineOrder = attr.Value[0]
			}
		case "comments":
			l.header.Comments = string(attr.Value)
		}
	}

	if !haveWindow || l.window.width() <= 0 || l.window.height() <= 0 {
		return nil, fmt.Errorf("%w: missing or empty data window", ErrCorrupt)
	}
	l.header.Width = l.window.width()
	l.header.Height = l.window.height()

	switch l.header.Compression {
	case CompressionNone, CompressionZIPS, CompressionZIP:
	default:
		return nil, fmt.Errorf("%w: compression %v", ErrUnsupported, l.header.Compression)
	}

	if err := l.mapChannels(chans); err != nil {
		return nil, err
	}
	return l, nil
}

// mapChannels accepts exactly R, G and B with one shared pixel type.
func (l *layout) mapChannels(chans []channel) error {
	if len(chans) != 3 {
		return fmt.Errorf("%w: %d channels, want R, G, B", ErrUnsupported, len(chans))
	}
	l.comp = make([]int, len(chans))
	for i, ch := range chans {
		idx := slices.IndexFunc(channels, func(c channelSlot) bool {
			return c.name == ch.Name
		})
		if idx < 0 {
			return fmt.Errorf("%w: channel %q", ErrUnsupported, ch.Name)
		}
		if ch.XSampling != 1 || ch.YSampling != 1 {
			return fmt.Errorf("%w: subsampled channel %q", ErrUnsupported, ch.Name)
		}
		if ch.PixelType != PixelTypeHalf && ch.PixelType != PixelTypeFloat {
			return fmt.Errorf("%w: channel %q pixel type %v", ErrUnsupported, ch.Name, ch.PixelType)
		}
		if i > 0 && ch.PixelType != chans[0].PixelType {
			return fmt.Errorf("%w: mixed pixel types", ErrUnsupported)
		}
		if slices.Contains(l.comp[:i], channels[idx].comp) {
			return fmt.Errorf("%w: duplicate channel %q", ErrCorrupt, ch.Name)
		}
		l.comp[i] = channels[idx].comp
		l.header.Channels = append(l.header.Channels, ch.Name)
	}
	l.header.PixelType = chans[0].PixelType
	return nil
}

func decodeChunk(buf *raw.DisplayBuffer, data []byte, index int, offset uint64, l *layout) error {
	if offset > uint64(len(data)) {
		return fmt.Errorf("chunk offset %d: %w", offset, xdr.ErrShortBuffer)
	}
	r := xdr.NewReader(data)
	if err := r.SetPos(int(offset)); err != nil {
		return err
	}
	y, err := r.ReadInt32()
	if err != nil {
		return err
	}
	size, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if size < 0 {
		return xdr.ErrNegativeSize
	}
	payload, err := r.ReadBytes(int(size))
	if err != nil {
		return err
	}

	h := &l.header
	y0 := int(y) - int(l.window.YMin)
	lines := h.Compression.LinesPerChunk()
	// Increasing line order: chunk i starts at line i*lines.
	if y0 != index*lines {
		return fmt.Errorf("%w: chunk at line %d", ErrCorrupt, y)
	}
	y1 := min(y0+lines, h.Height)

	ps := h.PixelType.Size()
	lineBytes := len(l.comp) * h.Width * ps
	expected := (y1 - y0) * lineBytes

	pixels := payload
	if len(payload) != expected {
		if h.Compression == CompressionNone {
			return fmt.Errorf("%w: chunk at line %d has %d bytes, want %d", ErrCorrupt, y, len(payload), expected)
		}
		if pixels, err = compression.ZIPDecompress(payload, expected); err != nil {
			return err
		}
	}

	plane := make([]float32, h.Width)
	for line := y0; line < y1; line++ {
		row := buf.Row(line)
		base := (line - y0) * lineBytes
		for c, comp := range l.comp {
			src := pixels[base+c*h.Width*ps : base+(c+1)*h.Width*ps]
			if h.PixelType == PixelTypeHalf {
				half.Float32s(plane, src)
			} else {
				for x := range plane {
					plane[x] = math.Float32frombits(xdr.ByteOrder.Uint32(src[x*4:]))
				}
			}
			for x, v := range plane {
				row[x*3+comp] = v
			}
		}
	}
	return nil
}
