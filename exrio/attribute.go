package exrio

import (
	"fmt"

	"github.com/mrjoshuak/go-rawdev/internal/xdr"
)

// Attribute type names used by the header.
const (
	attrTypeBox2i       = "box2i"
	attrTypeChlist      = "chlist"
	attrTypeCompression = "compression"
	attrTypeFloat       = "float"
	attrTypeLineOrder   = "lineOrder"
	attrTypeString      = "string"
	attrTypeV2f         = "v2f"
)

// attribute is a raw header attribute. Value holds the encoded payload.
type attribute struct {
	Name  string
	Type  string
	Value []byte
}

// channel is one entry of a chlist attribute.
type channel struct {
	Name      string
	PixelType PixelType
	PLinear   uint8
	XSampling int32
	YSampling int32
}

// box2i is an inclusive integer rectangle.
type box2i struct {
	XMin, YMin, XMax, YMax int32
}

func (b box2i) width() int  { return int(b.XMax) - int(b.XMin) + 1 }
func (b box2i) height() int { return int(b.YMax) - int(b.YMin) + 1 }

// writeAttribute writes name, type, size and the payload produced by fn.
func writeAttribute(w *xdr.BufferWriter, name, typ string, fn func(v *xdr.BufferWriter)) {
	w.WriteString(name)
	w.WriteString(typ)

	// Write value to temporary buffer to get size
	v := xdr.NewBufferWriter(64)
	fn(v)
	w.WriteInt32(int32(v.Len()))
	w.WriteBytes(v.Bytes())
}

// readAttribute reads a single attribute.
// Returns nil when the header terminator (empty name) is reached.
func readAttribute(r *xdr.Reader) (*attribute, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	typ, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: attribute %q has negative size", ErrCorrupt, name)
	}
	value, err := r.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	return &attribute{Name: name, Type: typ, Value: value}, nil
}

func writeChannelList(w *xdr.BufferWriter, chans []channel) {
	for _, ch := range chans {
		w.WriteString(ch.Name)
		w.WriteInt32(int32(ch.PixelType))
		w.WriteUint8(ch.PLinear)
		w.WriteBytes([]byte{0, 0, 0})
		w.WriteInt32(ch.XSampling)
		w.WriteInt32(ch.YSampling)
	}
	w.WriteUint8(0)
}

func readChannelList(value []byte) ([]channel, error) {
	r := xdr.NewReader(value)
	var chans []channel
	for {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if name == "" {
			return chans, nil
		}
		var ch channel
		ch.Name = name
		pt, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		ch.PixelType = PixelType(pt)
		if ch.PLinear, err = r.ReadUint8(); err != nil {
			return nil, err
		}
		if err := r.Skip(3); err != nil {
			return nil, err
		}
		if ch.XSampling, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if ch.YSampling, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		chans = append(chans, ch)
	}
}

func writeBox2i(w *xdr.BufferWriter, b box2i) {
	w.WriteInt32(b.XMin)
	w.WriteInt32(b.YMin)
	w.WriteInt32(b.XMax)
	w.WriteInt32(b.YMax)
}

func readBox2i(value []byte) (box2i, error) {
	r := xdr.NewReader(value)
	var b box2i
	var err error
	if b.XMin, err = r.ReadInt32(); err != nil {
		return b, err
	}
	if b.YMin, err = r.ReadInt32(); err != nil {
		return b, err
	}
	if b.XMax, err = r.ReadInt32(); err != nil {
		return b, err
	}
	if b.YMax, err = r.ReadInt32(); err != nil {
		return b, err
	}
	return b, nil
}
