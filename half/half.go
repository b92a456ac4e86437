// Package half converts between float32 and IEEE 754 binary16 values.
//
// Half-precision floats use 16 bits:
//   - 1 bit sign
//   - 5 bits exponent (bias of 15)
//   - 10 bits mantissa (implicit leading 1 for normalized values)
//
// Developed display buffers are written to OpenEXR as HALF channels, which
// holds display-referred values in [0, 1] with ample precision at half the
// size of FLOAT channels.
package half

import "math"

// Half is an IEEE 754 binary16 value stored as its bit pattern.
type Half uint16

const (
	signBit      = 0x8000
	exponentMask = 0x7C00
	mantissaMask = 0x03FF

	exponentBias = 15
	maxExponent  = 31
)

// Named values.
const (
	Zero              Half = 0x0000
	One               Half = 0x3C00
	Inf               Half = 0x7C00
	NegInf            Half = 0xFC00
	NaN               Half = 0x7E00
	Max               Half = 0x7BFF // 65504
	SmallestNormal    Half = 0x0400 // 2^-14
	SmallestSubnormal Half = 0x0001 // 2^-24
)

// FromFloat32 converts f to the nearest Half, rounding ties to even.
// Values beyond the finite range become infinities.
func FromFloat32(f float32) Half {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & signBit
	abs := bits & 0x7FFFFFFF

	switch {
	case abs > 0x7F800000:
		return Half(sign | uint16(NaN) | uint16((bits&0x007FFFFF)>>13))
	case abs == 0x7F800000:
		return Half(sign | exponentMask)
	}

	exp := int(abs>>23) - 127 + exponentBias
	mantissa := abs & 0x007FFFFF

	if exp >= maxExponent {
		return Half(sign | exponentMask)
	}

	if exp <= 0 {
		// Subnormal or zero. Values below 2^-25 round to zero.
		if exp < -10 {
			return Half(sign)
		}
		mantissa |= 0x00800000
		shift := uint(14 - exp)
		h := mantissa >> shift
		rem := mantissa & (1<<shift - 1)
		halfway := uint32(1) << (shift - 1)
		if rem > halfway || (rem == halfway && h&1 != 0) {
			h++
		}
		return Half(sign | uint16(h))
	}

	// A carry out of the mantissa bumps the exponent, up to Inf.
	h := uint32(exp)<<10 | mantissa>>13
	rem := mantissa & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && h&1 != 0) {
		h++
	}
	return Half(sign | uint16(h))
}

// Float32 converts h to float32 exactly.
func (h Half) Float32() float32 {
	sign := uint32(h&signBit) << 16
	exp := uint32(h&exponentMask) >> 10
	mantissa := uint32(h & mantissaMask)

	switch exp {
	case 0:
		// Zero or subnormal: mantissa * 2^-24.
		v := float32(mantissa) * (1.0 / (1 << 24))
		return math.Float32frombits(sign | math.Float32bits(v))
	case maxExponent:
		if mantissa == 0 {
			return math.Float32frombits(sign | 0x7F800000)
		}
		return math.Float32frombits(sign | 0x7FC00000 | mantissa<<13)
	}
	return math.Float32frombits(sign | (exp-exponentBias+127)<<23 | mantissa<<13)
}

// IsNaN reports whether h is a NaN.
func (h Half) IsNaN() bool {
	return h&exponentMask == exponentMask && h&mantissaMask != 0
}

// IsInf reports whether h is an infinity of either sign.
func (h Half) IsInf() bool {
	return h&^signBit == exponentMask
}

// Bits returns the binary16 bit pattern of h.
func (h Half) Bits() uint16 {
	return uint16(h)
}

// PutFloat32s encodes src as little-endian halves into dst, which must
// hold at least 2*len(src) bytes.
func PutFloat32s(dst []byte, src []float32) {
	if len(src) == 0 {
		return
	}
	_ = dst[2*len(src)-1]
	for i, f := range src {
		h := FromFloat32(f)
		dst[2*i] = byte(h)
		dst[2*i+1] = byte(h >> 8)
	}
}

// Float32s decodes little-endian halves from src into dst.
func Float32s(dst []float32, src []byte) {
	n := len(src) / 2
	if n == 0 {
		return
	}
	_ = dst[n-1]
	for i := 0; i < n; i++ {
		dst[i] = Half(uint16(src[2*i]) | uint16(src[2*i+1])<<8).Float32()
	}
}
