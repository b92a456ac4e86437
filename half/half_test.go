package half

import (
	"math"
	"testing"
)

func TestFromFloat32Bits(t *testing.T) {
	tests := []struct {
		name  string
		input float32
		want  Half
	}{
		{"zero", 0, 0x0000},
		{"negative zero", float32(math.Copysign(0, -1)), 0x8000},
		{"one", 1, One},
		{"half", 0.5, 0x3800},
		{"minus two", -2, 0xC000},
		{"tenth", 0.1, 0x2E66},
		{"max finite", 65504, Max},
		{"rounds to inf", 65520, Inf},
		{"overflow", 1e6, Inf},
		{"negative overflow", -1e6, NegInf},
		{"smallest normal", 6.103515625e-05, SmallestNormal},
		{"smallest subnormal", 5.9604645e-08, SmallestSubnormal},
		{"tie to zero", 2.9802322e-08, 0x0000},
		{"underflow", 1e-10, 0x0000},
		{"infinity", float32(math.Inf(1)), Inf},
		{"negative infinity", float32(math.Inf(-1)), NegInf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromFloat32(tt.input); got != tt.want {
				t.Errorf("FromFloat32(%v) = %#04x, want %#04x", tt.input, uint16(got), uint16(tt.want))
			}
		})
	}
}

func TestRoundToNearestEven(t *testing.T) {
	// 1 + 2^-11 lies halfway between 1 and the next half; ties go to even.
	if got := FromFloat32(1 + 1.0/2048); got != One {
		t.Errorf("1+2^-11 = %#04x, want %#04x", uint16(got), uint16(One))
	}
	// 1 + 3*2^-11 lies halfway between 0x3C01 and 0x3C02.
	if got := FromFloat32(1 + 3.0/2048); got != 0x3C02 {
		t.Errorf("1+3*2^-11 = %#04x, want 0x3c02", uint16(got))
	}
	// Carry out of the mantissa moves to the next exponent.
	if got := FromFloat32(4095.0 / 2048); got != 0x4000 {
		t.Errorf("carry = %#04x, want 0x4000", uint16(got))
	}
}

func TestFloat32ExactForEveryHalf(t *testing.T) {
	for bits := 0; bits < 1<<16; bits++ {
		h := Half(bits)
		f := h.Float32()
		if h.IsNaN() {
			if !math.IsNaN(float64(f)) {
				t.Fatalf("%#04x: NaN decoded to %v", bits, f)
			}
			if !FromFloat32(f).IsNaN() {
				t.Fatalf("%#04x: NaN did not survive round trip", bits)
			}
			continue
		}
		if back := FromFloat32(f); back != h {
			t.Fatalf("%#04x -> %v -> %#04x", bits, f, uint16(back))
		}
	}
}

func TestSpecialValues(t *testing.T) {
	if !Inf.IsInf() || !NegInf.IsInf() {
		t.Error("infinities not reported by IsInf")
	}
	if !math.IsInf(float64(NegInf.Float32()), -1) {
		t.Errorf("NegInf.Float32() = %v", NegInf.Float32())
	}
	if !NaN.IsNaN() || NaN.IsInf() {
		t.Error("NaN misclassified")
	}
	if !FromFloat32(float32(math.NaN())).IsNaN() {
		t.Error("FromFloat32(NaN) is not NaN")
	}
	if Max.Float32() != 65504 {
		t.Errorf("Max = %v, want 65504", Max.Float32())
	}
	if One.Bits() != 0x3C00 {
		t.Errorf("One.Bits() = %#04x", One.Bits())
	}
}

func TestPutFloat32s(t *testing.T) {
	src := []float32{0, 1, -2, 0.5}
	buf := make([]byte, 2*len(src))
	PutFloat32s(buf, src)

	want := []byte{0x00, 0x00, 0x00, 0x3C, 0x00, 0xC0, 0x00, 0x38}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#02x, want %#02x", i, buf[i], want[i])
		}
	}

	out := make([]float32, len(src))
	Float32s(out, buf)
	for i := range src {
		if out[i] != src[i] {
			t.Errorf("Float32s[%d] = %v, want %v", i, out[i], src[i])
		}
	}

	PutFloat32s(nil, nil)
	Float32s(nil, nil)
}

func FuzzFromFloat32(f *testing.F) {
	f.Add(float32(0))
	f.Add(float32(1))
	f.Add(float32(65504))
	f.Add(float32(65520))
	f.Add(float32(6.1e-5))
	f.Add(float32(-3.5e-7))

	f.Fuzz(func(t *testing.T, v float32) {
		h := FromFloat32(v)
		if math.IsNaN(float64(v)) {
			if !h.IsNaN() {
				t.Fatalf("NaN -> %#04x", uint16(h))
			}
			return
		}
		got := float64(h.Float32())
		if math.IsInf(got, 0) {
			if math.Abs(float64(v)) < 65520 {
				t.Fatalf("%v overflowed", v)
			}
			return
		}
		// Half keeps 11 significant bits, or an absolute 2^-25 near zero.
		tol := math.Max(math.Abs(float64(v))/2048, math.Ldexp(1, -25))
		if math.Abs(got-float64(v)) > tol {
			t.Fatalf("%v -> %v exceeds rounding error", v, got)
		}
	})
}

func BenchmarkPutFloat32s(b *testing.B) {
	src := make([]float32, 4096)
	for i := range src {
		src[i] = float32(i) / 4096
	}
	dst := make([]byte, 2*len(src))
	b.SetBytes(int64(len(dst)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PutFloat32s(dst, src)
	}
}
