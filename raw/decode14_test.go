package raw

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode14SingleSampleBits(t *testing.T) {
	// Each row sets one sample of the group to all ones.
	tests := []struct {
		samples []uint16
		bytes   []byte
	}{
		{[]uint16{0x3FFF, 0, 0, 0}, []byte{0xFF, 0xFC, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{[]uint16{0, 0x3FFF, 0, 0}, []byte{0x00, 0x03, 0xFF, 0xF0, 0x00, 0x00, 0x00}},
		{[]uint16{0, 0, 0x3FFF, 0}, []byte{0x00, 0x00, 0x00, 0x0F, 0xFF, 0xC0, 0x00}},
		{[]uint16{0, 0, 0, 0x3FFF}, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x3F, 0xFF}},
		{[]uint16{0x3FFF, 0x3FFF, 0x3FFF, 0x3FFF}, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		img, err := Decode(tt.bytes, 4, 1, Depth14)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(toFloat(tt.samples), img.Pix); diff != "" {
			t.Errorf("Decode(% x) mismatch (-want +got):\n%s", tt.bytes, diff)
		}

		packed, err := Pack(tt.samples, 4, 1, Depth14, false)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tt.bytes, packed); diff != "" {
			t.Errorf("Pack(%x) mismatch (-want +got):\n%s", tt.samples, diff)
		}
	}
}

func TestDecode14PartialGroup(t *testing.T) {
	samples := []uint16{0x2AAA, 0x1555, 0x3C3C}
	data, err := Pack(samples, 3, 1, Depth14, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 6 {
		t.Fatalf("len(Pack) = %d, want 6", len(data))
	}
	img, err := Decode(data, 3, 1, Depth14)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(toFloat(samples), img.Pix); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestDecode14RoundTripRandom decodes random 7-byte groups at even and odd
// group offsets, with and without swap, and checks that re-packing the four
// samples reproduces the group.
func TestDecode14RoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(14, 7))
	iterations := 200000
	if testing.Short() {
		iterations = 5000
	}

	for _, swap := range []bool{false, true} {
		for _, group := range []int{0, 1} {
			// group 1 starts at logical byte 7, an odd offset.
			n := 4 * (group + 1)
			size := RequiredSize(n, 1, Depth14, swap)
			src := make([]byte, size)
			dst := make([]byte, size)
			samples := make([]uint16, n)
			base := group * 7

			for it := 0; it < iterations; it++ {
				for p := base; p < base+7; p++ {
					src[physical(p, swap)] = byte(rng.UintN(256))
				}
				for i := range samples {
					samples[i] = uint16(sample14(src, i, swap))
				}
				clear(dst)
				packInto(dst, samples, Depth14, swap)
				if diff := cmp.Diff(src, dst); diff != "" {
					t.Fatalf("swap=%v group=%d: round trip mismatch:\n%s", swap, group, diff)
				}
			}
		}
	}
}

func BenchmarkDecode14(b *testing.B) {
	const w, h = 1024, 1024
	data := make([]byte, PackedSize(w, h, Depth14))
	for i := range data {
		data[i] = byte(i * 17)
	}
	dst := NewImage(w, h, Depth14)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := DecodeInto(dst, data, w, h, Depth14); err != nil {
			b.Fatal(err)
		}
	}
}
