package raw

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode12Fixtures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		w    int
		swap bool
		want []float32
	}{
		{"ABCDEF", []byte{0xAB, 0xCD, 0xEF}, 2, false, []float32{0xABC, 0xDEF}},
		{"123456", []byte{0x12, 0x34, 0x56}, 2, false, []float32{0x123, 0x456}},
		{"single sample", []byte{0xFF, 0xF0}, 1, false, []float32{0xFFF}},
		{"low nibble ignored", []byte{0x80, 0x0F}, 1, false, []float32{0x800}},
		{
			"two triplets",
			[]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
			4, false,
			[]float32{0x123, 0x456, 0x789, 0xABC},
		},
		{
			// Logical bytes 12 34 56 stored as swapped words: [34 12] [00 56].
			"swapped even triplet",
			[]byte{0x34, 0x12, 0x00, 0x56},
			2, true,
			[]float32{0x123, 0x456},
		},
		{
			// The second triplet starts at logical byte 3 and straddles
			// the words [78 56] and [BC 9A].
			"swapped odd triplet",
			[]byte{0x34, 0x12, 0x78, 0x56, 0xBC, 0x9A},
			4, true,
			[]float32{0x123, 0x456, 0x789, 0xABC},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, tt.w, 1, Depth12, WithSwap(tt.swap))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.want, img.Pix); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPack12Fixtures(t *testing.T) {
	got, err := Pack([]uint16{0xABC, 0xDEF}, 2, 1, Depth12, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xAB, 0xCD, 0xEF}, got); diff != "" {
		t.Errorf("Pack mismatch (-want +got):\n%s", diff)
	}

	got, err = Pack([]uint16{0x123, 0x456, 0x789}, 3, 1, Depth12, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x12, 0x34, 0x56, 0x78, 0x90}, got); diff != "" {
		t.Errorf("Pack odd count mismatch (-want +got):\n%s", diff)
	}
}

// TestDecode12RoundTripExhaustive decodes every possible 3-byte group at
// both an even and an odd group offset, re-packs the two samples and checks
// the input bytes come back. The byte groups and the sample pairs are in
// one-to-one correspondence, so this covers all 4096x4096 pairs.
func TestDecode12RoundTripExhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive 12-bit round trip skipped in short mode")
	}

	for _, swap := range []bool{false, true} {
		for _, group := range []int{0, 1} {
			// group 1 starts at logical byte 3, an odd offset.
			n := 2 * (group + 1)
			size := RequiredSize(n, 1, Depth12, swap)
			src := make([]byte, size)
			dst := make([]byte, size)
			samples := make([]uint16, n)
			base := group * 3

			for v := 0; v < 1<<24; v++ {
				src[physical(base, swap)] = byte(v >> 16)
				src[physical(base+1, swap)] = byte(v >> 8)
				src[physical(base+2, swap)] = byte(v)

				for i := range samples {
					samples[i] = uint16(sample12(src, i, swap))
				}
				clear(dst)
				packInto(dst, samples, Depth12, swap)

				for p := base; p < base+3; p++ {
					if dst[physical(p, swap)] != src[physical(p, swap)] {
						t.Fatalf("swap=%v group=%d bytes %06x: re-packed %x, want %x",
							swap, group, v, dst, src)
					}
				}
				a, b := samples[2*group], samples[2*group+1]
				if uint32(a) != uint32(v>>12) || uint32(b) != uint32(v&0xFFF) {
					t.Fatalf("swap=%v group=%d bytes %06x: samples %03x %03x", swap, group, v, a, b)
				}
			}
		}
	}
}

func BenchmarkDecode12(b *testing.B) {
	const w, h = 1024, 1024
	data := make([]byte, PackedSize(w, h, Depth12))
	for i := range data {
		data[i] = byte(i * 31)
	}
	dst := NewImage(w, h, Depth12)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := DecodeInto(dst, data, w, h, Depth12); err != nil {
			b.Fatal(err)
		}
	}
}
