package raw

import "errors"

// Decode errors
var (
	ErrUnsupportedBitDepth = errors.New("raw: unsupported bit depth")
	ErrBufferTooSmall      = errors.New("raw: packed buffer too small")
	ErrInvalidDimensions   = errors.New("raw: invalid image dimensions")
)

// Develop errors
var (
	ErrInvalidCalibration = errors.New("raw: invalid calibration levels")
	ErrInvalidIntensity   = errors.New("raw: invalid intensity")
	ErrSizeMismatch       = errors.New("raw: buffer size mismatch")
)

// Pack errors
var (
	ErrSampleOutOfRange = errors.New("raw: sample exceeds bit depth")
)
