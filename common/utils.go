package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Uint32sToBytes encodes values as consecutive little-endian uint32s, the layout of a
// GPU index buffer.
//
// Parameters:
//   - values: the values to encode
//
// Returns:
//   - []byte: a new buffer of 4*len(values) bytes, or nil if values is empty
func Uint32sToBytes(values []uint32) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// PutMat4 writes m into buf as 16 little-endian float32 values in column-major order.
// buf must hold at least 64 bytes.
//
// Parameters:
//   - buf: the destination buffer
//   - m: the matrix to encode
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(m[i]))
	}
}

// PutVec4 writes v into buf as 4 little-endian float32 values.
// buf must hold at least 16 bytes.
//
// Parameters:
//   - buf: the destination buffer
//   - v: the values to encode
func PutVec4(buf []byte, v [4]float32) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(v[i]))
	}
}
