package pmbus

import (
	"errors"
	"math"
)

// ErrRange indicates a value that cannot be represented in the encoding.
var ErrRange = errors.New("pmbus: value out of range")

// DecodeLinear11 decodes a LINEAR11 word: a 5-bit two's-complement exponent
// in bits 15..11 and an 11-bit two's-complement mantissa in bits 10..0.
func DecodeLinear11(raw uint16) float64 {
	exp := int(raw >> 11)
	if exp > 15 {
		exp -= 32
	}
	mant := int(raw & 0x7ff)
	if mant > 1023 {
		mant -= 2048
	}
	return float64(mant) * math.Pow(2, float64(exp))
}

// EncodeLinear11 encodes a value as a LINEAR11 word, picking the smallest
// exponent (finest resolution) whose mantissa still fits.
func EncodeLinear11(value float64) (uint16, error) {
	for exp := -16; exp <= 15; exp++ {
		mant := int(math.Round(value / math.Pow(2, float64(exp))))
		if mant >= -1024 && mant <= 1023 {
			return uint16(exp&0x1f)<<11 | uint16(mant)&0x7ff, nil
		}
	}
	return 0, ErrRange
}

// VoutExponent extracts the LINEAR16 exponent from a VOUT_MODE byte: the low
// 5 bits, two's complement. The high 3 bits select the data format and are 0
// for linear mode.
func VoutExponent(mode byte) int {
	exp := int(mode & 0x1f)
	if exp > 15 {
		exp -= 32
	}
	return exp
}

// DecodeLinear16 decodes a LINEAR16 mantissa with the exponent supplied out
// of band (usually from VOUT_MODE).
func DecodeLinear16(mantissa uint16, exp int) float64 {
	return float64(mantissa) * math.Pow(2, float64(exp))
}

// EncodeLinear16 encodes a value as a LINEAR16 mantissa for a fixed exponent.
func EncodeLinear16(value float64, exp int) (uint16, error) {
	mant := math.Round(value / math.Pow(2, float64(exp)))
	if mant < 0 || mant > math.MaxUint16 {
		return 0, ErrRange
	}
	return uint16(mant), nil
}
