package pmbus

// PEC computes the SMBus Packet Error Code over the given bytes: CRC-8 with
// polynomial x^8 + x^2 + x + 1 (0x07), initial value 0, no reflection.
func PEC(data ...[]byte) byte {
	var crc byte
	for _, chunk := range data {
		crc = pecUpdate(crc, chunk)
	}
	return crc
}

func pecUpdate(crc byte, data []byte) byte {
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// PECWriter accumulates the PEC over an incrementally written frame. The zero
// value is ready to use. Write never fails.
type PECWriter struct {
	crc byte
}

func (w *PECWriter) Write(p []byte) (int, error) {
	w.crc = pecUpdate(w.crc, p)
	return len(p), nil
}

// Sum returns the PEC over everything written so far.
func (w *PECWriter) Sum() byte { return w.crc }

// Reset discards the accumulated state.
func (w *PECWriter) Reset() { w.crc = 0 }
