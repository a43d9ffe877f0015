package sbp

// crc16Table is the standard CRC-16-CCITT (polynomial 0x1021, initial
// value 0, no reflection, no final XOR) lookup table, the same algorithm
// libswiftnav uses for SBP framing. go-crc24q only covers the 24-bit
// variant the RTCM side needs, so the 16-bit table is hand-rolled here.
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	const poly = 0x1021
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// CRC16 computes the CRC-16-CCITT of data.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = (crc << 8) ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}
