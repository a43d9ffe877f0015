package bitstream

import "github.com/goblimey/go-crc24q/crc24q"

// CRC24Q computes the RTCM-3 CRC (generator polynomial 0x1864CFB, initial
// value 0, no reflection, no final XOR) over data, returning it as a 24-bit
// value in the low three bytes of the result.
//
// The teacher wraps the same library the same way in
// rtcm/handler.CheckCRC; this just exposes the raw 24-bit value instead of
// doing the header/payload length bookkeeping, so both the RTCM frame
// encoder and decoder can share one call.
func CRC24Q(data []byte) uint32 {
	hash := crc24q.Hash(data)
	return uint32(crc24q.HiByte(hash))<<16 |
		uint32(crc24q.MiByte(hash))<<8 |
		uint32(crc24q.LoByte(hash))
}

// AppendCRC24Q appends the big-endian 3-byte CRC-24Q of data to data and
// returns the result.
func AppendCRC24Q(data []byte) []byte {
	crc := CRC24Q(data)
	return append(data, byte(crc>>16), byte(crc>>8), byte(crc))
}

// VerifyCRC24Q reports whether the last three bytes of frame are the
// correct CRC-24Q of the preceding bytes. frame must be at least 3 bytes.
func VerifyCRC24Q(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	body := frame[:len(frame)-3]
	want := frame[len(frame)-3:]
	crc := CRC24Q(body)
	return byte(crc>>16) == want[0] && byte(crc>>8) == want[1] && byte(crc) == want[2]
}
