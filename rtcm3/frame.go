package rtcm3

import (
	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// Frame is one complete, CRC-verified RTCM3 frame: the message number
// sniffed from the payload's first 12 bits, and the payload itself
// (excluding the 3-byte leader and 3-byte CRC).
type Frame struct {
	MessageType int
	Payload     []byte
}

// Scanner extracts complete, CRC-verified frames from a byte stream that may
// arrive in arbitrary chunks and may contain corrupted or non-RTCM3 bytes
// anywhere. It walks a byte-at-a-time preamble scan over a push-based
// FIFO so the caller controls I/O: Write appends bytes, Next extracts as
// many complete frames as are currently available.
//
// The scanner never loses framing on a single corrupted byte: when a
// candidate frame fails its CRC, the scanner advances by exactly one byte
// and resumes scanning from there, rather than discarding the whole
// buffered region.
type Scanner struct {
	fifo []byte
}

// NewScanner returns a Scanner with an empty FIFO pre-sized to
// DefaultFIFOSize.
func NewScanner() *Scanner {
	return &Scanner{fifo: make([]byte, 0, DefaultFIFOSize)}
}

// Write appends bytes to the scanner's internal FIFO.
func (s *Scanner) Write(p []byte) {
	s.fifo = append(s.fifo, p...)
}

// Buffered returns the number of bytes currently held, unconsumed, in the
// FIFO.
func (s *Scanner) Buffered() int {
	return len(s.fifo)
}

// Next extracts the next complete, CRC-valid frame from the FIFO, if one is
// available. It returns ok=false when the FIFO doesn't yet contain a
// complete frame - the caller should Write more bytes and try again. Bytes
// preceding a discovered preamble, and bytes of any frame whose CRC fails,
// are dropped from the FIFO as Next advances.
func (s *Scanner) Next() (frame Frame, ok bool) {
	for {
		idx := indexByte(s.fifo, Preamble)
		if idx < 0 {
			// No preamble anywhere in the buffer; none of these bytes can
			// start a frame since there's no 0xD3 at all, so drop them all.
			s.fifo = s.fifo[:0]
			return Frame{}, false
		}
		if idx > 0 {
			s.fifo = s.fifo[idx:]
		}
		if len(s.fifo) < 3 {
			return Frame{}, false
		}
		r := bitstream.NewReader(s.fifo[:3])
		_, _ = r.DecodeU(8) // preamble
		_, _ = r.DecodeU(6) // reserved
		payloadLen64, _ := r.DecodeU(10)
		payloadLen := int(payloadLen64)

		total := FrameOverhead + payloadLen
		if len(s.fifo) < total {
			return Frame{}, false
		}

		candidate := s.fifo[:total]
		if !bitstream.VerifyCRC24Q(candidate) {
			// Not a real frame start (or corrupted); resync by one byte and
			// keep scanning forward.
			s.fifo = s.fifo[1:]
			continue
		}

		payload := make([]byte, payloadLen)
		copy(payload, candidate[3:3+payloadLen])
		s.fifo = s.fifo[total:]

		messageType := sniffMessageType(payload)
		return Frame{MessageType: messageType, Payload: payload}, true
	}
}

func sniffMessageType(payload []byte) int {
	if len(payload) < 2 {
		return -1
	}
	r := bitstream.NewReader(payload)
	v, _ := r.DecodeU(12)
	return int(v)
}

func indexByte(buf []byte, b byte) int {
	for i, v := range buf {
		if v == b {
			return i
		}
	}
	return -1
}

// Encode wraps payload (a complete message body, message number included in
// its first 12 bits) in an RTCM3 frame: 3-byte leader plus 3-byte CRC-24Q
// trailer. It is the structural mirror of Scanner.Next's decode path.
func Encode(payload []byte) ([]byte, error) {
	w := bitstream.NewWriter(FrameOverhead + len(payload))
	if err := w.EncodeU(uint64(Preamble), 8); err != nil {
		return nil, err
	}
	if err := w.EncodeU(0, 6); err != nil {
		return nil, err
	}
	if err := w.EncodeU(uint64(len(payload)), 10); err != nil {
		return nil, err
	}
	frame := append(w.Bytes(), payload...)
	return bitstream.AppendCRC24Q(frame), nil
}
