package sbp

import "encoding/binary"

// Frame is one complete, CRC-verified SBP frame.
type Frame struct {
	MessageType uint16
	SenderID    uint16
	Payload     []byte
}

// Scanner extracts complete, CRC-verified SBP frames from a byte stream
// that may arrive in arbitrary chunks. It is the structural mirror of
// rtcm3.Scanner: push bytes in with Write, pull frames out with Next,
// resync by one byte on a CRC mismatch so a single corrupted byte never
// wedges the stream.
type Scanner struct {
	fifo []byte
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{fifo: make([]byte, 0, 4096)}
}

// Write appends bytes to the scanner's internal FIFO.
func (s *Scanner) Write(p []byte) {
	s.fifo = append(s.fifo, p...)
}

// Buffered returns the number of unconsumed bytes held in the FIFO.
func (s *Scanner) Buffered() int {
	return len(s.fifo)
}

// Next extracts the next complete, CRC-valid frame from the FIFO.
func (s *Scanner) Next() (Frame, bool) {
	for {
		idx := -1
		for i, b := range s.fifo {
			if b == Preamble {
				idx = i
				break
			}
		}
		if idx < 0 {
			s.fifo = s.fifo[:0]
			return Frame{}, false
		}
		if idx > 0 {
			s.fifo = s.fifo[idx:]
		}
		if len(s.fifo) < 6 {
			return Frame{}, false
		}

		messageType := binary.LittleEndian.Uint16(s.fifo[1:3])
		senderID := binary.LittleEndian.Uint16(s.fifo[3:5])
		payloadLen := int(s.fifo[5])
		total := FrameOverhead + payloadLen

		if len(s.fifo) < total {
			return Frame{}, false
		}

		candidate := s.fifo[:total]
		if !verifyCRC(candidate) {
			s.fifo = s.fifo[1:]
			continue
		}

		payload := make([]byte, payloadLen)
		copy(payload, candidate[6:6+payloadLen])
		s.fifo = s.fifo[total:]

		return Frame{MessageType: messageType, SenderID: senderID, Payload: payload}, true
	}
}

func verifyCRC(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	body := frame[:len(frame)-2]
	want := binary.LittleEndian.Uint16(frame[len(frame)-2:])
	return CRC16(body[1:]) == want // CRC covers type+sender+len+payload, not the preamble byte.
}

// Encode packs a message type, sender ID and payload into a complete SBP
// frame, the mirror image of Scanner.Next's decode path.
func Encode(messageType, senderID uint16, payload []byte) []byte {
	frame := make([]byte, 0, FrameOverhead+len(payload))
	frame = append(frame, Preamble)
	frame = binary.LittleEndian.AppendUint16(frame, messageType)
	frame = binary.LittleEndian.AppendUint16(frame, senderID)
	frame = append(frame, byte(len(payload)))
	frame = append(frame, payload...)
	crc := CRC16(frame[1:])
	frame = binary.LittleEndian.AppendUint16(frame, crc)
	return frame
}
