package rtcm3

import (
	"bytes"
	"testing"
)

func buildFrame(t *testing.T, messageType int, extraPayload []byte) []byte {
	t.Helper()
	payload := append([]byte{byte(messageType >> 4), byte(messageType<<4) & 0xf0}, extraPayload...)
	frame, err := Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return frame
}

func TestScannerRoundTripsSingleFrame(t *testing.T) {
	frame := buildFrame(t, MsgType1005, []byte{1, 2, 3, 4})

	s := NewScanner()
	s.Write(frame)

	got, ok := s.Next()
	if !ok {
		t.Fatal("expected a frame")
	}
	if got.MessageType != MsgType1005 {
		t.Fatalf("got message type %d", got.MessageType)
	}
	if _, ok := s.Next(); ok {
		t.Fatal("expected no more frames")
	}
}

func TestScannerHandlesSplitWrites(t *testing.T) {
	frame := buildFrame(t, MsgType1077, bytes.Repeat([]byte{0xaa}, 30))

	s := NewScanner()
	for _, b := range frame {
		s.Write([]byte{b})
		if frame, ok := s.Next(); ok {
			if frame.MessageType != MsgType1077 {
				t.Fatalf("got message type %d", frame.MessageType)
			}
			return
		}
	}
	t.Fatal("never assembled a complete frame")
}

func TestScannerSkipsJunkBeforePreamble(t *testing.T) {
	frame := buildFrame(t, MsgType1005, []byte{9, 9, 9})
	input := append([]byte{0x00, 0xff, 0x7e}, frame...)

	s := NewScanner()
	s.Write(input)

	got, ok := s.Next()
	if !ok || got.MessageType != MsgType1005 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestScannerResyncsAfterCorruptedFrame(t *testing.T) {
	frame1 := buildFrame(t, MsgType1005, []byte{1, 2})
	frame2 := buildFrame(t, MsgType1006, []byte{3, 4})

	corrupted := append([]byte(nil), frame1...)
	corrupted[len(corrupted)-1] ^= 0xff // flip a CRC byte

	s := NewScanner()
	s.Write(corrupted)
	s.Write(frame2)

	got, ok := s.Next()
	if !ok {
		t.Fatal("expected scanner to recover and find frame2")
	}
	if got.MessageType != MsgType1006 {
		t.Fatalf("got message type %d, want %d", got.MessageType, MsgType1006)
	}
}

func TestScannerExtractsMultipleFramesFromOneWrite(t *testing.T) {
	frame1 := buildFrame(t, MsgType1001, []byte{1})
	frame2 := buildFrame(t, MsgType1002, []byte{2})

	s := NewScanner()
	s.Write(append(frame1, frame2...))

	first, ok := s.Next()
	if !ok || first.MessageType != MsgType1001 {
		t.Fatalf("first frame: %+v ok=%v", first, ok)
	}
	second, ok := s.Next()
	if !ok || second.MessageType != MsgType1002 {
		t.Fatalf("second frame: %+v ok=%v", second, ok)
	}
}

func TestScannerIncompleteFrameWaitsForMoreData(t *testing.T) {
	frame := buildFrame(t, MsgType1005, []byte{1, 2, 3})

	s := NewScanner()
	s.Write(frame[:len(frame)-2])
	if _, ok := s.Next(); ok {
		t.Fatal("expected incomplete frame to not parse")
	}
	s.Write(frame[len(frame)-2:])
	if _, ok := s.Next(); !ok {
		t.Fatal("expected frame to complete once remaining bytes arrive")
	}
}
