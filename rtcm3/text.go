package rtcm3

import (
	"fmt"
	"unicode/utf8"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenTextMsgType  = 12
	lenTextCount    = 7
	lenTextCharCount = 8
)

// UnicodeText is message 1029: a free-form UTF-8 text string associated
// with a station, used for operator messages. The length-prefixed
// character array follows the RTCM message layout directly.
type UnicodeText struct {
	StationID uint
	UTCDays   uint // uint16 Modified Julian Day count.
	SecondsOfDay uint
	Text      string
}

// DecodeUnicodeText decodes a message 1029 payload.
func DecodeUnicodeText(payload []byte) (*UnicodeText, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenTextMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgType1029 {
		return nil, fmt.Errorf("rtcm3: expected message 1029, got %d", rawType)
	}

	msg := &UnicodeText{}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	mjd, err := r.DecodeU(16)
	if err != nil {
		return nil, err
	}
	msg.UTCDays = uint(mjd)

	secs, err := r.DecodeU(17)
	if err != nil {
		return nil, err
	}
	msg.SecondsOfDay = uint(secs)

	charCount, err := r.DecodeU(lenTextCount)
	if err != nil {
		return nil, err
	}
	byteCount, err := r.DecodeU(lenTextCharCount)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, byteCount)
	for i := range raw {
		v, err := r.DecodeU(8)
		if err != nil {
			return nil, err
		}
		raw[i] = byte(v)
	}

	msg.Text = truncateValidUTF8(raw, int(charCount))
	return msg, nil
}

// truncateValidUTF8 drops any trailing bytes of raw that don't form a
// complete UTF-8 rune, rather than emitting the Unicode replacement
// character for a rune split across a truncated message.
func truncateValidUTF8(raw []byte, expectedRunes int) string {
	s := string(raw)
	if utf8.ValidString(s) {
		return s
	}
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// Encode packs msg back into a message 1029 payload.
func (msg *UnicodeText) Encode() ([]byte, error) {
	raw := []byte(msg.Text)
	w := bitstream.NewWriter(len(raw) + 8)
	w.EncodeU(uint64(MsgType1029), lenTextMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	w.EncodeU(uint64(msg.UTCDays), 16)
	w.EncodeU(uint64(msg.SecondsOfDay), 17)
	w.EncodeU(uint64(utf8.RuneCount(raw)), lenTextCount)
	w.EncodeU(uint64(len(raw)), lenTextCharCount)
	for _, b := range raw {
		w.EncodeU(uint64(b), 8)
	}
	w.PadToByte()
	return w.Bytes(), nil
}
