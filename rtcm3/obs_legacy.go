package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// Field widths for the legacy (pre-MSM) GPS/GLONASS observation messages
// 1001-1004 and 1010/1012, following the same flat cell-table idiom as
// the MSM satellite/signal cells, applied to the legacy cell layout
// documented in librtcm's rtcm3/messages.h.
const (
	lenLegacyMsgType      = 12
	lenLegacySyncGNSS     = 1
	lenLegacySatCount     = 5
	lenLegacySmoothing    = 1
	lenLegacySmoothInterval = 3

	lenLegacySatID        = 6
	lenLegacyCodeInd      = 1
	lenL1Pseudorange      = 24
	lenL1PhaserangeDiff   = 20
	lenL1LockTime         = 7
	lenL1Ambiguity        = 8
	lenL1CNR              = 8
	lenL2CodeInd          = 2
	lenL2PseudorangeDiff  = 14
	lenL2PhaserangeDiff   = 20
	lenL2LockTime         = 7
	lenL2CNR              = 8
)

// LegacyCell is one satellite's observation in a legacy (non-MSM) message.
// Which fields are populated depends on the message type: 1001/1002 carry
// only L1, 1003/1004 carry L1 and L2.
type LegacyCell struct {
	SatelliteID   uint
	GLONASSFCN    int // only meaningful for 1010/1012; RTCM convention (0-13, 255 unknown)
	L1CodeIndicator bool
	L1Pseudorange   uint
	L1PhaserangeDiff int64
	L1LockTime      uint
	L1Ambiguity     uint // only 1002/1004/1010/1012
	L1CNR           uint // only 1002/1004/1010/1012
	HasL2           bool
	L2CodeIndicator uint
	L2PseudorangeDiff int64
	L2PhaserangeDiff  int64
	L2LockTime        uint
	L2CNR             uint
}

// LegacyObservation is a decoded message 1001-1004 or 1010/1012.
type LegacyObservation struct {
	MessageType      int
	Constellation    Constellation
	StationID        uint
	EpochTimeMS      uint
	SyncGNSSFlag     bool
	SmoothingInterval uint
	Cells            []LegacyCell
}

func legacyHasExtended(messageType int) bool {
	switch messageType {
	case MsgType1002, MsgType1004, MsgType1010, MsgType1012:
		return true
	}
	return false
}

func legacyHasL2(messageType int) bool {
	switch messageType {
	case MsgType1003, MsgType1004, MsgType1012:
		return true
	}
	return false
}

func legacyConstellation(messageType int) Constellation {
	switch messageType {
	case MsgType1001, MsgType1002, MsgType1003, MsgType1004:
		return ConstellationGPS
	case MsgType1010, MsgType1012:
		return ConstellationGLONASS
	default:
		return ConstellationUnknown
	}
}

// DecodeLegacyObservation decodes a message 1001-1004 or 1010/1012 payload.
func DecodeLegacyObservation(payload []byte) (*LegacyObservation, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenLegacyMsgType)
	if err != nil {
		return nil, err
	}
	messageType := int(rawType)
	switch messageType {
	case MsgType1001, MsgType1002, MsgType1003, MsgType1004, MsgType1010, MsgType1012:
	default:
		return nil, fmt.Errorf("rtcm3: message %d is not a legacy observation message", messageType)
	}

	msg := &LegacyObservation{MessageType: messageType, Constellation: legacyConstellation(messageType)}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	epoch, err := r.DecodeU(27)
	if err != nil {
		return nil, err
	}
	msg.EpochTimeMS = uint(epoch)

	sync, err := r.DecodeU(lenLegacySyncGNSS)
	if err != nil {
		return nil, err
	}
	msg.SyncGNSSFlag = sync == 1

	satCount, err := r.DecodeU(lenLegacySatCount)
	if err != nil {
		return nil, err
	}

	if _, err := r.DecodeU(lenLegacySmoothing); err != nil {
		return nil, err
	}
	interval, err := r.DecodeU(lenLegacySmoothInterval)
	if err != nil {
		return nil, err
	}
	msg.SmoothingInterval = uint(interval)

	extended := legacyHasExtended(messageType)
	hasL2 := legacyHasL2(messageType)
	isGLONASS := msg.Constellation == ConstellationGLONASS

	for i := uint(0); i < satCount; i++ {
		cell := LegacyCell{HasL2: hasL2}

		satID, err := r.DecodeU(lenLegacySatID)
		if err != nil {
			return nil, err
		}
		cell.SatelliteID = uint(satID)

		if isGLONASS {
			fcn, err := r.DecodeU(5)
			if err != nil {
				return nil, err
			}
			cell.GLONASSFCN = int(fcn)
		}

		codeInd, err := r.DecodeU(lenLegacyCodeInd)
		if err != nil {
			return nil, err
		}
		cell.L1CodeIndicator = codeInd == 1

		pr, err := r.DecodeU(lenL1Pseudorange)
		if err != nil {
			return nil, err
		}
		cell.L1Pseudorange = uint(pr)

		phDiff, err := r.DecodeS(lenL1PhaserangeDiff)
		if err != nil {
			return nil, err
		}
		cell.L1PhaserangeDiff = phDiff

		lock, err := r.DecodeU(lenL1LockTime)
		if err != nil {
			return nil, err
		}
		cell.L1LockTime = uint(lock)

		if extended {
			amb, err := r.DecodeU(lenL1Ambiguity)
			if err != nil {
				return nil, err
			}
			cell.L1Ambiguity = uint(amb)

			cnr, err := r.DecodeU(lenL1CNR)
			if err != nil {
				return nil, err
			}
			cell.L1CNR = uint(cnr)
		}

		if hasL2 {
			l2CodeInd, err := r.DecodeU(lenL2CodeInd)
			if err != nil {
				return nil, err
			}
			cell.L2CodeIndicator = uint(l2CodeInd)

			l2PRDiff, err := r.DecodeS(lenL2PseudorangeDiff)
			if err != nil {
				return nil, err
			}
			cell.L2PseudorangeDiff = l2PRDiff

			l2PhDiff, err := r.DecodeS(lenL2PhaserangeDiff)
			if err != nil {
				return nil, err
			}
			cell.L2PhaserangeDiff = l2PhDiff

			l2Lock, err := r.DecodeU(lenL2LockTime)
			if err != nil {
				return nil, err
			}
			cell.L2LockTime = uint(l2Lock)

			if extended {
				l2CNR, err := r.DecodeU(lenL2CNR)
				if err != nil {
					return nil, err
				}
				cell.L2CNR = uint(l2CNR)
			}
		}

		msg.Cells = append(msg.Cells, cell)
	}

	return msg, nil
}

// Encode packs msg back into its legacy observation payload, the mirror
// image of DecodeLegacyObservation.
func (msg *LegacyObservation) Encode() ([]byte, error) {
	extended := legacyHasExtended(msg.MessageType)
	hasL2 := legacyHasL2(msg.MessageType)
	isGLONASS := msg.Constellation == ConstellationGLONASS

	w := bitstream.NewWriter(32)
	w.EncodeU(uint64(msg.MessageType), lenLegacyMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	w.EncodeU(uint64(msg.EpochTimeMS), 27)
	w.EncodeU(boolToU(msg.SyncGNSSFlag), lenLegacySyncGNSS)
	w.EncodeU(uint64(len(msg.Cells)), lenLegacySatCount)
	w.EncodeU(0, lenLegacySmoothing)
	w.EncodeU(uint64(msg.SmoothingInterval), lenLegacySmoothInterval)

	for _, cell := range msg.Cells {
		w.EncodeU(uint64(cell.SatelliteID), lenLegacySatID)
		if isGLONASS {
			w.EncodeU(uint64(cell.GLONASSFCN), 5)
		}
		w.EncodeU(boolToU(cell.L1CodeIndicator), lenLegacyCodeInd)
		w.EncodeU(uint64(cell.L1Pseudorange), lenL1Pseudorange)
		w.EncodeS(cell.L1PhaserangeDiff, lenL1PhaserangeDiff)
		w.EncodeU(uint64(cell.L1LockTime), lenL1LockTime)
		if extended {
			w.EncodeU(uint64(cell.L1Ambiguity), lenL1Ambiguity)
			w.EncodeU(uint64(cell.L1CNR), lenL1CNR)
		}
		if hasL2 {
			w.EncodeU(uint64(cell.L2CodeIndicator), lenL2CodeInd)
			w.EncodeS(cell.L2PseudorangeDiff, lenL2PseudorangeDiff)
			w.EncodeS(cell.L2PhaserangeDiff, lenL2PhaserangeDiff)
			w.EncodeU(uint64(cell.L2LockTime), lenL2LockTime)
			if extended {
				w.EncodeU(uint64(cell.L2CNR), lenL2CNR)
			}
		}
	}

	w.PadToByte()
	return w.Bytes(), nil
}
