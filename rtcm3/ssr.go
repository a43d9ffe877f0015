package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenSSRMsgType   = 12
	lenSSREpochTime = 20
	lenSSRUpdateInt = 4
	lenSSRMultiMsg  = 1
	lenSSRIOD       = 4
)

// SSRKind distinguishes an orbit correction message from a clock
// correction message; the pairing cache only ever holds these two kinds.
type SSRKind int

const (
	SSRKindOrbit SSRKind = iota
	SSRKindClock
)

func ssrKindOf(messageType int) (kind SSRKind, constellation Constellation, ok bool) {
	switch messageType {
	case MsgTypeSSRGPSOrbit:
		return SSRKindOrbit, ConstellationGPS, true
	case MsgTypeSSRGPSClock:
		return SSRKindClock, ConstellationGPS, true
	case MsgTypeSSRGLONASSOrbit:
		return SSRKindOrbit, ConstellationGLONASS, true
	case MsgTypeSSRGLONASSClock:
		return SSRKindClock, ConstellationGLONASS, true
	default:
		return 0, ConstellationUnknown, false
	}
}

// SSRMessage is a decoded SSR orbit or clock correction message. The
// per-satellite correction terms are preserved opaquely in Body (see
// GenericEphemeris's rationale); the fields broken out here
// (epoch/interval/IOD SSR) are exactly the ones the pairing cache needs to
// match an orbit message with its corresponding clock message.
type SSRMessage struct {
	MessageType   int
	Kind          SSRKind
	Constellation Constellation
	EpochTime     uint
	UpdateInterval uint
	MultipleMessage bool
	IODSSR        uint
	Body          []byte
}

// DecodeSSRMessage decodes the common SSR header fields from an orbit or
// clock correction message and preserves the rest opaquely.
func DecodeSSRMessage(payload []byte) (*SSRMessage, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenSSRMsgType)
	if err != nil {
		return nil, err
	}
	messageType := int(rawType)
	kind, constellation, ok := ssrKindOf(messageType)
	if !ok {
		return nil, fmt.Errorf("rtcm3: message %d is not an SSR orbit/clock message", messageType)
	}

	msg := &SSRMessage{MessageType: messageType, Kind: kind, Constellation: constellation}

	epoch, err := r.DecodeU(lenSSREpochTime)
	if err != nil {
		return nil, err
	}
	msg.EpochTime = uint(epoch)

	interval, err := r.DecodeU(lenSSRUpdateInt)
	if err != nil {
		return nil, err
	}
	msg.UpdateInterval = uint(interval)

	mm, err := r.DecodeU(lenSSRMultiMsg)
	if err != nil {
		return nil, err
	}
	msg.MultipleMessage = mm == 1

	iod, err := r.DecodeU(lenSSRIOD)
	if err != nil {
		return nil, err
	}
	msg.IODSSR = uint(iod)

	bodyStart := r.Pos()
	bodyBits := uint(len(payload)*8) - bodyStart
	body := make([]byte, (bodyBits+7)/8)
	for i := uint(0); i < bodyBits; i++ {
		bit, err := r.DecodeU(1)
		if err != nil {
			break
		}
		if bit == 1 {
			body[i/8] |= 1 << (7 - i%8)
		}
	}
	msg.Body = body

	return msg, nil
}

// Encode packs msg back into its original orbit/clock payload shape.
func (msg *SSRMessage) Encode() ([]byte, error) {
	w := bitstream.NewWriter(len(msg.Body) + 4)
	w.EncodeU(uint64(msg.MessageType), lenSSRMsgType)
	w.EncodeU(uint64(msg.EpochTime), lenSSREpochTime)
	w.EncodeU(uint64(msg.UpdateInterval), lenSSRUpdateInt)
	w.EncodeU(boolToU(msg.MultipleMessage), lenSSRMultiMsg)
	w.EncodeU(uint64(msg.IODSSR), lenSSRIOD)
	for i := 0; i < len(msg.Body)*8; i++ {
		bit := (msg.Body[i/8] >> (7 - uint(i)%8)) & 1
		w.EncodeU(uint64(bit), 1)
	}
	w.PadToByte()
	return w.Bytes(), nil
}

// matches reports whether an orbit message and a clock message describe
// the same correction epoch by tuple equality: same
// constellation, epoch time and IOD SSR. Update interval is not part of
// the match key - it can legitimately differ between the two streams.
func (msg *SSRMessage) matches(other *SSRMessage) bool {
	return msg.Constellation == other.Constellation &&
		msg.EpochTime == other.EpochTime &&
		msg.IODSSR == other.IODSSR
}

// pairSlot holds at most one pending orbit or clock message awaiting its
// counterpart, per constellation. It has no timeout: a slot is cleared
// when a genuine pair completes, and any new message that does not
// complete the pair displaces whatever the slot held (a fresh orbit
// message always supersedes a stale one still waiting for its clock).
type pairSlot struct {
	pendingOrbit *SSRMessage
	pendingClock *SSRMessage
}

// PairingCache matches SSR orbit and clock correction messages per
// constellation, one tagged-variant slot per constellation, the same
// matching shape an observation adjuster's message matcher uses.
type PairingCache struct {
	slots map[Constellation]*pairSlot
}

// NewPairingCache returns an empty PairingCache.
func NewPairingCache() *PairingCache {
	return &PairingCache{slots: make(map[Constellation]*pairSlot)}
}

// Offer submits a decoded SSR message to the cache. If it completes a
// pending pair, Offer returns both messages and ok=true and clears the
// slot. Otherwise the message is stored (replacing any previously pending
// message of either kind) and Offer returns ok=false.
func (c *PairingCache) Offer(msg *SSRMessage) (orbit, clock *SSRMessage, ok bool) {
	slot, exists := c.slots[msg.Constellation]
	if !exists {
		slot = &pairSlot{}
		c.slots[msg.Constellation] = slot
	}

	switch msg.Kind {
	case SSRKindOrbit:
		if slot.pendingClock != nil && msg.matches(slot.pendingClock) {
			orbit, clock = msg, slot.pendingClock
			slot.pendingClock = nil
			return orbit, clock, true
		}
		slot.pendingClock = nil
		slot.pendingOrbit = msg
		return nil, nil, false
	case SSRKindClock:
		if slot.pendingOrbit != nil && slot.pendingOrbit.matches(msg) {
			orbit, clock = slot.pendingOrbit, msg
			slot.pendingOrbit = nil
			return orbit, clock, true
		}
		slot.pendingOrbit = nil
		slot.pendingClock = msg
		return nil, nil, false
	}
	return nil, nil, false
}
