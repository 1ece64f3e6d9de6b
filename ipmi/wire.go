package ipmi

import (
	"encoding/binary"
	"fmt"
)

// RMCP / session-layer constants: message class, auth type, and payload
// type bytes as defined by the IPMI v2.0 / RMCP+ wire format.
const (
	rmcpVersion   = 0x06
	rmcpSequence  = 0xFF // no RMCP ACK requested
	rmcpClassIPMI = 0x07

	authTypeNone  = 0x00
	authTypeRMCPP = 0x06 // RMCP+, i.e. IPMI v2.0 session format
)

// PayloadType identifies the contents of the bytes following a session
// header.
type PayloadType uint8

const (
	PayloadIPMI     PayloadType = 0x00
	PayloadSOL      PayloadType = 0x01
	PayloadOpenReq  PayloadType = 0x10
	PayloadOpenResp PayloadType = 0x11
	PayloadRAKP1    PayloadType = 0x12
	PayloadRAKP2    PayloadType = 0x13
	PayloadRAKP3    PayloadType = 0x14
	PayloadRAKP4    PayloadType = 0x15

	payloadEncryptedBit     PayloadType = 0x80
	payloadAuthenticatedBit PayloadType = 0x40
	payloadTypeMask         PayloadType = 0x3F
)

// Type strips the encrypted/authenticated flag bits, returning the bare
// payload type.
func (p PayloadType) Type() PayloadType { return p & payloadTypeMask }

func (p PayloadType) Encrypted() bool     { return p&payloadEncryptedBit != 0 }
func (p PayloadType) Authenticated() bool { return p&payloadAuthenticatedBit != 0 }

func (p PayloadType) String() string {
	switch p.Type() {
	case PayloadIPMI:
		return "IPMI"
	case PayloadSOL:
		return "SOL"
	case PayloadOpenReq:
		return "OpenSessionRequest"
	case PayloadOpenResp:
		return "OpenSessionResponse"
	case PayloadRAKP1:
		return "RAKP1"
	case PayloadRAKP2:
		return "RAKP2"
	case PayloadRAKP3:
		return "RAKP3"
	case PayloadRAKP4:
		return "RAKP4"
	default:
		return fmt.Sprintf("PayloadType(0x%02x)", uint8(p.Type()))
	}
}

// rmcpHeader is the 4-byte RMCP envelope every packet starts with.
type rmcpHeader struct{}

func (rmcpHeader) encode() []byte {
	return []byte{rmcpVersion, 0x00, rmcpSequence, rmcpClassIPMI}
}

// preSessionHeader is the IPMI 1.5-shaped session header used only to
// carry the two Discovery-phase commands, which IPMI requires to precede
// any RMCP+ session (auth type is always None and the session ID is
// always zero; the sequence is supplied per packet). This is wire
// framing needed to bootstrap Discovery,
// not a revival of full IPMI v1.5 session authentication.
type preSessionHeader struct {
	Sequence  uint32
	SessionID uint32
}

func (h preSessionHeader) encode(payload []byte) []byte {
	buf := make([]byte, 10)
	buf[0] = authTypeNone
	binary.LittleEndian.PutUint32(buf[1:5], h.Sequence)
	binary.LittleEndian.PutUint32(buf[5:9], h.SessionID)
	buf[9] = uint8(len(payload))
	return buf
}

// sessionHeaderV2 is the IPMI v2.0 / RMCP+ session header.
type sessionHeaderV2 struct {
	PayloadType PayloadType
	SessionID   uint32
	Sequence    uint32
}

func (h sessionHeaderV2) encode(payload []byte) []byte {
	buf := make([]byte, 12)
	buf[0] = authTypeRMCPP
	buf[1] = uint8(h.PayloadType)
	binary.LittleEndian.PutUint32(buf[2:6], h.SessionID)
	binary.LittleEndian.PutUint32(buf[6:10], h.Sequence)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(len(payload)))
	return buf
}

// parseSessionHeaderV2 parses the 12-byte v2.0 session header. It
// returns the remaining bytes (the payload, trimmed to the header's
// declared payload length) and
// requires authType == authTypeRMCPP.
func parseSessionHeaderV2(buf []byte) (h sessionHeaderV2, payload []byte, err error) {
	if len(buf) < 12 {
		return h, nil, ErrMalformed{Detail: "session header shorter than 12 bytes"}
	}
	if buf[0] != authTypeRMCPP {
		return h, nil, ErrMalformed{Detail: fmt.Sprintf("unexpected auth type 0x%02x", buf[0])}
	}
	h.PayloadType = PayloadType(buf[1])
	h.SessionID = binary.LittleEndian.Uint32(buf[2:6])
	h.Sequence = binary.LittleEndian.Uint32(buf[6:10])
	n := int(binary.LittleEndian.Uint16(buf[10:12]))
	rest := buf[12:]
	if len(rest) < n {
		return h, nil, ErrMalformed{Detail: "payload shorter than declared length"}
	}
	return h, rest[:n], nil
}

// buildPreSessionPacket assembles a full RMCP + IPMI 1.5 pre-session
// packet carrying payload.
func buildPreSessionPacket(sessionID, sequence uint32, payload []byte) []byte {
	h := preSessionHeader{Sequence: sequence, SessionID: sessionID}
	out := make([]byte, 0, 4+10+len(payload))
	out = append(out, rmcpHeader{}.encode()...)
	out = append(out, h.encode(payload)...)
	out = append(out, payload...)
	return out
}

// buildSessionPacket assembles a full RMCP + IPMI v2.0 session packet.
func buildSessionPacket(payloadType PayloadType, sessionID, sequence uint32, payload []byte) []byte {
	h := sessionHeaderV2{PayloadType: payloadType, SessionID: sessionID, Sequence: sequence}
	out := make([]byte, 0, 4+12+len(payload))
	out = append(out, rmcpHeader{}.encode()...)
	out = append(out, h.encode(payload)...)
	out = append(out, payload...)
	return out
}

// stripRMCPHeader validates and removes the leading 4-byte RMCP header.
func stripRMCPHeader(buf []byte) ([]byte, error) {
	if len(buf) < 4 {
		return nil, ErrMalformed{Detail: "packet shorter than RMCP header"}
	}
	if buf[0] != rmcpVersion {
		return nil, ErrMalformed{Detail: fmt.Sprintf("unexpected RMCP version 0x%02x", buf[0])}
	}
	if buf[3] != rmcpClassIPMI {
		return nil, ErrMalformed{Detail: fmt.Sprintf("unexpected RMCP class 0x%02x", buf[3])}
	}
	return buf[4:], nil
}
