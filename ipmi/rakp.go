package ipmi

import (
	"encoding/binary"
)

// PrivilegeLevel is the requested session privilege level carried in
// the Open Session Request and RAKP Message 1.
type PrivilegeLevel uint8

const (
	PrivilegeCallback      PrivilegeLevel = 0x01
	PrivilegeUser          PrivilegeLevel = 0x02
	PrivilegeOperator      PrivilegeLevel = 0x03
	PrivilegeAdministrator PrivilegeLevel = 0x04
)

// roleByte packs a requested privilege level with the name-lookup bit
// RAKP Message 1 and the key schedule both require set.
func roleByte(p PrivilegeLevel) uint8 {
	return uint8(p) | 0x10
}

// OpenSessionRequest is the RMCP+ Open Session Request payload.
type OpenSessionRequest struct {
	MessageTag       uint8
	MaxPrivilege     PrivilegeLevel
	ConsoleSessionID uint32
	Auth             uint8
	Integrity        uint8
	Confidentiality  uint8
}

// Encode packs the request into its 32-byte wire form: tag/priv/reserved
// + console session id, then three 8-byte algorithm-payload blocks.
func (r OpenSessionRequest) Encode() []byte {
	buf := make([]byte, 32)
	buf[0] = r.MessageTag
	buf[1] = uint8(r.MaxPrivilege)
	binary.LittleEndian.PutUint32(buf[4:8], r.ConsoleSessionID)

	buf[8] = 0x00
	buf[11] = 0x08
	buf[12] = r.Auth

	buf[16] = 0x01
	buf[19] = 0x08
	buf[20] = r.Integrity

	buf[24] = 0x02
	buf[27] = 0x08
	buf[28] = r.Confidentiality

	return buf
}

// OpenSessionResponse is the RMCP+ Open Session Response payload.
type OpenSessionResponse struct {
	MessageTag             uint8
	Status                 uint8
	MaxPrivilege           PrivilegeLevel
	ConsoleSessionID       uint32
	ManagedSystemSessionID uint32
	Auth                   uint8
	Integrity              uint8
	Confidentiality        uint8
}

// ParseOpenSessionResponse decodes an Open Session Response payload.
func ParseOpenSessionResponse(buf []byte) (OpenSessionResponse, error) {
	if len(buf) < 32 {
		return OpenSessionResponse{}, ErrMalformed{Detail: "open session response shorter than 32 bytes"}
	}
	r := OpenSessionResponse{
		MessageTag:             buf[0],
		Status:                 buf[1],
		MaxPrivilege:           PrivilegeLevel(buf[2]),
		ConsoleSessionID:       binary.LittleEndian.Uint32(buf[4:8]),
		ManagedSystemSessionID: binary.LittleEndian.Uint32(buf[8:12]),
		Auth:                   buf[12],
		Integrity:              buf[20],
		Confidentiality:        buf[28],
	}
	return r, nil
}

// RAKPMessage1 is the console's key-exchange opener.
type RAKPMessage1 struct {
	MessageTag             uint8
	ManagedSystemSessionID uint32
	ConsoleRandom          [16]byte
	RequestedRole          PrivilegeLevel
	Username               []byte
}

// Encode packs RAKP Message 1 into its wire form.
func (m RAKPMessage1) Encode() []byte {
	buf := make([]byte, 28+len(m.Username))
	buf[0] = m.MessageTag
	binary.LittleEndian.PutUint32(buf[4:8], m.ManagedSystemSessionID)
	copy(buf[8:24], m.ConsoleRandom[:])
	buf[24] = roleByte(m.RequestedRole)
	buf[27] = uint8(len(m.Username))
	copy(buf[28:], m.Username)
	return buf
}

// ParseRAKPMessage1 decodes RAKP Message 1.
func ParseRAKPMessage1(buf []byte) (RAKPMessage1, error) {
	if len(buf) < 28 {
		return RAKPMessage1{}, ErrMalformed{Detail: "RAKP1 shorter than 28 bytes"}
	}
	m := RAKPMessage1{
		MessageTag:             buf[0],
		ManagedSystemSessionID: binary.LittleEndian.Uint32(buf[4:8]),
		RequestedRole:          PrivilegeLevel(buf[24] & 0x0F),
	}
	copy(m.ConsoleRandom[:], buf[8:24])
	n := int(buf[27])
	if len(buf) < 28+n {
		return RAKPMessage1{}, ErrMalformed{Detail: "RAKP1 username shorter than declared length"}
	}
	if n > 0 {
		m.Username = append([]byte(nil), buf[28:28+n]...)
	}
	return m, nil
}

// RAKPMessage2 is the BMC's key-exchange reply.
type RAKPMessage2 struct {
	MessageTag          uint8
	Status              uint8
	ConsoleSessionID    uint32
	ManagedSystemRandom [16]byte
	ManagedSystemGUID   [16]byte
	AuthCode            []byte
}

// ParseRAKPMessage2 decodes RAKP Message 2.
func ParseRAKPMessage2(buf []byte) (RAKPMessage2, error) {
	if len(buf) < 40 {
		return RAKPMessage2{}, ErrMalformed{Detail: "RAKP2 shorter than 40 bytes"}
	}
	m := RAKPMessage2{
		MessageTag:       buf[0],
		Status:           buf[1],
		ConsoleSessionID: binary.LittleEndian.Uint32(buf[4:8]),
	}
	copy(m.ManagedSystemRandom[:], buf[8:24])
	copy(m.ManagedSystemGUID[:], buf[24:40])
	if len(buf) > 40 {
		m.AuthCode = append([]byte(nil), buf[40:]...)
	}
	return m, nil
}

// RAKPMessage3 carries the console's authentication code confirming it
// derived the same keys as the BMC.
type RAKPMessage3 struct {
	MessageTag             uint8
	Status                 uint8
	ManagedSystemSessionID uint32
	AuthCode               []byte
}

// Encode packs RAKP Message 3 into its wire form.
func (m RAKPMessage3) Encode() []byte {
	buf := make([]byte, 8+len(m.AuthCode))
	buf[0] = m.MessageTag
	buf[1] = m.Status
	binary.LittleEndian.PutUint32(buf[4:8], m.ManagedSystemSessionID)
	copy(buf[8:], m.AuthCode)
	return buf
}

// RAKPMessage4 carries the BMC's integrity check value, the last
// message of the handshake.
type RAKPMessage4 struct {
	MessageTag          uint8
	Status              uint8
	ConsoleSessionID    uint32
	IntegrityCheckValue []byte
}

// ParseRAKPMessage4 decodes RAKP Message 4.
func ParseRAKPMessage4(buf []byte) (RAKPMessage4, error) {
	if len(buf) < 8 {
		return RAKPMessage4{}, ErrMalformed{Detail: "RAKP4 shorter than 8 bytes"}
	}
	m := RAKPMessage4{
		MessageTag:       buf[0],
		Status:           buf[1],
		ConsoleSessionID: binary.LittleEndian.Uint32(buf[4:8]),
	}
	if len(buf) > 8 {
		m.IntegrityCheckValue = append([]byte(nil), buf[8:]...)
	}
	return m, nil
}
