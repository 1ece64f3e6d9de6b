package ipmi

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
)

// KeyMaterial is a derived session key. It is a distinct type, rather
// than a bare []byte, so callers cannot accidentally log or serialize
// it through a generic byte-slice code path.
type KeyMaterial []byte

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func appendUint32BE(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// DeriveSIK computes the Session Integrity Key:
// HMAC-SHA256(password, Rc || Rm || role || ULength || username).
func DeriveSIK(password []byte, consoleRandom, managedSystemRandom [16]byte, role PrivilegeLevel, username []byte) KeyMaterial {
	data := make([]byte, 0, 16+16+1+1+len(username))
	data = append(data, consoleRandom[:]...)
	data = append(data, managedSystemRandom[:]...)
	data = append(data, roleByte(role))
	data = append(data, uint8(len(username)))
	data = append(data, username...)
	return hmacSHA256(password, data)
}

const k1Preimage = 0x01
const k2Preimage = 0x02

func derivedConstKey(sik KeyMaterial, fill byte) KeyMaterial {
	data := make([]byte, 20)
	for i := range data {
		data[i] = fill
	}
	return hmacSHA256(sik, data)
}

// DeriveK1 computes the integrity key from SIK: HMAC-SHA256(SIK, 0x01 x 20).
func DeriveK1(sik KeyMaterial) KeyMaterial { return derivedConstKey(sik, k1Preimage) }

// DeriveK2 computes the confidentiality key from SIK: HMAC-SHA256(SIK, 0x02 x 20).
func DeriveK2(sik KeyMaterial) KeyMaterial { return derivedConstKey(sik, k2Preimage) }

// rakp2AuthData builds the HMAC input RAKP2 validation and SIK-less
// schemes share: Rc_sid || Rm_sid || Rc || Rm || GUIDm || role || ULength || username.
func rakp2AuthData(consoleSessionID, managedSystemSessionID uint32, consoleRandom, managedSystemRandom, managedSystemGUID [16]byte, role PrivilegeLevel, username []byte) []byte {
	data := make([]byte, 0, 4+4+16+16+16+1+1+len(username))
	data = appendUint32BE(data, consoleSessionID)
	data = appendUint32BE(data, managedSystemSessionID)
	data = append(data, consoleRandom[:]...)
	data = append(data, managedSystemRandom[:]...)
	data = append(data, managedSystemGUID[:]...)
	data = append(data, roleByte(role))
	data = append(data, uint8(len(username)))
	data = append(data, username...)
	return data
}

// ValidateRAKP2 recomputes the expected RAKP2 authentication code and
// compares it against the BMC's value in constant time.
func ValidateRAKP2(password []byte, consoleSessionID, managedSystemSessionID uint32, consoleRandom, managedSystemRandom, managedSystemGUID [16]byte, role PrivilegeLevel, username []byte, bmcAuthCode []byte) bool {
	expected := hmacSHA256(password, rakp2AuthData(consoleSessionID, managedSystemSessionID, consoleRandom, managedSystemRandom, managedSystemGUID, role, username))
	return constantTimeEqual(expected, bmcAuthCode)
}

// ComputeRAKP3AuthCode computes the console's RAKP3 authentication code:
// HMAC-SHA256(password, Rm || Rc_sid || role || ULength || username).
func ComputeRAKP3AuthCode(password []byte, managedSystemRandom [16]byte, consoleSessionID uint32, role PrivilegeLevel, username []byte) []byte {
	data := make([]byte, 0, 16+4+1+1+len(username))
	data = append(data, managedSystemRandom[:]...)
	data = appendUint32BE(data, consoleSessionID)
	data = append(data, roleByte(role))
	data = append(data, uint8(len(username)))
	data = append(data, username...)
	return hmacSHA256(password, data)
}

// ComputeRAKP4ICV computes the expected RAKP4 integrity check value:
// the first 16 bytes of HMAC-SHA256(SIK, Rc || Rm_sid || GUIDm).
func ComputeRAKP4ICV(sik KeyMaterial, consoleRandom [16]byte, managedSystemSessionID uint32, managedSystemGUID [16]byte) []byte {
	data := make([]byte, 0, 16+4+16)
	data = append(data, consoleRandom[:]...)
	data = appendUint32BE(data, managedSystemSessionID)
	data = append(data, managedSystemGUID[:]...)
	full := hmacSHA256(sik, data)
	return full[:16]
}

// ValidateRAKP4 recomputes the expected ICV and compares it against the
// BMC's value in constant time.
func ValidateRAKP4(sik KeyMaterial, consoleRandom [16]byte, managedSystemSessionID uint32, managedSystemGUID [16]byte, bmcICV []byte) bool {
	expected := ComputeRAKP4ICV(sik, consoleRandom, managedSystemSessionID, managedSystemGUID)
	return constantTimeEqual(expected, bmcICV)
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
