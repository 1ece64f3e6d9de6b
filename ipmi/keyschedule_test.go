package ipmi

import (
	"bytes"
	"testing"
)

func TestDeriveSIKDeterministic(t *testing.T) {
	password := []byte("calvin")
	username := []byte("root")
	var rcRand, mcRand [16]byte
	for i := range rcRand {
		rcRand[i] = byte(i)
		mcRand[i] = byte(0xF0 + i)
	}

	sik1 := DeriveSIK(password, rcRand, mcRand, PrivilegeAdministrator, username)
	sik2 := DeriveSIK(password, rcRand, mcRand, PrivilegeAdministrator, username)
	if !bytes.Equal(sik1, sik2) {
		t.Fatalf("DeriveSIK is not deterministic")
	}
	if len(sik1) != 32 {
		t.Fatalf("SIK length = %d, want 32 (HMAC-SHA256 output)", len(sik1))
	}

	otherPassword := DeriveSIK([]byte("different"), rcRand, mcRand, PrivilegeAdministrator, username)
	if bytes.Equal(sik1, otherPassword) {
		t.Fatalf("SIK did not change with a different password")
	}
}

func TestDeriveK1K2DifferFromSIKAndEachOther(t *testing.T) {
	sik := KeyMaterial(bytes.Repeat([]byte{0x42}, 32))
	k1 := DeriveK1(sik)
	k2 := DeriveK2(sik)
	if bytes.Equal(k1, k2) {
		t.Fatalf("K1 and K2 must differ")
	}
	if bytes.Equal(k1, sik) || bytes.Equal(k2, sik) {
		t.Fatalf("K1/K2 must differ from SIK")
	}
}

func TestValidateRAKP2RejectsTamperedAuthCode(t *testing.T) {
	password := []byte("calvin")
	username := []byte("root")
	var rcRand, mcRand, guid [16]byte
	consoleSID := uint32(0x11223344)
	msSID := uint32(0xAABBCCDD)

	valid := rakp2AuthData(consoleSID, msSID, rcRand, mcRand, guid, PrivilegeAdministrator, username)
	validCode := hmacSHA256(password, valid)

	if !ValidateRAKP2(password, consoleSID, msSID, rcRand, mcRand, guid, PrivilegeAdministrator, username, validCode) {
		t.Fatalf("expected valid RAKP2 auth code to validate")
	}

	tampered := append([]byte(nil), validCode...)
	tampered[0] ^= 0xFF
	if ValidateRAKP2(password, consoleSID, msSID, rcRand, mcRand, guid, PrivilegeAdministrator, username, tampered) {
		t.Fatalf("expected tampered RAKP2 auth code to be rejected")
	}
}

func TestValidateRAKP4RejectsTamperedICV(t *testing.T) {
	sik := KeyMaterial(bytes.Repeat([]byte{0x07}, 32))
	var rcRand, guid [16]byte
	msSID := uint32(0xDEADBEEF)

	icv := ComputeRAKP4ICV(sik, rcRand, msSID, guid)
	if !ValidateRAKP4(sik, rcRand, msSID, guid, icv) {
		t.Fatalf("expected valid ICV to validate")
	}

	tampered := append([]byte(nil), icv...)
	tampered[len(tampered)-1] ^= 0x01
	if ValidateRAKP4(sik, rcRand, msSID, guid, tampered) {
		t.Fatalf("expected tampered ICV to be rejected")
	}
}

func TestComputeRAKP3AuthCodeDeterministic(t *testing.T) {
	password := []byte("calvin")
	username := []byte("root")
	var mcRand [16]byte
	consoleSID := uint32(0x01020304)

	a := ComputeRAKP3AuthCode(password, mcRand, consoleSID, PrivilegeAdministrator, username)
	b := ComputeRAKP3AuthCode(password, mcRand, consoleSID, PrivilegeAdministrator, username)
	if !bytes.Equal(a, b) {
		t.Fatalf("ComputeRAKP3AuthCode is not deterministic")
	}
}

// TestKeyScheduleMatchesPinnedVector checks every key-schedule output
// against bytes computed independently (Python's hmac/hashlib, not this
// package) from the same inputs, so a mistake in byte order or field
// width inside DeriveSIK/rakp2AuthData/ComputeRAKP3AuthCode/ComputeRAKP4ICV
// would be caught even if it happened to be self-consistent.
func TestKeyScheduleMatchesPinnedVector(t *testing.T) {
	password := []byte("calvin")
	username := []byte("root")

	var consoleRandom, managedSystemRandom, managedSystemGUID [16]byte
	for i := 0; i < 16; i++ {
		consoleRandom[i] = byte(0x00 + i)
		managedSystemRandom[i] = byte(0x10 + i)
		managedSystemGUID[i] = byte(0x20 + i)
	}
	const (
		consoleSessionID       = uint32(0x11223344)
		managedSystemSessionID = uint32(0x55667788)
	)

	wantSIK := []byte{0x7e, 0x0a, 0xa7, 0x20, 0xa1, 0xec, 0xbb, 0xf1, 0xb4, 0x8a, 0xbc, 0x3d, 0xb8, 0xae, 0x6c, 0x4e, 0x46, 0xe8, 0xca, 0xc3, 0xc8, 0x5a, 0x4c, 0xeb, 0xa3, 0xde, 0x79, 0xa7, 0xeb, 0xce, 0xf2, 0x7a}
	wantK1 := []byte{0x9c, 0x58, 0xb6, 0x71, 0xc7, 0x93, 0x25, 0xdb, 0xde, 0x82, 0x78, 0x67, 0xd1, 0x41, 0xab, 0xdf, 0x28, 0xbe, 0x44, 0x24, 0x43, 0xd8, 0xa0, 0x14, 0x61, 0xae, 0x55, 0x83, 0x42, 0x70, 0xeb, 0x1e}
	wantK2 := []byte{0x8a, 0x7c, 0x3d, 0xf5, 0x6b, 0x00, 0x21, 0xcb, 0x2e, 0xd9, 0x63, 0xa5, 0x41, 0xd2, 0xb8, 0x01, 0x54, 0xa3, 0xf9, 0x77, 0xe9, 0xa1, 0x20, 0x91, 0x52, 0xbd, 0x58, 0xfe, 0x09, 0xe2, 0x5b, 0x79}
	wantRAKP2Auth := []byte{0x0d, 0x89, 0x3c, 0x3b, 0x35, 0x7e, 0x85, 0x0d, 0xa8, 0xca, 0x87, 0x65, 0xa7, 0x65, 0x6d, 0xc5, 0xea, 0x0f, 0xb5, 0x12, 0xea, 0x0e, 0xe7, 0x59, 0x8a, 0x9f, 0xd0, 0x66, 0xee, 0xc0, 0xe6, 0x11}
	wantRAKP3Auth := []byte{0x3a, 0x74, 0x70, 0xad, 0x69, 0xb2, 0xc3, 0x60, 0x25, 0x33, 0xf4, 0x52, 0x0b, 0x44, 0x77, 0xca, 0x7a, 0xc4, 0xe3, 0x92, 0x31, 0xc4, 0x0e, 0x9e, 0x4d, 0x07, 0xd5, 0x6b, 0x5a, 0x0f, 0xa1, 0x07}
	wantICV := []byte{0xf9, 0x20, 0x9b, 0xc0, 0x0e, 0x92, 0x87, 0xa8, 0xaa, 0xe9, 0xf8, 0x42, 0xc8, 0x74, 0xa4, 0xcd}

	sik := DeriveSIK(password, consoleRandom, managedSystemRandom, PrivilegeAdministrator, username)
	if !bytes.Equal(sik, wantSIK) {
		t.Fatalf("SIK = %x, want %x", sik, wantSIK)
	}
	if k1 := DeriveK1(sik); !bytes.Equal(k1, wantK1) {
		t.Fatalf("K1 = %x, want %x", k1, wantK1)
	}
	if k2 := DeriveK2(sik); !bytes.Equal(k2, wantK2) {
		t.Fatalf("K2 = %x, want %x", k2, wantK2)
	}

	rakp2Auth := hmacSHA256(password, rakp2AuthData(consoleSessionID, managedSystemSessionID, consoleRandom, managedSystemRandom, managedSystemGUID, PrivilegeAdministrator, username))
	if !bytes.Equal(rakp2Auth, wantRAKP2Auth) {
		t.Fatalf("RAKP2 auth code = %x, want %x", rakp2Auth, wantRAKP2Auth)
	}
	if !ValidateRAKP2(password, consoleSessionID, managedSystemSessionID, consoleRandom, managedSystemRandom, managedSystemGUID, PrivilegeAdministrator, username, wantRAKP2Auth) {
		t.Fatalf("ValidateRAKP2 rejected the pinned vector's auth code")
	}

	rakp3Auth := ComputeRAKP3AuthCode(password, managedSystemRandom, consoleSessionID, PrivilegeAdministrator, username)
	if !bytes.Equal(rakp3Auth, wantRAKP3Auth) {
		t.Fatalf("RAKP3 auth code = %x, want %x", rakp3Auth, wantRAKP3Auth)
	}

	icv := ComputeRAKP4ICV(sik, consoleRandom, managedSystemSessionID, managedSystemGUID)
	if !bytes.Equal(icv, wantICV) {
		t.Fatalf("RAKP4 ICV = %x, want %x", icv, wantICV)
	}
	if !ValidateRAKP4(sik, consoleRandom, managedSystemSessionID, managedSystemGUID, wantICV) {
		t.Fatalf("ValidateRAKP4 rejected the pinned vector's ICV")
	}
}
