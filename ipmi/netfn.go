package ipmi

import "fmt"

// NetFn identifies an IPMI command family. The wire value is 6 bits, and
// its low bit carries direction: even values are requests, odd values
// are responses - see IsResponse.
type NetFn uint8

const (
	NetFnChassis       NetFn = 0x00
	NetFnChassisResp   NetFn = 0x01
	NetFnBridge        NetFn = 0x02
	NetFnBridgeResp    NetFn = 0x03
	NetFnSensorEvent   NetFn = 0x04
	NetFnSensorResp    NetFn = 0x05
	NetFnApp           NetFn = 0x06
	NetFnAppResp       NetFn = 0x07
	NetFnFirmware      NetFn = 0x08
	NetFnFirmwareResp  NetFn = 0x09
	NetFnStorage       NetFn = 0x0A
	NetFnStorageResp   NetFn = 0x0B
	NetFnTransport     NetFn = 0x0C
	NetFnTransportResp NetFn = 0x0D
)

// NetFnUnknown wraps a 6-bit NetFn value this codebase does not name.
type NetFnUnknown uint8

func (n NetFnUnknown) String() string { return fmt.Sprintf("NetFn(0x%02x)", uint8(n)) }

// Lun is the 2-bit Logical Unit Number accompanying a NetFn.
type Lun uint8

const (
	LunBMC Lun = 0x00
)

// IsResponse reports whether the low bit of the full 6-bit NetFn value
// marks this as a response NetFn (odd) rather than a request (even).
func (n NetFn) IsResponse() bool { return uint8(n)&0x01 == 1 }

// netFnByte packs netfn (6 bits) and lun (2 bits) into a single wire byte.
func netFnByte(netfn uint8, lun uint8) byte {
	return pack2(netfn, lun, 6)
}

// splitNetFnByte recovers (netfn, lun) from a wire byte.
func splitNetFnByte(b byte) (netfn uint8, lun uint8) {
	return unpack2(b, 6)
}
