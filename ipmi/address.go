package ipmi

import "fmt"

// AddrType distinguishes a 7-bit slave (I2C) address from a 7-bit
// software ID, as carried in the high bit of an IPMI message address
// byte.
type AddrType uint8

const (
	AddrTypeSlave    AddrType = 0
	AddrTypeSoftware AddrType = 1
)

// SlaveAddress is a 7-bit I2C slave address. The BMC itself is 0x20.
type SlaveAddress uint8

const SlaveAddressBMC SlaveAddress = 0x20

// SoftwareType enumerates the 7-bit software IDs IPMI reserves ranges
// for. Values outside every named range decode to SoftwareUnknown.
type SoftwareType interface {
	softwareType()
	Encode() uint8
	String() string
}

type (
	// SoftwareBIOS covers 0x00-0x0F.
	SoftwareBIOS uint8
	// SoftwareSMI covers 0x10-0x1F.
	SoftwareSMI uint8
	// SoftwareSMS covers 0x20-0x2F.
	SoftwareSMS uint8
	// SoftwareOEM covers 0x30-0x3F.
	SoftwareOEM uint8
	// RemoteConsoleSoftware covers 0x40-0x46, numbered 1-7.
	//
	// Decode subtracts 0x3F and encode adds 0x3F, so wire byte 0x40 maps
	// to RemoteConsoleSoftware(1) rather than RemoteConsoleSoftware(0).
	// Encode is the exact inverse of the decode in ParseSoftwareType, so
	// the 1-based numbering is kept as-is rather than renumbered.
	RemoteConsoleSoftware uint8
	// TerminalModeSoftware is the single value 0x47.
	TerminalModeSoftware struct{}
	// SoftwareUnknown is any 7-bit software ID outside the named ranges.
	SoftwareUnknown uint8
)

func (SoftwareBIOS) softwareType()          {}
func (SoftwareSMI) softwareType()           {}
func (SoftwareSMS) softwareType()           {}
func (SoftwareOEM) softwareType()           {}
func (RemoteConsoleSoftware) softwareType() {}
func (TerminalModeSoftware) softwareType()  {}
func (SoftwareUnknown) softwareType()       {}

func (s SoftwareBIOS) Encode() uint8          { return uint8(s) }
func (s SoftwareSMI) Encode() uint8           { return 0x10 + uint8(s) }
func (s SoftwareSMS) Encode() uint8           { return 0x20 + uint8(s) }
func (s SoftwareOEM) Encode() uint8           { return 0x30 + uint8(s) }
func (s RemoteConsoleSoftware) Encode() uint8 { return uint8(s) + 0x3F }
func (TerminalModeSoftware) Encode() uint8    { return 0x47 }
func (s SoftwareUnknown) Encode() uint8       { return uint8(s) }

func (s SoftwareBIOS) String() string { return fmt.Sprintf("BIOS(%d)", uint8(s)) }
func (s SoftwareSMI) String() string  { return fmt.Sprintf("SMI(%d)", uint8(s)) }
func (s SoftwareSMS) String() string  { return fmt.Sprintf("SMS(%d)", uint8(s)) }
func (s SoftwareOEM) String() string  { return fmt.Sprintf("OEM(%d)", uint8(s)) }
func (s RemoteConsoleSoftware) String() string {
	return fmt.Sprintf("RemoteConsoleSoftware(%d)", uint8(s))
}
func (TerminalModeSoftware) String() string { return "TerminalModeSoftware" }
func (s SoftwareUnknown) String() string    { return fmt.Sprintf("SoftwareUnknown(0x%02x)", uint8(s)) }

// ParseSoftwareType decodes a 7-bit software ID into its named variant.
func ParseSoftwareType(id uint8) SoftwareType {
	switch {
	case id <= 0x0F:
		return SoftwareBIOS(id)
	case id <= 0x1F:
		return SoftwareSMI(id - 0x10)
	case id <= 0x2F:
		return SoftwareSMS(id - 0x20)
	case id <= 0x3F:
		return SoftwareOEM(id - 0x30)
	case id <= 0x46:
		return RemoteConsoleSoftware(id - 0x3F)
	case id == 0x47:
		return TerminalModeSoftware{}
	default:
		return SoftwareUnknown(id)
	}
}

// Address is either a slave address or a software ID, as packed into a
// single IPMI message address byte (high bit = AddrType, low 7 bits =
// the address itself).
type Address struct {
	Type     AddrType
	Slave    SlaveAddress // valid when Type == AddrTypeSlave
	Software SoftwareType // valid when Type == AddrTypeSoftware
}

// Encode packs the address into its single wire byte.
func (a Address) Encode() byte {
	switch a.Type {
	case AddrTypeSlave:
		return pack2(uint8(AddrTypeSlave), uint8(a.Slave), 1)
	default:
		return pack2(uint8(AddrTypeSoftware), a.Software.Encode(), 1)
	}
}

// ParseAddress decodes a single wire address byte.
func ParseAddress(b byte) Address {
	typeBit, low := unpack2(b, 1)
	if typeBit == uint8(AddrTypeSlave) {
		return Address{Type: AddrTypeSlave, Slave: SlaveAddress(low)}
	}
	return Address{Type: AddrTypeSoftware, Software: ParseSoftwareType(low)}
}

// BMCAddress is the conventional slave address of the BMC itself.
func BMCAddress() Address {
	return Address{Type: AddrTypeSlave, Slave: SlaveAddressBMC}
}

// RemoteConsoleAddress is the conventional software ID this client
// identifies itself with (the first remote console slot).
func RemoteConsoleAddress() Address {
	return Address{Type: AddrTypeSoftware, Software: RemoteConsoleSoftware(1)}
}
