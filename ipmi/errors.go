package ipmi

import "fmt"

// ErrConnectToIPMIServer is returned when the UDP socket cannot be
// connected to the BMC address.
type ErrConnectToIPMIServer struct {
	Addr  string
	Cause error
}

func (e ErrConnectToIPMIServer) Error() string {
	return fmt.Sprintf("ipmi: failed to connect to %s: %v", e.Addr, e.Cause)
}
func (e ErrConnectToIPMIServer) Unwrap() error { return e.Cause }

// ErrFailedSend is returned when a request datagram could not be
// written to the socket.
type ErrFailedSend struct{ Cause error }

func (e ErrFailedSend) Error() string { return fmt.Sprintf("ipmi: failed to send packet: %v", e.Cause) }
func (e ErrFailedSend) Unwrap() error { return e.Cause }

// ErrNoResponse is returned when a receive times out or returns no
// bytes.
type ErrNoResponse struct{ Cause error }

func (e ErrNoResponse) Error() string { return fmt.Sprintf("ipmi: no response from BMC: %v", e.Cause) }
func (e ErrNoResponse) Unwrap() error { return e.Cause }

// ErrMalformed is returned when a received packet cannot be parsed, or
// parses to a direction/type that is invalid in the current state.
type ErrMalformed struct{ Detail string }

func (e ErrMalformed) Error() string { return fmt.Sprintf("ipmi: malformed packet: %s", e.Detail) }

// ErrUnsupportedVersion is returned when the BMC's channel
// authentication capabilities indicate IPMI v2.0/RMCP+ is not
// available.
type ErrUnsupportedVersion struct{}

func (e ErrUnsupportedVersion) Error() string {
	return "ipmi: BMC does not support IPMI v2.0 / RMCP+"
}

// ErrFailedToOpenSession is returned when the BMC rejects the RMCP+
// Open Session Request, RAKP2, or RAKP4 with a non-zero status code.
type ErrFailedToOpenSession struct {
	Phase  string
	Status uint8
}

func (e ErrFailedToOpenSession) Error() string {
	return fmt.Sprintf("ipmi: %s failed with status 0x%02x: %s", e.Phase, e.Status, rakpStatusString(e.Status))
}

// ErrFailedToValidateRAKP2 is returned when the BMC's RAKP2
// authentication code does not match the locally recomputed value.
type ErrFailedToValidateRAKP2 struct{}

func (e ErrFailedToValidateRAKP2) Error() string {
	return "ipmi: RAKP2 authentication code validation failed"
}

// ErrFailedToValidateRAKP4 is returned when the BMC's RAKP4 integrity
// check value does not match the locally recomputed value.
type ErrFailedToValidateRAKP4 struct{}

func (e ErrFailedToValidateRAKP4) Error() string {
	return "ipmi: RAKP4 integrity check value validation failed"
}

// ErrUsernameTooLong is returned when a username exceeds the 255-byte
// limit the wire format can carry.
type ErrUsernameTooLong struct{ Length int }

func (e ErrUsernameTooLong) Error() string {
	return fmt.Sprintf("ipmi: username is %d bytes, maximum is 255", e.Length)
}

func rakpStatusString(code uint8) string {
	switch code {
	case 0x00:
		return "no errors"
	case 0x01:
		return "insufficient resources to create a session"
	case 0x02:
		return "invalid session ID"
	case 0x03:
		return "invalid payload type"
	case 0x04:
		return "invalid authentication algorithm"
	case 0x05:
		return "invalid integrity algorithm"
	case 0x06:
		return "no matching authentication payload"
	case 0x07:
		return "no matching integrity payload"
	case 0x08:
		return "inactive session ID"
	case 0x09:
		return "invalid role"
	case 0x0A:
		return "unauthorized role or privilege level requested"
	case 0x0B:
		return "insufficient resources to create a session at the requested role"
	case 0x0C:
		return "invalid name length"
	case 0x0D:
		return "unauthorized name"
	case 0x0E:
		return "unauthorized GUID"
	case 0x0F:
		return "invalid integrity check value"
	case 0x10:
		return "invalid confidentiality algorithm"
	case 0x11:
		return "no cipher suite match with proposed security algorithms"
	case 0x12:
		return "illegal or unrecognized parameter"
	default:
		return "unknown status"
	}
}
