package ipmi

import (
	"crypto/rand"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// AuthState is the session-establishment state machine's current phase.
type AuthState int

const (
	StateDiscovery AuthState = iota
	StateAuthentication
	StateRAKP1
	StateRAKP3
	StateEstablished
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateDiscovery:
		return "Discovery"
	case StateAuthentication:
		return "Authentication"
	case StateRAKP1:
		return "RAKP1"
	case StateRAKP3:
		return "RAKP3"
	case StateEstablished:
		return "Established"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// SessionContext is the single mutable aggregate the handshake owns for
// the life of one session: identifiers, nonces, negotiated algorithms,
// and derived keys.
type SessionContext struct {
	AuthState AuthState

	ChannelNumber *uint8

	Auth            uint8
	Integrity       uint8
	Confidentiality uint8

	ConsoleSessionID       uint32
	ManagedSystemSessionID uint32

	ConsoleRandom       [16]byte
	ManagedSystemRandom [16]byte
	ManagedSystemGUID   [16]byte

	Username []byte
	password []byte // HMAC key material; zeroized on Close

	SIK KeyMaterial
	K1  KeyMaterial
	K2  KeyMaterial

	cipherSuiteBytes []byte
	cipherListIndex  uint8

	sequence uint32
}

// newSessionContext builds a fresh session context, drawing the console
// random number from a CSPRNG exactly once.
func newSessionContext(username, password string) (*SessionContext, error) {
	if len(username) > 255 {
		return nil, ErrUsernameTooLong{Length: len(username)}
	}
	ctx := &SessionContext{
		AuthState: StateDiscovery,
		Username:  []byte(username),
		password:  []byte(password),
	}
	if _, err := rand.Read(ctx.ConsoleRandom[:]); err != nil {
		return nil, fmt.Errorf("ipmi: failed to generate console random number: %w", err)
	}
	var sidBytes [4]byte
	if _, err := rand.Read(sidBytes[:]); err != nil {
		return nil, fmt.Errorf("ipmi: failed to generate console session id: %w", err)
	}
	ctx.ConsoleSessionID = uint32(sidBytes[0]) | uint32(sidBytes[1])<<8 | uint32(sidBytes[2])<<16 | uint32(sidBytes[3])<<24
	return ctx, nil
}

// Zero overwrites key material before the context is discarded.
func (c *SessionContext) Zero() {
	zero(c.password)
	zero(c.SIK)
	zero(c.K1)
	zero(c.K2)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Client drives the session-establishment handshake against one BMC.
type Client struct {
	transport *Transport
	ctx       *SessionContext
	log       *log.Entry

	// Privilege is the maximum privilege level requested during Open
	// Session and RAKP1, and the role folded into every key-schedule
	// HMAC. Zero selects PrivilegeAdministrator.
	Privilege PrivilegeLevel
}

// New binds a UDP transport to serverAddr and returns a client ready to
// EstablishConnection. serverAddr may omit the port, defaulting to 623.
func New(serverAddr string, opts TransportOptions) (*Client, error) {
	t, err := NewTransport(serverAddr, opts)
	if err != nil {
		return nil, err
	}
	return &Client{
		transport: t,
		log:       log.WithField("bmc", serverAddr),
	}, nil
}

// privilege returns the client's requested privilege level, defaulting
// to PrivilegeAdministrator when none was configured.
func (c *Client) privilege() PrivilegeLevel {
	if c.Privilege == 0 {
		return PrivilegeAdministrator
	}
	return c.Privilege
}

// EstablishConnection drives Discovery through RAKP4, leaving the
// client's session established or returning the first error
// encountered. On error the session is left in StateFailed.
func (c *Client) EstablishConnection(username, password string) error {
	ctx, err := newSessionContext(username, password)
	if err != nil {
		return err
	}
	c.ctx = ctx

	c.log.WithField("state", ctx.AuthState).Debug("beginning IPMI session establishment")

	if err := c.discoverAuthCapabilities(); err != nil {
		return c.fail(err)
	}
	if err := c.discoverCipherSuites(); err != nil {
		return c.fail(err)
	}
	ctx.AuthState = StateAuthentication
	c.log.WithField("state", ctx.AuthState).Debug("cipher suite selected")

	if err := c.openSession(); err != nil {
		return c.fail(err)
	}
	ctx.AuthState = StateRAKP1
	c.log.WithField("state", ctx.AuthState).Debug("RMCP+ session opened")

	if err := c.rakpExchange(); err != nil {
		return c.fail(err)
	}
	ctx.AuthState = StateEstablished
	c.log.WithField("state", ctx.AuthState).Info("IPMI session established")

	return nil
}

func (c *Client) fail(err error) error {
	c.ctx.AuthState = StateFailed
	c.log.WithError(err).WithField("state", c.ctx.AuthState).Warn("IPMI session establishment failed")
	return err
}

// discoverAuthCapabilities sends Get Channel Authentication Capabilities
// over the IPMI 1.5-shaped pre-session framing, requesting IPMI v2.0.
func (c *Client) discoverAuthCapabilities() error {
	const cmdGetChannelAuthCaps = 0x38
	const channelCurrent = 0x0E
	const requestIPMIv20 = 0x80

	req := IpmiRequest{
		ResponderAddr: BMCAddress(),
		NetFn:         NetFnApp,
		RequesterAddr: RemoteConsoleAddress(),
		Command:       cmdGetChannelAuthCaps,
		Data:          []byte{channelCurrent | requestIPMIv20, roleByte(c.privilege())},
	}

	packet := buildPreSessionPacket(0, c.ctx.sequence, req.Encode())
	c.ctx.sequence++

	raw, err := c.transport.SendRecv(packet)
	if err != nil {
		return err
	}
	body, err := stripRMCPHeader(raw)
	if err != nil {
		return err
	}
	if len(body) < 10 {
		return ErrMalformed{Detail: "auth capabilities pre-session header too short"}
	}
	payload := body[10:]

	resp, err := ParseIpmiResponse(payload)
	if err != nil {
		return err
	}
	if resp.CompletionCode != 0 {
		return ErrFailedToOpenSession{Phase: "GetChannelAuthCapabilities", Status: resp.CompletionCode}
	}
	if len(resp.Data) < 2 {
		return ErrMalformed{Detail: "auth capabilities response too short"}
	}
	channel := resp.Data[0]
	c.ctx.ChannelNumber = &channel

	supportsV2 := resp.Data[1]&0x02 != 0
	if !supportsV2 {
		return ErrUnsupportedVersion{}
	}
	return nil
}

// discoverCipherSuites pages through Get Channel Cipher Suites until the
// BMC reports the last record, then selects the strongest suite.
func (c *Client) discoverCipherSuites() error {
	const cmdGetChannelCipherSuites = 0x54
	const channelCurrent = 0x0E
	const payloadTypeIPMI = 0x00

	for {
		req := IpmiRequest{
			ResponderAddr: BMCAddress(),
			NetFn:         NetFnApp,
			RequesterAddr: RemoteConsoleAddress(),
			Command:       cmdGetChannelCipherSuites,
			Data:          []byte{channelCurrent, payloadTypeIPMI, 0x00, c.ctx.cipherListIndex},
		}
		packet := buildPreSessionPacket(0, c.ctx.sequence, req.Encode())
		c.ctx.sequence++

		raw, err := c.transport.SendRecv(packet)
		if err != nil {
			return err
		}
		body, err := stripRMCPHeader(raw)
		if err != nil {
			return err
		}
		if len(body) < 10 {
			return ErrMalformed{Detail: "cipher suites pre-session header too short"}
		}
		resp, err := ParseIpmiResponse(body[10:])
		if err != nil {
			return err
		}
		if resp.CompletionCode != 0 {
			return ErrFailedToOpenSession{Phase: "GetChannelCipherSuites", Status: resp.CompletionCode}
		}
		if len(resp.Data) < 1 {
			return ErrMalformed{Detail: "cipher suites response carried no data"}
		}
		chunk := resp.Data[1:]
		c.ctx.cipherSuiteBytes = append(c.ctx.cipherSuiteBytes, chunk...)

		isLast := len(chunk) < 16
		if isLast {
			break
		}
		c.ctx.cipherListIndex++
		if c.ctx.cipherListIndex > 63 {
			break
		}
	}

	suites := ParseCipherSuites(0, c.ctx.cipherSuiteBytes)
	best := SelectCipherSuite(suites)
	c.ctx.Auth = best.Auth
	c.ctx.Integrity = best.Integrity
	c.ctx.Confidentiality = best.Confidentiality
	return nil
}

// openSession sends the RMCP+ Open Session Request and parses the
// response, recording the BMC's session id and confirmed algorithms.
func (c *Client) openSession() error {
	req := OpenSessionRequest{
		MessageTag:       0,
		MaxPrivilege:     c.privilege(),
		ConsoleSessionID: c.ctx.ConsoleSessionID,
		Auth:             c.ctx.Auth,
		Integrity:        c.ctx.Integrity,
		Confidentiality:  c.ctx.Confidentiality,
	}
	packet := buildSessionPacket(PayloadOpenReq, 0, 0, req.Encode())

	raw, err := c.transport.SendRecv(packet)
	if err != nil {
		return err
	}
	body, err := stripRMCPHeader(raw)
	if err != nil {
		return err
	}
	_, payload, err := parseSessionHeaderV2(body)
	if err != nil {
		return err
	}
	resp, err := ParseOpenSessionResponse(payload)
	if err != nil {
		return err
	}
	if resp.Status != 0 {
		return ErrFailedToOpenSession{Phase: "OpenSessionRequest", Status: resp.Status}
	}

	c.ctx.ManagedSystemSessionID = resp.ManagedSystemSessionID
	c.ctx.Auth = resp.Auth
	c.ctx.Integrity = resp.Integrity
	c.ctx.Confidentiality = resp.Confidentiality
	return nil
}

// rakpExchange drives RAKP Messages 1-4, deriving and validating
// session keys along the way.
func (c *Client) rakpExchange() error {
	rakp1 := RAKPMessage1{
		MessageTag:             0,
		ManagedSystemSessionID: c.ctx.ManagedSystemSessionID,
		ConsoleRandom:          c.ctx.ConsoleRandom,
		RequestedRole:          c.privilege(),
		Username:               c.ctx.Username,
	}
	packet := buildSessionPacket(PayloadRAKP1, 0, 0, rakp1.Encode())

	raw, err := c.transport.SendRecv(packet)
	if err != nil {
		return err
	}
	body, err := stripRMCPHeader(raw)
	if err != nil {
		return err
	}
	_, payload, err := parseSessionHeaderV2(body)
	if err != nil {
		return err
	}
	rakp2, err := ParseRAKPMessage2(payload)
	if err != nil {
		return err
	}
	if rakp2.Status != 0 {
		return ErrFailedToOpenSession{Phase: "RAKP1/RAKP2", Status: rakp2.Status}
	}

	c.ctx.ManagedSystemRandom = rakp2.ManagedSystemRandom
	c.ctx.ManagedSystemGUID = rakp2.ManagedSystemGUID

	if !ValidateRAKP2(c.ctx.password, c.ctx.ConsoleSessionID, c.ctx.ManagedSystemSessionID,
		c.ctx.ConsoleRandom, c.ctx.ManagedSystemRandom, c.ctx.ManagedSystemGUID,
		c.privilege(), c.ctx.Username, rakp2.AuthCode) {
		return ErrFailedToValidateRAKP2{}
	}

	c.ctx.SIK = DeriveSIK(c.ctx.password, c.ctx.ConsoleRandom, c.ctx.ManagedSystemRandom, c.privilege(), c.ctx.Username)
	c.ctx.K1 = DeriveK1(c.ctx.SIK)
	c.ctx.K2 = DeriveK2(c.ctx.SIK)

	c.ctx.AuthState = StateRAKP3
	c.log.WithField("state", c.ctx.AuthState).Debug("RAKP2 validated, session keys derived")

	authCode := ComputeRAKP3AuthCode(c.ctx.password, c.ctx.ManagedSystemRandom, c.ctx.ConsoleSessionID, c.privilege(), c.ctx.Username)
	rakp3 := RAKPMessage3{
		MessageTag:             0,
		Status:                 0,
		ManagedSystemSessionID: c.ctx.ManagedSystemSessionID,
		AuthCode:               authCode,
	}
	packet = buildSessionPacket(PayloadRAKP3, 0, 0, rakp3.Encode())

	raw, err = c.transport.SendRecv(packet)
	if err != nil {
		return err
	}
	body, err = stripRMCPHeader(raw)
	if err != nil {
		return err
	}
	_, payload, err = parseSessionHeaderV2(body)
	if err != nil {
		return err
	}
	rakp4, err := ParseRAKPMessage4(payload)
	if err != nil {
		return err
	}
	if rakp4.Status != 0 {
		return ErrFailedToOpenSession{Phase: "RAKP3/RAKP4", Status: rakp4.Status}
	}

	if len(rakp4.IntegrityCheckValue) == 0 {
		return ErrFailedToValidateRAKP4{}
	}
	if !ValidateRAKP4(c.ctx.SIK, c.ctx.ConsoleRandom, c.ctx.ManagedSystemSessionID, c.ctx.ManagedSystemGUID, rakp4.IntegrityCheckValue) {
		return ErrFailedToValidateRAKP4{}
	}

	return nil
}

// Close releases the transport and zeroes session key material.
func (c *Client) Close() error {
	if c.ctx != nil {
		c.ctx.Zero()
	}
	return c.transport.Close()
}
