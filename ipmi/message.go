package ipmi

// IpmiRequest is the IPMI message layer carried inside a session
// payload: requester/responder addressing, the command's NetFn/LUN, the
// command code and data, protected by the two IPMI checksums.
type IpmiRequest struct {
	ResponderAddr Address
	NetFn         NetFn
	ResponderLun  Lun
	RequesterAddr Address
	Sequence      uint8 // 6-bit request sequence
	RequesterLun  Lun
	Command       uint8
	Data          []byte
}

// Encode packs the request into its wire bytes, computing both
// checksums.
//
// The requester-sequence byte packs Sequence with RequesterLun, per the
// IPMI specification (it is easy to transcribe this as ResponderLun by
// mistake, since both LUNs are nearby in the struct).
func (r IpmiRequest) Encode() []byte {
	head := []byte{
		r.ResponderAddr.Encode(),
		netFnByte(uint8(r.NetFn), uint8(r.ResponderLun)),
	}
	chk1 := checksum8(head)

	tail := make([]byte, 0, 3+len(r.Data))
	tail = append(tail, r.RequesterAddr.Encode())
	tail = append(tail, pack2(r.Sequence, uint8(r.RequesterLun), 6))
	tail = append(tail, r.Command)
	tail = append(tail, r.Data...)
	chk2 := checksum8(tail)

	out := make([]byte, 0, len(head)+1+len(tail)+1)
	out = append(out, head...)
	out = append(out, chk1)
	out = append(out, tail...)
	out = append(out, chk2)
	return out
}

// IpmiResponse is the response-direction counterpart of IpmiRequest.
type IpmiResponse struct {
	RequesterAddr  Address
	NetFn          NetFn
	RequesterLun   Lun
	ResponderAddr  Address
	Sequence       uint8
	ResponderLun   Lun
	Command        uint8
	CompletionCode uint8
	Data           []byte
}

// ParseIpmiResponse decodes and checksum-validates an IPMI response
// frame.
func ParseIpmiResponse(buf []byte) (IpmiResponse, error) {
	if len(buf) < 8 {
		return IpmiResponse{}, ErrMalformed{Detail: "IPMI response shorter than minimum 8 bytes"}
	}
	head := buf[0:2]
	chk1 := buf[2]
	if checksum8(head) != chk1 {
		return IpmiResponse{}, ErrMalformed{Detail: "IPMI message checksum 1 mismatch"}
	}
	tail := buf[3 : len(buf)-1]
	chk2 := buf[len(buf)-1]
	if checksum8(tail) != chk2 {
		return IpmiResponse{}, ErrMalformed{Detail: "IPMI message checksum 2 mismatch"}
	}

	netfn, rqLun := splitNetFnByte(head[1])
	rsSeq, rsLun := unpack2(tail[1], 6)

	resp := IpmiResponse{
		RequesterAddr:  ParseAddress(head[0]),
		NetFn:          NetFn(netfn),
		RequesterLun:   Lun(rqLun),
		ResponderAddr:  ParseAddress(tail[0]),
		Sequence:       rsSeq,
		ResponderLun:   Lun(rsLun),
		Command:        tail[2],
		CompletionCode: tail[3],
	}
	if len(tail) > 4 {
		resp.Data = append([]byte(nil), tail[4:]...)
	}
	return resp, nil
}
