// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ReadPDU reads exactly one PDU from r. A maxLength of zero selects
// DefaultMaxLength. Transport errors are returned as is; malformed PDUs are
// reported as *StatusError.
func ReadPDU(r io.Reader, maxLength uint32) (PDU, error) {
	if maxLength == 0 {
		maxLength = DefaultMaxLength
	}

	var raw [HeaderLength]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}

	h := Header{
		Length:   binary.BigEndian.Uint32(raw[0:4]),
		ID:       CommandID(binary.BigEndian.Uint32(raw[4:8])),
		Status:   CommandStatus(binary.BigEndian.Uint32(raw[8:12])),
		Sequence: binary.BigEndian.Uint32(raw[12:16]),
	}

	if h.Length < HeaderLength || h.Length > maxLength {
		err := statusErrorf(h, StatusInvalidCmdLength, "command_length %d outside [%d, %d]", h.Length, HeaderLength, maxLength)
		err.Framing = true
		return nil, err
	}

	body := make([]byte, h.Length-HeaderLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	return Decode(h, body)
}

// Decode builds a PDU from an already split header and body.
func Decode(h Header, body []byte) (PDU, error) {
	switch h.ID {
	case BindReceiver, BindTransmitter, BindTransceiver:
		return decodeBind(h, body)
	case BindReceiverResp, BindTransmitterResp, BindTransceiverResp:
		return decodeBindResp(h, body)
	case GenericNack, Unbind, UnbindResp, EnquireLink, EnquireLinkResp:
		if len(body) != 0 {
			return nil, statusErrorf(h, StatusInvalidCmdLength, "%s carries %d unexpected body bytes", h.ID, len(body))
		}
		return Empty{Header: h}, nil
	default:
		return nil, statusErrorf(h, StatusInvalidCommandID, "unsupported %s", h.ID)
	}
}

func decodeBind(h Header, body []byte) (PDU, error) {
	r := bodyReader{h: h, b: body}
	p := Bind{Header: h}
	p.SystemID = r.cstring("system_id", maxSystemIDLength, StatusInvalidSystemID)
	p.Password = r.cstring("password", maxPasswordLength, StatusInvalidPassword)
	p.SystemType = r.cstring("system_type", maxSystemTypeLength, StatusInvalidSystemType)
	p.InterfaceVersion = r.octet("interface_version")
	p.AddrTON = r.octet("addr_ton")
	p.AddrNPI = r.octet("addr_npi")
	p.AddressRange = r.cstring("address_range", maxAddressRangeLength, StatusInvalidMsgLength)
	if r.err == nil && r.remaining() != 0 {
		r.err = statusErrorf(h, StatusInvalidMsgLength, "%d trailing bytes after address_range", r.remaining())
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func decodeBindResp(h Header, body []byte) (PDU, error) {
	p := BindResp{Header: h}
	if len(body) == 0 {
		return p, nil
	}

	r := bodyReader{h: h, b: body}
	p.SystemID = r.cstring("system_id", maxSystemIDLength, StatusInvalidSystemID)
	for r.err == nil && r.remaining() > 0 {
		tag, value := r.tlv()
		if r.err == nil && tag == tagSCInterfaceVersion && len(value) == 1 {
			p.SCInterfaceVersion = value[0]
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// Encode serialises p, computing command_length.
func Encode(p PDU) []byte {
	h := p.PDUHeader()
	b := make([]byte, HeaderLength, HeaderLength+64)
	b = p.appendBody(b)
	binary.BigEndian.PutUint32(b[0:4], uint32(len(b)))
	binary.BigEndian.PutUint32(b[4:8], uint32(h.ID))
	binary.BigEndian.PutUint32(b[8:12], uint32(h.Status))
	binary.BigEndian.PutUint32(b[12:16], h.Sequence)
	return b
}

// WritePDU writes p to w in a single Write call.
func WritePDU(w io.Writer, p PDU) error {
	_, err := w.Write(Encode(p))
	return err
}

func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

// bodyReader walks a PDU body and keeps the first error, so decoders can read
// every field without checking in between.
type bodyReader struct {
	h   Header
	b   []byte
	off int
	err error
}

func (r *bodyReader) remaining() int {
	return len(r.b) - r.off
}

func (r *bodyReader) cstring(field string, limit int, tooLong CommandStatus) string {
	if r.err != nil {
		return ""
	}
	i := bytes.IndexByte(r.b[r.off:], 0)
	if i < 0 {
		r.err = statusErrorf(r.h, StatusInvalidMsgLength, "unterminated %s", field)
		return ""
	}
	if i+1 > limit {
		r.err = statusErrorf(r.h, tooLong, "%s longer than %d octets", field, limit-1)
		return ""
	}
	s := string(r.b[r.off : r.off+i])
	r.off += i + 1
	return s
}

func (r *bodyReader) octet(field string) byte {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 1 {
		r.err = statusErrorf(r.h, StatusInvalidMsgLength, "missing %s", field)
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *bodyReader) tlv() (uint16, []byte) {
	if r.remaining() < 4 {
		r.err = statusErrorf(r.h, StatusInvalidOptionalPar, "truncated optional parameter header")
		return 0, nil
	}
	tag := binary.BigEndian.Uint16(r.b[r.off:])
	length := int(binary.BigEndian.Uint16(r.b[r.off+2:]))
	r.off += 4
	if r.remaining() < length {
		r.err = statusErrorf(r.h, StatusInvalidOptionalPar, "optional parameter 0x%04x overruns body", tag)
		return 0, nil
	}
	value := r.b[r.off : r.off+length]
	r.off += length
	return tag, value
}
