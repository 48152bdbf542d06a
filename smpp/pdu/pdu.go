// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdu

import "fmt"

// HeaderLength is the size of the fixed SMPP PDU header.
const HeaderLength = 16

// DefaultMaxLength bounds command_length for PDUs read off the wire.
const DefaultMaxLength uint32 = 64 * 1024

const responseMask CommandID = 0x80000000

// CommandID identifies the SMPP operation carried by a PDU.
type CommandID uint32

// Command IDs used around the bind handshake.
const (
	GenericNack         CommandID = 0x80000000
	BindReceiver        CommandID = 0x00000001
	BindReceiverResp    CommandID = 0x80000001
	BindTransmitter     CommandID = 0x00000002
	BindTransmitterResp CommandID = 0x80000002
	Unbind              CommandID = 0x00000006
	UnbindResp          CommandID = 0x80000006
	BindTransceiver     CommandID = 0x00000009
	BindTransceiverResp CommandID = 0x80000009
	EnquireLink         CommandID = 0x00000015
	EnquireLinkResp     CommandID = 0x80000015
)

var commandNames = map[CommandID]string{
	GenericNack:         "generic_nack",
	BindReceiver:        "bind_receiver",
	BindReceiverResp:    "bind_receiver_resp",
	BindTransmitter:     "bind_transmitter",
	BindTransmitterResp: "bind_transmitter_resp",
	Unbind:              "unbind",
	UnbindResp:          "unbind_resp",
	BindTransceiver:     "bind_transceiver",
	BindTransceiverResp: "bind_transceiver_resp",
	EnquireLink:         "enquire_link",
	EnquireLinkResp:     "enquire_link_resp",
}

func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command_id(0x%08x)", uint32(c))
}

// IsResponse reports whether the id has the response bit set.
func (c CommandID) IsResponse() bool {
	return c&responseMask != 0
}

// Response returns the id of the matching response PDU.
func (c CommandID) Response() CommandID {
	return c | responseMask
}

// IsBind reports whether c is one of the three bind requests.
func (c CommandID) IsBind() bool {
	return c == BindReceiver || c == BindTransmitter || c == BindTransceiver
}

// CommandStatus is the command_status header field.
type CommandStatus uint32

// Status codes from SMPP 3.4 section 5.1.3.
const (
	StatusOK                 CommandStatus = 0x00000000
	StatusInvalidMsgLength   CommandStatus = 0x00000001
	StatusInvalidCmdLength   CommandStatus = 0x00000002
	StatusInvalidCommandID   CommandStatus = 0x00000003
	StatusInvalidBindStatus  CommandStatus = 0x00000004
	StatusAlreadyBound       CommandStatus = 0x00000005
	StatusSystemError        CommandStatus = 0x00000008
	StatusBindFailed         CommandStatus = 0x0000000D
	StatusInvalidPassword    CommandStatus = 0x0000000E
	StatusInvalidSystemID    CommandStatus = 0x0000000F
	StatusInvalidSystemType  CommandStatus = 0x00000053
	StatusInvalidOptionalPar CommandStatus = 0x000000C3
)

var statusNames = map[CommandStatus]string{
	StatusOK:                 "ESME_ROK",
	StatusInvalidMsgLength:   "ESME_RINVMSGLEN",
	StatusInvalidCmdLength:   "ESME_RINVCMDLEN",
	StatusInvalidCommandID:   "ESME_RINVCMDID",
	StatusInvalidBindStatus:  "ESME_RINVBNDSTS",
	StatusAlreadyBound:       "ESME_RALYBND",
	StatusSystemError:        "ESME_RSYSERR",
	StatusBindFailed:         "ESME_RBINDFAIL",
	StatusInvalidPassword:    "ESME_RINVPASWD",
	StatusInvalidSystemID:    "ESME_RINVSYSID",
	StatusInvalidSystemType:  "ESME_RINVSYSTYP",
	StatusInvalidOptionalPar: "ESME_RINVOPTPARAM",
}

func (s CommandStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("command_status(0x%08x)", uint32(s))
}

// Header is the fixed 16 byte prefix of every PDU. Length is filled in on
// decode and recomputed on encode.
type Header struct {
	Length   uint32
	ID       CommandID
	Status   CommandStatus
	Sequence uint32
}

// PDUHeader returns the header; it is promoted to every PDU type.
func (h Header) PDUHeader() Header {
	return h
}

// PDU is any protocol data unit this package can encode and decode.
type PDU interface {
	PDUHeader() Header
	appendBody(b []byte) []byte
}

// Max lengths of C-octet string fields, terminator included.
const (
	maxSystemIDLength     = 16
	maxPasswordLength     = 9
	maxSystemTypeLength   = 13
	maxAddressRangeLength = 41
)

// Bind is bind_receiver, bind_transmitter or bind_transceiver, told apart by
// Header.ID.
type Bind struct {
	Header
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTON          byte
	AddrNPI          byte
	AddressRange     string
}

func (p Bind) appendBody(b []byte) []byte {
	b = appendCString(b, p.SystemID)
	b = appendCString(b, p.Password)
	b = appendCString(b, p.SystemType)
	b = append(b, p.InterfaceVersion, p.AddrTON, p.AddrNPI)
	return appendCString(b, p.AddressRange)
}

// tagSCInterfaceVersion is the sc_interface_version optional parameter.
const tagSCInterfaceVersion uint16 = 0x0210

// BindResp answers a Bind. A zero SCInterfaceVersion omits the optional
// sc_interface_version parameter; a non-OK status omits the whole body.
type BindResp struct {
	Header
	SystemID           string
	SCInterfaceVersion byte
}

func (p BindResp) appendBody(b []byte) []byte {
	if p.Status != StatusOK {
		// body is omitted on a negative bind response
		return b
	}
	b = appendCString(b, p.SystemID)
	if p.SCInterfaceVersion != 0 {
		b = appendUint16(b, tagSCInterfaceVersion)
		b = appendUint16(b, 1)
		b = append(b, p.SCInterfaceVersion)
	}
	return b
}

// Empty is the shape of every header-only PDU: generic_nack, unbind,
// unbind_resp, enquire_link and enquire_link_resp.
type Empty struct {
	Header
}

func (p Empty) appendBody(b []byte) []byte {
	return b
}

// NewGenericNack builds a generic_nack for the given sequence number.
func NewGenericNack(status CommandStatus, sequence uint32) Empty {
	return Empty{Header: Header{ID: GenericNack, Status: status, Sequence: sequence}}
}

// NewResponse builds a header-only response to req with StatusOK.
func NewResponse(req Header) Empty {
	return Empty{Header: Header{ID: req.ID.Response(), Status: StatusOK, Sequence: req.Sequence}}
}
