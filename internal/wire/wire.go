package wire

import (
	"encoding/base64"
	"errors"
)

const (
	version   byte = '1'
	separator byte = ':'
	hdr            = 3
)

// Format identifies the structured codec that produced an envelope body.
type Format byte

const (
	FormatMsgpack  Format = 'm'
	FormatCBOR     Format = 'c'
	FormatProtobuf Format = 'p'
	FormatJSON     Format = 'j'
)

var ErrCorrupt = errors.New("settings: corrupt value")

// Text reports whether the format's payload is stored verbatim.
// Binary payloads are base64 armored so the envelope stays text-safe.
func (f Format) Text() bool { return f == FormatJSON }

func (f Format) Valid() bool {
	switch f {
	case FormatMsgpack, FormatCBOR, FormatProtobuf, FormatJSON:
		return true
	}
	return false
}

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	case FormatProtobuf:
		return "protobuf"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// Envelope: tag(1) | ver(1) | ':' | body
//
//	m1:gqRuYW1l...   msgpack, base64 body
//	j1:{"name":"x"}  json, raw body
func Encode(f Format, payload []byte) string {
	var body string
	if f.Text() {
		body = string(payload)
	} else {
		body = base64.StdEncoding.EncodeToString(payload)
	}
	b := make([]byte, 0, hdr+len(body))
	b = append(b, byte(f), version, separator)
	b = append(b, body...)
	return string(b)
}

func Decode(s string) (Format, []byte, error) {
	if len(s) < hdr || s[1] != version || s[2] != separator {
		return 0, nil, ErrCorrupt
	}
	f := Format(s[0])
	if !f.Valid() {
		return 0, nil, ErrCorrupt
	}
	body := s[hdr:]
	if f.Text() {
		return f, []byte(body), nil
	}
	payload, err := base64.StdEncoding.Strict().DecodeString(body)
	if err != nil {
		return 0, nil, ErrCorrupt
	}
	return f, payload, nil
}
