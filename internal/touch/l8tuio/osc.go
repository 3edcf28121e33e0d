package l8tuio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOddArgumentTypes is returned when a message is built with an argument
// whose Go type doesn't match any OSC atomic type this encoder supports.
var ErrOddArgumentTypes = errors.New("l8tuio: unsupported OSC argument type")

// oscImmediate is the OSC 1.0 special-case 64-bit time tag meaning "execute
// as soon as possible", used for every bundle this module sends: the
// pipeline has no use for scheduled/future-dated TUIO delivery.
var oscImmediate = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

// oscMessage is one fully-encoded OSC message: an address pattern followed
// by a comma-prefixed type tag string and its arguments, per the OSC 1.0
// spec (padding every string and blob to a 4-byte boundary).
type oscMessage struct {
	address string
	args    []interface{}
}

func newOSCMessage(address string, args ...interface{}) oscMessage {
	return oscMessage{address: address, args: args}
}

// encode renders the message to its wire bytes, or an error if an argument
// isn't an int32, float32, or string.
func (m oscMessage) encode() ([]byte, error) {
	var buf bytes.Buffer
	writeOSCString(&buf, m.address)

	tags := make([]byte, 0, len(m.args)+1)
	tags = append(tags, ',')
	for _, a := range m.args {
		switch a.(type) {
		case int32:
			tags = append(tags, 'i')
		case float32:
			tags = append(tags, 'f')
		case string:
			tags = append(tags, 's')
		default:
			return nil, fmt.Errorf("%w: %T", ErrOddArgumentTypes, a)
		}
	}
	writeOSCString(&buf, string(tags))

	for _, a := range m.args {
		switch v := a.(type) {
		case int32:
			_ = binary.Write(&buf, binary.BigEndian, v)
		case float32:
			_ = binary.Write(&buf, binary.BigEndian, math.Float32bits(v))
		case string:
			writeOSCString(&buf, v)
		}
	}

	return buf.Bytes(), nil
}

// writeOSCString writes s null-terminated and zero-padded so the string
// (including its terminator) occupies a multiple of 4 bytes.
func writeOSCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	pad := 4 - (len(s) % 4)
	buf.Write(make([]byte, pad))
}

// oscBundle is an ordered list of OSC messages sharing one time tag,
// wrapped per OSC 1.0's "#bundle" container format: each element is
// prefixed with its own int32 byte length so receivers can skip elements
// they don't understand.
type oscBundle struct {
	messages []oscMessage
}

func (b *oscBundle) add(m oscMessage) { b.messages = append(b.messages, m) }

func (b *oscBundle) encode() ([]byte, error) {
	var buf bytes.Buffer
	writeOSCString(&buf, "#bundle")
	buf.Write(oscImmediate[:])

	for _, m := range b.messages {
		encoded, err := m.encode()
		if err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, int32(len(encoded))); err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}

	return buf.Bytes(), nil
}
