// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

import "errors"

// ErrUnknownValueTag is returned when a Value's wire tag byte doesn't match
// a known variant.
var ErrUnknownValueTag = errors.New("proto: unknown value tag")

// ValueKind discriminates a Value's variant (spec §3: "Value").
type ValueKind byte

const (
	ValueSwitch ValueKind = 0
	ValuePwm    ValueKind = 1
)

// Value is either a boolean switch or a percentage PWM duty cycle; wire
// size is always 2 bytes (tag, operand).
type Value struct {
	Kind    ValueKind
	State   bool
	Percent byte
}

// Switch constructs a Switch-kind Value.
func Switch(state bool) Value { return Value{Kind: ValueSwitch, State: state} }

// Pwm constructs a Pwm-kind Value.
func Pwm(percent byte) Value { return Value{Kind: ValuePwm, Percent: percent} }

// Serialize encodes the value as its 2-byte wire form.
func (v Value) Serialize() [2]byte {
	switch v.Kind {
	case ValueSwitch:
		var state byte
		if v.State {
			state = 1
		}
		return [2]byte{byte(ValueSwitch), state}
	case ValuePwm:
		return [2]byte{byte(ValuePwm), v.Percent}
	default:
		return [2]byte{}
	}
}

// DeserializeValue decodes a 2-byte wire form into a Value.
func DeserializeValue(buf [2]byte) (Value, error) {
	switch ValueKind(buf[0]) {
	case ValueSwitch:
		return Switch(buf[1] == 1), nil
	case ValuePwm:
		return Pwm(buf[1]), nil
	default:
		return Value{}, ErrUnknownValueTag
	}
}
