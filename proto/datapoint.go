// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

// DataPoint pairs a name with a Value, used for both Configure and
// MetricsResponse payloads (spec §3: "DataPoint").
type DataPoint struct {
	Name  string
	Value Value
}

// Serialize writes the DataPoint (length-prefixed name, then the 2-byte
// Value) and returns the remaining buffer.
func (d DataPoint) Serialize(buf []byte) ([]byte, error) {
	rest, err := serializeString(d.Name, buf)
	if err != nil {
		return nil, err
	}
	if len(rest) < 2 {
		return nil, ErrBufferTooShort
	}
	v := d.Value.Serialize()
	rest[0], rest[1] = v[0], v[1]
	return rest[2:], nil
}

// DeserializeDataPoint reads a DataPoint and returns the remaining buffer.
func DeserializeDataPoint(buf []byte) (DataPoint, []byte, error) {
	name, rest, err := deserializeString(buf)
	if err != nil {
		return DataPoint{}, nil, err
	}
	if len(rest) < 2 {
		return DataPoint{}, nil, ErrBufferTooShort
	}
	value, err := DeserializeValue([2]byte{rest[0], rest[1]})
	if err != nil {
		return DataPoint{}, nil, err
	}
	return DataPoint{Name: name, Value: value}, rest[2:], nil
}

// ValueType names a Value's kind without carrying an operand, used by
// ConfigOption to describe what a configurable accepts (spec §3).
type ValueType byte

const (
	ValueTypeSwitch ValueType = 0
	ValueTypePwm    ValueType = 1
)

// ConfigOption describes one configurable knob an Extension exposes.
type ConfigOption struct {
	Name string
	Type ValueType
}

// Serialize writes the ConfigOption and returns the remaining buffer.
func (c ConfigOption) Serialize(buf []byte) ([]byte, error) {
	rest, err := serializeString(c.Name, buf)
	if err != nil {
		return nil, err
	}
	if len(rest) < 1 {
		return nil, ErrBufferTooShort
	}
	rest[0] = byte(c.Type)
	return rest[1:], nil
}

// DeserializeConfigOption reads a ConfigOption and returns the remaining
// buffer.
func DeserializeConfigOption(buf []byte) (ConfigOption, []byte, error) {
	name, rest, err := deserializeString(buf)
	if err != nil {
		return ConfigOption{}, nil, err
	}
	if len(rest) < 1 {
		return ConfigOption{}, nil, ErrBufferTooShort
	}
	ty := ValueType(rest[0])
	if ty != ValueTypeSwitch && ty != ValueTypePwm {
		return ConfigOption{}, nil, ErrUnknownValueTag
	}
	return ConfigOption{Name: name, Type: ty}, rest[1:], nil
}
