// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	cases := []Value{Switch(true), Switch(false), Pwm(10), Pwm(255)}
	for _, v := range cases {
		got, err := DeserializeValue(v.Serialize())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDataPointRoundTrip(t *testing.T) {
	dp := DataPoint{Name: "testing", Value: Pwm(10)}

	var buf [32]byte
	_, err := dp.Serialize(buf[:])
	require.NoError(t, err)

	got, _, err := DeserializeDataPoint(buf[:])
	require.NoError(t, err)
	assert.Equal(t, dp, got)
}

func TestConfigOptionRoundTrip(t *testing.T) {
	co := ConfigOption{Name: "testing", Type: ValueTypeSwitch}

	var buf [32]byte
	_, err := co.Serialize(buf[:])
	require.NoError(t, err)

	got, _, err := DeserializeConfigOption(buf[:])
	require.NoError(t, err)
	assert.Equal(t, co, got)
}

func TestOptionsListRoundTrip(t *testing.T) {
	items := []ConfigOption{
		{Name: "testing1", Type: ValueTypePwm},
		{Name: "testing2", Type: ValueTypeSwitch},
	}
	list := FixedOptions(items)

	var buf [256]byte
	_, err := SerializeOptionsList(list, buf[:], ConfigOption.Serialize)
	require.NoError(t, err)

	got, _, err := DeserializeOptionsList(buf[:], DeserializeConfigOption)
	require.NoError(t, err)
	require.Equal(t, len(items), got.Length())

	for _, want := range items {
		item, ok := got.Next(DeserializeConfigOption)
		require.True(t, ok)
		assert.Equal(t, want, item)
	}
	_, ok := got.Next(DeserializeConfigOption)
	assert.False(t, ok)
}

func TestPacketRoundTripSimpleVariants(t *testing.T) {
	cases := []Packet{
		{ProtocolVersion: Version, Receiver: ReceiverEveryone, Data: InitProbe()},
		{ProtocolVersion: Version, Receiver: ReceiverController, Data: InitProbeResponse(false, 0)},
		{ProtocolVersion: Version, Receiver: ReceiverEveryone, Data: InitProbeResponse(true, 13)},
		{ProtocolVersion: Version, Receiver: ReceiverEveryone, Data: InitAssign(13)},
		{ProtocolVersion: Version, Receiver: ReceiverController, Data: Acknowledge()},
		{ProtocolVersion: Version, Receiver: ReceiverExtension(13), Data: Restart()},
		{ProtocolVersion: Version, Receiver: ReceiverExtension(13), Data: Metrics()},
		{ProtocolVersion: Version, Receiver: ReceiverExtension(13), Data: ConfigureOptions()},
	}

	for _, p := range cases {
		frame, err := p.Serialize()
		require.NoError(t, err)

		got, err := Deserialize(frame)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestPacketRoundTripConfigure(t *testing.T) {
	p := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverExtension(13),
		Data:            Configure(DataPoint{Name: "testing", Value: Switch(true)}),
	}

	frame, err := p.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(frame)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPacketRoundTripMetricsResponse(t *testing.T) {
	p := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverController,
		Data:            MetricsResponse(FixedOptions([]DataPoint{{Name: "testing", Value: Pwm(10)}})),
	}

	frame, err := p.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(frame)
	require.NoError(t, err)
	require.Equal(t, KindMetricsResponse, got.Data.Kind)

	item, ok := got.Data.Metrics.Next(DeserializeDataPoint)
	require.True(t, ok)
	assert.Equal(t, DataPoint{Name: "testing", Value: Pwm(10)}, item)
}

func TestPacketRoundTripConfigureOptionsResponse(t *testing.T) {
	p := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverController,
		Data:            ConfigureOptionsResponse(FixedOptions([]ConfigOption{{Name: "testing", Type: ValueTypeSwitch}})),
	}

	frame, err := p.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(frame)
	require.NoError(t, err)
	require.Equal(t, KindConfigureOptionsResponse, got.Data.Kind)

	item, ok := got.Data.Options.Next(DeserializeConfigOption)
	require.True(t, ok)
	assert.Equal(t, ConfigOption{Name: "testing", Type: ValueTypeSwitch}, item)
}

func TestDeserializeRejectsChecksumMismatch(t *testing.T) {
	p := NewInitProbe()
	frame, err := p.Serialize()
	require.NoError(t, err)

	frame[255] ^= 0xFF

	_, err = Deserialize(frame)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDeserializeRejectsUnknownDiscriminator(t *testing.T) {
	var frame [256]byte
	frame[0] = Version
	frame[1] = ReceiverEveryone.Byte()
	frame[2] = 200 // not a known PacketDataKind
	frame[255] = crc8(frame[:255])

	_, err := Deserialize(frame)
	var unknown *UnknownDiscriminatorError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, byte(200), unknown.ID)
}

// TestInitProbeHandshakeWireBytes mirrors scenario S1: the literal byte
// layout of an InitProbe frame and a "present but uninitialised"
// InitProbeResponse reply.
func TestInitProbeHandshakeWireBytes(t *testing.T) {
	probe, err := NewInitProbe().Serialize()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), probe[0])
	assert.Equal(t, byte(0xFF), probe[1])
	assert.Equal(t, byte(0x00), probe[2])

	reply, err := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverController,
		Data:            InitProbeResponse(false, 0),
	}.Serialize()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), reply[0])
	assert.Equal(t, byte(0x00), reply[1])
	assert.Equal(t, byte(0x01), reply[2])
	assert.Equal(t, byte(0x00), reply[3])
}

// TestAssignmentWireBytes mirrors scenario S2.
func TestAssignmentWireBytes(t *testing.T) {
	initPkt, err := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverEveryone,
		Data:            InitAssign(13),
	}.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF, 0x02, 0x0D}, initPkt[:4])

	ackPkt, err := NewAck(ReceiverController).Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x03}, ackPkt[:3])

	postAssign, err := Packet{
		ProtocolVersion: Version,
		Receiver:        ReceiverController,
		Data:            InitProbeResponse(true, 13),
	}.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x01, 0x0D}, postAssign[:5])
}
