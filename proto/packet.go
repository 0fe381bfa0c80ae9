// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

import "fmt"

// PacketDataKind is the first payload byte, discriminating a PacketData's
// variant (spec §4.6).
type PacketDataKind byte

const (
	KindInitProbe                PacketDataKind = 0
	KindInitProbeResponse        PacketDataKind = 1
	KindInit                     PacketDataKind = 2
	KindAcknowledge              PacketDataKind = 3
	KindError                    PacketDataKind = 4
	KindRestart                  PacketDataKind = 5
	KindConfigure                PacketDataKind = 6
	KindMetrics                  PacketDataKind = 7
	KindMetricsResponse          PacketDataKind = 8
	KindConfigureOptions         PacketDataKind = 9
	KindConfigureOptionsResponse PacketDataKind = 10
)

// UnknownDiscriminatorError reports an out-of-range PacketData variant id
// (spec §4.6: "Unknown discriminator IDs produce a decode error
// UnknownID(n)").
type UnknownDiscriminatorError struct {
	ID byte
}

func (e *UnknownDiscriminatorError) Error() string {
	return fmt.Sprintf("proto: unknown packet data discriminator %d", e.ID)
}

// PacketData is the payload of a Packet, tagged by Kind; only the fields
// relevant to that Kind are populated (spec §3: "PacketData variants").
type PacketData struct {
	Kind PacketDataKind

	// InitProbeResponse
	Status bool
	// Init / InitProbeResponse (when Status)
	ID byte

	// Configure
	ConfigureOption DataPoint

	// MetricsResponse
	Metrics OptionsList[DataPoint]

	// ConfigureOptionsResponse
	Options OptionsList[ConfigOption]
}

func InitProbe() PacketData { return PacketData{Kind: KindInitProbe} }

func InitProbeResponse(status bool, id byte) PacketData {
	return PacketData{Kind: KindInitProbeResponse, Status: status, ID: id}
}

func InitAssign(id byte) PacketData { return PacketData{Kind: KindInit, ID: id} }

func Acknowledge() PacketData { return PacketData{Kind: KindAcknowledge} }

func ProtocolError() PacketData { return PacketData{Kind: KindError} }

func Restart() PacketData { return PacketData{Kind: KindRestart} }

func Configure(option DataPoint) PacketData {
	return PacketData{Kind: KindConfigure, ConfigureOption: option}
}

func Metrics() PacketData { return PacketData{Kind: KindMetrics} }

func MetricsResponse(metrics OptionsList[DataPoint]) PacketData {
	return PacketData{Kind: KindMetricsResponse, Metrics: metrics}
}

func ConfigureOptions() PacketData { return PacketData{Kind: KindConfigureOptions} }

func ConfigureOptionsResponse(options OptionsList[ConfigOption]) PacketData {
	return PacketData{Kind: KindConfigureOptionsResponse, Options: options}
}

// serialize writes the payload into buf (the 253 payload bytes of a
// packet), zero-padding anything unwritten, per spec §4.6's per-variant
// layout table.
func (d PacketData) serialize(buf *[253]byte) error {
	for i := range buf {
		buf[i] = 0
	}
	buf[0] = byte(d.Kind)

	switch d.Kind {
	case KindInitProbe, KindAcknowledge, KindError, KindRestart, KindMetrics, KindConfigureOptions:
		return nil

	case KindInitProbeResponse:
		if d.Status {
			buf[1] = 1
			buf[2] = d.ID
		}
		return nil

	case KindInit:
		buf[1] = d.ID
		return nil

	case KindConfigure:
		_, err := d.ConfigureOption.Serialize(buf[1:])
		return err

	case KindMetricsResponse:
		_, err := SerializeOptionsList(d.Metrics, buf[1:], DataPoint.Serialize)
		return err

	case KindConfigureOptionsResponse:
		_, err := SerializeOptionsList(d.Options, buf[1:], ConfigOption.Serialize)
		return err

	default:
		return &UnknownDiscriminatorError{ID: byte(d.Kind)}
	}
}

// parsePacketData decodes a payload buffer into a PacketData.
func parsePacketData(buf *[253]byte) (PacketData, error) {
	kind := PacketDataKind(buf[0])

	switch kind {
	case KindInitProbe:
		return InitProbe(), nil
	case KindAcknowledge:
		return Acknowledge(), nil
	case KindError:
		return ProtocolError(), nil
	case KindRestart:
		return Restart(), nil
	case KindMetrics:
		return Metrics(), nil
	case KindConfigureOptions:
		return ConfigureOptions(), nil

	case KindInitProbeResponse:
		status := buf[1] != 0
		return InitProbeResponse(status, buf[2]), nil

	case KindInit:
		return InitAssign(buf[1]), nil

	case KindConfigure:
		dp, _, err := DeserializeDataPoint(buf[1:])
		if err != nil {
			return PacketData{}, err
		}
		return Configure(dp), nil

	case KindMetricsResponse:
		list, _, err := DeserializeOptionsList(buf[1:], DeserializeDataPoint)
		if err != nil {
			return PacketData{}, err
		}
		return MetricsResponse(list), nil

	case KindConfigureOptionsResponse:
		list, _, err := DeserializeOptionsList(buf[1:], DeserializeConfigOption)
		if err != nil {
			return PacketData{}, err
		}
		return ConfigureOptionsResponse(list), nil

	default:
		return PacketData{}, &UnknownDiscriminatorError{ID: buf[0]}
	}
}
