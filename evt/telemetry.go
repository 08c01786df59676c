package evt

import (
	"fmt"

	"github.com/juju/errors"
)

// Fixed point scale divisor shared by all measurement fields.
const scaleDiv = 32768

const (
	scaleInputVoltage = 64
	scalePower        = 512
	scaleACVoltage    = 512
	scaleACFrequency  = 128
	scaleTemperature  = 256
	scaleEnergy       = 4

	temperatureOffset = 40
)

// Byte offsets within telemetry frame, per channel.
type channelLayout struct {
	id, inputVoltage, power, totalEnergy, temperature, acVoltage, acFrequency int
}

var channelLayouts = [2]channelLayout{
	{id: 20, inputVoltage: 26, power: 28, totalEnergy: 30, temperature: 34, acVoltage: 36, acFrequency: 38},
	{id: 52, inputVoltage: 58, power: 60, totalEnergy: 62, temperature: 66, acVoltage: 68, acFrequency: 70},
}

const offsetVersion = 24

type Channel struct {
	ID           uint32
	InputVoltage float64 // V
	Power        float64 // W
	ACVoltage    float64 // V
	ACFrequency  float64 // Hz
	Temperature  float64 // C
	TotalEnergy  float64 // kWh
	Current      float64 // A, Power/ACVoltage
}

// Reading is decoded telemetry frame. Not modified after DecodeTelemetry.
type Reading struct {
	SWVersion string
	Channels  [2]Channel
}

// DecodeTelemetry requires at least TelemetryLen bytes.
func DecodeTelemetry(frame []byte) (*Reading, error) {
	if len(frame) < TelemetryLen {
		return nil, errors.Annotatef(ErrFrameLength, "telemetry length=%d expected=%d", len(frame), TelemetryLen)
	}
	r := &Reading{
		SWVersion: fmt.Sprintf("%02X.%02X", frame[offsetVersion], frame[offsetVersion+1]),
	}
	for i, lay := range channelLayouts {
		ch := &r.Channels[i]
		ch.ID = decimalID(frame[lay.id : lay.id+4])
		ch.InputVoltage = scaled16(frame, lay.inputVoltage, scaleInputVoltage)
		ch.Power = scaled16(frame, lay.power, scalePower)
		ch.ACVoltage = scaled16(frame, lay.acVoltage, scaleACVoltage)
		ch.ACFrequency = scaled16(frame, lay.acFrequency, scaleACFrequency)
		ch.Temperature = scaled16(frame, lay.temperature, scaleTemperature) - temperatureOffset
		b := frame[lay.totalEnergy:]
		ch.TotalEnergy = float64(U32(b[0], b[1], b[2], b[3])) * scaleEnergy / scaleDiv
		ch.Current = SafeDivide(ch.Power, ch.ACVoltage)
	}
	return r, nil
}

// Fields returns named field mapping: id_1, id_2, sw_version, input_voltage_1, ...
func (r *Reading) Fields() map[string]interface{} {
	m := make(map[string]interface{}, 17)
	m["sw_version"] = r.SWVersion
	for i := range r.Channels {
		ch := &r.Channels[i]
		n := i + 1
		m[fmt.Sprintf("id_%d", n)] = ch.ID
		m[fmt.Sprintf("input_voltage_%d", n)] = ch.InputVoltage
		m[fmt.Sprintf("power_%d", n)] = ch.Power
		m[fmt.Sprintf("ac_voltage_%d", n)] = ch.ACVoltage
		m[fmt.Sprintf("ac_frequency_%d", n)] = ch.ACFrequency
		m[fmt.Sprintf("temperature_%d", n)] = ch.Temperature
		m[fmt.Sprintf("total_energy_%d", n)] = ch.TotalEnergy
		m[fmt.Sprintf("current_%d", n)] = ch.Current
	}
	return m
}

// FieldNames is stable display order of Fields() keys.
func FieldNames() []string {
	names := []string{"sw_version"}
	for _, base := range []string{"id", "input_voltage", "power", "ac_voltage", "ac_frequency", "temperature", "total_energy", "current"} {
		names = append(names, base+"_1", base+"_2")
	}
	return names
}

func (r *Reading) String() string {
	a, b := &r.Channels[0], &r.Channels[1]
	return fmt.Sprintf("(sw=%s id=%d/%d power=%.2f/%.2f ac=%.2fV %.2fHz energy=%.4f/%.4f)",
		r.SWVersion, a.ID, b.ID, a.Power, b.Power, a.ACVoltage, a.ACFrequency, a.TotalEnergy, b.TotalEnergy)
}

func U16(b1, b2 byte) uint16 { return uint16(b1)<<8 | uint16(b2) }
func U32(b1, b2, b3, b4 byte) uint32 {
	return uint32(b1)<<24 | uint32(b2)<<16 | uint32(b3)<<8 | uint32(b4)
}

// SafeDivide returns 0 when denominator is 0.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// 4 bytes, each a pair of decimal digits: 31 52 58 20 -> 49828832
func decimalID(b []byte) uint32 {
	return uint32(b[0])*1000000 + uint32(b[1])*10000 + uint32(b[2])*100 + uint32(b[3])
}

func scaled16(frame []byte, offset int, scale float64) float64 {
	return float64(U16(frame[offset], frame[offset+1])) * scale / scaleDiv
}
