package evt_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/helpers"
)

const (
	testTelemetryHex = "680056681004315258207a007a01000000000000315258207a7a40b02d860000bafb2e8c3c4931fe000000000000000000000000315258217a7a3131017b00000e4a2ab33c4931fe020200000000000000000000ef16"
	testPollHex      = "680020681006315258200000000000014b0000e7010000010500000000009016"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		expect string
		ok     bool
	}{
		{"empty", "", "", false},
		{"no-start", "0102031604", "", false},
		{"start-only", "aa680001020304", "", false},
		{"end-before-start", "16aa68000102", "", false},
		{"minimal", "680016", "680016", true},
		{"noise-around", "ffee6800aabbcc16ddee", "6800aabbcc16", true},
		{"first-end-wins", "6800aa16bb16", "6800aa16", true},
		{"first-start-wins", "6800aa6800bb16", "6800aa6800bb16", true},
		{"split-start", "68aa6800bb16", "6800bb16", true},
		{"telemetry", testTelemetryHex, testTelemetryHex, true},
		{"telemetry+noise", "0000" + testTelemetryHex + "68", testTelemetryHex, true},
		{"poll", testPollHex, testPollHex, true},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			frame, ok := evt.Extract(helpers.MustHex(c.input))
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.expect, hex.EncodeToString(frame))
			} else {
				assert.Nil(t, frame)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	assert.Equal(t, evt.KindTelemetry, evt.Classify(helpers.MustHex(testTelemetryHex)))
	assert.Equal(t, evt.KindPoll, evt.Classify(helpers.MustHex(testPollHex)))
	assert.Equal(t, evt.KindUnknown, evt.Classify(make([]byte, 24)))
	assert.Equal(t, evt.KindUnknown, evt.Classify(nil))
	assert.Equal(t, "(32 poll)"+testPollHex, evt.FrameString(helpers.MustHex(testPollHex)))
}

func TestDecodeTelemetry(t *testing.T) {
	t.Parallel()
	r, err := evt.DecodeTelemetry(helpers.MustHex(testTelemetryHex))
	require.NoError(t, err)
	require.NotNil(t, r)

	expect := map[string]interface{}{
		"id_1":            uint32(49828832),
		"id_2":            uint32(49828833),
		"sw_version":      "7A.7A",
		"input_voltage_1": 32.34375,
		"input_voltage_2": 24.595703125,
		"power_1":         182.09375,
		"power_2":         5.921875,
		"ac_voltage_1":    241.140625,
		"ac_voltage_2":    241.140625,
		"ac_frequency_1":  49.9921875,
		"ac_frequency_2":  49.9921875,
		"temperature_1":   53.09375,
		"temperature_2":   45.3984375,
		"total_energy_1":  5.8431396484375,
		"total_energy_2":  0.446533203125,
	}
	fields := r.Fields()
	assert.Len(t, fields, 17)
	for k, v := range expect {
		assert.Equal(t, v, fields[k], "field=%s", k)
	}
	assert.InDelta(t, 0.7551351001101536, fields["current_1"], 1e-12)
	assert.InDelta(t, 0.024557765826475734, fields["current_2"], 1e-12)
	assert.Equal(t, r.Channels[0].Power/r.Channels[0].ACVoltage, r.Channels[0].Current)

	names := evt.FieldNames()
	assert.Len(t, names, len(fields))
	for _, name := range names {
		assert.Contains(t, fields, name)
	}
}

func TestDecodeTelemetryFormulas(t *testing.T) {
	t.Parallel()
	frame := make([]byte, evt.TelemetryLen)
	copy(frame, evt.StartMarker)
	frame[len(frame)-1] = evt.EndMarker
	copy(frame[20:], []byte{1, 2, 3, 4})
	copy(frame[24:], []byte{0x0a, 0xff})
	copy(frame[26:], []byte{0x80, 0x00}) // 32768
	copy(frame[28:], []byte{0x00, 0x40}) // 64
	copy(frame[30:], []byte{0x00, 0x01, 0x00, 0x00})
	copy(frame[34:], []byte{0x00, 0x00})
	copy(frame[36:], []byte{0x00, 0x00}) // ac voltage 0 -> current 0
	copy(frame[38:], []byte{0xff, 0xff})
	copy(frame[52:], []byte{99, 99, 99, 99})
	copy(frame[66:], []byte{0x14, 0x00}) // 5120*256/32768 = 40

	r, err := evt.DecodeTelemetry(frame)
	require.NoError(t, err)
	a, b := r.Channels[0], r.Channels[1]
	assert.Equal(t, "0A.FF", r.SWVersion)
	assert.Equal(t, uint32(1020304), a.ID)
	assert.Equal(t, uint32(99999999), b.ID)
	assert.Equal(t, 64.0, a.InputVoltage)
	assert.Equal(t, 1.0, a.Power)
	assert.Equal(t, 8.0, a.TotalEnergy)
	assert.Equal(t, -40.0, a.Temperature)
	assert.Equal(t, 0.0, b.Temperature)
	assert.Equal(t, 0.0, a.ACVoltage)
	assert.Equal(t, 0.0, a.Current)
	assert.Equal(t, 65535.0*128/32768, a.ACFrequency)
}

func TestDecodeTelemetryShort(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 10, 32, 85} {
		r, err := evt.DecodeTelemetry(make([]byte, n))
		require.Error(t, err)
		assert.Nil(t, r)
		assert.Equal(t, evt.ErrFrameLength, errors.Cause(err))
	}
}

func TestCurrentZeroVoltage(t *testing.T) {
	t.Parallel()
	for _, power := range []float64{0, 1, 182.09375, 4096} {
		assert.Equal(t, 0.0, evt.SafeDivide(power, 0))
	}
	assert.Equal(t, 5.0, evt.SafeDivide(10, 2))
}

func TestBytesToUint(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint16(0x1234), evt.U16(0x12, 0x34))
	assert.Equal(t, uint32(0x01020304), evt.U32(0x01, 0x02, 0x03, 0x04))
}

func TestDecodeIdentity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "31525820", evt.DecodeIdentity(helpers.MustHex(testPollHex)))
	assert.Equal(t, "", evt.DecodeIdentity(helpers.MustHex(testTelemetryHex)))
	assert.Equal(t, "", evt.DecodeIdentity(make([]byte, 31)))
	assert.Equal(t, "", evt.DecodeIdentity(nil))
	// short poll frame seen in the wild, not 32 bytes
	assert.Equal(t, "", evt.DecodeIdentity(helpers.MustHex("68001068107732323232000000009f16")))
}

func TestEncodeAck(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		frame  string
		expect string
	}{
		{"telemetry", testTelemetryHex, "68001068105031525820000000007816"},
		{"poll", testPollHex, "68001068105001000001000000007816"},
		{"unknown-26", "6800" + strings.Repeat("00", 18) + "aabbccdd" + "0016", "680010681050aabbccdd000000007816"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			frame := helpers.MustHex(c.frame)
			require.GreaterOrEqual(t, len(frame), evt.AckMinLen, "code error in test")
			b, err := evt.EncodeAck(frame)
			require.NoError(t, err)
			assert.Len(t, b, evt.AckLen)
			assert.Equal(t, c.expect, hex.EncodeToString(b))
		})
	}

	b, err := evt.EncodeAck(make([]byte, evt.AckMinLen-1))
	require.Error(t, err)
	assert.Nil(t, b)
	assert.Equal(t, evt.ErrFrameLength, errors.Cause(err))
}
