package decode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTelemetryHex = "680056681004315258207a007a01000000000000315258207a7a40b02d860000bafb2e8c3c4931fe000000000000000000000000315258217a7a3131017b00000e4a2ab33c4931fe020200000000000000000000ef16"
	testPollHex      = "680020681006315258200000000000014b0000e7010000010500000000009016"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expect   []string
		reject   []string
		errCheck func(error) bool
	}{
		{"telemetry", testTelemetryHex,
			[]string{"frame (86 telemetry)6800", "id_2                 49828833", "ack 68001068105031525820000000007816"},
			nil, nil},
		{"poll", testPollHex,
			[]string{"frame (32 poll)", "serial                 31525820", "ack 68001068105001000001000000007816"},
			[]string{"sw_version"}, nil},
		{"poll-spaces-prefix", "ffff " + testPollHex[:20] + " " + testPollHex[20:],
			[]string{"serial                 31525820"}, nil, nil},
		{"short", "68000110203016",
			[]string{"frame (7 unknown)", "                 ack none"}, nil, nil},
		{"comments", "# captured 2020-06-01\n\n" + testPollHex,
			[]string{"serial"}, nil, nil},
		{"bad-hex", "68zz16", []string{"error: line=1: hex not valid"}, nil, errors.IsNotValid},
		{"no-frame", "0102", []string{"error: line=1: frame not found"}, nil, errors.IsNotFound},
		{"error-continues", "zz\n" + testPollHex,
			[]string{"error: line=1", "serial                 31525820"}, nil, errors.IsNotValid},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			err := Decode(buf, strings.NewReader(c.input))
			if c.errCheck != nil {
				require.Error(t, err)
				assert.True(t, c.errCheck(errors.Cause(err)), err.Error())
			} else {
				require.NoError(t, err)
			}
			out := buf.String()
			for _, s := range c.expect {
				assert.Contains(t, out, s)
			}
			for _, s := range c.reject {
				assert.NotContains(t, out, s)
			}
		})
	}
}
