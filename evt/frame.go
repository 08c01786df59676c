package evt

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

const (
	EndMarker    byte = 0x16
	TelemetryLen      = 86
	PollLen           = 32
	AckMinLen         = 24
	AckLen            = 16

	// Device reports one frame per cycle, so one read of ReadSize usually holds exactly one frame.
	ReadSize = TelemetryLen
)

var StartMarker = []byte{0x68, 0x00}

var ErrFrameLength = fmt.Errorf("frame length is invalid")

type Kind uint8

const (
	KindUnknown Kind = iota
	KindTelemetry
	KindPoll
)

func (k Kind) String() string {
	switch k {
	case KindTelemetry:
		return "telemetry"
	case KindPoll:
		return "poll"
	}
	return "unknown"
}

// Extract returns first frame in buf: from start marker through first end marker after it.
// Result shares memory with buf.
// Only one frame per buffer is considered, trailing bytes are ignored.
func Extract(buf []byte) ([]byte, bool) {
	start := bytes.Index(buf, StartMarker)
	if start == -1 {
		return nil, false
	}
	end := bytes.IndexByte(buf[start:], EndMarker)
	if end == -1 {
		return nil, false
	}
	return buf[start : start+end+1], true
}

func Classify(frame []byte) Kind {
	switch len(frame) {
	case TelemetryLen:
		return KindTelemetry
	case PollLen:
		return KindPoll
	}
	return KindUnknown
}

func FrameString(frame []byte) string {
	return fmt.Sprintf("(%d %s)%s", len(frame), Classify(frame).String(), hex.EncodeToString(frame))
}
