package evt

import "encoding/hex"

const (
	offsetPollSerial = 6
	lenSerial        = 4
)

// DecodeIdentity returns device serial number from poll frame as 8 hex digits.
// Returns empty string for any frame not exactly PollLen.
func DecodeIdentity(frame []byte) string {
	if len(frame) != PollLen {
		return ""
	}
	return hex.EncodeToString(frame[offsetPollSerial : offsetPollSerial+lenSerial])
}
