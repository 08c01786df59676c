package evt

import "github.com/juju/errors"

const offsetAckSerial = 20

var (
	ackHeader  = [...]byte{0x68, 0x00, 0x10, 0x68, 0x10, 0x50}
	ackTrailer = [...]byte{0x00, 0x00, 0x00, 0x00, 0x78, 0x16}
)

// EncodeAck builds acknowledgment for any frame of at least AckMinLen bytes,
// recognized or not. Device expects ACK after each addressed frame.
func EncodeAck(frame []byte) ([]byte, error) {
	if len(frame) < AckMinLen {
		return nil, errors.Annotatef(ErrFrameLength, "ack length=%d min=%d", len(frame), AckMinLen)
	}
	b := make([]byte, 0, AckLen)
	b = append(b, ackHeader[:]...)
	b = append(b, frame[offsetAckSerial:offsetAckSerial+lenSerial]...)
	b = append(b, ackTrailer[:]...)
	return b, nil
}
