package persist

import (
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/juju/errors"
)

const identitySize = 4 + 8

// Identity is last known inverter serial and when it was seen.
type Identity struct {
	sync.Mutex
	Serial string
	Seen   time.Time
}

func (id *Identity) Set(serial string, seen time.Time) {
	id.Lock()
	id.Serial, id.Seen = serial, seen
	id.Unlock()
}

func (id *Identity) Get() (string, time.Time) {
	id.Lock()
	defer id.Unlock()
	return id.Serial, id.Seen
}

// Binary form: 4 bytes of serial, 8 bytes big endian unix seconds.
func (id *Identity) MarshalBinary() ([]byte, error) {
	id.Lock()
	defer id.Unlock()
	serial, err := hex.DecodeString(id.Serial)
	if err != nil || len(serial) != 4 {
		return nil, errors.NotValidf("identity serial=%s", id.Serial)
	}
	b := make([]byte, identitySize)
	copy(b, serial)
	binary.BigEndian.PutUint64(b[4:], uint64(id.Seen.Unix()))
	return b, nil
}

func (id *Identity) UnmarshalBinary(b []byte) error {
	if len(b) != identitySize {
		return errors.NotValidf("identity length=%d", len(b))
	}
	id.Lock()
	defer id.Unlock()
	id.Serial = hex.EncodeToString(b[:4])
	id.Seen = time.Unix(int64(binary.BigEndian.Uint64(b[4:])), 0)
	return nil
}
