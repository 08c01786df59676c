package tele

import (
	"expvar"
	"fmt"
)

type Stat struct {
	Queued     expvar.Int
	Sent       expvar.Int
	SendFailed expvar.Int
	Invalid    expvar.Int
}

func (s *Stat) String() string {
	return fmt.Sprintf(`{"queued":%d,"sent":%d,"send_failed":%d,"invalid":%d}`,
		s.Queued.Value(), s.Sent.Value(), s.SendFailed.Value(), s.Invalid.Value())
}
