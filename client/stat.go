package client

// Complex values are read and modified atomically, but not consistently,
// i.e. it is possible to read .Count=1 .Size=0 because Size has not updated yet.

import (
	"expvar"
	"fmt"
)

type SessionStat struct {
	Conn       expvar.Int // successful connects
	Readings   expvar.Int // delivered to listener
	Identities expvar.Int // poll frames
	Unframed   expvar.Int // reads without complete frame
	Recv       Counters
	Send       Counters
}

func (ss *SessionStat) Value() (r SessionStat) {
	r.Conn.Set(ss.Conn.Value())
	r.Readings.Set(ss.Readings.Value())
	r.Identities.Set(ss.Identities.Value())
	r.Unframed.Set(ss.Unframed.Value())
	r.Recv.Set(ss.Recv.Value())
	r.Send.Set(ss.Send.Value())
	return
}

func (ss *SessionStat) String() string {
	return fmt.Sprintf(`{"conn":%d,"readings":%d,"identities":%d,"unframed":%d,"recv":%s,"send":%s}`,
		ss.Conn.Value(), ss.Readings.Value(), ss.Identities.Value(), ss.Unframed.Value(),
		ss.Recv.String(), ss.Send.String())
}

// Frame counts protocol frames, Total.Size counts raw socket bytes.
type Counters struct {
	Frame CountSizePair
	Total CountSizePair
}

func (c *Counters) Register(frame []byte) {
	c.Frame.Count.Add(1)
	c.Frame.Size.Add(int64(len(frame)))
}

func (c *Counters) Set(new Counters) {
	c.Frame.Set(new.Frame.Value())
	c.Total.Set(new.Total.Value())
}

func (c *Counters) Value() (r Counters) {
	r.Frame = c.Frame.Value()
	r.Total = c.Total.Value()
	return
}

func (c *Counters) String() string {
	return fmt.Sprintf(`{"frame.count":%d,"frame.size":%d,"total.count":%d,"total.size":%d}`,
		c.Frame.Count.Value(), c.Frame.Size.Value(),
		c.Total.Count.Value(), c.Total.Size.Value())
}

type CountSizePair struct {
	Count expvar.Int
	Size  expvar.Int
}

func (csp *CountSizePair) Value() (r CountSizePair) {
	r.Count.Set(csp.Count.Value())
	r.Size.Set(csp.Size.Value())
	return
}

func (csp *CountSizePair) Set(new CountSizePair) {
	csp.Count.Set(new.Count.Value())
	csp.Size.Set(new.Size.Value())
}
