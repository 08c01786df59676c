package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/juju/errors"
	"github.com/segmentio/ksuid"
	"github.com/temoto/alive/v2"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/helpers"
)

const tcpOverhead = 40

type session struct {
	id   string
	conn net.Conn
	r    io.Reader
	w    *bufio.Writer
}

func (c *Client) newSession(conn net.Conn) *session {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetKeepAlive(false)
		_ = tcp.SetLinger(0)
	}
	return &session{
		id:   ksuid.New().String(),
		conn: conn,
		r:    helpers.NewStatReader(conn, &c.stat.Recv.Total.Size, tcpOverhead),
		w:    bufio.NewWriterSize(helpers.NewStatWriter(conn, &c.stat.Send.Total.Size, tcpOverhead), evt.AckLen*4),
	}
}

// runSession returns non-nil error, either session end reason or ErrClosing.
func (c *Client) runSession(ctx context.Context, a *alive.Alive) error {
	addr := c.opt.Addr()
	c.opt.Log.Infof("connecting to %s", addr)
	dialCtx, cancel := context.WithTimeout(ctx, c.opt.DialTimeout)
	conn, err := c.opt.Dial(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return errors.Annotatef(err, "connect %s", addr)
	}

	s := c.newSession(conn)
	c.Lock()
	if !a.IsRunning() {
		c.Unlock()
		_ = conn.Close()
		return ErrClosing
	}
	c.current = s
	c.Unlock()
	defer func() {
		c.Lock()
		c.current = nil
		c.Unlock()
		_ = conn.Close()
	}()

	c.stat.Conn.Add(1)
	c.fire(EventConnected)
	c.markAvailable()
	c.opt.Log.Infof("connected to %s session=%s", addr, s.id)

	err = c.readLoop(a, s)
	c.opt.Log.Debugf("session=%s end err=%v", s.id, err)
	return err
}

func (c *Client) readLoop(a *alive.Alive, s *session) error {
	buf := make([]byte, evt.ReadSize)
	for a.IsRunning() {
		if err := s.conn.SetReadDeadline(time.Now().Add(c.opt.NetworkTimeout)); err != nil {
			return errors.Annotate(err, "SetReadDeadline")
		}
		n, err := s.r.Read(buf)
		if n > 0 {
			c.stat.Recv.Total.Count.Add(1)
			c.last.SetNow()
			if herr := c.handle(s, buf[:n]); herr != nil {
				return herr
			}
		}
		if err != nil {
			if err == io.EOF {
				return errors.Annotate(err, "closed by remote")
			}
			return errors.Annotate(err, "read")
		}
	}
	return ErrClosing
}

// handle returns error only when session must end.
func (c *Client) handle(s *session, b []byte) error {
	frame, ok := evt.Extract(b)
	if !ok {
		c.stat.Unframed.Add(1)
		c.opt.Log.Debugf("session=%s no frame in read=(%d)%x", s.id, len(b), b)
		return nil
	}
	c.stat.Recv.Register(frame)
	c.opt.Log.Debugf("session=%s received packet %s", s.id, evt.FrameString(frame))

	switch evt.Classify(frame) {
	case evt.KindTelemetry:
		r, err := evt.DecodeTelemetry(frame)
		if err != nil {
			c.opt.Log.Debugf("session=%s decode err=%v", s.id, err)
			break
		}
		c.notify(r)

	case evt.KindPoll:
		if serial := evt.DecodeIdentity(frame); serial != "" {
			c.setSerial(serial)
		}
	}
	return c.ack(s, frame)
}

func (c *Client) ack(s *session, frame []byte) error {
	b, err := evt.EncodeAck(frame)
	if err != nil {
		c.opt.Log.Warningf("packet too short for ACK, not sent %s", evt.FrameString(frame))
		return nil
	}
	if err = s.conn.SetWriteDeadline(time.Now().Add(c.opt.NetworkTimeout)); err != nil {
		return errors.Annotate(err, "SetWriteDeadline")
	}
	if err = helpers.WriteAll(s.w, b); err == nil {
		err = s.w.Flush()
	}
	if err != nil {
		return errors.Annotate(err, "send ACK")
	}
	c.stat.Send.Register(b)
	c.stat.Send.Total.Count.Add(1)
	c.opt.Log.Debugf("session=%s sent ACK %x", s.id, b)
	return nil
}
