package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/helpers"
	"github.com/temoto/evt800/helpers/atomic_clock"
)

var (
	ErrRunning = fmt.Errorf("client is already running")
	ErrClosing = fmt.Errorf("client is closing")
)

// Client is safe for concurrent use.
// Listener is called synchronously on the session goroutine,
// slow listener delays ACK and next read.
type Client struct {
	sync.Mutex // protects alive, current
	alive      *alive.Alive
	current    *session

	opt Options
	// test hook, nil uses time.Timer
	after    func(time.Duration) <-chan time.Time
	listener atomic.Value // Listener
	serial   atomic.Value // string
	state    uint32
	last     atomic_clock.Clock
	stat     SessionStat

	// set while listener or identity hook runs on worker goroutine
	inCallback uint32
	// written only by worker goroutine
	unavailable bool
}

func New(opt Options) (*Client, error) {
	if err := opt.validate(); err != nil {
		return nil, errors.Annotate(err, "client.New")
	}
	c := &Client{
		opt: opt,
	}
	c.listener.Store(Listener(nil))
	c.serial.Store("")
	return c, nil
}

func (c *Client) Start() error {
	c.Lock()
	defer c.Unlock()
	if c.alive != nil && !c.alive.IsFinished() {
		return ErrRunning
	}
	a := alive.NewAlive()
	if !a.Add(1) {
		return ErrClosing
	}
	c.alive = a
	c.fire(EventStart)
	go c.worker(a)
	return nil
}

// Stop blocks until background goroutine exits.
// Safe to call on idle or stopped client.
// Called from data listener or identity hook, Stop returns without waiting,
// worker exits right after the callback.
func (c *Client) Stop() {
	c.Lock()
	a := c.alive
	c.Unlock()
	if a == nil {
		return
	}
	a.Stop()
	// current session is registered under lock after IsRunning check,
	// so it is either visible here or will observe stop itself
	c.Lock()
	s := c.current
	c.Unlock()
	if s != nil {
		_ = s.conn.Close()
	}
	if atomic.LoadUint32(&c.inCallback) == 1 {
		return
	}
	a.Wait()
}

func (c *Client) SetDataListener(l func(*evt.Reading)) { c.listener.Store(Listener(l)) }

// TestConnection opens and immediately closes one connection.
// Does not change client state.
func (c *Client) TestConnection(ctx context.Context) error {
	addr := c.opt.Addr()
	ctx, cancel := context.WithTimeout(ctx, c.opt.DialTimeout)
	defer cancel()
	conn, err := c.opt.Dial(ctx, "tcp", addr)
	if err != nil {
		return errors.Annotatef(err, "test connection %s", addr)
	}
	return errors.Annotate(conn.Close(), "test connection close")
}

func (c *Client) Online() bool                 { return c.State() == StateConnected }
func (c *Client) Options() *Options            { return &c.opt }
func (c *Client) SerialNumber() string         { return c.serial.Load().(string) }
func (c *Client) SinceLastRecv() time.Duration { return atomic_clock.Since(&c.last) }
func (c *Client) Stat() *SessionStat           { return &c.stat }
func (c *Client) State() State                 { return State(atomic.LoadUint32(&c.state)) }

func (c *Client) String() string {
	return fmt.Sprintf("(addr=%s state=%s serial=%s)", c.opt.Addr(), c.State(), c.SerialNumber())
}

func (c *Client) fire(ev Event) {
	for {
		from := c.State()
		to, ok := Transition(from, ev)
		if !ok {
			c.opt.Log.Errorf("code error invalid transition state=%s event=%s", from, ev)
			return
		}
		if atomic.CompareAndSwapUint32(&c.state, uint32(from), uint32(to)) {
			if from != to {
				c.opt.Log.Debugf("state %s -> %s", from, to)
			}
			return
		}
	}
}

func (c *Client) worker(a *alive.Alive) {
	defer a.Done()
	defer c.fire(EventStop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()

	for a.IsRunning() {
		err := c.runSession(ctx, a)
		c.fire(EventLost)
		if !a.IsRunning() {
			return
		}
		c.markUnavailable(err)

		c.opt.Log.Debugf("retry delay=%s", c.opt.RetryDelay)
		wait, cancel := c.retryWait()
		select {
		case <-wait:
		case <-a.StopChan():
			cancel()
			return
		}
		c.fire(EventRetry)
	}
}

func (c *Client) retryWait() (<-chan time.Time, func()) {
	if c.after != nil {
		return c.after(c.opt.RetryDelay), func() {}
	}
	t := time.NewTimer(c.opt.RetryDelay)
	return t.C, func() { t.Stop() }
}

// Log once per outage.
func (c *Client) markUnavailable(err error) {
	if c.unavailable {
		c.opt.Log.Debugf("still unavailable err=%v", err)
		return
	}
	c.unavailable = true
	c.opt.Log.Warningf("EVT800 %s unavailable: %s", c.opt.Addr(), helpers.ErrorReason(err))
	c.opt.Log.Debugf("unavailable err=%s", errors.ErrorStack(err))
}

func (c *Client) markAvailable() {
	if c.unavailable {
		c.unavailable = false
		c.opt.Log.Infof("EVT800 %s back online", c.opt.Addr())
	}
}

func (c *Client) notify(r *evt.Reading) {
	l, _ := c.listener.Load().(Listener)
	if l == nil {
		return
	}
	c.stat.Readings.Add(1)
	c.callback("data listener", func() { l(r) })
}

func (c *Client) setSerial(serial string) {
	c.stat.Identities.Add(1)
	prev := c.serial.Load().(string)
	c.serial.Store(serial)
	if serial != prev {
		c.opt.Log.Infof("EVT800 serial=%s", serial)
		if hook := c.opt.OnIdentity; hook != nil {
			c.callback("identity hook", func() { hook(serial) })
		}
	}
}

// callback runs user code on worker goroutine, panic is logged and session goes on.
func (c *Client) callback(name string, f func()) {
	atomic.StoreUint32(&c.inCallback, 1)
	defer atomic.StoreUint32(&c.inCallback, 0)
	defer func() {
		if x := recover(); x != nil {
			c.opt.Log.Errorf("%s panic: %v", name, x)
		}
	}()
	f()
}
