package tele

import (
	"context"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

// Tele contract:
//   - Init() fails only with invalid config, network issues ignored
//   - Reading() blocks at most for disk write
//     network may be slow or absent, messages will be delivered in background
//   - readings delivered at least once, while queue holds them
//   - state messages may be lost
type tele struct {
	alive     *alive.Alive
	config    tele_config.Config
	enabled   bool
	log       *log2.Log
	q         Queue
	retry     time.Duration
	stat      Stat
	transport Transporter
}

func New() Teler {
	return &tele{}
}
func NewWithTransporter(trans Transporter) Teler {
	return &tele{transport: trans}
}

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config) error {
	self.config = teleConfig
	self.log = log
	if self.config.LogDebug {
		self.log = log.Clone(log2.LDebug)
	}
	if !self.config.Enabled {
		self.log.Debugf("tele disabled")
		return nil
	}
	if err := self.config.Validate(); err != nil {
		return errors.Annotate(err, "tele config")
	}

	// test code sets .transport
	if self.transport == nil {
		kind, _ := tele_config.ParseTransport(self.config.Transport)
		switch kind {
		case tele_config.TransportGomqtt:
			self.transport = &transportGomqtt{}
		default:
			self.transport = &transportPaho{}
		}
	}
	if err := self.transport.Init(ctx, self.log, self.config, []byte(StateOffline)); err != nil {
		return errors.Annotate(err, "tele transport")
	}

	var err error
	if self.config.QueuePath != "" {
		if self.q, err = OpenSpq(self.config.QueuePath); err != nil {
			return errors.Annotate(err, "tele queue")
		}
	} else {
		self.q = NewMemQueue(self.config.Limit())
	}

	if self.retry == 0 {
		self.retry = self.config.NetworkTimeout()
	}
	self.alive = alive.NewAlive()
	self.alive.Add(1)
	self.enabled = true
	go self.qworker()
	return nil
}

// Close waits for queue worker, then publishes offline state.
func (self *tele) Close() {
	if !self.enabled {
		return
	}
	self.alive.Stop()
	_ = self.q.Close()
	self.alive.Wait()
	self.transport.SendState([]byte(StateOffline))
	self.transport.Close()
}

func (self *tele) Stat() *Stat { return &self.stat }

func (self *tele) Reading(r *Reading) error {
	if !self.enabled {
		return nil
	}
	if r.Time == 0 {
		r.Time = time.Now().UnixNano()
	}
	if err := self.qpushTagProto(qReading, r); err != nil {
		return errors.Annotate(err, "tele Reading")
	}
	self.stat.Queued.Add(1)
	return nil
}

// denote value type in queue bytes form
const (
	qReading byte = 1
)

func (self *tele) qworker() {
	defer self.alive.Done()
	stopch := self.alive.StopChan()
	for {
		item, err := self.q.Peek()
		switch err {
		case nil:
			// success path
			b := item.Bytes()
			var del bool
			del, err = self.qhandle(b)
			if err != nil {
				self.stat.Invalid.Add(1)
				self.log.Errorf("tele qhandle b=%x err=%v", b, err)
			}
			if del {
				if err = self.q.Delete(item); err != nil && err != ErrClosed {
					self.log.Errorf("tele qhandle Delete b=%x err=%v", b, err)
				}
				continue
			}
			if err = self.q.DeletePush(item); err != nil && err != ErrClosed {
				self.log.Errorf("tele qhandle DeletePush b=%x err=%v", b, err)
			}
			self.stat.SendFailed.Add(1)
			self.log.Debugf("tele send failed, retry in %v", self.retry)

		case ErrClosed:
			select {
			case <-stopch: // success path
			default:
				self.log.Errorf("CRITICAL tele queue closed unexpectedly")
			}
			return

		default:
			// here will go yet unhandled errors like disk full
			self.log.Errorf("CRITICAL tele queue err=%v", err)
		}

		select {
		case <-time.After(self.retry):
		case <-stopch:
			return
		}
	}
}

// Returns true when item must be deleted from queue.
func (self *tele) qhandle(b []byte) (bool, error) {
	if len(b) == 0 {
		// what else can we do?
		return true, errors.Errorf("tele queue peek=empty")
	}

	switch b[0] {
	case qReading:
		var r Reading
		if err := proto.Unmarshal(b[1:], &r); err != nil {
			return true, errors.Annotate(err, "tele reading Unmarshal")
		}
		ok := self.transport.SendReading(b[1:])
		if ok {
			self.stat.Sent.Add(1)
		}
		return ok, nil

	default:
		return true, errors.Errorf("unknown kind=%d", b[0])
	}
}

func (self *tele) qpushTagProto(tag byte, pb proto.Message) error {
	buf := proto.NewBuffer(make([]byte, 0, 256))
	if err := buf.EncodeVarint(uint64(tag)); err != nil {
		return err
	}
	if err := buf.Marshal(pb); err != nil {
		return err
	}
	return self.q.Push(buf.Bytes())
}
