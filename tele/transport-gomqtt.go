package tele

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/256dpi/gomqtt/packet"
	"github.com/256dpi/gomqtt/transport"
	"github.com/juju/errors"
	"github.com/temoto/evt800/helpers/atomic_clock"
	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

// Serialized QOS 1 publisher over single connection.
// - connect with clean session on demand
// - reconnect when idle longer than keepalive instead of pinging
// - any protocol or network error drops connection
type transportGomqtt struct {
	sync.Mutex
	broker    string
	conn      transport.Conn
	conpkt    *packet.Connect
	dialer    *transport.Dialer
	keepalive time.Duration
	last      atomic_clock.Clock
	lastID    uint32
	log       *log2.Log
	timeout   time.Duration

	topicReading string
	topicState   string
}

func (self *transportGomqtt) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, willPayload []byte) error {
	self.log = log
	self.broker = teleConfig.MqttBroker
	self.timeout = teleConfig.NetworkTimeout()
	self.keepalive = teleConfig.Keepalive()
	self.topicReading = teleConfig.TopicReading()
	self.topicState = teleConfig.TopicState()
	self.lastID = uint32(time.Now().UnixNano())

	u, err := url.ParseRequestURI(self.broker)
	if err != nil {
		return errors.Annotatef(err, "config error mqtt_broker=%s", self.broker)
	}
	username, password := teleConfig.MqttUsername, teleConfig.MqttPassword
	if u.User != nil && username == "" && password == "" {
		username = u.User.Username()
		password, _ = u.User.Password()
	}
	self.conpkt = packet.NewConnect()
	self.conpkt.ClientID = teleConfig.ClientID
	if self.conpkt.ClientID == "" {
		self.conpkt.ClientID = teleConfig.Prefix()
	}
	self.conpkt.KeepAlive = uint16(self.keepalive / time.Second)
	self.conpkt.CleanSession = true
	self.conpkt.Username = username
	self.conpkt.Password = password
	self.conpkt.Will = &packet.Message{Topic: self.topicState, Payload: willPayload, QOS: packet.QOSAtLeastOnce, Retain: true}
	self.dialer = transport.NewDialer(transport.DialConfig{
		Timeout: self.timeout,
	})
	return nil
}

func (self *transportGomqtt) Close() {
	self.Lock()
	defer self.Unlock()
	if self.conn != nil {
		_ = self.conn.Send(packet.NewDisconnect(), false)
		self.drop(nil)
	}
}

func (self *transportGomqtt) SendState(payload []byte) bool {
	self.log.Debugf("tele gomqtt sendstate payload=%s", payload)
	return self.send(&packet.Message{Topic: self.topicState, Payload: payload, QOS: packet.QOSAtLeastOnce, Retain: true})
}

func (self *transportGomqtt) SendReading(payload []byte) bool {
	return self.send(&packet.Message{Topic: self.topicReading, Payload: payload, QOS: packet.QOSAtLeastOnce})
}

func (self *transportGomqtt) send(msg *packet.Message) bool {
	self.Lock()
	defer self.Unlock()
	if self.conn != nil && atomic_clock.Since(&self.last) >= self.keepalive {
		self.log.Debugf("tele gomqtt idle over keepalive, reconnect")
		self.drop(nil)
	}
	if self.conn == nil {
		if err := self.connect(); err != nil {
			self.drop(err)
			return false
		}
	}
	if err := self.publish(msg); err != nil {
		self.drop(err)
		return false
	}
	return true
}

// dial, send CONNECT, wait CONNACK, publish online state
func (self *transportGomqtt) connect() error {
	conn, err := self.dialer.Dial(self.broker)
	if err != nil {
		return errors.Annotatef(err, "connect: dial broker=%s", self.broker)
	}
	self.conn = conn
	if err = conn.Send(self.conpkt, false); err != nil {
		return errors.Annotate(err, "connect: send CONNECT")
	}
	conn.SetReadTimeout(self.timeout)
	pkt, err := conn.Receive()
	if err != nil {
		return errors.Annotate(err, "connect: expect CONNACK")
	}
	connack, ok := pkt.(*packet.Connack)
	if !ok {
		return errors.Errorf("connect: server error expected CONNACK pkt=%s", pkt.String())
	}
	if connack.ReturnCode != packet.ConnectionAccepted {
		return errors.Errorf("connect: denied code=%s", connack.ReturnCode.String())
	}
	self.last.SetNow()
	self.log.Infof("tele gomqtt connected broker=%s", self.broker)
	return self.publish(&packet.Message{Topic: self.topicState, Payload: []byte(StateOnline), QOS: packet.QOSAtLeastOnce, Retain: true})
}

func (self *transportGomqtt) publish(msg *packet.Message) error {
	publish := packet.NewPublish()
	publish.Message = *msg
	publish.ID = self.nextID()
	if err := self.conn.Send(publish, false); err != nil {
		return errors.Annotate(err, "send PUBLISH")
	}
	self.last.SetNow()
	self.conn.SetReadTimeout(self.timeout)
	for {
		pkt, err := self.conn.Receive()
		if err != nil {
			return errors.Annotatef(err, "expect PUBACK id=%d", publish.ID)
		}
		switch p := pkt.(type) {
		case *packet.Puback:
			if p.ID == publish.ID {
				return nil
			}
			self.log.Debugf("tele gomqtt unexpected PUBACK id=%d expected=%d", p.ID, publish.ID)
		default:
			self.log.Debugf("tele gomqtt ignore pkt=%s", pkt.String())
		}
	}
}

func (self *transportGomqtt) drop(err error) {
	if err != nil {
		self.log.Errorf("tele gomqtt err=%v", err)
	}
	if self.conn != nil {
		_ = self.conn.Close()
		self.conn = nil
	}
}

func (self *transportGomqtt) nextID() packet.ID {
	u32 := atomic.AddUint32(&self.lastID, 1)
	// zero is not valid packet id
	return packet.ID(u32%(1<<16-1) + 1)
}
