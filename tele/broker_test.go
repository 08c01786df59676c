package tele

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/256dpi/gomqtt/packet"
	"github.com/256dpi/gomqtt/transport"
	"github.com/stretchr/testify/require"
	"github.com/temoto/alive/v2"
)

const testTimeout = 5 * time.Second

// Minimal MQTT broker: accepts any CONNECT, acknowledges QOS 1 PUBLISH.
type testBroker struct {
	sync.Mutex
	alive    *alive.Alive
	conns    []net.Conn
	connects chan *packet.Connect
	ln       net.Listener
	msgs     chan packet.Message
	url      string
}

func newTestBroker(t testing.TB) *testBroker {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	b := &testBroker{
		alive:    alive.NewAlive(),
		connects: make(chan *packet.Connect, 8),
		ln:       ln,
		msgs:     make(chan packet.Message, 64),
		url:      "tcp://" + ln.Addr().String(),
	}
	b.alive.Add(1)
	go b.acceptLoop()
	return b
}

func (b *testBroker) Close() {
	b.alive.Stop()
	_ = b.ln.Close()
	b.Lock()
	for _, conn := range b.conns {
		_ = conn.Close()
	}
	b.Unlock()
	b.alive.Wait()
}

func (b *testBroker) acceptLoop() {
	defer b.alive.Done()
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		if !b.alive.Add(1) {
			_ = conn.Close()
			return
		}
		b.Lock()
		b.conns = append(b.conns, conn)
		b.Unlock()
		go b.serve(transport.NewNetConn(conn))
	}
}

func (b *testBroker) serve(conn *transport.NetConn) {
	defer b.alive.Done()
	defer conn.Close()
	for {
		pkt, err := conn.Receive()
		if err != nil {
			return
		}
		switch p := pkt.(type) {
		case *packet.Connect:
			select {
			case b.connects <- p:
			default:
			}
			connack := packet.NewConnack()
			connack.ReturnCode = packet.ConnectionAccepted
			if conn.Send(connack, false) != nil {
				return
			}

		case *packet.Publish:
			b.msgs <- p.Message
			if p.Message.QOS == packet.QOSAtLeastOnce {
				puback := packet.NewPuback()
				puback.ID = p.ID
				if conn.Send(puback, false) != nil {
					return
				}
			}

		case *packet.Pingreq:
			if conn.Send(packet.NewPingresp(), false) != nil {
				return
			}

		case *packet.Disconnect:
			return
		}
	}
}

func (b *testBroker) expectConnect(t testing.TB) *packet.Connect {
	select {
	case p := <-b.connects:
		return p
	case <-time.After(testTimeout):
		t.Fatal("broker: no CONNECT")
	}
	return nil
}

// expectMessages collects n messages by topic, last wins.
func (b *testBroker) expectMessages(t testing.TB, n int) map[string]packet.Message {
	m := make(map[string]packet.Message, n)
	for i := 0; i < n; i++ {
		select {
		case msg := <-b.msgs:
			m[msg.Topic] = msg
		case <-time.After(testTimeout):
			t.Fatalf("broker: expected %d messages, received %d", n, i)
		}
	}
	return m
}

// closedURL returns broker address nobody listens on.
func closedURL(t testing.TB) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "tcp://" + addr
}
