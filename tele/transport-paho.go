package tele

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

type transportPaho struct {
	log     *log2.Log
	m       mqtt.Client
	mopt    *mqtt.ClientOptions
	timeout time.Duration

	topicReading string
	topicState   string
}

func (self *transportPaho) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, willPayload []byte) error {
	self.log = log
	self.timeout = teleConfig.NetworkTimeout()
	self.topicReading = teleConfig.TopicReading()
	self.topicState = teleConfig.TopicState()
	clientID := teleConfig.ClientID
	if clientID == "" {
		clientID = teleConfig.Prefix()
	}

	self.mopt = mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetBinaryWill(self.topicState, willPayload, 1, true).
		SetCleanSession(true).
		SetClientID(clientID).
		SetUsername(teleConfig.MqttUsername).
		SetPassword(teleConfig.MqttPassword).
		SetKeepAlive(teleConfig.Keepalive()).
		SetPingTimeout(self.timeout).
		SetConnectTimeout(self.timeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	self.m = mqtt.NewClient(self.mopt)
	// network errors are not fatal, SendReading will try again
	_ = self.connect()
	return nil
}

func (self *transportPaho) Close() {
	self.log.Debugf("tele paho disconnect")
	self.m.Disconnect(uint(self.timeout / time.Millisecond))
}

func (self *transportPaho) SendState(payload []byte) bool {
	self.log.Debugf("tele paho sendstate payload=%s", payload)
	return self.publish(self.topicState, true, payload)
}

func (self *transportPaho) SendReading(payload []byte) bool {
	return self.publish(self.topicReading, false, payload)
}

// Auto reconnect covers only lost established connection.
func (self *transportPaho) connect() bool {
	if self.m.IsConnected() {
		return true
	}
	token := self.m.Connect()
	if !token.WaitTimeout(self.timeout) {
		self.log.Errorf("tele paho connect timeout")
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("tele paho connect err=%v", err)
		return false
	}
	return true
}

func (self *transportPaho) publish(topic string, retain bool, payload []byte) bool {
	if !self.connect() {
		return false
	}
	token := self.m.Publish(topic, 1, retain, payload)
	if !token.WaitTimeout(self.timeout) {
		self.log.Errorf("tele paho publish topic=%s timeout", topic)
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("tele paho publish topic=%s err=%v", topic, err)
		return false
	}
	return true
}

func (self *transportPaho) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("tele paho connection lost err=%v", err)
}

func (self *transportPaho) onConnectHandler(c mqtt.Client) {
	self.log.Infof("tele paho connected")
	c.Publish(self.topicState, 1, true, []byte(StateOnline))
}
