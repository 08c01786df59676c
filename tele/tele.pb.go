// source: tele.proto

package tele

import (
	fmt "fmt"

	proto "github.com/golang/protobuf/proto"
)

// Reference imports to suppress errors if they are not otherwise used.
var _ = proto.Marshal
var _ = fmt.Errorf

type Reading struct {
	Serial               string             `protobuf:"bytes,1,opt,name=serial,proto3" json:"serial,omitempty"`
	Time                 int64              `protobuf:"varint,2,opt,name=time,proto3" json:"time,omitempty"`
	SwVersion            string             `protobuf:"bytes,3,opt,name=sw_version,json=swVersion,proto3" json:"sw_version,omitempty"`
	Channels             []*Reading_Channel `protobuf:"bytes,4,rep,name=channels,proto3" json:"channels,omitempty"`
	XXX_NoUnkeyedLiteral struct{}           `json:"-"`
	XXX_unrecognized     []byte             `json:"-"`
	XXX_sizecache        int32              `json:"-"`
}

func (m *Reading) Reset()         { *m = Reading{} }
func (m *Reading) String() string { return proto.CompactTextString(m) }
func (*Reading) ProtoMessage()    {}

func (m *Reading) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_Reading.Unmarshal(m, b)
}
func (m *Reading) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Reading.Marshal(b, m, deterministic)
}
func (m *Reading) XXX_Merge(src proto.Message) {
	xxx_messageInfo_Reading.Merge(m, src)
}
func (m *Reading) XXX_Size() int {
	return xxx_messageInfo_Reading.Size(m)
}
func (m *Reading) XXX_DiscardUnknown() {
	xxx_messageInfo_Reading.DiscardUnknown(m)
}

var xxx_messageInfo_Reading proto.InternalMessageInfo

func (m *Reading) GetSerial() string {
	if m != nil {
		return m.Serial
	}
	return ""
}

func (m *Reading) GetTime() int64 {
	if m != nil {
		return m.Time
	}
	return 0
}

func (m *Reading) GetSwVersion() string {
	if m != nil {
		return m.SwVersion
	}
	return ""
}

func (m *Reading) GetChannels() []*Reading_Channel {
	if m != nil {
		return m.Channels
	}
	return nil
}

type Reading_Channel struct {
	Id                   uint32   `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	InputVoltage         float64  `protobuf:"fixed64,2,opt,name=input_voltage,json=inputVoltage,proto3" json:"input_voltage,omitempty"`
	Power                float64  `protobuf:"fixed64,3,opt,name=power,proto3" json:"power,omitempty"`
	AcVoltage            float64  `protobuf:"fixed64,4,opt,name=ac_voltage,json=acVoltage,proto3" json:"ac_voltage,omitempty"`
	AcFrequency          float64  `protobuf:"fixed64,5,opt,name=ac_frequency,json=acFrequency,proto3" json:"ac_frequency,omitempty"`
	Temperature          float64  `protobuf:"fixed64,6,opt,name=temperature,proto3" json:"temperature,omitempty"`
	TotalEnergy          float64  `protobuf:"fixed64,7,opt,name=total_energy,json=totalEnergy,proto3" json:"total_energy,omitempty"`
	Current              float64  `protobuf:"fixed64,8,opt,name=current,proto3" json:"current,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Reading_Channel) Reset()         { *m = Reading_Channel{} }
func (m *Reading_Channel) String() string { return proto.CompactTextString(m) }
func (*Reading_Channel) ProtoMessage()    {}

func (m *Reading_Channel) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_Reading_Channel.Unmarshal(m, b)
}
func (m *Reading_Channel) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Reading_Channel.Marshal(b, m, deterministic)
}
func (m *Reading_Channel) XXX_Merge(src proto.Message) {
	xxx_messageInfo_Reading_Channel.Merge(m, src)
}
func (m *Reading_Channel) XXX_Size() int {
	return xxx_messageInfo_Reading_Channel.Size(m)
}
func (m *Reading_Channel) XXX_DiscardUnknown() {
	xxx_messageInfo_Reading_Channel.DiscardUnknown(m)
}

var xxx_messageInfo_Reading_Channel proto.InternalMessageInfo

func (m *Reading_Channel) GetId() uint32 {
	if m != nil {
		return m.Id
	}
	return 0
}

func (m *Reading_Channel) GetCurrent() float64 {
	if m != nil {
		return m.Current
	}
	return 0
}
