package tele

import (
	"time"

	"github.com/temoto/evt800/evt"
)

func NewReading(serial string, t time.Time, r *evt.Reading) *Reading {
	pb := &Reading{
		Serial:    serial,
		Time:      t.UnixNano(),
		SwVersion: r.SWVersion,
		Channels:  make([]*Reading_Channel, 0, len(r.Channels)),
	}
	for _, ch := range r.Channels {
		pb.Channels = append(pb.Channels, &Reading_Channel{
			Id:           ch.ID,
			InputVoltage: ch.InputVoltage,
			Power:        ch.Power,
			AcVoltage:    ch.ACVoltage,
			AcFrequency:  ch.ACFrequency,
			Temperature:  ch.Temperature,
			TotalEnergy:  ch.TotalEnergy,
			Current:      ch.Current,
		})
	}
	return pb
}
