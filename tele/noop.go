package tele

import (
	"context"

	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

type Noop struct{ stat Stat }

var _ Teler = &Noop{} // compile-time interface test

func (*Noop) Init(context.Context, *log2.Log, tele_config.Config) error { return nil }

func (*Noop) Close() {}

func (*Noop) Reading(*Reading) error { return nil }

func (n *Noop) Stat() *Stat { return &n.stat }
