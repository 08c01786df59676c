package persist

import (
	"encoding"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/evt800/log2"
	"github.com/temoto/extremofile"
)

type Stater interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

type storage interface {
	Read() ([]byte, error)
	io.Writer
}

// Persist keeps one Stater in extremofile under root/tag.
// Storage does not truncate, so target must marshal to fixed size.
// Zero value is unusable, call Init.
type Persist struct {
	sync.Mutex
	log     *log2.Log
	tag     string
	target  Stater
	storage storage
}

func (p *Persist) Init(tag string, target Stater, root string, enabled bool, log *log2.Log) error {
	p.tag, p.log = tag, log
	if !enabled {
		p.log.Debugf("persist %s disabled", tag)
		return nil
	}
	switch {
	case root == "":
		return errors.NotValidf("persist %s root=empty", tag)
	case target == nil:
		panic("code error persist target=nil")
	}
	dir := filepath.Join(root, tag)
	p.target = target
	p.storage = extremofile.New(extremofile.Config{Dir: dir, DirPerm: 0755, FilePerm: 0644})
	p.log.Debugf("persist %s dir=%s", tag, dir)
	return nil
}

func (p *Persist) Enabled() bool { return p.storage != nil }

// Load keeps target unchanged when nothing was stored yet.
// Non-critical storage errors are only logged.
func (p *Persist) Load() error {
	if !p.begin() {
		return nil
	}
	defer p.Unlock()

	var b []byte
	var err error
	p.timed("read", func() { b, err = p.storage.Read() })
	switch {
	case extremofile.IsCritical(err):
		return errors.Annotatef(err, "persist %s Load critical", p.tag)
	case b == nil:
		return errors.Annotatef(err, "persist %s Load", p.tag)
	case err != nil:
		p.log.Errorf("persist %s ignore non-critical storage err=%v", p.tag, err)
	}
	return errors.Annotatef(p.target.UnmarshalBinary(b), "persist %s Load", p.tag)
}

func (p *Persist) Store() error {
	if !p.begin() {
		return nil
	}
	defer p.Unlock()

	b, err := p.target.MarshalBinary()
	if err != nil {
		return errors.Annotatef(err, "persist %s Store", p.tag)
	}
	p.timed("write", func() { _, err = p.storage.Write(b) })
	return errors.Annotatef(err, "persist %s Store", p.tag)
}

// begin locks and returns true when storage is enabled.
func (p *Persist) begin() bool {
	if p.tag == "" {
		panic("code error persist must call .Init() first")
	}
	if p.storage == nil {
		return false
	}
	p.Lock()
	return true
}

func (p *Persist) timed(op string, f func()) {
	tbegin := time.Now()
	f()
	p.log.Debugf("persist %s storage.%s duration=%v", p.tag, op, time.Since(tbegin))
}
