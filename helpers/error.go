package helpers

import (
	"io"
	"net"
	"strings"

	"github.com/juju/errors"
)

// FoldErrors skips nil, returns single error as is, joins the rest.
func FoldErrors(errs []error) error {
	ss := make([]string, 0, len(errs))
	var last error
	for _, e := range errs {
		if e != nil {
			ss = append(ss, e.Error())
			last = e
		}
	}
	switch len(ss) {
	case 0:
		return nil
	case 1:
		return last
	}
	return errors.New(strings.Join(ss, "\n"))
}

func IsTimeout(e error) bool {
	if e == nil {
		return false
	}
	if neterr, ok := errors.Cause(e).(net.Error); ok && neterr.Timeout() {
		return true
	}
	return strings.HasSuffix(e.Error(), "i/o timeout")
}

// ErrorReason reformats some well known network errors for easier log reading.
func ErrorReason(e error) string {
	switch {
	case e == nil:
		return "ok"
	case IsTimeout(e):
		return "timeout"
	case errors.Cause(e) == io.EOF:
		return "closed by remote"
	}
	s := e.Error()
	switch {
	case strings.HasSuffix(s, "connection reset by peer"):
		return "closed by remote"
	case strings.HasSuffix(s, "connection refused"):
		return "connection refused"
	case strings.HasSuffix(s, "no route to host"):
		return "no route to host"
	}
	return s
}
