// Decode captured frames without device connection.
// Input is hex, from arguments or stdin lines.
package decode

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/evt800/cmd/evt800/subcmd"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/helpers"
)

var Mod = subcmd.Mod{Name: "decode", Usage: "[HEX...]", Main: Main}

func Main(ctx context.Context, env *subcmd.Env, args []string) error {
	if len(args) != 0 {
		return Decode(env.Stdout, strings.NewReader(strings.Join(args, "\n")))
	}
	return Decode(env.Stdout, os.Stdin)
}

// Decode reads hex lines from r, empty lines and # comments skipped.
// Returns first error after processing all lines.
func Decode(w io.Writer, r io.Reader) error {
	var first error
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := decodeLine(w, line); err != nil {
			err = errors.Annotatef(err, "line=%d", lineno)
			fmt.Fprintf(w, "error: %v\n", err)
			if first == nil {
				first = err
			}
		}
	}
	if err := scanner.Err(); err != nil && first == nil {
		first = errors.Annotate(err, "read input")
	}
	return first
}

func decodeLine(w io.Writer, line string) error {
	b, err := helpers.ParseHex(line)
	if err != nil {
		return errors.NotValidf("hex")
	}
	frame, ok := evt.Extract(b)
	if !ok {
		return errors.NotFoundf("frame")
	}
	fmt.Fprintf(w, "frame %s\n", evt.FrameString(frame))

	switch evt.Classify(frame) {
	case evt.KindTelemetry:
		r, err := evt.DecodeTelemetry(frame)
		if err != nil {
			return err
		}
		if err = subcmd.PrintTable(w, r); err != nil {
			return err
		}
	case evt.KindPoll:
		fmt.Fprintf(w, "%20s%25s\n", "serial", evt.DecodeIdentity(frame))
	}

	ack, err := evt.EncodeAck(frame)
	if err != nil {
		fmt.Fprintf(w, "%20s %s\n", "ack", "none")
		return nil
	}
	fmt.Fprintf(w, "%20s %s\n", "ack", hex.EncodeToString(ack))
	return nil
}
