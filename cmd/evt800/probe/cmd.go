// Check that inverter gateway accepts TCP connections.
package probe

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/evt800/cmd/evt800/subcmd"
)

var Mod = subcmd.Mod{Name: "probe", Main: Main}

func Main(ctx context.Context, env *subcmd.Env, args []string) error {
	c, err := env.NewClient(nil)
	if err != nil {
		return err
	}
	if err = c.TestConnection(ctx); err != nil {
		return errors.Annotate(err, "probe")
	}
	fmt.Fprintf(env.Stdout, "%s reachable\n", c.Options().Addr())
	return nil
}
