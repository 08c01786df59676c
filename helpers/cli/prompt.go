package cli

import (
	"bufio"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

// Executor returns false to end the loop.
type Executor func(line string) bool

// replaced in tests
var (
	isTerminal = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }
	runPrompt  = func(tag string, exec prompt.Executor, complete prompt.Completer) {
		// TODO OptionHistory from file
		prompt.New(exec, complete,
			prompt.OptionPrefix(tag+"> "),
			prompt.OptionTitle(tag),
		).Run()
	}
	exit = os.Exit
)

// MainLoop runs exec for every input line until it returns false, input ends or signal arrives.
// Terminal stdin gets interactive prompt with completion.
// onExit is called exactly once. Quit from prompt and signal exit the process after it.
func MainLoop(tag string, exec Executor, complete prompt.Completer, onExit func()) {
	var once sync.Once
	finish := func() { once.Do(onExit) }

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(signalCh)
	go func() {
		if _, ok := <-signalCh; ok {
			finish()
			exit(1)
		}
	}()

	if isTerminal() {
		// Run returns on Ctrl-D
		runPrompt(tag, func(line string) {
			if !exec(line) {
				finish()
				exit(0)
			}
		}, complete)
	} else if err := LineLoop(os.Stdin, exec); err != nil {
		log.Print(err)
	}
	finish()
}

// LineLoop is non-interactive MainLoop core.
func LineLoop(r io.Reader, exec Executor) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !exec(line) {
			return nil
		}
	}
	return scanner.Err()
}
