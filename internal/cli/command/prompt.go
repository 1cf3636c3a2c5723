package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yndnr/authclient/internal/cli/output"
)

// ErrNotInteractive is returned when a value must be prompted for but
// stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// Prompter asks the user for values that were not given as flags.
type Prompter interface {
	// Interactive reports whether prompting is possible.
	Interactive() bool
	// Line reads one line of visible input.
	Line(label string) (string, error)
	// Secret reads one line without echo.
	Secret(label string) (string, error)
}

// termPrompter prompts on a terminal.
type termPrompter struct {
	r   *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newTermPrompter(in io.Reader, out io.Writer) *termPrompter {
	p := &termPrompter{r: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
		p.tty = term.IsTerminal(p.fd)
	}
	return p
}

func (p *termPrompter) Interactive() bool {
	return p.tty
}

func (p *termPrompter) Line(label string) (string, error) {
	if !p.tty {
		return "", ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *termPrompter) Secret(label string) (string, error) {
	if !p.tty {
		return "", ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// askIfEmpty prompts for value when it is empty and a terminal is
// available. Otherwise the value is returned unchanged so that validation
// reports it as missing.
func askIfEmpty(p Prompter, value, label string, secret bool) (string, error) {
	if value != "" || !p.Interactive() {
		return value, nil
	}
	if secret {
		return p.Secret(label)
	}
	return p.Line(label)
}

// confirm asks a yes/no question. Anything but y or yes is no.
func confirm(p Prompter, question string) (bool, error) {
	if !p.Interactive() {
		return false, ErrNotInteractive
	}
	answer, err := p.Line(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// startSpinner shows a spinner on stderr while prompting is possible and
// returns the function that removes it.
func startSpinner(env *appEnv, message string) (stop func()) {
	if !env.prompt.Interactive() {
		return func() {}
	}
	s := output.NewSpinner(env.errOut, message)
	s.Start()
	return s.Stop
}
