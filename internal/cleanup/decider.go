package cleanup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decider answers yes/no questions for the interactive deletion mode
type Decider interface {
	Confirm(prompt string, defaultYes bool) (bool, error)
}

// DeciderFunc adapts a function to the Decider interface
type DeciderFunc func(prompt string, defaultYes bool) (bool, error)

// Confirm calls f
func (f DeciderFunc) Confirm(prompt string, defaultYes bool) (bool, error) {
	return f(prompt, defaultYes)
}

// ErrNoAnswer is returned when the input ends before an answer was given
var ErrNoAnswer = errors.New("no answer")

// TerminalDecider reads answers line by line from a terminal
type TerminalDecider struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalDecider creates a decider reading from in and prompting on out
func NewTerminalDecider(in io.Reader, out io.Writer) *TerminalDecider {
	return &TerminalDecider{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Confirm prints the prompt with a [Y/n] or [y/N] hint and waits for an
// answer. An empty answer takes the default; anything unrecognised asks
// again.
func (d *TerminalDecider) Confirm(prompt string, defaultYes bool) (bool, error) {
	hint := " [y/N] "
	if defaultYes {
		hint = " [Y/n] "
	}

	for {
		fmt.Fprint(d.out, prompt+hint)

		response, err := d.reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if err != nil && response == "" {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, err
		}

		switch response {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
