package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrAborted means the operator declined a confirmation that the operation
// cannot continue without.
var ErrAborted = errors.New("aborted by user")

// Confirmer asks a yes/no question. def is the answer assumed when the reply
// is neither yes nor no. Input that ends before any reply is ErrAborted.
type Confirmer interface {
	Confirm(question string, def bool) (bool, error)
}

// Console reads answers line by line from an input stream.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(c.out, "%s %s: ", color.YellowString(question), hint)

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if err != nil && answer == "" {
		// Input closed before any answer: nobody confirmed anything.
		fmt.Fprintln(c.out)
		return false, ErrAborted
	}
	switch answer {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

// Always answers every question the same way, for --yes and tests.
type Always bool

func (a Always) Confirm(string, bool) (bool, error) { return bool(a), nil }
