package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// input gives a command a line reader for prompts. Stdin is used unless a
// test sets something else.
type input struct {
	in *bufio.Reader
}

// SetInput sets the prompt reader (for testing).
func (i *input) SetInput(r io.Reader) {
	i.in = bufio.NewReader(r)
}

func (i *input) reader() *bufio.Reader {
	if i.in == nil {
		i.in = bufio.NewReader(os.Stdin)
	}
	return i.in
}

// prompt writes label to w and reads one trimmed line. io.EOF is returned
// only when nothing at all could be read.
func (i *input) prompt(w io.Writer, label string) (string, error) {
	if label != "" {
		fmt.Fprint(w, label)
	}
	line, err := i.reader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question that defaults to no.
func (i *input) confirm(w io.Writer, question string) bool {
	answer, err := i.prompt(w, question+" [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
