// Package console provides line-oriented interactive input over an
// injected reader and writer, so commands and the tuning loop can be
// tested against scripted input.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Console reads user input line by line and writes prompts and output.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Console over the given reader and writer. The CLI passes
// os.Stdin and os.Stdout; tests pass scripted buffers.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Say writes a formatted line of output.
func (c *Console) Say(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Ask prints prompt and returns the next input line, trimmed. An input
// ending without a final newline still yields its content; a read on
// exhausted input returns io.EOF.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// AskMultiline prints prompt and reads lines until a blank line or EOF,
// returning them joined with newlines.
func (c *Console) AskMultiline(prompt string) (string, error) {
	fmt.Fprintln(c.out, prompt)
	var lines []string
	for {
		line, err := c.in.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			if err != nil && err != io.EOF {
				return "", err
			}
			break
		}
		lines = append(lines, trimmed)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}
