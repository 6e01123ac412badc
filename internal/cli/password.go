package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// passwordPrompter asks for a password after printing prompt.
type passwordPrompter func(prompt string) (string, error)

// terminalPassword reads a password from the terminal without echo. When
// stdin is not a terminal it reads one line, so the password can be piped.
func terminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}
	return readPasswordLine(os.Stdin)
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
