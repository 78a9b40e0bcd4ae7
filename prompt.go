package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// readLine prints caption and reads one line. ok is false once input is
// exhausted, which callers treat as the user cancelling.
func (p *prompter) readLine(caption string) (text string, ok bool) {
	fmt.Fprint(p.out, caption)
	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(text), true
}

// readInt returns -1 for anything that is not a whole number.
func (p *prompter) readInt(caption string) int {
	text, _ := p.readLine(caption)
	i, err := strconv.Atoi(text)
	if err != nil {
		return -1
	}
	return i
}

func (p *prompter) readBool(caption string) bool {
	b, _ := p.readLine(caption)
	b = strings.ToLower(b)
	return b == "y" || b == "yes"
}
