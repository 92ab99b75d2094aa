package iocli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Stdio реализует IO поверх потоков процесса
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdio создает IO, читающий из in и пишущий в out
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

// ReadInput печатает prompt и читает одну строку без пробелов по краям.
// The last line may end without a newline.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
