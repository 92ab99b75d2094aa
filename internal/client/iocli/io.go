package iocli

//go:generate moq -out io_mock.go . IO

// IO ввод и вывод команд CLI
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
}
