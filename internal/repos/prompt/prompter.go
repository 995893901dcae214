package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	promptLineTerminatorConstant = "\n"
	affirmativeShortConstant     = "y"
	affirmativeLongConstant      = "yes"
	negativeShortConstant        = "n"
	negativeLongConstant         = "no"
)

// IOConfirmationPrompter asks yes/no questions over a reader and writer.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
// A *bufio.Reader is used as is, so a prompter can share buffered input with other readers.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and repeats it until the answer is y or n.
// End of input counts as n.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	for {
		if prompter.writer != nil {
			if _, writeError := io.WriteString(prompter.writer, prompt+promptLineTerminatorConstant); writeError != nil {
				return false, writeError
			}
		}

		response, readError := prompter.reader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return false, readError
		}

		switch strings.TrimSpace(strings.ToLower(response)) {
		case affirmativeShortConstant, affirmativeLongConstant:
			return true, nil
		case negativeShortConstant, negativeLongConstant:
			return false, nil
		}
		if readError != nil {
			return false, nil
		}
	}
}
