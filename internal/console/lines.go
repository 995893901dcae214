package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	text      string
	readError error
}

// lineSource reads input lines in the background so a pending read can be abandoned
// when the context is cancelled. After the first read error every call returns it.
type lineSource struct {
	results       chan lineResult
	done          chan struct{}
	closeOnce     sync.Once
	terminalError error
}

func newLineSource(input io.Reader) *lineSource {
	source := &lineSource{results: make(chan lineResult), done: make(chan struct{})}
	go source.read(bufio.NewReader(input))
	return source
}

func (source *lineSource) read(reader *bufio.Reader) {
	for {
		text, readError := reader.ReadString('\n')
		if len(text) > 0 {
			if !source.send(lineResult{text: strings.TrimRight(text, "\r\n")}) {
				return
			}
		}
		if readError != nil {
			source.send(lineResult{readError: readError})
			return
		}
	}
}

func (source *lineSource) send(result lineResult) bool {
	select {
	case source.results <- result:
		return true
	case <-source.done:
		return false
	}
}

// next returns the following line, the read error that ended the input, or the
// context error when the context finishes first.
func (source *lineSource) next(executionContext context.Context) (string, error) {
	if source.terminalError != nil {
		return "", source.terminalError
	}
	select {
	case result := <-source.results:
		if result.readError != nil {
			source.terminalError = result.readError
			return "", result.readError
		}
		return result.text, nil
	case <-executionContext.Done():
		return "", executionContext.Err()
	}
}

func (source *lineSource) close() {
	source.closeOnce.Do(func() {
		close(source.done)
	})
}
