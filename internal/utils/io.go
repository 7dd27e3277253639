package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadStdinLines reads the first n lines of piped stdin without line endings.
// Returns an error if stdin is a terminal or fewer than n non-empty lines arrive.
func ReadStdinLines(n int) ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat stdin: %w", err)
	}

	// If ModeCharDevice is set, stdin is connected to a terminal.
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no data provided on stdin")
	}

	return readLines(os.Stdin, n)
}

func readLines(r io.Reader, n int) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0, n)

	for len(lines) < n {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, fmt.Errorf("expected %d lines on stdin, got %d", n, len(lines))
		}
		lines = append(lines, line)

		if err == io.EOF && len(lines) < n {
			return nil, fmt.Errorf("expected %d lines on stdin, got %d", n, len(lines))
		}
	}

	return lines, nil
}
