package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readText returns inline when set, otherwise the contents of path, where "-" means stdin.
func readText(inline, path string, stdin io.Reader) (string, error) {
	if inline != "" && path != "" {
		return "", fmt.Errorf("provide either the text or a file, not both")
	}
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", fmt.Errorf("no input provided")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
