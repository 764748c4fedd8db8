package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Executor abstracts process execution for testability.
// Run returns the exit status of the process. err is non-nil only when the
// process could not be started or its output could not be read; a non-zero
// exit status alone is not an error.
type Executor interface {
	Run(ctx context.Context, binary string, args, env []string, onStderr func(string)) (int, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args, env []string, onStderr func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append([]string{}, env...)
	cmd.Stdout = io.Discard

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", binary, err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		if onStderr != nil {
			onStderr(scanner.Text())
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait %s: %w", binary, waitErr)
	}
	if scanErr != nil {
		return 0, fmt.Errorf("read stderr: %w", scanErr)
	}
	return 0, nil
}

// scanProgressLines splits on \r as well as \n so in-place progress
// updates arrive as separate tokens.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			return i + 1, data[0:i], nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}
