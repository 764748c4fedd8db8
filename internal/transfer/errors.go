package transfer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransferFailed indicates the copy transport exited non-zero or broke mid-stream.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrExistenceCheck indicates the remote existence check itself failed.
	ErrExistenceCheck = errors.New("remote existence check failed")

	// ErrRemoteDirectory indicates the remote parent directory could not be created.
	ErrRemoteDirectory = errors.New("remote directory creation failed")

	// ErrNoVideoFiles indicates a folder holds no file with a video extension.
	ErrNoVideoFiles = errors.New("no video files found in folder")
)

// TransferError carries the diagnostics of a failed copy.
type TransferError struct {
	Local    string
	Target   string
	ExitCode int      // -1 when the transport never produced one
	Tail     []string // trailing transport stderr lines
	Err      error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%v: %s -> %s: %v", ErrTransferFailed, e.Local, e.Target, e.Err)
}

func (e *TransferError) Unwrap() []error {
	return []error{ErrTransferFailed, e.Err}
}

// Diagnostic joins the stderr tail for logging.
func (e *TransferError) Diagnostic() string {
	return strings.Join(e.Tail, "\n")
}
