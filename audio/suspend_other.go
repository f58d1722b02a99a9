//go:build !unix

package audio

import (
	"errors"
	"os"
)

const canSuspend = false

var errNoSuspend = errors.New("process suspension is not supported on this platform")

func suspend(*os.Process) error { return errNoSuspend }

func resume(*os.Process) error { return errNoSuspend }
