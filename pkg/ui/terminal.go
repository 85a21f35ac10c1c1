package ui

import "errors"

// ErrInterrupt is returned by ReadKey when the operator presses Ctrl+C in raw
// mode, where the terminal no longer turns it into SIGINT.
var ErrInterrupt = errors.New("interrupted")

const ctrlC = 0x03
