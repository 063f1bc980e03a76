// Package transcript gives a line-oriented view of channel files.
//
// A channel file is an append-only record of everything one side has sent,
// so it doubles as a transcript. Tail returns the last lines or the lines
// after an offset and can wait for more to arrive. Only complete
// newline-terminated lines are returned; a line still being written stays
// behind the returned offset until its newline lands.
package transcript
