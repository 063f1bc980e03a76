// Package bridge moves bytes between a file-backed stdio channel and local
// streams: a terminal or pipe attached to the client side, or a child process
// hosted behind the server side.
package bridge
