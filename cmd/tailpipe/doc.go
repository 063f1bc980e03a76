// Package main hosts the tailpipe CLI entrypoint and command graph.
//
// `serve` hosts a command behind file-backed pseudo-stdio, `attach` connects
// this process's stdin/stdout to a serving peer, `paths` shows where a channel
// lives, and `config` scaffolds and inspects configuration. Channel semantics
// live in internal/filestdio and the byte pumps in internal/bridge; this
// package only resolves configuration, flags and logging, then wires them up.
package main
