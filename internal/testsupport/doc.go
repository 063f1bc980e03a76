// Package testsupport holds helpers shared by tailpipe tests: simulated
// external writers and bounded reads from file-backed streams.
package testsupport
