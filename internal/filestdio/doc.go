// Package filestdio implements pseudo-stdio streams backed by ordinary files.
//
// A TailReader follows a growing file from a private cursor and hands each new
// chunk to its consumer; an AppendWriter appends to a file without seeking or
// truncating. An Endpoint pairs one of each over two files, and the server and
// client constructors wire the same two paths with opposite roles so two
// unrelated processes can hold a full-duplex byte channel with nothing but the
// filesystem between them.
//
// The package carries raw bytes only. It assumes exactly one writer per file
// and never deletes the files it creates; cleanup belongs to the caller.
package filestdio
