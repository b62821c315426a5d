// Command symtrace-addr2line resolves addresses against a module's
// symbol and DWARF information, an addr2line-equivalent command-line
// front end for the symtrace library.
package main

import "github.com/jetsetilly/symtrace/cmd/symtrace-addr2line/cmd"

func main() {
	cmd.Execute()
}
