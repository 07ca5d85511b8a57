// Command chatview runs the terminal chat transcript.
package main

import "github.com/diogo/chatview/internal/commands"

func main() {
	commands.Execute()
}
