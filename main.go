package main

import "github.com/peekknuf/teatool/cmd"

func main() {
	cmd.Execute()
}
