package main

import "github.com/quaverlabs/partita/cmd"

func main() {
	cmd.Execute()
}
