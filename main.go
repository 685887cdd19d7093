package main

import "github.com/ransim/ransim/cmd"

func main() {
	cmd.Execute()
}
