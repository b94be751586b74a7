package main

import "frostline/cmd"

func main() {
	cmd.Execute()
}
