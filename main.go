package main

import "character-manager/cmd"

func main() {
	cmd.Execute()
}
