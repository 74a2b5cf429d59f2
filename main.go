package main

import "github.com/sergev/cwaepoch/cmd"

func main() {
	cmd.Execute()
}
