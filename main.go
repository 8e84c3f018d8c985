package main

import "github.com/mpapenbr/ustsa-points/cmd"

func main() {
	cmd.Execute()
}
