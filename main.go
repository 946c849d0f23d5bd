package main

import "evspare/cmd"

func main() {
	cmd.Execute()
}
