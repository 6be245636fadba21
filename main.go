package main

import "daybook/cmd"

func main() {
	cmd.Execute()
}
