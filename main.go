package main

import "vitrine/cmd"

func main() {
	cmd.Execute()
}
