package main

import "github.com/croncommander/cc-jobparse/cmd"

func main() {
	cmd.Execute()
}
