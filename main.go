package main

import "github.com/agentic-research/jsonshape/cmd"

func main() {
	cmd.Execute()
}
