package main

import "github.com/mcoot/resonance/internal/cli"

func main() {
	cli.Execute()
}
