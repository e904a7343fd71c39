package main

import "github.com/forPelevin/viralcut/internal/cli"

func main() {
	cli.Main()
}
