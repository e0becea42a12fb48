package main

import "github.com/pfrederiksen/gigmerge/internal/cli"

func main() {
	cli.Execute()
}
