package main

import "github.com/pfrederiksen/bookclub-events/internal/cli"

func main() {
	cli.Execute()
}
