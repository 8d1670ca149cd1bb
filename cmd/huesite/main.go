package main

import "github.com/emiliopalmerini/huesite/internal/cli"

func main() {
	cli.Execute()
}
