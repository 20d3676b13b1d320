package main

import "github.com/quaero-labs/quaero/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
