package main

import "cryptoPulse/internal/cli"

func main() {
	cli.Execute()
}
