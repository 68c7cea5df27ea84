package main

import "titanwatch/internal/cli"

func main() {
	cli.Execute()
}
