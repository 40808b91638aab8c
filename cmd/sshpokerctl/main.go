package main

import "github.com/sshpoker/sshpoker/internal/cli"

func main() {
	cli.Execute()
}
