package main

import "github.com/dengueguard/monitor/cmd/dgctl/command"

func main() {
	command.Execute()
}
