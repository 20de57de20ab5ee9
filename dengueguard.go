package main

import (
	"github.com/dengueguard/monitor/api"
)

func main() {
	api.MainLoop()
}
