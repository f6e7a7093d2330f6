package rpc

import (
	"net"

	"speccy/emu/log"
)

var modRPC = log.NewModule("rpc")

// UnusedPort returns a free TCP port on localhost.
func UnusedPort() int {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("rpc: no free port: " + err.Error())
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		panic("rpc: no free port: " + err.Error())
	}
	return port
}
