package rpc

import (
	"fmt"
	"net/rpc"
	"strconv"
	"time"
)

// Client controls an emulator running an rpc Server.
type Client struct {
	client *rpc.Client
}

// NewClient connects to the server on port, retrying for a short while so
// the server has time to start.
func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.DialHTTP("tcp", "localhost:"+strconv.Itoa(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if client == nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	c := &Client{client: client}
	var ready bool
	if err := c.client.Call("emu.IsReady", &struct{}{}, &ready); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) Reset() error              { return c.call("emu.Reset", nil) }
func (c *Client) SetPause(pause bool) error { return c.call("emu.SetPause", pause) }
func (c *Client) Stop() error               { return c.call("emu.Stop", nil) }

func (c *Client) call(funcname string, args any) error {
	if args == nil {
		args = &struct{}{}
	}
	var reply struct{}
	if err := c.client.Call(funcname, args, &reply); err != nil {
		return fmt.Errorf("rpc %s: %w", funcname, err)
	}
	return nil
}
