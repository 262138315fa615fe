package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping subcommand.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server is reachable",
		ArgsUsage: "[message...]",
		Action:    ping,
	}
}

// EchoCommand returns the echo subcommand.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Ask the server to echo a message",
		ArgsUsage: "<message>",
		Action:    echo,
	}
}

// GetCommand returns the get subcommand.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action:    get,
	}
}

// SetCommand returns the set subcommand.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "<key> <value>",
		Action:    set,
	}
}

func ping(c *cli.Context) error {
	client := GetClient(c)
	if client == nil {
		return errNoClient
	}
	reply, err := client.Do(requestContext(c), append([]string{"PING"}, c.Args().Slice()...)...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

func echo(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("echo requires a message", 2)
	}
	client := GetClient(c)
	if client == nil {
		return errNoClient
	}
	reply, err := client.Echo(requestContext(c), strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

func get(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("get requires exactly one key", 2)
	}
	client := GetClient(c)
	if client == nil {
		return errNoClient
	}
	value, ok, err := client.Get(requestContext(c), c.Args().First())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, "(nil)")
		return nil
	}
	fmt.Fprintln(c.App.Writer, value)
	return nil
}

func set(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("set requires a key and a value", 2)
	}
	client := GetClient(c)
	if client == nil {
		return errNoClient
	}
	if err := client.Set(requestContext(c), c.Args().Get(0), c.Args().Get(1)); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

var errNoClient = cli.Exit("client not initialized", 1)

func requestContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
