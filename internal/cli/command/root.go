package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

const clientKey = "client"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "respkv-cli",
		Usage:    "Command-line client for respkv",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: []*cli.Command{PingCommand(), EchoCommand(), GetCommand(), SetCommand()},
		Before: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[clientKey] = connection.NewClient(flags.Server, flags.Timeout)
			return nil
		},
		After: func(c *cli.Context) error {
			if client := GetClient(c); client != nil {
				return client.Close()
			}
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "respkv server address (host:port)",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
			EnvVars: []string{"RESPKV_TIMEOUT"},
			Value:   connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
	}
}

// GetClient retrieves the client created by the Before hook.
func GetClient(c *cli.Context) *connection.Client {
	if client, ok := c.App.Metadata[clientKey].(*connection.Client); ok {
		return client
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
