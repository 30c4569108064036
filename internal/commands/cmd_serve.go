package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"InpaintBoard/internal/logutils"
	"InpaintBoard/internal/net"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type ServeCmd struct {
	flags *Flags

	// flags
	addr      string
	noAdvert  bool
	showToken bool
}

// NewServeCmd creates the reference server command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run a local inpainting service",
		UsageText: "inpaintboard serve [--addr :8765]",
		Description: `Runs a small inpainting service that fills the masked region by diffusing the
surrounding colours. It accepts multipart POSTs and WebSocket requests on the
configured path and advertises itself on the local network over mDNS so
editors can find it without configuration. When server.issuer_key is set, the
token is also handed out at /token to clients that present the issuer key.

Set server.token or server.issuer_key to "generate" to create a random value
on start.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Destination: &cmd.addr,
			},
			&cli.BoolFlag{
				Name:        "no-advertise",
				Usage:       "do not announce the service over mDNS",
				Destination: &cmd.noAdvert,
			},
			&cli.BoolFlag{
				Name:        "show-token",
				Usage:       "print the bearer token and issuer key on start",
				Destination: &cmd.showToken,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config.Server

	opts := net.ServerOptions{
		Addr:       cfg.Addr,
		Path:       cfg.Path,
		Token:      cfg.Token,
		IssuerKey:  cfg.IssuerKey,
		Iterations: cfg.Iterations,
		Advertise:  cfg.Advertise && !cmd.noAdvert,
	}
	if cmd.addr != "" {
		opts.Addr = cmd.addr
	}
	if opts.Token == "generate" {
		opts.Token = net.GenerateToken()
	}
	if opts.IssuerKey == "generate" {
		opts.IssuerKey = net.GenerateToken()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := net.NewServer(opts, logutils.Component(log.Logger, "server"))
	if err := server.Start(ctx); err != nil {
		return err
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "listening on %s%s\n", server.Addr(), opts.Path)
	if ip, err := net.OutgoingIP(); err == nil {
		log.Info().Str("lan", ip.String()).Msg("reachable on the local network")
	}
	if cmd.showToken && opts.Token != "" {
		_, _ = fmt.Fprintf(out, "token: %s\n", opts.Token)
	}
	if cmd.showToken && opts.IssuerKey != "" {
		_, _ = fmt.Fprintf(out, "issuer key: %s\n", opts.IssuerKey)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
