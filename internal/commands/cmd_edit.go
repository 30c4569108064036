package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"InpaintBoard/internal/logutils"
	"InpaintBoard/internal/ui"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type EditCmd struct {
	flags *Flags
}

// NewEditCmd creates the desktop editor command
func NewEditCmd(flags *Flags) *EditCmd {
	return &EditCmd{flags: flags}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Open the inpainting editor",
		UsageText: "inpaintboard edit [image]",
		Description: `Opens the desktop editor. Paint over the part of the image to remove; when
the mouse is released the painted mask is sent to the inpainting service and
the result replaces the image. Hold the compare button to see the original.`,
		Action: cmd.Run,
	})

	return app
}

func (cmd *EditCmd) Run(ctx context.Context, c *cli.Command) error {
	opts := ui.Options{
		Brush: ui.BrushRange{
			Min:     cmd.flags.Config.Brush.Min,
			Max:     cmd.flags.Config.Brush.Max,
			Default: cmd.flags.Config.Brush.Default,
		},
		Logger: logutils.Component(log.Logger, "ui"),
	}

	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		opts.ImageName = filepath.Base(path)
		opts.Image = data
	}

	s, err := newSession(ctx, cmd.flags)
	if err != nil {
		return err
	}
	defer s.close()

	opts.Editor = s.options
	ui.RunApp(ctx, opts)
	return nil
}
