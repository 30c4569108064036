package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"InpaintBoard/internal/editor"
	"InpaintBoard/internal/export"
	"InpaintBoard/internal/state"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type ApplyCmd struct {
	flags *Flags

	// flags
	image   string
	strokes string
	out     string
}

// NewApplyCmd creates the headless apply command
func NewApplyCmd(flags *Flags) *ApplyCmd {
	return &ApplyCmd{flags: flags}
}

// Register adds the apply command to the application
func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "apply",
		Usage:     "Replay a stroke file against an image without the UI",
		UsageText: "inpaintboard apply --image photo.png --strokes strokes.json --out result.png",
		Description: `Loads the image, replays every stroke of the JSON stroke file through the
editor exactly as if it had been drawn, and writes the final image. Each
stroke is submitted on its own and the mask always covers all strokes so far.

The output format follows the --out extension: .png, .jpg, .jpeg or .pdf.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "image",
				Usage:       "image to edit",
				Required:    true,
				Destination: &cmd.image,
			},
			&cli.StringFlag{
				Name:        "strokes",
				Usage:       "JSON stroke file",
				Required:    true,
				Destination: &cmd.strokes,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file",
				Required:    true,
				Destination: &cmd.out,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := export.FormatFor(cmd.out); err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	f, err := os.Open(cmd.strokes)
	if err != nil {
		return fmt.Errorf("open strokes: %w", err)
	}
	strokes, err := state.ReadStrokes(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	if len(strokes) == 0 {
		return errors.New("stroke file has no strokes")
	}

	s, err := newSession(ctx, cmd.flags)
	if err != nil {
		return err
	}
	defer s.close()

	ctrl := editor.New(s.options)
	if err := ctrl.Load(ctx, data); err != nil {
		return err
	}

	if err := ctrl.Apply(ctx, strokes); err != nil {
		return fmt.Errorf("apply strokes: %w", err)
	}

	frame, err := ctrl.Snapshot()
	if err != nil {
		return err
	}
	if err := export.SaveFile(cmd.out, frame); err != nil {
		return err
	}

	log.Info().Int("strokes", len(strokes)).Str("out", cmd.out).Msg("applied strokes")
	_, _ = fmt.Fprintf(c.Root().Writer, "wrote %s\n", cmd.out)
	return nil
}
