package commands

import (
	"context"
	"errors"
	"fmt"

	"InpaintBoard/internal/analytics"
	"InpaintBoard/internal/config"
	"InpaintBoard/internal/editor"
	"InpaintBoard/internal/logutils"
	"InpaintBoard/internal/net"

	"github.com/rs/zerolog/log"
)

// session holds the collaborators of an editing session built from config.
type session struct {
	options  editor.Options
	recorder *analytics.Recorder
}

func (s *session) close() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}

// newSession resolves the inpainting endpoint and builds the token source,
// client and analytics recorder for it.
func newSession(ctx context.Context, flags *Flags) (*session, error) {
	cfg := flags.Config

	endpoint := cfg.Service.Endpoint
	if flags.Endpoint != "" {
		endpoint = flags.Endpoint
	}
	if endpoint == "" {
		if !cfg.Service.Discover {
			return nil, errors.New("no inpainting endpoint configured")
		}
		log.Info().Dur("timeout", cfg.Service.DiscoverTimeout).Msg("browsing for inpainting service")
		found, err := net.Discover(ctx, cfg.Service.DiscoverTimeout)
		if err != nil {
			return nil, fmt.Errorf("discover service: %w", err)
		}
		endpoint = found
	}
	log.Info().Str("endpoint", endpoint).Msg("using inpainting service")

	inpainter, err := net.NewInpainter(endpoint, cfg.Service.Timeout, logutils.Component(log.Logger, "client"))
	if err != nil {
		return nil, err
	}

	s := &session{
		options: editor.Options{
			Tokens:    tokenSource(cfg, flags.Token),
			Inpainter: inpainter,
			BrushSize: cfg.Brush.Default,
			Overlay:   cfg.OverlayColor(),
			Logger:    logutils.Component(log.Logger, "editor"),
		},
	}

	if cfg.Analytics.Enabled {
		alog := logutils.Component(log.Logger, "analytics")
		sinks := []analytics.Sink{analytics.LogSink{Log: alog}}
		if cfg.Analytics.URL != "" {
			sinks = append(sinks, analytics.NewHTTPSink(cfg.Analytics.URL, cfg.Service.Timeout))
		}
		s.recorder = analytics.New(cfg.Analytics.Buffer, alog, sinks...)
		s.recorder.Start(context.WithoutCancel(ctx))
		s.options.Recorder = s.recorder
	}

	return s, nil
}

func tokenSource(cfg *config.Config, override string) editor.TokenSource {
	switch {
	case override != "":
		return net.StaticToken(override)
	case cfg.Auth.URL != "":
		return net.NewTokenEndpoint(cfg.Auth.URL, cfg.Auth.Key, cfg.Service.Timeout)
	case cfg.Auth.Token != "":
		return net.StaticToken(cfg.Auth.Token)
	default:
		return editor.NoToken{}
	}
}
