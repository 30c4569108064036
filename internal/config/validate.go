package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("service.endpoint", c.Service.Endpoint, endpointURL),
		criterio.Run("auth.url", c.Auth.URL, httpURL),
		criterio.Run("analytics.url", c.Analytics.URL, httpURL),
		criterio.Run("overlay.color", c.Overlay.Color, hexColor),
		c.validateRanges(),
	)
}

func (c *Config) validateRanges() error {
	var errs criterio.FieldErrorsBuilder

	if c.Service.Timeout < 0 {
		errs = errs.Append("service.timeout", errors.New("must not be negative"))
	}
	if c.Service.DiscoverTimeout < 0 {
		errs = errs.Append("service.discover_timeout", errors.New("must not be negative"))
	}
	if c.Brush.Min <= 0 {
		errs = errs.Append("brush.min", errors.New("must be positive"))
	}
	if c.Brush.Max < c.Brush.Min {
		errs = errs.Append("brush.max", fmt.Errorf("must be at least brush.min (%g)", c.Brush.Min))
	}
	if c.Brush.Default < c.Brush.Min || c.Brush.Default > c.Brush.Max {
		errs = errs.Append("brush.default", fmt.Errorf("must be between %g and %g", c.Brush.Min, c.Brush.Max))
	}
	if c.Overlay.Alpha <= 0 || c.Overlay.Alpha > 1 {
		errs = errs.Append("overlay.alpha", errors.New("must be in (0, 1]"))
	}
	if c.Analytics.Buffer < 0 {
		errs = errs.Append("analytics.buffer", errors.New("must not be negative"))
	}
	if c.Server.Iterations < 0 {
		errs = errs.Append("server.iterations", errors.New("must not be negative"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = errs.Append("server.path", errors.New("must start with /"))
	}

	return errs.ToError()
}

func endpointURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func httpURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func hexColor(s string) error {
	_, err := parseHexColor(s)
	return err
}
