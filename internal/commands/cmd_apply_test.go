package commands

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"InpaintBoard/internal/config"
	"InpaintBoard/internal/net"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{G: 180, A: 255}
			if x >= 30 && x < 34 && y >= 30 && y < 34 {
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func testFlags(endpoint string) *Flags {
	cfg := config.DefaultConfig()
	cfg.Service.Endpoint = endpoint
	cfg.Service.Discover = false
	cfg.Analytics.Enabled = false
	return &Flags{Config: &cfg}
}

func TestApplyCmd(t *testing.T) {
	server := net.NewServer(net.ServerOptions{Token: "tok", Iterations: 30}, zerolog.Nop())
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	dir := t.TempDir()
	imagePath := filepath.Join(dir, "in.png")
	strokesPath := filepath.Join(dir, "strokes.json")
	outPath := filepath.Join(dir, "out.png")

	writeTestImage(t, imagePath)
	require.NoError(t, os.WriteFile(strokesPath, []byte(`[
		{"brush_size": 12, "points": [{"x": 32, "y": 32}]}
	]`), 0o644))

	flags := testFlags(srv.URL + net.DefaultPath)
	flags.Token = "tok"

	cmd := NewApplyCmd(flags)
	cmd.image, cmd.strokes, cmd.out = imagePath, strokesPath, outPath

	var stdout bytes.Buffer
	err := cmd.run(context.Background(), &cli.Command{Writer: &stdout})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "out.png")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	result, err := png.Decode(f)
	require.NoError(t, err)

	r, g, _, _ := result.At(32, 32).RGBA()
	assert.InDelta(t, 0, float64(r>>8), 1)
	assert.InDelta(t, 180, float64(g>>8), 1)
}

func TestApplyCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "in.png")
	writeTestImage(t, imagePath)
	emptyStrokes := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyStrokes, []byte(`[]`), 0o644))

	tests := []struct {
		name    string
		strokes string
		out     string
		errMsg  string
	}{
		{name: "bad output format", strokes: emptyStrokes, out: "out.gif", errMsg: "unsupported export format"},
		{name: "missing strokes", strokes: filepath.Join(dir, "nope.json"), out: "out.png", errMsg: "open strokes"},
		{name: "no strokes", strokes: emptyStrokes, out: "out.png", errMsg: "no strokes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewApplyCmd(testFlags("http://127.0.0.1:1/inpaint"))
			cmd.image, cmd.strokes, cmd.out = imagePath, tt.strokes, filepath.Join(dir, tt.out)

			err := cmd.run(context.Background(), &cli.Command{Writer: &bytes.Buffer{}})
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestTokenSource(t *testing.T) {
	cfg := config.DefaultConfig()

	tok, err := tokenSource(&cfg, "flag").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "flag", tok)

	cfg.Auth.Token = "from-config"
	tok, err = tokenSource(&cfg, "").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-config", tok)

	cfg.Auth.URL = "http://auth.local/token"
	assert.IsType(t, &net.TokenEndpoint{}, tokenSource(&cfg, ""))
}
