package image

import (
	"image"
	"testing"

	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func painted(m *image.Alpha, x, y int) bool {
	return m.AlphaAt(x, y).A == 0xff
}

func horizontal() state.Stroke {
	return state.Stroke{
		ID:        "h",
		BrushSize: 40,
		Points:    []state.Point{{X: 100, Y: 100}, {X: 150, Y: 100}},
	}
}

func vertical() state.Stroke {
	return state.Stroke{
		ID:        "v",
		BrushSize: 10,
		Points:    []state.Point{{X: 130, Y: 60}, {X: 130, Y: 180}, {X: 200, Y: 180}},
	}
}

func TestRasterize_InvalidSurface(t *testing.T) {
	r := NewRasterizer()

	for _, size := range [][2]int{{0, 0}, {800, 0}, {0, 600}, {-1, 10}} {
		_, err := r.Rasterize([]state.Stroke{horizontal()}, size[0], size[1])
		assert.ErrorIs(t, err, ErrInvalidSurface)
	}
}

func TestRasterize_EmptyHistory(t *testing.T) {
	mask, err := NewRasterizer().Rasterize([]state.Stroke{{}}, 64, 48)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 64, 48), mask.Bounds())
	for _, a := range mask.Pix {
		require.Zero(t, a)
	}
}

func TestRasterize_StrokeCoverage(t *testing.T) {
	mask, err := NewRasterizer().Rasterize([]state.Stroke{horizontal()}, 800, 600)
	require.NoError(t, err)

	assert.True(t, painted(mask, 125, 100), "segment middle")
	assert.True(t, painted(mask, 125, 85), "inside half width")
	assert.True(t, painted(mask, 84, 100), "round cap before first point")
	assert.True(t, painted(mask, 165, 100), "round cap after last point")

	assert.False(t, painted(mask, 125, 125), "outside half width")
	assert.False(t, painted(mask, 75, 100), "beyond the cap")
	assert.False(t, painted(mask, 10, 10), "background")

	for _, a := range mask.Pix {
		require.True(t, a == 0 || a == 0xff, "mask must be monochrome")
	}
}

func TestRasterize_SinglePointIsDisc(t *testing.T) {
	dot := state.Stroke{BrushSize: 20, Points: []state.Point{{X: 50, Y: 50}}}

	mask, err := NewRasterizer().Rasterize([]state.Stroke{dot}, 100, 100)
	require.NoError(t, err)

	assert.True(t, painted(mask, 50, 50))
	assert.True(t, painted(mask, 56, 50))
	assert.False(t, painted(mask, 64, 50))
}

func TestRasterize_UnionIsOrderIndependent(t *testing.T) {
	r := NewRasterizer()
	a, b := horizontal(), vertical()

	ab, err := r.Rasterize([]state.Stroke{a, b}, 320, 240)
	require.NoError(t, err)
	ba, err := r.Rasterize([]state.Stroke{b, {}, a}, 320, 240)
	require.NoError(t, err)
	onlyA, err := r.Rasterize([]state.Stroke{a}, 320, 240)
	require.NoError(t, err)
	onlyB, err := r.Rasterize([]state.Stroke{b}, 320, 240)
	require.NoError(t, err)

	assert.Equal(t, ab.Pix, ba.Pix)

	union := make([]uint8, len(onlyA.Pix))
	for i := range union {
		union[i] = onlyA.Pix[i] | onlyB.Pix[i]
	}
	assert.Equal(t, union, ab.Pix)
}

func TestRasterize_Idempotent(t *testing.T) {
	r := NewRasterizer()
	history := []state.Stroke{horizontal(), vertical(), {}}

	first, err := r.Rasterize(history, 320, 240)
	require.NoError(t, err)
	second, err := r.Rasterize(history, 320, 240)
	require.NoError(t, err)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestRasterize_ClipsToSurface(t *testing.T) {
	edge := state.Stroke{BrushSize: 30, Points: []state.Point{{X: -20, Y: 5}, {X: 10, Y: 5}}}

	mask, err := NewRasterizer().Rasterize([]state.Stroke{edge}, 40, 40)
	require.NoError(t, err)

	assert.True(t, painted(mask, 0, 5))
	assert.False(t, painted(mask, 35, 35))
}

func TestMaskDataURL_RoundTrip(t *testing.T) {
	mask, err := NewRasterizer().Rasterize([]state.Stroke{horizontal()}, 200, 150)
	require.NoError(t, err)

	url, err := EncodeMaskDataURL(mask)
	require.NoError(t, err)
	assert.Contains(t, url, "data:image/png;base64,")

	decoded, err := DecodeMaskDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, mask.Bounds(), decoded.Bounds())

	_, _, _, a := decoded.At(125, 100).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = decoded.At(5, 5).RGBA()
	assert.Zero(t, a)
}

func TestDecodeMaskDataURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "hello", "data:image/png,abc", "data:image/png;base64,!!!"} {
		_, err := DecodeMaskDataURL(in)
		assert.Error(t, err, in)
	}
}
