package editor

import (
	"testing"

	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/assert"
)

func TestMapper_Map(t *testing.T) {
	tests := []struct {
		name   string
		mapper Mapper
		page   state.Point
		want   state.Point
	}{
		{
			name: "identity",
			page: state.Point{X: 12, Y: 34},
			want: state.Point{X: 12, Y: 34},
		},
		{
			name:   "offset only",
			mapper: Mapper{Offset: state.Point{X: 10, Y: 20}},
			page:   state.Point{X: 110, Y: 120},
			want:   state.Point{X: 100, Y: 100},
		},
		{
			name:   "scrolled and scaled",
			mapper: Mapper{Offset: state.Point{X: -50, Y: 0}, Scale: 0.5},
			page:   state.Point{X: 150, Y: 80},
			want:   state.Point{X: 100, Y: 40},
		},
		{
			name:   "left of the surface",
			mapper: Mapper{Offset: state.Point{X: 10, Y: 10}},
			page:   state.Point{X: 0, Y: 0},
			want:   state.Point{X: -10, Y: -10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mapper.Map(tt.page))
		})
	}
}
