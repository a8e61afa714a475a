package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"same point", Point{12.97, 77.59}, Point{12.97, 77.59}, 0, 1e-9},
		{"one degree of longitude at the equator", Point{0, 0}, Point{0, 1}, 111.19, 0.01},
		{"pole to pole", Point{90, 0}, Point{-90, 0}, 20015.09, 0.01},
		{"bangalore to chennai", Point{12.9716, 77.5946}, Point{13.0827, 80.2707}, 290.2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.tol)
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	points := []Point{
		{0, 0}, {51.5074, -0.1278}, {-33.8688, 151.2093}, {40.7128, -74.006}, {89.9, 179.9},
	}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
		}
		assert.Zero(t, Distance(a, a))
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235001))
	assert.Equal(t, 9999.0, Round2(9999))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "12.9716,77.5946", CacheKey(12.97164, 77.59455))
	assert.Equal(t, CacheKey(12.97161, 77.59461), CacheKey(12.97159, 77.59459))
	assert.NotEqual(t, CacheKey(12.9716, 77.5946), CacheKey(12.9717, 77.5946))
}
