package typoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		max  int
		want int
	}{
		{"", "", 2, 0},
		{"go", "", 2, 2},
		{"kitten", "sitting", 3, 3},
		{"hello", "hello", 2, 0},
		{"hello", "helo", 2, 1},
		{"hello", "ehllo", 2, 1},
		{"café", "cafe", 1, 1},
		{"programming", "go", 2, 3},
		{"abcdef", "badcfe", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b, tt.max))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a, tt.max), "distance is symmetric")
		})
	}
}

func TestNear(t *testing.T) {
	terms := []string{"go", "gopher", "golang", "hello", "help", "helo", "world"}

	assert.Equal(t, []Match{
		{Term: "hello", Distance: 0},
		{Term: "helo", Distance: 1},
		{Term: "help", Distance: 2},
	}, Near("hello", terms, 2, 0))

	assert.Equal(t, []Match{
		{Term: "hello", Distance: 1},
		{Term: "helo", Distance: 1},
		{Term: "help", Distance: 1},
	}, Near("hell", terms, 1, 0))

	assert.Equal(t, []Match{{Term: "hello", Distance: 0}}, Near("hello", terms, 2, 1))
	assert.Empty(t, Near("", terms, 2, 0))
	assert.Empty(t, Near("xyzzy", terms, 1, 0))
	assert.NotNil(t, Near("xyzzy", nil, 1, 0))
}
