package drawing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCompress_RoundTripQuantizes(t *testing.T) {
	t.Parallel()
	in := []Command{
		Start(10.1234, 20.5678),
		withColor(withSize(Move(30.05, 40.99), 12), "#00FF00"),
		End(),
		Clear(),
	}

	out := Decompress(Compress(in))

	want := []Command{
		Start(10.1, 20.6),
		withColor(withSize(Move(30.1, 41), 12), "#00FF00"),
		End(),
		Clear(),
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompress_ToleratesGarbage(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"nil", nil},
		{"malformed", []byte("{not json")},
		{"non-array", []byte(`{"type":"start"}`)},
		{"json null", []byte("null")},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Empty(t, Decompress(tC.payload))
			})
		})
	}
}

func TestOptimizeStroke(t *testing.T) {
	t.Parallel()

	t.Run("drops repeated and near points, keeps endpoints", func(t *testing.T) {
		stroke := []Command{
			Start(0, 0),
			Move(0.5, 0.5), // within epsilon of start
			Move(10, 10),
			Move(10, 10), // exact repeat
			Move(11, 10), // within epsilon of previous retained
			Move(50, 50),
			End(),
		}
		got := OptimizeStroke(stroke, 2.0)
		want := []Command{Start(0, 0), Move(10, 10), Move(50, 50), End()}
		assert.Equal(t, want, got)
	})

	t.Run("short strokes untouched", func(t *testing.T) {
		stroke := []Command{Start(0, 0), End()}
		assert.Equal(t, stroke, OptimizeStroke(stroke, 2.0))
	})

	t.Run("last command survives even when close", func(t *testing.T) {
		stroke := []Command{Start(0, 0), Move(0.1, 0.1), End()}
		got := OptimizeStroke(stroke, 2.0)
		assert.Equal(t, []Command{Start(0, 0), End()}, got)
	})
}
