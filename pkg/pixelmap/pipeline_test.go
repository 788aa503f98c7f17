package pixelmap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentity(t *testing.T) {
	table, err := Pipeline{Identity()}.Resolve(32, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, table.Width())
	assert.Equal(t, 32, table.Height())

	px, py, err := table.Map(5, 7)
	require.NoError(t, err)
	assert.Equal(t, [2]int{5, 7}, [2]int{px, py})

	_, _, err = table.Map(32, 0)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestResolveEmptyPipeline(t *testing.T) {
	table, err := Pipeline(nil).Resolve(64, 32)
	require.NoError(t, err)
	assert.Equal(t, 64, table.Width())
	assert.Equal(t, 32, table.Height())
	assert.Len(t, table.Physical(), 64*32)
}

func TestResolveRotate90BothDirections(t *testing.T) {
	table, err := Pipeline{Rotate(90)}.Resolve(32, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, table.Width())
	assert.Equal(t, 32, table.Height())

	px, py, err := table.Map(0, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{31, 0}, [2]int{px, py})

	x, y, err := table.Inverse(31, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, [2]int{x, y})

	for y := 0; y < table.Height(); y++ {
		for x := 0; x < table.Width(); x++ {
			px, py, err := table.Map(x, y)
			require.NoError(t, err)
			bx, by, err := table.Inverse(px, py)
			require.NoError(t, err)
			require.Equal(t, [2]int{x, y}, [2]int{bx, by})
		}
	}
}

func TestResolveComposesInOrder(t *testing.T) {
	// Mirror first, then rotate: the rotation sees the mirrored canvas.
	p := Pipeline{Mirror(true), Rotate(90)}
	table, err := p.Resolve(32, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, table.Width())
	assert.Equal(t, 32, table.Height())

	// Rotate(90) on 32x16 sends (0,0) to (31,0); Mirror:H sends that to (0,0).
	px, py, err := table.Map(0, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, [2]int{px, py})

	px2, py2, err := p.Map(32, 16, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{px, py}, [2]int{px2, py2})

	q := Pipeline{Rotate(90), Mirror(true)}
	table, err = q.Resolve(32, 16)
	require.NoError(t, err)
	// Mirror:H on 16x32 sends (0,0) to (15,0); Rotate(90) sends that to (31,15).
	px, py, err = table.Map(0, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{31, 15}, [2]int{px, py})
}

func TestResolveMultiplexThenChainLink(t *testing.T) {
	physRows, physCols := Stripe.Physical(16, 32)
	p := Pipeline{Multiplex(Stripe, 16, 32), ChainLink(2)}
	table, err := p.Resolve(physCols, 2*physRows)
	require.NoError(t, err)
	assert.Equal(t, 64, table.Width())
	assert.Equal(t, 16, table.Height())

	// Column 32 is the first column of the second chain.
	px, py, err := table.Map(32, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{32, physRows}, [2]int{px, py})
}

func TestResolveFailsEagerly(t *testing.T) {
	_, err := Pipeline{UArrange(3, 1)}.Resolve(96, 32)
	assert.True(t, errors.Is(err, ErrInvalidMapper))

	_, err = Pipeline{ChainLink(3)}.Resolve(32, 64)
	assert.True(t, errors.Is(err, ErrInvalidMapper))

	_, err = Pipeline{}.Resolve(0, 16)
	assert.True(t, errors.Is(err, ErrInvalidMapper))
}

func TestInverseUnmapped(t *testing.T) {
	table, err := Pipeline{Identity()}.Resolve(4, 4)
	require.NoError(t, err)
	_, _, err = table.Inverse(4, 0)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	table.inverse[0] = -1
	_, _, err = table.Inverse(0, 0)
	assert.True(t, errors.Is(err, ErrNotMapped))
}

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		want Pipeline
	}{
		{"", nil},
		{"Identity", Pipeline{Identity()}},
		{"Rotate:90", Pipeline{Rotate(90)}},
		{"Rotate:-90", Pipeline{Rotate(270)}},
		{"Rotate:450", Pipeline{Rotate(90)}},
		{"Mirror:H", Pipeline{Mirror(true)}},
		{"mirror:v", Pipeline{Mirror(false)}},
		{"U-mapper;Rotate:180", Pipeline{UArrange(4, 2), Rotate(180)}},
		{"ChainLink", Pipeline{ChainLink(2)}},
		{"ChainLink:3", Pipeline{ChainLink(3)}},
		{" Mirror:H ; Rotate:270 ;", Pipeline{Mirror(true), Rotate(270)}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Parse(tt.desc, 4, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, desc := range []string{
		"Mirror", "Mirror:X", "Rotate", "Rotate:45", "Rotate:abc", "ChainLink:x", "Swirl",
	} {
		t.Run(desc, func(t *testing.T) {
			_, err := Parse(desc, 1, 1)
			assert.True(t, errors.Is(err, ErrInvalidMapper), "got %v", err)
		})
	}
}

func TestPipelineString(t *testing.T) {
	p, err := Parse("U-mapper;Rotate:90;Mirror:V;ChainLink:2", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "U-mapper;Rotate:90;Mirror:V;ChainLink:2", p.String())
}
