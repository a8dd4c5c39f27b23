package models

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageTotals(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, Pageable{Page: 1, Size: 3}, 7)
	assert.Equal(t, 3, p.ItemCount())
	assert.Equal(t, int64(3), p.TotalPages())

	empty := EmptyPage[int](Pageable{Page: 4, Size: 3}, 7)
	assert.Equal(t, 0, empty.ItemCount())
	assert.NotNil(t, empty.Items)
	assert.Equal(t, int64(7), empty.TotalItems)

	zero := Page[int]{TotalItems: 10}
	assert.Equal(t, int64(0), zero.TotalPages())

	huge := EmptyPage[int](Pageable{Page: 1, Size: math.MaxInt64}, 7)
	assert.Equal(t, int64(1), huge.TotalPages())

	full := Page[int]{TotalItems: math.MaxInt64, Size: math.MaxInt64 - 1}
	assert.Equal(t, int64(2), full.TotalPages())
}

func TestMapPage(t *testing.T) {
	p := NewPage([]int{1, 2}, Pageable{Page: 2, Size: 2}, 4)
	mapped := MapPage(p, strconv.Itoa)
	assert.Equal(t, []string{"1", "2"}, mapped.Items)
	assert.Equal(t, int64(2), mapped.Number)
	assert.Equal(t, int64(4), mapped.TotalItems)
}

func TestPageableValidate(t *testing.T) {
	assert.NoError(t, Pageable{Page: 1, Size: 1}.Validate())
	assert.ErrorIs(t, Pageable{Page: 0, Size: 1}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Pageable{Page: 1, Size: 0}.Validate(), ErrInvalidArgument)
	assert.Equal(t, int64(20), Pageable{Page: 3, Size: 10}.Skip())
	assert.Equal(t, int64(math.MaxInt64), Pageable{Page: math.MaxInt64, Size: 500}.Skip())
}

func TestFilterRectangle(t *testing.T) {
	_, ok, err := Filter{}.Rectangle()
	require.NoError(t, err)
	assert.False(t, ok)

	one := int64(1)
	_, _, err = Filter{BottomLeftX: &one}.Rectangle()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = NewFilter(10, 0, 0, 10).Rectangle()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	rect, ok, err := NewFilter(0, 0, 300, 200).Rectangle()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Point{X: 300, Y: 200}, rect.UpperRight())
}
