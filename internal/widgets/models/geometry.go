package models

import (
	"fmt"
	"math"
)

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Rectangle - прямоугольник со сторонами вдоль осей, заданный и центром с
// размерами, и угловыми точками. После создания не меняется.
type Rectangle struct {
	x          int64
	y          int64
	width      int64
	height     int64
	bottomLeft Point
	upperRight Point
}

// NewRectangle строит прямоугольник по центру и размерам.
//
// Углы - floor(center - side/2) и floor(center + side/2), поэтому при
// нечётной стороне ниже центра на единицу больше, чем выше:
// x=10, width=5 даёт 7..12. Угол за пределами int64 - ErrInvalidArgument.
func NewRectangle(x, y, width, height int64) (Rectangle, error) {
	if width <= 0 {
		return Rectangle{}, fmt.Errorf("%w: width must be greater than zero", ErrInvalidArgument)
	}
	if height <= 0 {
		return Rectangle{}, fmt.Errorf("%w: height must be greater than zero", ErrInvalidArgument)
	}

	blX, urX, ok := corners(x, width)
	if !ok {
		return Rectangle{}, fmt.Errorf("%w: x=%d width=%d leaves the coordinate range", ErrInvalidArgument, x, width)
	}
	blY, urY, ok := corners(y, height)
	if !ok {
		return Rectangle{}, fmt.Errorf("%w: y=%d height=%d leaves the coordinate range", ErrInvalidArgument, y, height)
	}

	return Rectangle{
		x:          x,
		y:          y,
		width:      width,
		height:     height,
		bottomLeft: Point{X: blX, Y: blY},
		upperRight: Point{X: urX, Y: urY},
	}, nil
}

// NewRectangleFromCorners строит прямоугольник по нижнему левому и верхнему
// правому углам. По обеим осям координаты должны строго возрастать.
func NewRectangleFromCorners(bottomLeft, upperRight Point) (Rectangle, error) {
	if bottomLeft.X >= upperRight.X {
		return Rectangle{}, fmt.Errorf("%w: bottom-left x must be less than upper-right x", ErrInvalidArgument)
	}
	if bottomLeft.Y >= upperRight.Y {
		return Rectangle{}, fmt.Errorf("%w: bottom-left y must be less than upper-right y", ErrInvalidArgument)
	}

	width := upperRight.X - bottomLeft.X
	height := upperRight.Y - bottomLeft.Y
	// разность строго упорядоченных углов отрицательна только при переполнении
	if width < 0 || height < 0 {
		return Rectangle{}, fmt.Errorf("%w: rectangle span exceeds the coordinate range", ErrInvalidArgument)
	}

	return Rectangle{
		x:          bottomLeft.X + width/2,
		y:          bottomLeft.Y + height/2,
		width:      width,
		height:     height,
		bottomLeft: bottomLeft,
		upperRight: upperRight,
	}, nil
}

func (r Rectangle) X() int64 { return r.x }

func (r Rectangle) Y() int64 { return r.y }

func (r Rectangle) Width() int64 { return r.width }

func (r Rectangle) Height() int64 { return r.height }

func (r Rectangle) BottomLeft() Point { return r.bottomLeft }

func (r Rectangle) UpperRight() Point { return r.upperRight }

// Contains сообщает, лежит ли other целиком внутри r, включая границы.
// Пустой или вывернутый прямоугольник с любой стороны не подходит.
func (r Rectangle) Contains(other Rectangle) bool {
	if !r.valid() || !other.valid() {
		return false
	}
	return other.bottomLeft.X >= r.bottomLeft.X &&
		other.bottomLeft.Y >= r.bottomLeft.Y &&
		other.upperRight.X <= r.upperRight.X &&
		other.upperRight.Y <= r.upperRight.Y
}

func (r Rectangle) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.bottomLeft.X, r.bottomLeft.Y, r.upperRight.X, r.upperRight.Y)
}

func (r Rectangle) valid() bool {
	return r.width > 0 && r.height > 0
}

// ============================================================
// Corner arithmetic
// ============================================================

// corners считает floor(center - side/2) и floor(center + side/2) без
// удвоения center. side > 0.
func corners(center, side int64) (lower, upper int64, ok bool) {
	below := side/2 + side%2
	above := side / 2
	if center < math.MinInt64+below || center > math.MaxInt64-above {
		return 0, 0, false
	}
	return center - below, center + above, true
}
