package kernels

import (
	"fmt"
	"math"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/scalar"

	"github.com/arrowquery/goquery/errs"
)

// Accumulator is the contract every grouped or ungrouped aggregate reduces
// through: Accumulate folds a batch's worth of values in (optionally
// restricted to a row subset, for the grouped case where one accumulator
// only ever sees the rows belonging to its group), and FinalValue reads out
// the reduction once every input batch has been folded in.
type Accumulator interface {
	// Accumulate folds arr into the running state. rows, when non-nil,
	// restricts which positions of arr belong to this accumulator's group;
	// nil means every row.
	Accumulate(arr arrow.Array, rows []int) error

	// FinalValue returns the accumulated result.
	FinalValue() (scalar.Scalar, error)
}

// NewSumAccumulator returns an Accumulator that sums Int32 or Float64 input.
func NewSumAccumulator(dt arrow.DataType) (Accumulator, error) {
	switch dt.ID() {
	case arrow.INT32:
		return &sumInt32{}, nil
	case arrow.FLOAT64:
		return &sumFloat64{}, nil
	default:
		return nil, fmt.Errorf("%w: sum over %s", errs.ErrPhysicalTypeNotSupported, dt)
	}
}

// NewAvgAccumulator returns an Accumulator averaging Int32 or Float64 input.
// The running average is always kept and returned as Float64.
func NewAvgAccumulator(dt arrow.DataType) (Accumulator, error) {
	switch dt.ID() {
	case arrow.INT32, arrow.FLOAT64:
		return &avg{}, nil
	default:
		return nil, fmt.Errorf("%w: avg over %s", errs.ErrPhysicalTypeNotSupported, dt)
	}
}

// NewMaxAccumulator and NewMinAccumulator support Int32, Float64 and Utf8 —
// anything with a well-defined ordering.
func NewMaxAccumulator(dt arrow.DataType) (Accumulator, error) { return newMinMax(dt, true) }
func NewMinAccumulator(dt arrow.DataType) (Accumulator, error) { return newMinMax(dt, false) }

func newMinMax(dt arrow.DataType, max bool) (Accumulator, error) {
	switch dt.ID() {
	case arrow.INT32:
		return &minMaxInt32{max: max}, nil
	case arrow.FLOAT64:
		return &minMaxFloat64{max: max}, nil
	case arrow.STRING:
		return &minMaxString{max: max}, nil
	default:
		return nil, fmt.Errorf("%w: min/max over %s", errs.ErrPhysicalTypeNotSupported, dt)
	}
}

// NewCountAccumulator counts rows; it accepts any physical type since it
// never inspects values, only row presence. Every row counts, including
// nulls — this engine's Count is a row count, not a non-null count.
func NewCountAccumulator() Accumulator { return &count{} }

type sumInt32 struct {
	sum int64
}

func (a *sumInt32) Accumulate(arr arrow.Array, rows []int) error {
	a1, ok := arr.(*array.Int32)
	if !ok {
		return fmt.Errorf("%w: expected int32, got %T", errs.ErrDowncast, arr)
	}
	forEachIndex(a1.Len(), rows, func(i int) {
		if a1.IsNull(i) {
			return
		}
		a.sum += int64(a1.Value(i))
	})
	return nil
}

func (a *sumInt32) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(int32(a.sum)), nil
}

type sumFloat64 struct{ sum float64 }

func (a *sumFloat64) Accumulate(arr arrow.Array, rows []int) error {
	a1, ok := arr.(*array.Float64)
	if !ok {
		return fmt.Errorf("%w: expected float64, got %T", errs.ErrDowncast, arr)
	}
	forEachIndex(a1.Len(), rows, func(i int) {
		if a1.IsNull(i) {
			return
		}
		a.sum += a1.Value(i)
	})
	return nil
}

func (a *sumFloat64) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(a.sum), nil
}

type avg struct {
	sum   float64
	count int64
}

func (a *avg) Accumulate(arr arrow.Array, rows []int) error {
	switch v := arr.(type) {
	case *array.Int32:
		forEachIndex(v.Len(), rows, func(i int) {
			if v.IsNull(i) {
				return
			}
			a.sum += float64(v.Value(i))
			a.count++
		})
	case *array.Float64:
		forEachIndex(v.Len(), rows, func(i int) {
			if v.IsNull(i) {
				return
			}
			a.sum += v.Value(i)
			a.count++
		})
	default:
		return fmt.Errorf("%w: expected int32 or float64, got %T", errs.ErrDowncast, arr)
	}
	return nil
}

func (a *avg) FinalValue() (scalar.Scalar, error) {
	if a.count == 0 {
		return scalar.MakeScalar(math.NaN()), nil
	}
	return scalar.MakeScalar(a.sum / float64(a.count)), nil
}

type minMaxInt32 struct {
	max   bool
	value int32
	seen  bool
}

func (a *minMaxInt32) Accumulate(arr arrow.Array, rows []int) error {
	a1, ok := arr.(*array.Int32)
	if !ok {
		return fmt.Errorf("%w: expected int32, got %T", errs.ErrDowncast, arr)
	}
	forEachIndex(a1.Len(), rows, func(i int) {
		if a1.IsNull(i) {
			return
		}
		v := a1.Value(i)
		if !a.seen || (a.max && v > a.value) || (!a.max && v < a.value) {
			a.value, a.seen = v, true
		}
	})
	return nil
}

func (a *minMaxInt32) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(a.value), nil
}

type minMaxFloat64 struct {
	max   bool
	value float64
	seen  bool
}

func (a *minMaxFloat64) Accumulate(arr arrow.Array, rows []int) error {
	a1, ok := arr.(*array.Float64)
	if !ok {
		return fmt.Errorf("%w: expected float64, got %T", errs.ErrDowncast, arr)
	}
	forEachIndex(a1.Len(), rows, func(i int) {
		if a1.IsNull(i) {
			return
		}
		v := a1.Value(i)
		if !a.seen || (a.max && v > a.value) || (!a.max && v < a.value) {
			a.value, a.seen = v, true
		}
	})
	return nil
}

func (a *minMaxFloat64) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(a.value), nil
}

type minMaxString struct {
	max   bool
	value string
	seen  bool
}

func (a *minMaxString) Accumulate(arr arrow.Array, rows []int) error {
	a1, ok := arr.(*array.String)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", errs.ErrDowncast, arr)
	}
	forEachIndex(a1.Len(), rows, func(i int) {
		if a1.IsNull(i) {
			return
		}
		v := a1.Value(i)
		if !a.seen || (a.max && v > a.value) || (!a.max && v < a.value) {
			a.value, a.seen = v, true
		}
	})
	return nil
}

func (a *minMaxString) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(a.value), nil
}

type count struct{ n int64 }

func (a *count) Accumulate(arr arrow.Array, rows []int) error {
	if rows == nil {
		a.n += int64(arr.Len())
		return nil
	}
	a.n += int64(len(rows))
	return nil
}

func (a *count) FinalValue() (scalar.Scalar, error) {
	return scalar.MakeScalar(a.n), nil
}

func forEachIndex(n int, rows []int, f func(i int)) {
	if rows == nil {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	for _, i := range rows {
		f(i)
	}
}
