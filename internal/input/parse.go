package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	// ErrInvalidNumber is returned when text is not a number.
	ErrInvalidNumber = errors.New("not a number")
	// ErrOutOfRange is returned when a number is outside the accepted range.
	ErrOutOfRange = errors.New("number out of range")
)

// Float parses any floating point number, including inf and nan.
func Float(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrOutOfRange, text)
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return v, nil
}

// Length parses a finite, non-negative link length.
func Length(text string) (float64, error) {
	v, err := Float(text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: length must be finite and non-negative, got %v", ErrOutOfRange, v)
	}
	return v, nil
}

// maxSeconds bounds the seconds accepted by Seconds to what time.Duration holds.
var maxSeconds = time.Duration(math.MaxInt64).Seconds()

// Seconds parses a non-negative number of seconds into a duration.
func Seconds(text string) (time.Duration, error) {
	v, err := Float(text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < 0 || v >= maxSeconds {
		return 0, fmt.Errorf("%w: period must be between 0 and %.0f seconds, got %v", ErrOutOfRange, maxSeconds, v)
	}
	return time.Duration(v * float64(time.Second)), nil
}

// FormatSeconds renders d the way Seconds reads it back.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'g', -1, 64)
}
