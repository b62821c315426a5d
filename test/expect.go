package test

import (
	"fmt"
	"math"
	"testing"
)

// failed reports t as failed without halting the test, using a call stack
// depth so the reported line number points at the caller of the Expect*
// function rather than at this file.
func failed(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Errorf(format, args...)
}

// ExpectFailure checks that v is a "failure" value: a non-nil error, or a
// boolean false.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	switch v := v.(type) {
	case error:
		if v == nil {
			failed(t, "expected failure but got nil error")
		}
	case bool:
		if v {
			failed(t, "expected failure but got success")
		}
	default:
		failed(t, "unsupported type for ExpectFailure: %T", v)
	}
}

// ExpectSuccess checks that v is a "success" value: a nil error, or a
// boolean true.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	switch v := v.(type) {
	case nil:
		return
	case error:
		if v != nil {
			failed(t, "expected success but got error: %s", v)
		}
	case bool:
		if !v {
			failed(t, "expected success but got failure")
		}
	default:
		failed(t, "unsupported type for ExpectSuccess: %T", v)
	}
}

// ExpectEquality checks that got and want are equal according to the
// fmt.Sprintf("%v") representation, which is good enough for the value
// types used across this module's tests.
func ExpectEquality(t *testing.T, got interface{}, want interface{}) {
	t.Helper()
	gs := fmt.Sprintf("%v", got)
	ws := fmt.Sprintf("%v", want)
	if gs != ws {
		failed(t, "expected %#v but got %#v", want, got)
	}
}

// ExpectInequality is the negation of ExpectEquality.
func ExpectInequality(t *testing.T, got interface{}, notWant interface{}) {
	t.Helper()
	gs := fmt.Sprintf("%v", got)
	ws := fmt.Sprintf("%v", notWant)
	if gs == ws {
		failed(t, "expected value other than %#v", notWant)
	}
}

// ExpectApproximate checks that got is within tolerance of want.
func ExpectApproximate(t *testing.T, got float64, want float64, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		failed(t, "expected %f to be within %f of %f", got, tolerance, want)
	}
}

// ExpectedSuccess is an older-spelling alias for ExpectSuccess, kept because
// some of this module's tests were written against it.
func ExpectedSuccess(t *testing.T, v interface{}) {
	t.Helper()
	ExpectSuccess(t, v)
}

// ExpectedFailure is an older-spelling alias for ExpectFailure.
func ExpectedFailure(t *testing.T, v interface{}) {
	t.Helper()
	ExpectFailure(t, v)
}

// Equate is a terser alternative to ExpectEquality, used throughout the
// DWARF and container-format tests where brevity matters more than a
// descriptive failure message.
func Equate(t *testing.T, got interface{}, want interface{}) {
	t.Helper()
	ExpectEquality(t, got, want)
}
