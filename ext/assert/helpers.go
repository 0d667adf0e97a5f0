package assert

import (
	"errors"
	"reflect"
	"testing"
)

// Expect is simple testing function which raises error if condition is not met
func Expect(t testing.TB, to bool, eformat string, args ...interface{}) {
	t.Helper()
	if !to {
		t.Errorf(eformat, args...)
	}
}

// Include expects v1 to be deeply equal to one of in
func Include(t testing.TB, v1 interface{}, in ...interface{}) {
	t.Helper()

	for _, v2 := range in {
		if reflect.DeepEqual(v1, v2) {
			return
		}
	}
	t.Errorf("Expected '%v' to be in %v", v1, in)
}

// Equal expects both arguments to be equal.
// Internaly uses reflection.DeepEqual to perform test
func Equal(t testing.TB, got, want interface{}) {
	t.Helper()
	Expect(t, reflect.DeepEqual(got, want), "Expected '%v' to equal '%v'", got, want)
}

// NilError should be used to check returned Go error.
// Test fails if there is error.
func NilError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
}

// Error expects Go error to be non-nil
func Error(t testing.TB, err error, eformat string, args ...interface{}) {
	t.Helper()
	Expect(t, err != nil, eformat, args...)
}

// ErrorIs expects err to wrap target
func ErrorIs(t testing.TB, err, target error) {
	t.Helper()
	Expect(t, errors.Is(err, target), "Expected error '%v' to be '%v'", err, target)
}
