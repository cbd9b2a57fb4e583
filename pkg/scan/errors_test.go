package scan

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-takeoff/pkg/identity"
)

// TestErrorBuilder_Formatting tests the structured error message shapes.
func TestErrorBuilder_Formatting(t *testing.T) {
	cause := errors.New("disk full")

	err := NewError("Run").State("/tmp/takeoff.state").Cause(cause)
	want := `Run state "/tmp/takeoff.state": disk full`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	err = NewError("Run").Group().WithContext("traversal").Cause(cause)
	want = "Run group (traversal): disk full"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

// TestErrorBuilder_Unwrap tests that sentinel causes survive the wrapper.
func TestErrorBuilder_Unwrap(t *testing.T) {
	err := NewError("Run").Identifier("PE DN200 exposed").Cause(&identity.ExhaustedError{Bound: 3})
	if !errors.Is(err, identity.ErrExhausted) {
		t.Error("wrapped exhaustion not matched by errors.Is")
	}

	var te *TakeoffError
	if !errors.As(err, &te) {
		t.Fatal("errors.As failed to recover *TakeoffError")
	}
	if te.ID != "PE DN200 exposed" {
		t.Errorf("ID = %q", te.ID)
	}
}
