package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "phase and kind only",
			err:  &Error{Phase: PhaseRegistry, Kind: KindCapExhausted},
			want: "[registry] cap_exhausted",
		},
		{
			name: "string key",
			err:  OutOfBoundsStr(PhaseMutate, "missing"),
			want: `[mutate] out_of_bounds at key "missing"`,
		},
		{
			name: "int key",
			err:  OutOfBoundsInt(PhaseLookup, 7),
			want: "[lookup] out_of_bounds at key 7",
		},
		{
			name: "detail",
			err:  New(PhasePersist, KindNotFound, "bucket %q missing", "layouts"),
			want: `[persist] not_found: bucket "layouts" missing`,
		},
		{
			name: "cause chain",
			err:  Wrap(PhasePersist, KindCorruptRecord, errors.New("EOF"), "short record"),
			want: "[persist] corrupt_record: short record (caused by: EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := OutOfBoundsStr(PhaseMutate, "a")

	if !errors.Is(err, &Error{Phase: PhaseMutate, Kind: KindOutOfBounds}) {
		t.Error("expected match on phase+kind")
	}
	if errors.Is(err, &Error{Phase: PhaseLookup, Kind: KindOutOfBounds}) {
		t.Error("unexpected match across phases")
	}
	if errors.Is(err, errors.New("other")) {
		t.Error("unexpected match against plain error")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(PhasePersist, KindCorruptRecord, cause, "read failed")

	if !errors.Is(err, cause) {
		t.Error("expected unwrap to reach cause")
	}
}
