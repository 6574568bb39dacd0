package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForCatalogCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeInvalidReference, http.StatusBadRequest, false},
		{CodeDependencyConflict, http.StatusConflict, false},
		{CodeRemoteStorage, http.StatusBadGateway, true},
		{CodeOrderingInvariant, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("%s: status %d, want %d", tc.code, meta.HTTPStatus, tc.status)
		}
		if meta.Retryable != tc.retryable {
			t.Fatalf("%s: retryable %v, want %v", tc.code, meta.Retryable, tc.retryable)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NO_SUCH_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to 500, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("disk full")
	err := Wrap(CodeRemoteStorage, cause, "upload object")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to its cause")
	}
	if got := As(fmt.Errorf("outer: %w", err)); got == nil || got.Code() != CodeRemoteStorage {
		t.Fatal("As should find the typed error through wrapping")
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	t.Parallel()

	details := map[string]any{"color": "rojo", "image_count": 2}
	err := New(CodeDependencyConflict, "color has images").WithDetails(details)
	if err.Details() == nil {
		t.Fatal("details dropped")
	}
}

func TestDumpWalksChain(t *testing.T) {
	t.Parallel()

	inner := stdErrors.New("by zero")
	err := Wrap(CodeInternal, fmt.Errorf("divide: %w", inner), "compute")

	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("chain too short: %v", dump.Chain)
	}
}
