package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeColumnNotFound, "column %q not found", "price")
	wrapped := fmt.Errorf("build chart: %w", err)
	if !errors.Is(wrapped, ErrColumnNotFound) {
		t.Fatalf("expected wrapped error to match ErrColumnNotFound")
	}
	if errors.Is(wrapped, ErrNoDatasetLoaded) {
		t.Fatalf("did not expect match on a different code")
	}
	if got := CodeOf(wrapped); got != CodeColumnNotFound {
		t.Fatalf("CodeOf = %q, want %q", got, CodeColumnNotFound)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bare quote in field")
	err := Wrap(CodeFormatError, cause, "parse csv")
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if err.Error() != "parse csv: bare quote in field" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestToResponseHidesUnclassified(t *testing.T) {
	resp := ToResponse(errors.New("open /tmp/secret: permission denied"))
	if resp.Code != CodeInternal || resp.Error != "internal error" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	resp = ToResponse(New(CodeNoDatasetLoaded, "no data loaded, upload a file first"))
	if resp.Code != CodeNoDatasetLoaded || resp.Error != "no data loaded, upload a file first" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHTTPStatusIsClientErrorForTaxonomy(t *testing.T) {
	codes := []Code{
		CodeNoFileProvided, CodeUnsupportedFormat, CodeCapabilityUnavailable, CodeFormatError,
		CodeSchemaError, CodeNoDatasetLoaded, CodeColumnNotFound, CodeUnsupportedChartKind,
		CodeInsufficientData, CodePayloadTooLarge, CodeInvalidRequest, CodeRateLimited,
	}
	for _, c := range codes {
		s := HTTPStatus(c)
		if s < 400 || s >= 500 {
			t.Fatalf("HTTPStatus(%s) = %d, want 4xx", c, s)
		}
	}
	if HTTPStatus(CodeInternal) != http.StatusInternalServerError {
		t.Fatalf("internal should map to 500")
	}
}

func TestToResponseHidesInternalCause(t *testing.T) {
	resp := ToResponse(Wrap(CodeInternal, errors.New("mkdir /var/uploads: read-only file system"), "stage upload"))
	if resp.Code != CodeInternal || resp.Error != "internal error" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
