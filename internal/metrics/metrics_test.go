package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

func TestRecordUploadOutcomes(t *testing.T) {
	ok := UploadsTotal.WithLabelValues("csv", "ok")
	bad := UploadsTotal.WithLabelValues("xlsx", string(apperr.CodeFormatError))
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordUpload("csv", 512, 10, nil)
	RecordUpload("xlsx", 2048, 0, apperr.New(apperr.CodeFormatError, "corrupt workbook"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Fatalf("ok uploads delta = %v", got)
	}
	if got := testutil.ToFloat64(bad) - badBefore; got != 1 {
		t.Fatalf("format_error uploads delta = %v", got)
	}
}

func TestRecordChartUnknownErrorIsInternal(t *testing.T) {
	c := ChartsTotal.WithLabelValues("bar", "internal")
	before := testutil.ToFloat64(c)
	RecordChart("bar", time.Millisecond, http.ErrAbortHandler)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("internal chart delta = %v", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	c := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/{id}", "418")
	before := testutil.ToFloat64(c)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("request counter delta = %v", got)
	}
}

func TestSetWorkingDatasets(t *testing.T) {
	SetWorkingDatasets(3)
	if got := testutil.ToFloat64(WorkingDatasets); got != 3 {
		t.Fatalf("gauge = %v", got)
	}
}
