package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQuery(t *testing.T) {
	ok := testutil.ToFloat64(QueriesTotal.WithLabelValues(OutcomeOK))
	bad := testutil.ToFloat64(QueriesTotal.WithLabelValues("type_mismatch"))

	ObserveQuery(OutcomeOK, time.Millisecond, 3)
	ObserveQuery("type_mismatch", time.Millisecond, 0)

	if got := testutil.ToFloat64(QueriesTotal.WithLabelValues(OutcomeOK)); got != ok+1 {
		t.Errorf("expected ok count %v, got %v", ok+1, got)
	}
	if got := testutil.ToFloat64(QueriesTotal.WithLabelValues("type_mismatch")); got != bad+1 {
		t.Errorf("expected rejection count %v, got %v", bad+1, got)
	}
}

func TestObserveDatasetOp(t *testing.T) {
	ObserveDatasetOp("add", nil, 2)
	ObserveDatasetOp("remove", errors.New("missing"), 2)

	if got := testutil.ToFloat64(Datasets); got != 2 {
		t.Errorf("expected 2 datasets, got %v", got)
	}
	if got := testutil.ToFloat64(DatasetOperationsTotal.WithLabelValues("remove", "error")); got < 1 {
		t.Errorf("expected a failed remove, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	ObserveQuery(OutcomeOK, time.Millisecond, 1)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "insight_queries_total") {
		t.Error("expected insight_queries_total in output")
	}
}
