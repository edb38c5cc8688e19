package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// brokenMeter refuses to create instruments but hands back no-op ones, like the SDK does.
type brokenMeter struct {
	noop.Meter
}

func (brokenMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return noop.Int64Counter{}, errors.New("invalid instrument name")
}

func (brokenMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return noop.Float64Histogram{}, errors.New("invalid instrument name")
}

func TestMeteredRequests_LogsInstrumentErrors(t *testing.T) {
	log, hook := test.NewNullLogger()
	mw := meteredRequests(brokenMeter{}, log)

	if n := len(hook.AllEntries()); n != 2 {
		t.Fatalf("logged %d entries, want 2", n)
	}
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.WarnLevel || e.Data[logrus.ErrorKey] == nil {
			t.Fatalf("unexpected entry: %v %v", e.Level, e.Data)
		}
	}

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMeteredRequests_HealthyMeterLogsNothing(t *testing.T) {
	log, hook := test.NewNullLogger()
	meteredRequests(noop.NewMeterProvider().Meter("t"), log)
	if n := len(hook.AllEntries()); n != 0 {
		t.Fatalf("logged %d entries", n)
	}
}
