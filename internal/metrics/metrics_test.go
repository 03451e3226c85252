package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"battreminder/internal/logging"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveReading(42, "Discharging")
	pr.IncAlert("critical")
	pr.IncCommand("critical", true)
	pr.IncCommand("low", false)
	pr.IncPlugTransition("plugged_in")
	pr.IncReadFailure("engine")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"battreminder_battery_percentage",
		"battreminder_battery_status",
		"battreminder_alerts_total",
		"battreminder_commands_total",
		"battreminder_plug_transitions_total",
		"battreminder_read_failures_total",
	} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveReading(1, "Full")
	pr.IncAlert("low")
	pr.IncCommand("low", true)
	pr.IncPlugTransition("plugged_out")
	pr.IncReadFailure("plug")
}

func TestTextfileExporterFlush(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveReading(17, "Discharging")

	path := filepath.Join(t.TempDir(), "textfile", "battreminder.prom")
	exporter, err := NewTextfileExporter(path, time.Hour, reg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewTextfileExporter: %v", err)
	}
	exporter.Start()
	if err := exporter.Stop(t.Context()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "battreminder_battery_percentage 17") {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
	if !strings.Contains(string(data), `battreminder_battery_status{status="Discharging"} 1`) {
		t.Fatalf("expected current status flagged:\n%s", data)
	}
}

func TestTextfileExporterRejectsZeroInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.prom")
	if _, err := NewTextfileExporter(path, 0, prom.NewRegistry(), nil); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
