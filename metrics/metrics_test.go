package metrics

import (
	"testing"

	"github.com/momentics/tizonia-go/api"
)

func TestObserveCommandIncrementsCounter(t *testing.T) {
	r := New()
	r.ObserveCommand("mp3-decoder", api.CommandStateSet)
	r.ObserveCommand("mp3-decoder", api.CommandStateSet)

	mfs, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "tizonia_component_commands_total" {
			found = true
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Fatalf("counter value = %v, want 2", got)
			}
		}
	}
	if !found {
		t.Fatalf("expected tizonia_component_commands_total metric family")
	}
}

func TestSetPoolInUse(t *testing.T) {
	r := New()
	r.SetPoolInUse("pulse-sink", api.BufferPoolStats{InUse: 3})

	mfs, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "tizonia_buffer_pool_in_use" {
			if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 3 {
				t.Fatalf("gauge value = %v, want 3", got)
			}
			return
		}
	}
	t.Fatalf("expected tizonia_buffer_pool_in_use metric family")
}
