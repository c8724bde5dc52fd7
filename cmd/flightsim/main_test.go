// cmd/flightsim/main_test.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/uavnav/pathmanager/route"
	"github.com/uavnav/pathmanager/util"
)

const testMission = `{
	"reference_latitude": 43.47,
	"reference_longitude": -80.54,
	"home": {"latitude": 43.47, "longitude": -80.54, "altitude": 100},
	"waypoints": [
		{"latitude": 43.47, "longitude": -80.54, "altitude": 100},
		{"latitude": 43.48, "longitude": -80.53, "altitude": 120, "turn_radius": 60},
		{"latitude": 43.49, "longitude": -80.54, "altitude": 120, "turn_radius": 60},
		{"latitude": 43.50, "longitude": -80.53, "altitude": 100}
	],
	"ticks": 50,
	"airspeed": 25
}`

func writeTestMission(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.json")
	if err := os.WriteFile(path, []byte(testMission), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissionDefaults(t *testing.T) {
	m, err := loadMission(writeTestMission(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(m.Waypoints) != 4 {
		t.Errorf("loaded %d waypoints, expected 4", len(m.Waypoints))
	}
	if m.Ticks != 50 || m.Airspeed != 25 {
		t.Errorf("explicit fields not honored: ticks %d airspeed %f", m.Ticks, m.Airspeed)
	}
	// Unset fields take their defaults.
	if m.TickSeconds != 1 || m.TurnRate != 5 || m.ClimbRate != 2 {
		t.Errorf("defaults not applied: dt=%f turn=%f climb=%f", m.TickSeconds, m.TurnRate, m.ClimbRate)
	}
}

func TestParseKind(t *testing.T) {
	for _, c := range []struct {
		s    string
		want route.Kind
	}{
		{"", route.FollowPath},
		{"path", route.FollowPath},
		{"orbit", route.FollowOrbit},
		{"hold", route.Hold},
	} {
		k, err := parseKind(c.s)
		if err != nil || k != c.want {
			t.Errorf("parseKind(%q) = %v, %v; expected %v", c.s, k, err, c.want)
		}
	}
	if _, err := parseKind("loiter"); err == nil {
		t.Errorf("parseKind accepted an unknown kind")
	}
}

func TestRunAndFlightLog(t *testing.T) {
	m, err := loadMission(writeTestMission(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	mgr, err := buildManager(m, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if mgr.Home() == nil {
		t.Errorf("mission home was not installed")
	}

	records := run(m, mgr, nil)
	if len(records) != m.Ticks {
		t.Fatalf("simulated %d ticks, expected %d", len(records), m.Ticks)
	}
	for _, r := range records {
		if h := r.Commands.DesiredHeading; h < 0 || h >= 360 {
			t.Errorf("tick %d: desired heading %f outside [0,360)", r.Tick, h)
		}
		if r.Commands.Status != route.Success {
			t.Errorf("tick %d: status %v", r.Tick, r.Commands.Status)
		}
	}

	// The log survives its encode/compress round trip.
	path := filepath.Join(t.TempDir(), "log.msgpack.zst")
	if err := writeFlightLog(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := util.ZstdDecompress(b)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	var decoded []TickRecord
	if err := msgpack.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(records) {
		t.Errorf("decoded %d records, expected %d", len(decoded), len(records))
	}
	if decoded[10].Tick != 10 || decoded[10].Latitude != records[10].Latitude {
		t.Errorf("decoded record 10 does not match the original")
	}
}
