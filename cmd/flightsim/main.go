// cmd/flightsim/main.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// flightsim replays a mission offline: it loads a JSON mission file,
// steps a simple kinematic aircraft against the waypoint manager, and
// writes the resulting flight log as msgpack compressed with zstd.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/uavnav/pathmanager/log"
	"github.com/uavnav/pathmanager/math"
	"github.com/uavnav/pathmanager/nav"
	"github.com/uavnav/pathmanager/route"
	"github.com/uavnav/pathmanager/util"
)

type MissionWaypoint struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float32 `json:"altitude"`
	Kind       string  `json:"kind"` // "path", "orbit", "hold"
	TurnRadius float32 `json:"turn_radius"`
}

type Mission struct {
	ReferenceLatitude  float64           `json:"reference_latitude"`
	ReferenceLongitude float64           `json:"reference_longitude"`
	Home               *MissionWaypoint  `json:"home"`
	Waypoints          []MissionWaypoint `json:"waypoints"`

	Ticks       int     `json:"ticks"`
	TickSeconds float32 `json:"tick_seconds"`
	Airspeed    float32 `json:"airspeed"`   // m/s
	TurnRate    float32 `json:"turn_rate"`  // deg/s
	ClimbRate   float32 `json:"climb_rate"` // m/s
}

// TickRecord is one flight-log entry: where the aircraft was and what the
// manager told it to do.
type TickRecord struct {
	Tick      int
	Latitude  float64
	Longitude float64
	Altitude  float32
	Heading   float32
	Commands  nav.Directions
}

func parseKind(s string) (route.Kind, error) {
	switch s {
	case "", "path":
		return route.FollowPath, nil
	case "orbit":
		return route.FollowOrbit, nil
	case "hold":
		return route.Hold, nil
	default:
		return route.FollowPath, fmt.Errorf("%s: unknown waypoint kind", s)
	}
}

func loadMission(path string) (*Mission, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Mission
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(m.Waypoints) == 0 {
		return nil, fmt.Errorf("%s: mission has no waypoints", path)
	}
	if m.Ticks <= 0 {
		m.Ticks = 1000
	}
	if m.TickSeconds <= 0 {
		m.TickSeconds = 1
	}
	if m.Airspeed <= 0 {
		m.Airspeed = 20
	}
	if m.TurnRate <= 0 {
		m.TurnRate = 5
	}
	if m.ClimbRate <= 0 {
		m.ClimbRate = 2
	}
	return &m, nil
}

func buildManager(m *Mission, lg *log.Logger) (*nav.Manager, error) {
	mgr := nav.New(m.ReferenceLatitude, m.ReferenceLongitude, lg)
	b := mgr.Buffer()

	var pts []*route.Waypoint
	for i, mw := range m.Waypoints {
		kind, err := parseKind(mw.Kind)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		radius := util.Select(mw.TurnRadius > 0, mw.TurnRadius, float32(route.UnsetRadius))
		w := b.NewWaypointWithRadius(mw.Latitude, mw.Longitude, mw.Altitude, kind, radius)
		if w == nil {
			return nil, fmt.Errorf("waypoint %d: pool exhausted", i)
		}
		pts = append(pts, w)
	}

	var home *route.Waypoint
	if m.Home != nil {
		home = b.NewWaypointAt(m.Home.Latitude, m.Home.Longitude, m.Home.Altitude, route.FollowPath)
		if home == nil {
			return nil, fmt.Errorf("home: pool exhausted")
		}
	}

	if s := mgr.InitializePath(pts, home); s != route.Success {
		return nil, fmt.Errorf("initialize flight path: %w", s.Err())
	}
	return mgr, nil
}

func run(m *Mission, mgr *nav.Manager, lg *log.Logger) []TickRecord {
	// Start at the first waypoint, heading north (0 degrees) whatever the
	// direction of the first leg.
	lat := m.Waypoints[0].Latitude
	lon := m.Waypoints[0].Longitude
	alt := m.Waypoints[0].Altitude
	var heading float32

	records := make([]TickRecord, 0, m.Ticks)
	for tick := 0; tick < m.Ticks; tick++ {
		in := nav.TelemIn{Latitude: lat, Longitude: lon, Altitude: alt, Heading: heading}
		d, s := mgr.NextDirections(in)
		if s != route.Success {
			lg.Warnf("tick %d: %v", tick, s.Err())
			break
		}

		records = append(records, TickRecord{
			Tick:      tick,
			Latitude:  lat,
			Longitude: lon,
			Altitude:  alt,
			Heading:   heading,
			Commands:  d,
		})

		// Turn toward the commanded heading at the bounded rate, then
		// advance along the result.
		turn := math.HeadingSignedTurn(heading, d.DesiredHeading)
		turn = math.Clamp(turn, -m.TurnRate*m.TickSeconds, m.TurnRate*m.TickSeconds)
		heading = math.NormalizeHeading(heading + turn)

		lat, lon = math.Destination(lat, lon, heading, m.Airspeed*m.TickSeconds)

		climb := math.Clamp(d.DesiredAltitude-alt, -m.ClimbRate*m.TickSeconds, m.ClimbRate*m.TickSeconds)
		alt += climb
	}
	return records
}

func writeFlightLog(path string, records []TickRecord) error {
	b, err := msgpack.Marshal(records)
	if err != nil {
		return err
	}
	c, err := util.ZstdCompress(b)
	if err != nil {
		return err
	}
	return os.WriteFile(path, c, 0o644)
}

func main() {
	mission := flag.String("mission", "", "path to the mission JSON file")
	out := flag.String("out", "flightlog.msgpack.zst", "path for the compressed flight log")
	level := flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logdir := flag.String("logdir", ".", "directory for the diagnostic log")
	flag.Parse()

	if *mission == "" {
		fmt.Fprintln(os.Stderr, "flightsim: -mission is required")
		os.Exit(1)
	}

	lg := log.New(*level, *logdir)

	m, err := loadMission(*mission)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	mgr, err := buildManager(m, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	records := run(m, mgr, lg)
	lg.Infof("simulated %d ticks", len(records))

	if err := writeFlightLog(*out, records); err != nil {
		lg.Errorf("%s: %v", *out, err)
		os.Exit(1)
	}
	lg.Infof("wrote flight log to %s", *out)
}
