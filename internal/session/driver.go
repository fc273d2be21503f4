package session

import (
	"context"
	"fmt"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
)

// Spot is one beam's detector intersection at the three stages of a driver
// run. A stage's point is only meaningful when its flag is set; a cleared
// flag means the beam missed mirror or detector at that stage.
type Spot struct {
	Beam         geom.Ray
	Before       geom.Vec3
	BeforeOK     bool
	Disturbed    geom.Vec3
	DisturbedOK  bool
	Calibrated   geom.Vec3
	CalibratedOK bool
}

// Report is the outcome of a driver run over a beam bundle.
type Report struct {
	Spots       []Spot
	Calibration *calib.Result
}

// Driver orchestrates a session over a bundle of parallel beams: it records
// every beam's detector spot on the pristine mirror, after the disturbance,
// and after calibration. Only the session's chief beam drives the loop; the
// bundle is read-only probing.
type Driver struct {
	session *Session
	offsets [][2]float64
}

// NewDriver builds a driver for the session. Offsets displace the chief
// beam's origin in surface-local x/y, one bundle beam per offset; the chief
// beam itself (zero offset) is always included first.
func NewDriver(s *Session, offsets [][2]float64) *Driver {
	return &Driver{session: s, offsets: offsets}
}

// Beams returns the bundle: the chief beam followed by one beam per offset.
func (d *Driver) Beams() []geom.Ray {
	beams := make([]geom.Ray, 0, len(d.offsets)+1)
	beams = append(beams, d.session.Beam)
	for _, off := range d.offsets {
		b := d.session.Beam
		b.Origin = b.Origin.Add(geom.Vec3{X: off[0], Y: off[1]})
		beams = append(beams, b)
	}
	return beams
}

// Run identifies the interaction matrix, then records the bundle's spots on
// the pristine mirror, after the disturbance, and after the closed loop.
func (d *Driver) Run(ctx context.Context, observers ...calib.Observer) (*Report, error) {
	beams := d.Beams()
	report := &Report{Spots: make([]Spot, len(beams))}
	for i, b := range beams {
		report.Spots[i].Beam = b
	}

	im, err := d.session.Identify()
	if err != nil {
		return nil, fmt.Errorf("identifying interaction matrix: %w", err)
	}
	d.record(beams, report, stageBefore)

	if err := d.session.Disturb(); err != nil {
		return nil, fmt.Errorf("applying disturbance: %w", err)
	}
	d.record(beams, report, stageDisturbed)

	c := calib.New(d.session.Mirror, d.session.Sensor, d.session.Beam, im)
	for _, m := range DefaultMetrics() {
		c.AddMetric(m)
	}
	for _, o := range observers {
		c.AddObserver(o)
	}
	result, err := c.Run(ctx, d.session.LoopConfig())
	if err != nil {
		return nil, err
	}
	report.Calibration = result
	d.record(beams, report, stageCalibrated)

	return report, nil
}

type stage int

const (
	stageBefore stage = iota
	stageDisturbed
	stageCalibrated
)

func (d *Driver) record(beams []geom.Ray, report *Report, st stage) {
	for i, b := range beams {
		_, _, hit, ok := optics.TraceToDetector(b, d.session.Mirror, d.session.Detector)
		switch st {
		case stageBefore:
			report.Spots[i].Before, report.Spots[i].BeforeOK = hit, ok
		case stageDisturbed:
			report.Spots[i].Disturbed, report.Spots[i].DisturbedOK = hit, ok
		case stageCalibrated:
			report.Spots[i].Calibrated, report.Spots[i].CalibratedOK = hit, ok
		}
	}
}
