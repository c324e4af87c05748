// Package pinmode runs the wireframe and residual overlays for one pin-placement session.
package pinmode

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/geometry"
	"github.com/richinsley/gowireframe/overlay"
	"github.com/richinsley/gowireframe/registry"
	"github.com/richinsley/gowireframe/solver"
)

// ResidualColor is the color of the lines from pins to their surface points.
var ResidualColor = mgl32.Vec4{0.0, 1.0, 1.0, 0.5}

var ErrNoMesh = errors.New("no mesh loaded")

type Settings struct {
	// Colors holds the base, special and midline display colors.
	Colors         [][3]float32
	Opacity        float32
	OverallOpacity float32
	ShowSpecials   bool
	// SpecialPairs lists mesh edges drawn in the special color when the
	// wireframe is untextured. Any marked edge switches simple mode to colored mode.
	SpecialPairs map[geometry.EdgeKey]struct{}
}

type Mode struct {
	settings  Settings
	reg       *registry.Registry
	solver    solver.Solver
	wireframe *overlay.RasterSession
	residuals *overlay.ResidualSession
	mesh      *geometry.Mesh
	world     mgl32.Mat4
}

// New builds both overlay sessions. A nil dev runs them in background mode.
func New(host overlay.Host, reg *registry.Registry, dev overlay.Device, sv solver.Solver, settings Settings) (*Mode, error) {
	wf, err := overlay.NewRasterSession(host, reg, dev)
	if err != nil {
		return nil, err
	}
	res, err := overlay.NewResidualSession(host, reg, dev)
	if err != nil {
		wf.Destroy()
		return nil, err
	}
	return &Mode{
		settings:  settings,
		reg:       reg,
		solver:    sv,
		wireframe: wf,
		residuals: res,
		world:     mgl32.Ident4(),
	}, nil
}

func (m *Mode) Wireframe() *overlay.RasterSession {
	return m.wireframe
}

func (m *Mode) Residuals() *overlay.ResidualSession {
	return m.residuals
}

func (m *Mode) Settings() Settings {
	return m.settings
}

// SetModel replaces the mesh, its world transform and the solver that describes it.
func (m *Mode) SetModel(mesh *geometry.Mesh, world mgl32.Mat4, sv solver.Solver) {
	m.mesh = mesh
	m.world = world
	m.solver = sv
}

// InitWireframer sets colors, texture, geometry, edges and batches, in that order.
func (m *Mode) InitWireframer() error {
	if m.mesh == nil {
		return ErrNoMesh
	}
	wf := m.wireframe
	wf.InitColors(m.settings.Colors, m.settings.Opacity*m.settings.OverallOpacity)
	if !wf.InitWireframeImage(m.solver, m.settings.ShowSpecials) {
		wf.SwitchToSimple()
	}
	if err := wf.InitGeometry(m.mesh, m.world); err != nil {
		return fmt.Errorf("failed to init wireframe geometry: %w", err)
	}
	if err := wf.InitEdgeIndices(m.solver); err != nil {
		return fmt.Errorf("failed to init wireframe edges: %w", err)
	}
	colors := wf.Colors()
	wf.InitColorData(edgeColor(colors, 0))
	if len(m.settings.SpecialPairs) > 0 && len(colors) > 1 {
		marked := wf.InitSpecialAreas(m.settings.SpecialPairs, edgeColor(colors, 1))
		if marked > 0 && wf.Mode() == overlay.ModeSimple {
			wf.SwitchToColored()
		}
	}
	return wf.CreateBatches()
}

// edgeColor returns display color i, opaque, or the default edge color when absent.
// The session opacity scales its alpha at draw time.
func edgeColor(colors [][3]float32, i int) mgl32.Vec4 {
	if i >= len(colors) {
		return geometry.DefaultEdgeColor
	}
	c := colors[i]
	return mgl32.Vec4{c[0], c[1], c[2], 1}
}

// Start builds the overlays and registers their draw handlers.
func (m *Mode) Start(args any) error {
	log.Println("Pin mode: start shaders")
	if err := m.InitWireframer(); err != nil {
		return err
	}
	if err := m.residuals.CreateBatch(); err != nil {
		return err
	}
	log.Println("Pin mode: register shader handlers")
	if err := m.wireframe.Register(args); err != nil {
		return err
	}
	return m.residuals.Register(args)
}

// ToggleWireframe switches the overall opacity between 0 and 1.
func (m *Mode) ToggleWireframe() error {
	if m.settings.OverallOpacity > 0.5 {
		m.settings.OverallOpacity = 0
	} else {
		m.settings.OverallOpacity = 1
	}
	log.Printf("Pin mode: overall opacity %g", m.settings.OverallOpacity)
	return m.InitWireframer()
}

// UpdateGeometry moves the wireframe to new vertex positions with the same topology.
// On error the previous mesh stays in place.
func (m *Mode) UpdateGeometry(mesh *geometry.Mesh, world mgl32.Mat4) error {
	if err := m.wireframe.ReplaceGeometry(mesh, world); err != nil {
		return fmt.Errorf("failed to update wireframe geometry: %w", err)
	}
	m.mesh = mesh
	m.world = world
	return m.wireframe.CreateBatches()
}

// SetResiduals draws a line from each pin to its projected model point, in pixels.
func (m *Mode) SetResiduals(pins, points []mgl32.Vec2) error {
	m.residuals.SetSegments(pins, points, ResidualColor)
	return m.residuals.CreateBatch()
}

// Stop empties the handler registry; every session unregisters on its next frame.
func (m *Mode) Stop() {
	log.Println("Pin mode: stop")
	m.reg.Clear()
}

func (m *Mode) IsWorking() bool {
	return m.wireframe.IsWorking() || m.residuals.IsWorking()
}

func (m *Mode) Destroy() {
	m.wireframe.Destroy()
	m.residuals.Destroy()
}
