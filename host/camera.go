package host

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxPitch     = 1.5
	dragRadians  = 0.01
	zoomFactor   = 0.9
	minDistance  = 0.01
	fitMargin    = 1.1
	defaultFovY  = 45.0
	defaultNear  = 0.01
	defaultFar   = 1000.0
	defaultOrbit = 5.0
)

// Camera orbits a target point. Angles are radians.
type Camera struct {
	Target   mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Distance float32
	FovY     float32 // degrees
	Near     float32
	Far      float32

	dragging bool
	lastX    float32
	lastY    float32
}

func NewCamera() *Camera {
	return &Camera{
		Distance: defaultOrbit,
		FovY:     defaultFovY,
		Near:     defaultNear,
		Far:      defaultFar,
	}
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	dir := mgl32.Vec3{
		cp * math32.Sin(c.Yaw),
		math32.Sin(c.Pitch),
		cp * math32.Cos(c.Yaw),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Zoom moves toward the target for positive steps.
func (c *Camera) Zoom(steps float32) {
	c.Distance = math32.Max(c.Distance*math32.Pow(zoomFactor, steps), minDistance)
}

// Fit centers the camera on the box and backs off until it is fully in view.
func (c *Camera) Fit(lo, hi mgl32.Vec3) {
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		return
	}
	half := mgl32.DegToRad(c.FovY) / 2
	c.Distance = radius / math32.Sin(half) * fitMargin
	c.Far = math32.Max(c.Far, c.Distance+radius*2)
}

// HandleMouse orbits while the left button is held. m is graphics.Context mouse input.
func (c *Camera) HandleMouse(m [4]float32) {
	down := m[3] > 0
	if !down {
		c.dragging = false
		return
	}
	if c.dragging {
		c.Orbit(-(m[0]-c.lastX)*dragRadians, -(m[1]-c.lastY)*dragRadians)
	}
	c.dragging = true
	c.lastX, c.lastY = m[0], m[1]
}
