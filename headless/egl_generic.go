//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/gowireframe/graphics"
)

// NewHeadless always fails off linux; the wireframe CLI then renders into a hidden
// GLFW window instead.
func NewHeadless(width, height int) (graphics.Context, error) {
	return nil, fmt.Errorf("wireframe offscreen %dx%d: %w", width, height, ErrUnsupported)
}
