// Package headless opens an offscreen GL context on an EGL pbuffer, with no window or
// display server. The gowireframe snapshot and record modes try it first.
package headless

import "errors"

// ErrUnsupported is returned where EGL pbuffers are not available. Callers fall back
// to a hidden window.
var ErrUnsupported = errors.New("gowireframe: headless EGL context needs linux")
