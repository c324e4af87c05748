package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/geometry"
	"github.com/richinsley/gowireframe/glfwcontext"
	"github.com/richinsley/gowireframe/glgpu"
	"github.com/richinsley/gowireframe/graphics"
	"github.com/richinsley/gowireframe/headless"
	"github.com/richinsley/gowireframe/host"
	"github.com/richinsley/gowireframe/options"
	"github.com/richinsley/gowireframe/pinmode"
	"github.com/richinsley/gowireframe/recorder"
	"github.com/richinsley/gowireframe/registry"
	"github.com/richinsley/gowireframe/reload"
	"github.com/richinsley/gowireframe/solver"
)

const reloadDebounce = 200 * time.Millisecond

// scene is everything loaded from disk for one run.
type scene struct {
	cfg   *options.Config
	mask  image.Image
	mesh  *geometry.Mesh
	polys *geometry.Polygons
	sv    *solver.Static
}

func loadScene(cfg *options.Config) (*scene, error) {
	sc := &scene{cfg: cfg}
	if cfg.Mask != "" {
		mask, err := solver.LoadMask(cfg.Mask)
		if err != nil {
			return nil, err
		}
		sc.mask = mask
	} else {
		sc.mask = baseMask()
	}
	if err := sc.loadMesh(cfg.Mesh); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *scene) loadMesh(path string) error {
	mesh, polys, err := geometry.LoadOBJFile(path)
	if err != nil {
		return err
	}
	log.Printf("Loaded %s: %d vertices, %d faces", path, len(mesh.Vertices), polys.FacesCount())
	sc.mesh = mesh
	sc.polys = polys
	sc.sv = solver.NewStatic(polys, sc.mask, sc.cfg.Keyframes)
	return nil
}

// baseMask puts the whole UV square in the base region.
func baseMask() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 255
	}
	return img
}

func (sc *scene) settings() (pinmode.Settings, error) {
	colors, err := sc.cfg.Colors()
	if err != nil {
		return pinmode.Settings{}, err
	}
	s := pinmode.Settings{
		Colors:         colors,
		Opacity:        sc.cfg.Wireframe.Opacity,
		OverallOpacity: sc.cfg.Wireframe.OverallOpacity,
		ShowSpecials:   sc.cfg.Wireframe.ShowSpecials,
	}
	if len(sc.cfg.Wireframe.SpecialGroups) > 0 {
		s.SpecialPairs = sc.polys.GroupEdges(sc.cfg.Wireframe.SpecialGroups...)
	}
	return s, nil
}

func (sc *scene) bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(sc.mesh.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := sc.mesh.Vertices[0], sc.mesh.Vertices[0]
	for _, v := range sc.mesh.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], v[i])
			hi[i] = math32.Max(hi[i], v[i])
		}
	}
	return lo, hi
}

// startMode builds the overlays for sc on view and registers them. dev may be nil.
func startMode(sc *scene, view *host.Viewport, dev *glgpu.Device) (*pinmode.Mode, error) {
	settings, err := sc.settings()
	if err != nil {
		return nil, err
	}
	var mode *pinmode.Mode
	if dev != nil {
		mode, err = pinmode.New(view, registry.New(), dev, sc.sv, settings)
	} else {
		mode, err = pinmode.New(view, registry.New(), nil, sc.sv, settings)
	}
	if err != nil {
		return nil, err
	}
	mode.SetModel(sc.mesh, mgl32.Ident4(), sc.sv)
	if err := mode.Start(nil); err != nil {
		mode.Destroy()
		return nil, err
	}
	return mode, nil
}

// reloadMesh swaps in the mesh at path. A mesh with the same vertex count only moves
// the wireframe; anything else rebuilds it.
func reloadMesh(sc *scene, mode *pinmode.Mode, path string) {
	prev := len(sc.mesh.Vertices)
	prevFaces := sc.polys.FacesCount()
	if err := sc.loadMesh(path); err != nil {
		log.Printf("Reload failed: %v", err)
		return
	}
	if len(sc.mesh.Vertices) == prev && sc.polys.FacesCount() == prevFaces {
		if err := mode.UpdateGeometry(sc.mesh, mgl32.Ident4()); err != nil {
			log.Printf("Reload failed: %v", err)
		}
		return
	}
	mode.SetModel(sc.mesh, mgl32.Ident4(), sc.sv)
	if err := mode.InitWireframer(); err != nil {
		log.Printf("Reload failed: %v", err)
	}
}

func runView(ctx context.Context, sc *scene) error {
	cfg := sc.cfg
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	gc, err := glfwcontext.New(cfg.Window.Width, cfg.Window.Height, "Wireframe", true)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer gc.Shutdown()

	dev := glgpu.New(gc.IsGLES())
	defer dev.Close()

	view := host.NewViewport(nil)
	view.Camera.Fit(sc.bounds())

	mode, err := startMode(sc, view, dev)
	if err != nil {
		return err
	}
	defer mode.Destroy()

	gc.RegisterKeyCallback(glfw.KeyTab, func() {
		if err := mode.ToggleWireframe(); err != nil {
			log.Printf("Toggle failed: %v", err)
		}
	})
	gc.RegisterKeyCallback(glfw.KeyF, func() {
		view.Camera.Fit(sc.bounds())
	})

	if cfg.Watch {
		w, err := reload.New(cfg.Mesh, reloadDebounce, view, func(path string) {
			reloadMesh(sc, mode, path)
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
		log.Printf("Watching %s for changes", cfg.Mesh)
	}

	err = view.Run(ctx, gc, dev)
	mode.Stop()
	if err == context.Canceled {
		return nil
	}
	return err
}

// openOffscreen prefers an EGL pbuffer and falls back to a hidden GLFW window.
func openOffscreen(width, height int) (graphics.Context, func(), error) {
	gc, err := headless.NewHeadless(width, height)
	if err == nil {
		log.Println("Using headless EGL context")
		return gc, gc.Shutdown, nil
	}
	log.Printf("Headless context unavailable (%v), using a hidden window", err)

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	win, err := glfwcontext.New(width, height, "Wireframe", false)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, fmt.Errorf("failed to create hidden window: %w", err)
	}
	return win, func() {
		win.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

// offscreenRun renders into an FBO of the configured size and hands each frame to fn.
func offscreenRun(sc *scene, fn func(view *host.Viewport, off *recorder.Offscreen) error) error {
	cfg := sc.cfg
	gc, closeContext, err := openOffscreen(cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	defer closeContext()

	dev := glgpu.New(gc.IsGLES())
	defer dev.Close()

	off, err := recorder.NewOffscreen(cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	defer off.Destroy()

	view := host.NewViewport(nil)
	view.Camera.Fit(sc.bounds())

	mode, err := startMode(sc, view, dev)
	if err != nil {
		return err
	}
	defer mode.Destroy()
	return fn(view, off)
}

func runSnapshot(sc *scene) error {
	out := sc.cfg.OutputFile()
	return offscreenRun(sc, func(view *host.Viewport, off *recorder.Offscreen) error {
		view.RenderFrame(off, off)
		if err := recorder.SavePNG(out, off.ReadRGBA()); err != nil {
			return err
		}
		log.Printf("Saved snapshot to %s", out)
		return nil
	})
}

func runRecord(sc *scene) error {
	cfg := sc.cfg
	opts := recorder.Options{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		FPS:        cfg.Record.FPS,
		Duration:   cfg.Record.Duration,
		OutputFile: cfg.OutputFile(),
		FFMPEGPath: cfg.Record.FFMPEG,
	}
	return offscreenRun(sc, func(view *host.Viewport, off *recorder.Offscreen) error {
		// one full turn over the whole clip
		step := 2 * math32.Pi / float32(opts.Frames())
		err := recorder.Record(opts, func(i int) (*image.RGBA, error) {
			if i > 0 {
				view.Camera.Orbit(step, 0)
			}
			view.RenderFrame(off, off)
			return off.ReadRGBA(), nil
		})
		if err != nil {
			return err
		}
		log.Printf("Successfully rendered to %s", opts.OutputFile)
		return nil
	})
}

// runBackground builds the overlays without a GPU and drives a few frames.
func runBackground(sc *scene) error {
	view := host.NewViewport(nil)
	view.Camera.Fit(sc.bounds())
	mode, err := startMode(sc, view, nil)
	if err != nil {
		return err
	}
	defer mode.Destroy()

	w, h := sc.cfg.Window.Width, sc.cfg.Window.Height
	for i := 0; i < 3; i++ {
		view.DrawFrame(view.NextFrame(w, h))
	}
	wf := mode.Wireframe()
	log.Printf("Wireframe: mode %s, %d triangles, %d edges, working %v",
		wf.Mode(), len(wf.Indices()), wf.Edges().Len(), mode.IsWorking())

	mode.Stop()
	view.DrawFrame(view.NextFrame(w, h))
	log.Printf("After stop: working %v, %d handlers", mode.IsWorking(), view.HandlerCount())
	return nil
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.NewOverlayOptions(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Face wireframe overlay viewer/recorder")
		flag.PrintDefaults()
		return
	}

	cfg, err := options.Load(*opts.ConfigFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	opts.Apply(flag.CommandLine, cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sc, err := loadScene(cfg)
	if err != nil {
		log.Fatalf("Error loading scene: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.Mode {
	case options.ModeView:
		err = runView(ctx, sc)
	case options.ModeSnapshot:
		err = runSnapshot(sc)
	case options.ModeRecord:
		err = runRecord(sc)
	case options.ModeBackground:
		err = runBackground(sc)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", cfg.Mode, err)
	}
}
