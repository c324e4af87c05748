package recorder

import (
	"fmt"
	"image"
	"io"
	"log"

	"github.com/schollz/progressbar/v3"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type Options struct {
	Width      int
	Height     int
	FPS        int
	Duration   float64
	OutputFile string
	FFMPEGPath string
	// Quiet disables the progress bar.
	Quiet bool
}

func (o Options) Frames() int {
	return int(o.Duration * float64(o.FPS))
}

// RenderFunc draws frame i and returns its pixels, top row first.
type RenderFunc func(i int) (*image.RGBA, error)

func (o Options) inputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": o.FPS,
	}
}

func (o Options) outputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"preset":  "medium",
	}
}

// Record renders Frames() frames and encodes them with ffmpeg.
func Record(opts Options, render RenderFunc) error {
	log.Printf("Recording %d frames to %s", opts.Frames(), opts.OutputFile)
	pipeReader, pipeWriter := io.Pipe()

	ffmpegCmd := ffmpeg.Input("pipe:", opts.inputArgs()).
		Output(opts.OutputFile, opts.outputArgs()).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// unblock the writer if ffmpeg exits early
		pipeReader.Close()
		errc <- err
	}()

	if err := WriteFrames(opts, render, pipeWriter); err != nil {
		pipeWriter.CloseWithError(err)
		if encErr := <-errc; encErr != nil {
			log.Printf("ffmpeg: %v", encErr)
		}
		return err
	}
	pipeWriter.Close()
	if err := <-errc; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// WriteFrames renders every frame and writes its raw RGBA pixels to w.
func WriteFrames(opts Options, render RenderFunc, w io.Writer) error {
	total := opts.Frames()
	var bar *progressbar.ProgressBar
	if !opts.Quiet {
		bar = progressbar.Default(int64(total), "recording")
		defer bar.Close()
	}

	rowSize := opts.Width * 4
	for i := 0; i < total; i++ {
		img, err := render(i)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if img.Rect.Dx() != opts.Width || img.Rect.Dy() != opts.Height {
			return fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, img.Rect.Dx(), img.Rect.Dy(), opts.Width, opts.Height)
		}
		for y := 0; y < opts.Height; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+rowSize]
			if _, err := w.Write(row); err != nil {
				return fmt.Errorf("frame %d: failed to write to encoder: %w", i, err)
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return nil
}
