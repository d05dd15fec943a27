package main

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/daemon"
	"github.com/jmylchreest/cheevo/internal/menu"
	"github.com/jmylchreest/cheevo/internal/popup"
	"github.com/jmylchreest/cheevo/internal/render"
)

var previewOpts struct {
	out       string
	atlasCell int
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render overlay preview images",
	Long: `Render PNG previews of the overlay with the current theme and menu
configuration: toast variants, the toast fade-out ramp, the menu with the
cursor on each item, the confirmation state, and an atlas of all of them.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOpts.out, "out", "o", "preview",
		"Output directory")
	previewCmd.Flags().IntVar(&previewOpts.atlasCell, "atlas-cell", 320,
		"Width of each atlas thumbnail in pixels")
}

// previewFrame is one rendered image and its file name.
type previewFrame struct {
	name  string
	frame *render.Frame
}

// previewVariants are the toast texts exercised by the preview.
var previewVariants = []struct {
	name, title, desc string
}{
	{"short", "First Blood", "Defeat the first boss"},
	{"long", "An Extraordinarily Long Achievement Title That Cannot Possibly Fit",
		"A description long enough to need truncation on a single line of the toast card"},
	{"no-description", "Speedrunner", ""},
}

// fadeSteps are the opacities rendered from the fade-out phase.
var fadeSteps = []float64{0.15, 0.4, 0.7, 1.0}

func runPreview(cmd *cobra.Command, args []string) error {
	root := themeRoot()
	cfg, _ := loadConfig()
	res := daemon.LoadResources(root, cfg.Overlay, logger)

	var bindings *config.Bindings
	if b, path := config.FindBindings(root, logger); path != "" {
		bindings = b
	}
	setup, err := daemon.ResolveMenu(cfg, bindings, res.ConfirmHint())
	if err != nil {
		return fmt.Errorf("failed to resolve menu: %w", err)
	}
	comp := res.Compositor(cfg.Menu)

	frames := previewToasts(comp)
	frames = append(frames, previewMenus(comp, setup)...)

	if err := os.MkdirAll(previewOpts.out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, f := range frames {
		path := filepath.Join(previewOpts.out, f.name+".png")
		if err := imaging.Save(f.frame.Image(), path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		reportFile(out, path)
	}

	atlasPath := filepath.Join(previewOpts.out, "atlas.png")
	if err := imaging.Save(buildAtlas(frames, previewOpts.atlasCell), atlasPath); err != nil {
		return fmt.Errorf("failed to save atlas: %w", err)
	}
	reportFile(out, atlasPath)
	return nil
}

func reportFile(out io.Writer, path string) {
	size := ""
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	_, _ = fmt.Fprintf(out, "%-40s %s\n", path, size)
}

func previewToasts(comp *render.Compositor) []previewFrame {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	settled := start.Add(popup.SlideInDuration + popup.HoldDuration/2)

	var frames []previewFrame
	for _, v := range previewVariants {
		p := popup.New(v.title, v.desc, start)
		p.Tick(settled)
		frames = append(frames, previewFrame{
			name:  "toast-" + v.name,
			frame: comp.RenderToast(p, settled, render.ToastWidth, render.ToastHeight),
		})
	}

	fadeStart := start.Add(popup.SlideInDuration + popup.HoldDuration)
	for _, opacity := range fadeSteps {
		at := fadeStart.Add(time.Duration((1 - opacity) * float64(popup.FadeOutDuration)))
		p := popup.New(previewVariants[0].title, previewVariants[0].desc, start)
		p.Tick(at)
		frames = append(frames, previewFrame{
			name:  fmt.Sprintf("fade-%03d", int(opacity*100)),
			frame: comp.RenderToast(p, at, render.ToastWidth, render.ToastHeight),
		})
	}
	return frames
}

func previewMenus(comp *render.Compositor, setup *daemon.MenuSetup) []previewFrame {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	open := start.Add(menu.OpenDuration)

	openMenu := func() *menu.Menu {
		m := menu.New(setup.Items)
		m.Toggle(start)
		m.Tick(open)
		return m
	}

	var frames []previewFrame
	for i := range setup.Items {
		m := openMenu()
		for range i {
			m.MoveDown()
		}
		frames = append(frames, previewFrame{
			name:  fmt.Sprintf("menu-%02d-%s", i, setup.Items[i].ID),
			frame: comp.RenderMenu(m, setup.Hints, open, render.MenuPreviewWidth, render.MenuPreviewHeight),
		})
	}

	for i, it := range setup.Items {
		if !it.Confirm {
			continue
		}
		m := openMenu()
		for range i {
			m.MoveDown()
		}
		m.Select(open)
		frames = append(frames, previewFrame{
			name:  "menu-confirm-" + it.ID,
			frame: comp.RenderMenu(m, setup.Hints, open, render.MenuPreviewWidth, render.MenuPreviewHeight),
		})
	}
	return frames
}

// buildAtlas lays the frames out in a grid of cell-wide thumbnails over a
// dark checkerboard so transparency stays visible.
func buildAtlas(frames []previewFrame, cell int) image.Image {
	if cell <= 0 {
		cell = 320
	}
	const cols, gap = 3, 8

	thumbs := make([]image.Image, len(frames))
	rowH := 0
	for i, f := range frames {
		src := f.frame.Image()
		h := src.Bounds().Dy() * cell / max(src.Bounds().Dx(), 1)
		dst := image.NewRGBA(image.Rect(0, 0, cell, max(h, 1)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		thumbs[i] = dst
		rowH = max(rowH, dst.Bounds().Dy())
	}

	rows := (len(frames) + cols - 1) / cols
	atlas := imaging.New(cols*(cell+gap)+gap, max(rows, 1)*(rowH+gap)+gap, color.NRGBA{R: 24, G: 24, B: 28, A: 255})
	checker(atlas, 16)

	for i, th := range thumbs {
		x := gap + (i%cols)*(cell+gap)
		y := gap + (i/cols)*(rowH+gap)
		atlas = imaging.Overlay(atlas, th, image.Pt(x, y), 1.0)
	}
	return atlas
}

func checker(img *image.NRGBA, size int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x/size+y/size)%2 == 0 {
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 36, G: 36, B: 42, A: 255})
		}
	}
}
