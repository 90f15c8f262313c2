package main

import (
	"image"
	"unsafe"

	"github.com/urfave/cli/v2"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/render"
	"github.com/ottmarv/gotile/internal/worldmap"
	"github.com/ottmarv/gotile/pkg/fps"
	"github.com/ottmarv/gotile/pkg/log"
)

// scrollSpeed is the viewport movement in pixels per frame while an arrow
// key is held.
const scrollSpeed = 2

func viewCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "scroll a map interactively in an SDL window",
		ArgsUsage: "<pack.gtp> <map.tmx>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ocean",
				Usage: "comma-separated pack indices used to fill unauthored cells",
				Value: "0",
			},
			&cli.IntFlag{
				Name:  "scale",
				Usage: "window scale factor",
				Value: 2,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("view needs an asset pack and a map", 1)
			}
			src, err := loadWorld(c.Args().Get(0), c.Args().Get(1), c.String("ocean"))
			if err != nil {
				return err
			}
			return view(logger, src, c.Int("scale"), c.Bool("verbose"))
		},
	}
}

func view(logger log.Logger, src worldmap.Source, scale int, verbose bool) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}
	defer sdl.Quit()

	win, err := sdl.CreateWindow("gotile",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(display.Width*scale), int32(display.Height*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}
	defer win.Destroy()

	ren, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return err
	}
	defer ren.Destroy()

	tex, err := ren.CreateTexture(sdl.PIXELFORMAT_RGB565, sdl.TEXTUREACCESS_STREAMING,
		display.Width, display.Height)
	if err != nil {
		return err
	}
	defer tex.Destroy()

	// Pace the renderer as if the framebuffer were streaming out over the
	// one-megapixel-per-second link the engine was tuned for.
	d := display.New(&display.PacedTransport{PixelsPerSecond: 1_000_000})
	e, err := render.New(d, src, render.WithLogger(logger))
	if err != nil {
		return err
	}
	defer e.Close()

	monitor := fps.New(logger)
	viewport := image.Pt(0, 0)
	frame := 0

	for {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			switch ev.(type) {
			case *sdl.QuitEvent:
				return nil
			}
		}

		keys := sdl.GetKeyboardState()
		if keys[sdl.SCANCODE_LEFT] != 0 {
			viewport.X -= scrollSpeed
		}
		if keys[sdl.SCANCODE_RIGHT] != 0 {
			viewport.X += scrollSpeed
		}
		if keys[sdl.SCANCODE_UP] != 0 {
			viewport.Y -= scrollSpeed
		}
		if keys[sdl.SCANCODE_DOWN] != 0 {
			viewport.Y += scrollSpeed
		}
		if keys[sdl.SCANCODE_ESCAPE] != 0 {
			return nil
		}

		stats := e.DrawFrame(viewport, false)
		d.Flush()

		fb := d.Framebuffer()
		if err := tex.Update(nil,
			unsafe.Pointer(&fb[0]), display.Width*2); err != nil {
			return err
		}
		if err := ren.Copy(tex, nil, nil); err != nil {
			return err
		}
		ren.Present()

		monitor.Update()
		frame++
		if verbose && frame%60 == 0 {
			logger.Infof("draw %s decode %s base miss %.2f overlay miss %.2f slow=%v",
				stats.DrawTime, stats.DecodeTime,
				stats.Base.MissRate(), stats.Overlay.MissRate(), stats.SlowDraw)
		}
	}
}
