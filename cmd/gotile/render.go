package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/render"
	"github.com/ottmarv/gotile/pkg/log"
)

func renderCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render map frames offline to PNG",
		ArgsUsage: "<pack.gtp> <map.tmx>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "output filename prefix",
				Value: "frame",
			},
			&cli.StringFlag{
				Name:  "ocean",
				Usage: "comma-separated pack indices used to fill unauthored cells",
				Value: "0",
			},
			&cli.IntFlag{Name: "frames", Usage: "number of frames to render", Value: 1},
			&cli.IntFlag{Name: "x", Usage: "initial viewport x"},
			&cli.IntFlag{Name: "y", Usage: "initial viewport y"},
			&cli.IntFlag{Name: "dx", Usage: "viewport x step per frame"},
			&cli.IntFlag{Name: "dy", Usage: "viewport y step per frame"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("render needs an asset pack and a map", 1)
			}
			src, err := loadWorld(c.Args().Get(0), c.Args().Get(1), c.String("ocean"))
			if err != nil {
				return err
			}

			d := display.New(display.NopTransport{})
			e, err := render.New(d, src, render.WithLogger(logger))
			if err != nil {
				return err
			}
			defer e.Close()

			verbose := c.Bool("verbose")
			viewport := image.Pt(c.Int("x"), c.Int("y"))
			for i := 0; i < c.Int("frames"); i++ {
				stats := e.DrawFrame(viewport, verbose)
				if verbose {
					logger.Infof("frame %d: draw %s decode %s base misses %.2f",
						i, stats.DrawTime, stats.DecodeTime, stats.Base.MissRate())
				}

				name := fmt.Sprintf("%s%04d.png", c.String("out"), i)
				if err := writePNG(name, d.Framebuffer()); err != nil {
					return err
				}
				viewport = viewport.Add(image.Pt(c.Int("dx"), c.Int("dy")))
			}
			logger.Infof("wrote %d frames", c.Int("frames"))
			return nil
		},
	}
}

// writePNG expands the RGB565 framebuffer back to 8-bit channels.
func writePNG(name string, fb []uint16) error {
	img := image.NewRGBA(image.Rect(0, 0, display.Width, display.Height))
	for i, p := range fb {
		img.SetRGBA(i%display.Width, i/display.Width, color.RGBA{
			R: uint8(p>>11) << 3,
			G: uint8(p>>5&0x3f) << 2,
			B: uint8(p&0x1f) << 3,
			A: 0xff,
		})
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
