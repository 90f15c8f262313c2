package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ottmarv/gotile/internal/atlas"
	"github.com/ottmarv/gotile/pkg/log"
)

func bakeCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "bake",
		Usage:     "compress a PNG tile atlas into an asset pack",
		ArgsUsage: "<atlas.png> <out.gtp>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("bake needs an atlas image and an output path", 1)
			}

			f, err := os.Open(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer f.Close()

			img, err := png.Decode(f)
			if err != nil {
				return fmt.Errorf("decoding atlas: %w", err)
			}

			pack, err := atlas.BakeAtlas(img)
			if err != nil {
				return err
			}

			out, err := os.Create(c.Args().Get(1))
			if err != nil {
				return err
			}
			if err := pack.Write(out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			logger.Infof("baked %d tiles from %s", len(pack.Tiles), c.Args().Get(0))
			return nil
		},
	}
}
