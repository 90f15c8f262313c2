package tile

import (
	"fmt"

	"github.com/ottmarv/gotile/internal/dma"
)

// Compressed stream format, 16-bit words. The stream is a sequence of
// records, each introduced by one control word:
//
//	bits 0..7   literal count n
//	bits 8..15  run length r
//
// n == 0: advance the destination cursor by r words without touching them
// (a skip; only meaningful under a transparency mask or over a
// zero-initialised buffer). Otherwise the next n source words are copied to
// the destination verbatim and, if r > 0, the last of them is repeated r
// more times. Terrain art is dominated by long single-colour runs, which
// this copy-then-repeat idiom captures without a general compressor.
const (
	ctrlLiteralMask = 0xff
	ctrlRunShift    = 8
	maxLiterals     = 0xff
	maxRun          = 0xff
)

// Decompress applies the record stream src to dst using two DMA channels:
// literal copies are issued on ch0 and run fills on ch1, so the fill for
// one record can overlap the literal copy of the next. Both channels are
// idle when Decompress returns. A stream that would advance a cursor out of
// range panics; that is corrupt input, not a runtime condition.
func Decompress(dst, src []uint16, ch0, ch1 *dma.Channel) {
	di := 0
	for si := 0; si < len(src); {
		ctrl := src[si]
		si++
		literals := int(ctrl & ctrlLiteralMask)
		run := int(ctrl >> ctrlRunShift)

		if literals == 0 {
			// skip: destination words are left unmodified
			di += run
			if di > len(dst) {
				panic(fmt.Sprintf("tile: skip advances past end of tile (%d > %d)", di, len(dst)))
			}
			continue
		}

		if si+literals > len(src) {
			panic(fmt.Sprintf("tile: literal block of %d words overruns stream", literals))
		}
		if di+literals+run > len(dst) {
			panic(fmt.Sprintf("tile: record of %d words overruns tile", literals+run))
		}
		ch0.Wait()
		dma.Copy(ch0, dst[di:], src[si:], literals)
		last := src[si+literals-1]
		si += literals
		di += literals

		if run > 0 {
			ch1.Wait()
			dma.Fill(ch1, dst[di:], last, run)
			di += run
		}
	}
	ch0.Wait()
	ch1.Wait()
}

// Decode decompresses src into dst. The asset is first staged into a
// working buffer with a plain copy, mirroring the storage-to-RAM hop the
// transfer engines need, then the record stream is applied. With masked
// set the asset's mask rows are copied through uncompressed; a masked
// decode of an asset without a mask is an authoring error and panics.
func Decode(dst *Decoded, src *Asset, masked bool, ch0, ch1 *dma.Channel) {
	var buf [MaxStreamWords]uint16
	if len(src.Data) > len(buf) {
		panic(fmt.Sprintf("tile: compressed stream of %d words exceeds staging capacity %d",
			len(src.Data), len(buf)))
	}
	dma.Copy(ch0, buf[:], src.Data, len(src.Data))
	ch0.Wait()

	Decompress(dst.Pix[:], buf[:len(src.Data)], ch0, ch1)

	if masked {
		if src.Mask == nil {
			panic("tile: masked decode of an asset without a mask")
		}
		dma.Copy(ch1, dst.Mask[:], src.Mask, TileSize)
		ch1.Wait()
	}
}
