package tile

// Encode compresses pix into the codec's record stream. It is a greedy
// reference encoder: literals are consumed until a value repeats, and the
// repetition is folded into the record's run field. Used by the asset
// baking pipeline and as the round-trip oracle in tests; decode speed is
// what matters at runtime, not encode speed.
func Encode(pix []uint16) []uint16 {
	var out []uint16
	for i := 0; i < len(pix); {
		start := i
		i++
		for i < len(pix) && pix[i] != pix[i-1] && i-start < maxLiterals {
			i++
		}
		literals := i - start

		last := pix[i-1]
		run := 0
		for i < len(pix) && pix[i] == last && run < maxRun {
			i++
			run++
		}

		out = append(out, uint16(run)<<ctrlRunShift|uint16(literals))
		out = append(out, pix[start:start+literals]...)
	}
	return out
}

// EncodeMasked compresses pix, emitting skip records for spans whose mask
// bit is clear. The pixel values under a clear bit are never stored; the
// decoder leaves those destination words untouched.
func EncodeMasked(pix []uint16, mask []uint32) []uint16 {
	opaque := func(i int) bool {
		return mask[i/TileSize]>>(i%TileSize)&1 != 0
	}

	var out []uint16
	for i := 0; i < len(pix); {
		if !opaque(i) {
			run := 0
			for i < len(pix) && !opaque(i) && run < maxRun {
				i++
				run++
			}
			out = append(out, uint16(run)<<ctrlRunShift)
			continue
		}

		end := i
		for end < len(pix) && opaque(end) {
			end++
		}
		out = append(out, Encode(pix[i:end])...)
		i = end
	}
	return out
}
