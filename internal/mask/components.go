package mask

import (
	"sar-watermap/internal/raster"
)

// eightNeighbors enumerates the 8-connected neighborhood. Diagonal
// contact joins components; this is deliberate and explicit rather
// than inherited from a platform default.
var eightNeighbors = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// LabelComponents labels 8-connected components of a bitmask. Labels
// start at 1 and are assigned in raster scan order, so repeated calls
// on the same mask produce identical labelings. The returned slice is
// indexed like the mask bits; zero means background.
func LabelComponents(m *raster.Bitmask) (labels []int, count int) {
	labels = make([]int, len(m.Bits))
	var stack [][2]int

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if !m.Bits[idx] || labels[idx] != 0 {
				continue
			}

			count++
			labels[idx] = count
			stack = append(stack[:0], [2]int{x, y})

			for len(stack) > 0 {
				px, py := stack[len(stack)-1][0], stack[len(stack)-1][1]
				stack = stack[:len(stack)-1]

				for _, d := range eightNeighbors {
					nx, ny := px+d[0], py+d[1]
					if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
						continue
					}
					nidx := ny*m.Width + nx
					if m.Bits[nidx] && labels[nidx] == 0 {
						labels[nidx] = count
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}
		}
	}

	return labels, count
}
