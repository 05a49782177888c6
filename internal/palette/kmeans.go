package palette

import (
	"math"
	"runtime"
	"sync"
)

type weighted struct {
	c lab
	w float64
}

// kmeans clusters points into at most k centroids. Seeding is the
// deterministic variant of k-means++: the heaviest point first, then
// repeatedly the point with the largest weighted squared distance to its
// nearest seed. Lloyd iterations stop early once assignments settle.
func kmeans(points []weighted, k, iterations, workers int) []lab {
	if k >= len(points) {
		out := make([]lab, len(points))
		for i, p := range points {
			out[i] = p.c
		}
		return out
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	centroids := seed(points, k)
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < iterations; it++ {
		changed := assignAll(points, centroids, assign, workers)

		sums := make([]lab, len(centroids))
		weights := make([]float64, len(centroids))
		for i, p := range points {
			ci := assign[i]
			sums[ci][0] += p.c[0] * p.w
			sums[ci][1] += p.c[1] * p.w
			sums[ci][2] += p.c[2] * p.w
			weights[ci] += p.w
		}
		for ci := range centroids {
			// An empty cluster keeps its previous centroid.
			if weights[ci] == 0 {
				continue
			}
			centroids[ci] = lab{sums[ci][0] / weights[ci], sums[ci][1] / weights[ci], sums[ci][2] / weights[ci]}
		}
		if !changed {
			break
		}
	}
	return centroids
}

func seed(points []weighted, k int) []lab {
	first := 0
	for i, p := range points {
		if p.w > points[first].w {
			first = i
		}
	}
	centroids := []lab{points[first].c}
	nearest := make([]float64, len(points))
	for i, p := range points {
		nearest[i] = p.c.dist2(centroids[0])
	}
	for len(centroids) < k {
		best, bestScore := -1, 0.0
		for i, p := range points {
			if s := nearest[i] * p.w; s > bestScore {
				best, bestScore = i, s
			}
		}
		if best < 0 {
			break
		}
		c := points[best].c
		centroids = append(centroids, c)
		for i, p := range points {
			if d := p.c.dist2(c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centroids
}

func nearestIndex(c lab, centroids []lab) int {
	best, bestD := 0, math.Inf(1)
	for i, ct := range centroids {
		if d := c.dist2(ct); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// assignAll updates assign in parallel and reports whether anything moved.
func assignAll(points []weighted, centroids []lab, assign []int, workers int) bool {
	chunk := (len(points) + workers - 1) / workers
	if chunk < 1024 {
		chunk = 1024
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	changed := false
	for start := 0; start < len(points); start += chunk {
		end := start + chunk
		if end > len(points) {
			end = len(points)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			moved := false
			for i := start; i < end; i++ {
				ci := nearestIndex(points[i].c, centroids)
				if ci != assign[i] {
					assign[i] = ci
					moved = true
				}
			}
			if moved {
				mu.Lock()
				changed = true
				mu.Unlock()
			}
		}(start, end)
	}
	wg.Wait()
	return changed
}
