// Package clustering implements the K-Means model used to assign quiz
// respondents to personality clusters.
//
// Training uses k-means++ seeding followed by Lloyd iterations, repeated for
// a number of independent restarts; the restart with the lowest inertia
// (sum of squared distances to the nearest centroid) wins. Every restart
// draws from its own PCG stream derived from Config.Seed, so a fixed seed and
// fixed input rows always produce the same centroids.
//
// A fitted Model is immutable. It is persisted as a gzip'd gob artifact (see
// artifact.go) and served through a Holder, which swaps models atomically.
package clustering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

var (
	// ErrEmptyData is returned when Fit receives no rows.
	ErrEmptyData = errors.New("clustering: no training rows")

	// ErrTooFewSamples is returned when there are fewer rows than clusters.
	ErrTooFewSamples = errors.New("clustering: fewer samples than clusters")

	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("clustering: vector dimension mismatch")
)

// Config contains configuration for K-Means training.
type Config struct {
	// K is the number of clusters.
	K int

	// Restarts is the number of independent initializations (n_init).
	Restarts int

	// MaxIterations bounds the Lloyd iterations of a single restart.
	MaxIterations int

	// Tolerance is relative to the mean per-feature variance of the data.
	// A restart stops once the total squared centroid shift falls below it.
	Tolerance float64

	// Seed fixes the random streams used for initialization.
	Seed uint64
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		K:             8,
		Restarts:      10,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Seed:          42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.Restarts <= 0 {
		c.Restarts = d.Restarts
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	return c
}

// Model is a fitted partition function.
type Model struct {
	Centroids [][]float64
	Meta      Metadata
}

// Metadata describes how a model was produced.
type Metadata struct {
	K          int       `json:"k"`
	Dimensions int       `json:"dimensions"`
	Seed       uint64    `json:"seed"`
	Restarts   int       `json:"restarts"`
	Iterations int       `json:"iterations"`
	Inertia    float64   `json:"inertia"`
	Samples    int       `json:"samples"`
	TrainedAt  time.Time `json:"trained_at"`
	// Checksum is filled in when the model is encoded or decoded.
	Checksum string `json:"checksum"`
}

// Assign returns the 1-based index of the nearest centroid.
// Ties resolve to the lowest index.
func (m *Model) Assign(vector []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, errors.New("clustering: model has no centroids")
	}
	if len(vector) != len(m.Centroids[0]) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), len(m.Centroids[0]))
	}
	idx, _ := nearest(vector, m.Centroids)
	return idx + 1, nil
}

// Fit trains a K-Means model on the given rows.
func Fit(ctx context.Context, data [][]float64, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()

	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if len(data) < cfg.K {
		return nil, fmt.Errorf("%w: %d samples, %d clusters", ErrTooFewSamples, len(data), cfg.K)
	}
	dims := len(data[0])
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), dims)
		}
	}

	tol := cfg.Tolerance * meanVariance(data)

	var best *run
	for r := 0; r < cfg.Restarts; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(r)))
		res := lloyd(data, initPlusPlus(data, cfg.K, rng), cfg.MaxIterations, tol)
		if best == nil || res.inertia < best.inertia {
			best = res
		}
	}

	return &Model{
		Centroids: best.centroids,
		Meta: Metadata{
			K:          cfg.K,
			Dimensions: dims,
			Seed:       cfg.Seed,
			Restarts:   cfg.Restarts,
			Iterations: best.iterations,
			Inertia:    best.inertia,
			Samples:    len(data),
			TrainedAt:  time.Now().UTC(),
		},
	}, nil
}

type run struct {
	centroids  [][]float64
	inertia    float64
	iterations int
}

// initPlusPlus picks k initial centroids with D^2 weighting.
func initPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.IntN(len(data))]))

	dist := make([]float64, len(data))
	for i, row := range data {
		dist[i] = sqDist(row, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := 0
		if total == 0 {
			// 所有点都与已选质心重合，退化为均匀抽样
			next = rng.IntN(len(data))
		} else {
			target := rng.Float64() * total
			var acc float64
			next = len(data) - 1
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}

		c := clone(data[next])
		centroids = append(centroids, c)
		for i, row := range data {
			if d := sqDist(row, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// lloyd runs assignment/update steps until convergence or maxIter.
func lloyd(data [][]float64, centroids [][]float64, maxIter int, tol float64) *run {
	k := len(centroids)
	dims := len(data[0])
	labels := make([]int, len(data))
	iterations := 0

	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1

		for i, row := range data {
			labels[i], _ = nearest(row, centroids)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, row := range data {
			l := labels[i]
			counts[l]++
			for j, v := range row {
				sums[l][j] += v
			}
		}

		next := make([][]float64, k)
		for c := range next {
			if counts[c] == 0 {
				// 空簇：取离当前质心最远的点
				next[c] = clone(data[farthest(data, labels, centroids)])
				continue
			}
			next[c] = make([]float64, dims)
			for j := range sums[c] {
				next[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		var shift float64
		for c := range next {
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	var inertia float64
	for _, row := range data {
		_, d := nearest(row, centroids)
		inertia += d
	}

	return &run{centroids: centroids, inertia: inertia, iterations: iterations}
}

// nearest returns the index of the closest centroid and the squared distance.
func nearest(v []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		if d := sqDist(v, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func farthest(data [][]float64, labels []int, centroids [][]float64) int {
	idx, maxDist := 0, -1.0
	for i, row := range data {
		if d := sqDist(row, centroids[labels[i]]); d > maxDist {
			idx, maxDist = i, d
		}
	}
	return idx
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func meanVariance(data [][]float64) float64 {
	dims := len(data[0])
	n := float64(len(data))
	var total float64
	for j := 0; j < dims; j++ {
		var mean float64
		for _, row := range data {
			mean += row[j]
		}
		mean /= n
		var v float64
		for _, row := range data {
			d := row[j] - mean
			v += d * d
		}
		total += v / n
	}
	return total / float64(dims)
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
