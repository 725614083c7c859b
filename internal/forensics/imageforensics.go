package forensics

import (
	"fmt"
	"image"
	"math"
)

const (
	// colorDeviationLimit is the Euclidean distance in normalized RGB ratio
	// space above which a region is considered inconsistent.
	colorDeviationLimit = 0.03

	// edgeBoundaryRatio flags a block when its boundary edge strength exceeds
	// this multiple of its interior edge strength.
	edgeBoundaryRatio = 2.5

	// edgeStrengthFloor is the absolute boundary-strength floor; weak edges
	// never count even when the ratio trips.
	edgeStrengthFloor = 12.0

	// editThresholdImage is the conservative bar for likely_edited on raster
	// uploads. PDF page renders use a stricter bar since renderer output
	// exaggerates block variance.
	editThresholdImage     = 60.0
	editThresholdPDFRender = 75.0
)

// ImageForensicsAnalyzer detects pixel-level manipulation signals. Each
// signal is computed independently and failures degrade to zero evidence.
type ImageForensicsAnalyzer struct{}

// NewImageForensicsAnalyzer creates an image forensics analyzer
func NewImageForensicsAnalyzer() *ImageForensicsAnalyzer {
	return &ImageForensicsAnalyzer{}
}

// Analyze runs all pixel signals over the decoded image. Words carry the OCR
// per-word confidences when available. isPDFRender marks first-page renders,
// which get a stricter likely-edited bar.
func (a *ImageForensicsAnalyzer) Analyze(img image.Image, words []WordConfidence, isPDFRender bool) (result *ImageEditResult) {
	result = &ImageEditResult{}

	defer func() {
		if r := recover(); r != nil {
			result = &ImageEditResult{}
		}
	}()

	if img == nil {
		return result
	}

	bounds := img.Bounds()
	if bounds.Dx() < 16 || bounds.Dy() < 16 {
		return result
	}

	luma := lumaPlane(img)

	result.CompressionVariance = a.compressionVariance(luma)
	result.SuspiciousRegions = a.colorConsistency(img)
	result.ColorInconsistency = len(result.SuspiciousRegions) > 0

	edgeCount, edgeLocations := a.edgeAnomalies(luma)
	result.EdgeAnomalyCount = edgeCount
	result.EdgeAnomalies = edgeCount > 2
	result.EdgeLocations = edgeLocations

	result.OCRVarianceFlags = a.ocrConfidenceVariance(words)

	result.EditConfidence = a.aggregate(result)
	threshold := editThresholdImage
	if isPDFRender {
		threshold = editThresholdPDFRender
	}
	result.LikelyEdited = result.EditConfidence >= threshold

	return result
}

// compressionVariance proxies per-block JPEG quality by summed luma gradients
// in 8x8 blocks, then takes the population variance across blocks. Regional
// re-compression after editing leaves a quality discontinuity.
func (a *ImageForensicsAnalyzer) compressionVariance(luma [][]float64) float64 {
	h := len(luma)
	if h == 0 {
		return 0
	}
	w := len(luma[0])

	var qualities []float64
	for by := 0; by+8 <= h; by += 8 {
		for bx := 0; bx+8 <= w; bx += 8 {
			var grad float64
			for y := by; y < by+8; y++ {
				for x := bx; x < bx+8; x++ {
					if x+1 < bx+8 {
						grad += math.Abs(luma[y][x+1] - luma[y][x])
					}
					if y+1 < by+8 {
						grad += math.Abs(luma[y+1][x] - luma[y][x])
					}
				}
			}
			qualities = append(qualities, grad)
		}
	}

	if len(qualities) < 2 {
		return 0
	}

	variance := populationVariance(qualities)
	normalized := variance / 1000
	if normalized > 1 {
		return 1
	}
	return normalized
}

// colorConsistency tiles the image into ~50px regions and compares each
// region's normalized RGB ratio over midtone pixels against the image-wide
// mean ratio.
func (a *ImageForensicsAnalyzer) colorConsistency(img image.Image) []Region {
	bounds := img.Bounds()
	const tile = 50

	type ratio struct{ r, g, b float64 }
	var regions []struct {
		pos Region
		rat ratio
	}

	for ty := bounds.Min.Y; ty < bounds.Max.Y; ty += tile {
		for tx := bounds.Min.X; tx < bounds.Max.X; tx += tile {
			var sumR, sumG, sumB float64
			var count int

			maxY := ty + tile
			if maxY > bounds.Max.Y {
				maxY = bounds.Max.Y
			}
			maxX := tx + tile
			if maxX > bounds.Max.X {
				maxX = bounds.Max.X
			}

			for y := ty; y < maxY; y++ {
				for x := tx; x < maxX; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)
					l := 0.299*rf + 0.587*gf + 0.114*bf
					// Midtones only; highlights and shadows distort ratios
					if l > 50 && l < 200 {
						sumR += rf
						sumG += gf
						sumB += bf
						count++
					}
				}
			}

			if count < 25 {
				continue
			}

			total := sumR + sumG + sumB
			if total == 0 {
				continue
			}
			regions = append(regions, struct {
				pos Region
				rat ratio
			}{
				pos: Region{X: tx, Y: ty},
				rat: ratio{sumR / total, sumG / total, sumB / total},
			})
		}
	}

	if len(regions) < 2 {
		return nil
	}

	var mean ratio
	for _, r := range regions {
		mean.r += r.rat.r
		mean.g += r.rat.g
		mean.b += r.rat.b
	}
	n := float64(len(regions))
	mean.r /= n
	mean.g /= n
	mean.b /= n

	var suspicious []Region
	for _, r := range regions {
		dr := r.rat.r - mean.r
		dg := r.rat.g - mean.g
		db := r.rat.b - mean.b
		if math.Sqrt(dr*dr+dg*dg+db*db) > colorDeviationLimit {
			suspicious = append(suspicious, r.pos)
		}
	}
	return suspicious
}

// edgeAnomalies slides 20x20 blocks over a gradient-magnitude edge map and
// flags blocks whose boundary edges dwarf their interior edges, the classic
// signature of pasted content.
func (a *ImageForensicsAnalyzer) edgeAnomalies(luma [][]float64) (int, []Region) {
	h := len(luma)
	if h < 3 {
		return 0, nil
	}
	w := len(luma[0])
	if w < 3 {
		return 0, nil
	}

	// Gradient magnitude edge map
	edges := make([][]float64, h)
	for y := range edges {
		edges[y] = make([]float64, w)
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := luma[y][x+1] - luma[y][x-1]
			gy := luma[y+1][x] - luma[y-1][x]
			edges[y][x] = math.Sqrt(gx*gx + gy*gy)
		}
	}

	const block = 20
	var flagged int
	var locations []Region

	for by := 0; by+block <= h; by += block {
		for bx := 0; bx+block <= w; bx += block {
			var boundarySum, interiorSum float64
			var boundaryN, interiorN int

			for y := by; y < by+block; y++ {
				for x := bx; x < bx+block; x++ {
					onBoundary := y == by || y == by+block-1 || x == bx || x == bx+block-1
					if onBoundary {
						boundarySum += edges[y][x]
						boundaryN++
					} else {
						interiorSum += edges[y][x]
						interiorN++
					}
				}
			}

			if boundaryN == 0 || interiorN == 0 {
				continue
			}

			boundaryAvg := boundarySum / float64(boundaryN)
			interiorAvg := interiorSum / float64(interiorN)
			if interiorAvg == 0 {
				interiorAvg = 0.01
			}

			if boundaryAvg > edgeStrengthFloor && boundaryAvg/interiorAvg > edgeBoundaryRatio {
				flagged++
				if len(locations) < 5 {
					locations = append(locations, Region{X: bx, Y: by})
				}
			}
		}
	}

	return flagged, locations
}

// ocrConfidenceVariance flags words whose confidence falls more than 1.5
// standard deviations below the mean and under an absolute floor of 70.
// Locally re-typed text OCRs differently from the surrounding print.
func (a *ImageForensicsAnalyzer) ocrConfidenceVariance(words []WordConfidence) []string {
	var confidences []float64
	var eligible []WordConfidence
	for _, w := range words {
		if len(w.Word) >= 3 {
			confidences = append(confidences, w.Confidence)
			eligible = append(eligible, w)
		}
	}
	if len(confidences) < 3 {
		return nil
	}

	mean := meanOf(confidences)
	stddev := math.Sqrt(populationVariance(confidences))
	if stddev == 0 {
		return nil
	}

	var flags []string
	for _, w := range eligible {
		if w.Confidence < mean-1.5*stddev && w.Confidence < 70 {
			flags = append(flags, fmt.Sprintf("%s (%.0f%%)", w.Word, w.Confidence))
		}
	}
	return flags
}

// aggregate combines the four signals into a 0-100 confidence
func (a *ImageForensicsAnalyzer) aggregate(r *ImageEditResult) float64 {
	score := r.CompressionVariance * 30

	if r.ColorInconsistency {
		score += 25
		if len(r.SuspiciousRegions) > 3 {
			score += 5
		}
	}

	if r.EdgeAnomalies {
		score += 25
		if r.EdgeAnomalyCount > 6 {
			score += 5
		}
	}

	if n := len(r.OCRVarianceFlags); n > 0 {
		score += 10
		if n > 3 {
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func lumaPlane(img image.Image) [][]float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	luma := make([][]float64, h)
	for y := 0; y < h; y++ {
		luma[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return luma
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := meanOf(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
