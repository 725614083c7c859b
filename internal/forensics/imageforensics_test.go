package forensics

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnalyzeUniformImageIsClean(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()
	img := uniformImage(200, 200, color.Gray{Y: 128})

	result := analyzer.Analyze(img, nil, false)

	require.NotNil(t, result)
	assert.False(t, result.LikelyEdited)
	assert.Zero(t, result.CompressionVariance)
	assert.False(t, result.ColorInconsistency)
	assert.False(t, result.EdgeAnomalies)
	assert.Empty(t, result.OCRVarianceFlags)
}

func TestAnalyzeNilImage(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()

	result := analyzer.Analyze(nil, nil, false)

	require.NotNil(t, result)
	assert.False(t, result.LikelyEdited)
	assert.Zero(t, result.EditConfidence)
}

func TestAnalyzeTinyImageIsSkipped(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()
	img := uniformImage(8, 8, color.Gray{Y: 200})

	result := analyzer.Analyze(img, nil, false)

	require.NotNil(t, result)
	assert.Zero(t, result.EditConfidence)
}

func TestAnalyzePastedRegionTripsEdgeDetection(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()

	// Mid-gray canvas with several sharp-edged white patches, the texture a
	// paste operation leaves behind.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.Gray{Y: 100})
		}
	}
	for _, origin := range []image.Point{{X: 20, Y: 20}, {X: 80, Y: 80}, {X: 140, Y: 40}, {X: 40, Y: 140}} {
		for y := origin.Y; y < origin.Y+18; y++ {
			for x := origin.X; x < origin.X+18; x++ {
				img.Set(x, y, color.Gray{Y: 250})
			}
		}
	}

	result := analyzer.Analyze(img, nil, false)

	assert.Greater(t, result.EditConfidence, 0.0)
}

func TestOCRConfidenceVarianceFlagsOutliers(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()

	words := []WordConfidence{
		{Word: "certificate", Confidence: 96},
		{Word: "completion", Confidence: 94},
		{Word: "training", Confidence: 95},
		{Word: "advanced", Confidence: 93},
		{Word: "altered", Confidence: 35},
	}

	flags := analyzer.ocrConfidenceVariance(words)

	require.Len(t, flags, 1)
	assert.Contains(t, flags[0], "altered")
}

func TestOCRConfidenceVarianceNeedsEnoughWords(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()

	flags := analyzer.ocrConfidenceVariance([]WordConfidence{
		{Word: "one", Confidence: 90},
		{Word: "two", Confidence: 20},
	})

	assert.Empty(t, flags)
}

func TestOCRConfidenceVarianceIgnoresShortWords(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()

	// Short tokens OCR unreliably; they never count as evidence
	flags := analyzer.ocrConfidenceVariance([]WordConfidence{
		{Word: "of", Confidence: 10},
		{Word: "certificate", Confidence: 95},
		{Word: "completion", Confidence: 94},
		{Word: "training", Confidence: 96},
	})

	assert.Empty(t, flags)
}

func TestAnalyzePDFRenderUsesStricterThreshold(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()
	result := &ImageEditResult{
		CompressionVariance: 1,
		ColorInconsistency:  true,
		SuspiciousRegions:   []Region{{}, {}, {}, {}},
		EdgeAnomalies:       false,
	}

	confidence := analyzer.aggregate(result)

	// The same evidence trips the raster bar but not the PDF-render bar
	assert.GreaterOrEqual(t, confidence, editThresholdImage)
	assert.Less(t, confidence, editThresholdPDFRender)
}

func TestAggregateIsBounded(t *testing.T) {
	analyzer := NewImageForensicsAnalyzer()
	result := &ImageEditResult{
		CompressionVariance: 1,
		ColorInconsistency:  true,
		SuspiciousRegions:   []Region{{}, {}, {}, {}},
		EdgeAnomalies:       true,
		EdgeAnomalyCount:    10,
		OCRVarianceFlags:    []string{"a", "b", "c", "d"},
	}

	assert.LessOrEqual(t, analyzer.aggregate(result), 100.0)
}
