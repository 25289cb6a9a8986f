package colmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/colmap2scene/internal/monitoring"
)

const imagesFixture = `# Image list with two lines of data per image:
#   IMAGE_ID, QW, QX, QY, QZ, TX, TY, TZ, CAMERA_ID, NAME
#   POINTS2D[] as (X, Y, POINT3D_ID)
# Number of images: 3, mean observations per image: 2
1 1 0 0 0 0 0 0 1 IMG_1.jpg
100.5 200.25 -1 300 400 7
7 0.7071067811865476 0 0.7071067811865476 0 1 2 3 1 IMG_7.jpg

3 0.5 0.5 0.5 0.5 -1 -2 -3 2 IMG_3.jpg
10 20 4
`

func TestParseImages(t *testing.T) {
	images, err := ParseImages([]byte(imagesFixture), ImageParseOptions{})
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, []int{1, 7, 3}, []int{images[0].ID, images[1].ID, images[2].ID}, "file order is kept")

	assert.Equal(t, Image{
		ID:       1,
		Q:        quat.Number{Real: 1},
		T:        r3.Vector{},
		CameraID: 1,
		Name:     "IMG_1.jpg",
	}, images[0])

	// An image with no observations has an empty POINTS2D line.
	assert.Equal(t, "IMG_7.jpg", images[1].Name)
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, images[1].T)

	assert.Equal(t, 2, images[2].CameraID)
	assert.Equal(t, quat.Number{Real: 0.5, Imag: 0.5, Jmag: 0.5, Kmag: 0.5}, images[2].Q)
}

func TestParseImages_ObservationLineNeverParsed(t *testing.T) {
	// The second line looks like an image record but is the POINTS2D payload.
	input := "1 1 0 0 0 0 0 0 1 a.jpg\n2 1 0 0 0 0 0 0 1 b.jpg\n"

	images, err := ParseImages([]byte(input), ImageParseOptions{})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "a.jpg", images[0].Name)
}

func TestParseImages_ShortLineSkipped(t *testing.T) {
	// The short line advances one line only, so the next record still pairs
	// with its own observation line.
	input := "1 2 3\n5 1 0 0 0 0 0 0 1 e.jpg\n1 2 -1\n"

	var logged []string
	defer monitoring.SetLogger(func(format string, v ...any) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})()

	images, err := ParseImages([]byte(input), ImageParseOptions{})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, 5, images[0].ID)
	assert.Equal(t, []string{"colmap: skipping image line 1: 3 fields"}, logged)
}

func TestParseImages_ShortLineStrict(t *testing.T) {
	input := "# header\n1 2 3\n"

	_, err := ParseImages([]byte(input), ImageParseOptions{Strict: true})
	require.ErrorIs(t, err, ErrMalformedRecord)

	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
}

func TestParseImages_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing name", "1 1 0 0 0 0 0 0 1\n\n"},
		{"bad image id", "one 1 0 0 0 0 0 0 1 a.jpg\n\n"},
		{"bad quaternion", "1 1 0 zero 0 0 0 0 1 a.jpg\n\n"},
		{"bad translation", "1 1 0 0 0 0 0 z 1 a.jpg\n\n"},
		{"bad camera id", "1 1 0 0 0 0 0 0 cam a.jpg\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImages([]byte(tt.input), ImageParseOptions{})
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParseImages_Empty(t *testing.T) {
	images, err := ParseImages([]byte("# nothing here\n"), ImageParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, images)
}
