package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFFprobeOutputAudio(t *testing.T) {
	out := []byte(`{
		"format": {"duration": "12.5", "bit_rate": "128000"},
		"streams": [{"codec_name": "mp3", "codec_type": "audio", "sample_rate": "44100"}]
	}`)

	metadata := parseFFprobeOutput(out, CategoryAudio)

	assert.Equal(t, 12.5, metadata["duration"])
	assert.Equal(t, 128000, metadata["bitrate"])
	assert.Equal(t, "mp3", metadata["codec"])
	assert.Equal(t, 44100, metadata["sample_rate"])
}

func TestParseFFprobeOutputVideoPicksVideoStream(t *testing.T) {
	out := []byte(`{
		"format": {"duration": "3.0", "bit_rate": "900000"},
		"streams": [
			{"codec_name": "aac", "codec_type": "audio", "sample_rate": "48000"},
			{"codec_name": "h264", "codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "30/1"}
		]
	}`)

	metadata := parseFFprobeOutput(out, CategoryVideo)

	assert.Equal(t, 3.0, metadata["duration"])
	assert.Equal(t, 900000, metadata["bitrate"])
	assert.Equal(t, "h264", metadata["codec"])
	assert.Equal(t, 640, metadata["width"])
	assert.Equal(t, 360, metadata["height"])
	assert.Equal(t, "30/1", metadata["frame_rate"])
}

func TestParseFFprobeOutputMalformed(t *testing.T) {
	assert.Empty(t, parseFFprobeOutput([]byte("not json"), CategoryAudio))
	assert.Empty(t, parseFFprobeOutput([]byte("{}"), CategoryVideo))
}

func TestParsePDFInfoOutput(t *testing.T) {
	out := "Title:          Contract\nAuthor:         Legal\nPages:          7\nEncrypted:      no\n"
	metadata := parsePDFInfoOutput(out)
	assert.Equal(t, 7, metadata["pages"])
}

func TestParsePDFInfoOutputWithoutPages(t *testing.T) {
	assert.Empty(t, parsePDFInfoOutput("Title: nothing useful\n"))
	assert.Empty(t, parsePDFInfoOutput("Pages: many\n"))
}
