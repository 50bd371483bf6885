package assets

import (
	"context"
	"encoding/json"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Prober extracts category-specific descriptive fields from a placed file.
// Extraction is best-effort: implementations never fail, they return whatever
// subset of fields they could determine.
type Prober interface {
	Probe(path, mimeType string, category Category) map[string]interface{}
}

// toolProber shells out to ffprobe and pdfinfo. A missing tool, timeout or
// malformed output degrades to an empty map with a logged diagnostic.
type toolProber struct {
	timeout time.Duration
}

func NewToolProber() Prober {
	return &toolProber{timeout: probeTimeout}
}

func (p *toolProber) Probe(path, mimeType string, category Category) map[string]interface{} {
	switch category {
	case CategoryAudio, CategoryVideo:
		return p.probeMedia(path, category)
	case CategoryPDF:
		return p.probePDF(path)
	default:
		return map[string]interface{}{}
	}
}

func (p *toolProber) probeMedia(path string, category Category) map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		log.Printf("assets: probe %s metadata for %s: %v", category, path, err)
		return map[string]interface{}{}
	}
	return parseFFprobeOutput(out, category)
}

func (p *toolProber) probePDF(path string) map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pdfinfo", path).Output()
	if err != nil {
		log.Printf("assets: probe pdf metadata for %s: %v", path, err)
		return map[string]interface{}{}
	}
	return parsePDFInfoOutput(string(out))
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecName  string `json:"codec_name"`
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseFFprobeOutput(data []byte, category Category) map[string]interface{} {
	metadata := map[string]interface{}{}

	var probed ffprobeOutput
	if err := json.Unmarshal(data, &probed); err != nil {
		log.Printf("assets: parse ffprobe output: %v", err)
		return metadata
	}

	if probed.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			metadata["duration"] = duration
		}
	}
	if probed.Format.BitRate != "" {
		if bitrate, err := strconv.Atoi(probed.Format.BitRate); err == nil {
			metadata["bitrate"] = bitrate
		}
	}

	if category == CategoryAudio && len(probed.Streams) > 0 {
		stream := probed.Streams[0]
		if stream.CodecName != "" {
			metadata["codec"] = stream.CodecName
		}
		if stream.SampleRate != "" {
			if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
				metadata["sample_rate"] = rate
			}
		}
	}

	if category == CategoryVideo {
		for _, stream := range probed.Streams {
			if stream.CodecType != "video" {
				continue
			}
			if stream.Width > 0 && stream.Height > 0 {
				metadata["width"] = stream.Width
				metadata["height"] = stream.Height
			}
			if stream.CodecName != "" {
				metadata["codec"] = stream.CodecName
			}
			if stream.RFrameRate != "" {
				metadata["frame_rate"] = stream.RFrameRate
			}
			break
		}
	}

	return metadata
}

func parsePDFInfoOutput(out string) map[string]interface{} {
	metadata := map[string]interface{}{}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Pages:") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if pages, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			metadata["pages"] = pages
		}
	}
	return metadata
}
