package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config carries the bucket settings resolved once at startup. It is built
// from the environment and then passed around by value; nothing mutates it.
type Config struct {
	BasePath       string
	TempPath       string
	SecretToken    string
	PublicPrefix   string
	ClamAddress    string
	ScanEnabled    bool
	ScanFailClosed bool
	EncodeWorkers  int
}

const defaultEncodeWorkers = 4

// ConfigFromEnv resolves the bucket configuration. SECRET_TOKEN is the only
// required variable; everything else has a local-development default.
func ConfigFromEnv() (Config, error) {
	token := strings.TrimSpace(os.Getenv("SECRET_TOKEN"))
	if token == "" {
		return Config{}, errors.New("assets: SECRET_TOKEN environment variable is required")
	}

	basePath := strings.TrimSpace(os.Getenv("BASE_PATH"))
	if basePath == "" {
		basePath = "./data/storage"
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return Config{}, fmt.Errorf("assets: resolve base path: %w", err)
	}

	tempPath := strings.TrimSpace(os.Getenv("UPLOAD_TEMP"))
	if tempPath == "" {
		tempPath = "./data/uploads"
	}
	absTemp, err := filepath.Abs(tempPath)
	if err != nil {
		return Config{}, fmt.Errorf("assets: resolve temp path: %w", err)
	}

	clamHost := strings.TrimSpace(os.Getenv("CLAMAV_HOST"))
	if clamHost == "" {
		clamHost = "clamav"
	}
	clamPort := strings.TrimSpace(os.Getenv("CLAMAV_PORT"))
	if clamPort == "" {
		clamPort = "3310"
	}

	workers := defaultEncodeWorkers
	if raw := strings.TrimSpace(os.Getenv("ENCODE_WORKERS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	return Config{
		BasePath:       absBase,
		TempPath:       absTemp,
		SecretToken:    token,
		PublicPrefix:   "/files",
		ClamAddress:    fmt.Sprintf("tcp://%s:%s", clamHost, clamPort),
		ScanEnabled:    strings.EqualFold(strings.TrimSpace(os.Getenv("CLAMAV_ENABLED")), "true"),
		ScanFailClosed: strings.EqualFold(strings.TrimSpace(os.Getenv("SCAN_FAIL_CLOSED")), "true"),
		EncodeWorkers:  workers,
	}, nil
}
