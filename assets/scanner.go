package assets

import (
	"log"
	"os"

	clamd "github.com/dutchcoders/go-clamd"
)

// Scanner is the external malware gate consulted before any file is placed
// permanently.
type Scanner interface {
	Allow(path string) bool
}

// NewScannerFromConfig returns the clamd-backed scanner, or a pass-through
// when scanning is disabled.
func NewScannerFromConfig(cfg Config) Scanner {
	if !cfg.ScanEnabled {
		return allowAllScanner{}
	}
	return &clamdScanner{address: cfg.ClamAddress, failClosed: cfg.ScanFailClosed}
}

type allowAllScanner struct{}

func (allowAllScanner) Allow(string) bool { return true }

// clamdScanner streams the file to clamd. A positive detection always
// rejects. An unreachable or misbehaving daemon fails open by default: the
// upload is allowed and a warning logged. SCAN_FAIL_CLOSED flips that policy.
type clamdScanner struct {
	address    string
	failClosed bool
}

func (s *clamdScanner) Allow(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("assets: open %s for scan: %v", path, err)
		return s.onUnavailable()
	}
	defer file.Close()

	results, err := clamd.NewClamd(s.address).ScanStream(file, make(chan bool))
	if err != nil {
		log.Printf("assets: clamd %s unreachable (upload %s): %v", s.address, s.verdictWord(), err)
		return s.onUnavailable()
	}

	result, ok := <-results
	if !ok || result == nil {
		log.Printf("assets: clamd %s returned no result (upload %s)", s.address, s.verdictWord())
		return s.onUnavailable()
	}

	switch result.Status {
	case clamd.RES_OK:
		return true
	case clamd.RES_FOUND:
		log.Printf("assets: clamd detection on %s: %s", path, result.Description)
		return false
	default:
		log.Printf("assets: clamd scan of %s inconclusive (%s), upload %s", path, result.Status, s.verdictWord())
		return s.onUnavailable()
	}
}

func (s *clamdScanner) onUnavailable() bool {
	return !s.failClosed
}

func (s *clamdScanner) verdictWord() string {
	if s.failClosed {
		return "rejected"
	}
	return "allowed"
}
