package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	lru "github.com/hashicorp/golang-lru/v2"

	"yt2text/internal/command"
)

// DurationProber asks ffprobe for container duration. It never fails the caller.
type DurationProber struct {
	probePath string
	runner    command.Runner
	stat      func(name string) (os.FileInfo, error)
	cache     *lru.Cache[string, float64]
}

// NewDurationProber creates a prober caching up to cacheSize results.
func NewDurationProber(probePath string, runner command.Runner, cacheSize int) *DurationProber {
	p := &DurationProber{
		probePath: probePath,
		runner:    runner,
		stat:      os.Stat,
	}
	if cacheSize > 0 {
		if cache, err := lru.New[string, float64](cacheSize); err == nil {
			p.cache = cache
		}
	}
	return p
}

// Probe returns the clip duration in seconds, or 0 on any failure.
func (p *DurationProber) Probe(ctx context.Context, path string) float64 {
	key := p.cacheKey(path)
	if key != "" && p.cache != nil {
		if seconds, ok := p.cache.Get(key); ok {
			return seconds
		}
	}

	result, err := p.runner.Run(ctx, p.probePath, buildProbeArgs(path)...)
	if err != nil {
		logger.Warnf(ctx, "failed to get duration of %s: %v", path, err)
		return 0
	}

	seconds, err := parseDuration(result.Stdout)
	if err != nil {
		logger.Warnf(ctx, "failed to get duration of %s: %v", path, err)
		return 0
	}

	if key != "" && p.cache != nil {
		p.cache.Add(key, seconds)
	}
	return seconds
}

// cacheKey ties a cached duration to the file's size and mtime.
func (p *DurationProber) cacheKey(path string) string {
	info, err := p.stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

// buildProbeArgs prints format duration as a bare number.
func buildProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

func parseDuration(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("empty ffprobe output")
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric ffprobe output %q", value)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return seconds, nil
}

// FormatDuration renders seconds for log lines, e.g. 3m12s.
func FormatDuration(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
