package domain

import (
	"fmt"
	"strings"
)

// JobStatus tracks each pipeline stage for a single transcription run.
type JobStatus string

const (
	JobStatusIdle         JobStatus = "idle"
	JobStatusAcquiring    JobStatus = "acquiring"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusDone         JobStatus = "done"
	JobStatusFailed       JobStatus = "failed"
)

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// Language is the user's two-option recognition language pick.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageArabic  Language = "Arabic"
)

// Languages lists the selectable languages, default first.
var Languages = []Language{LanguageEnglish, LanguageArabic}

// Code returns the two-letter hint passed to the engine.
func (l Language) Code() string {
	if l == LanguageArabic {
		return "ar"
	}
	return "en"
}

// ParseLanguage accepts a display name or a two-letter code.
func ParseLanguage(raw string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "english", "en":
		return LanguageEnglish, nil
	case "arabic", "ar":
		return LanguageArabic, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", raw)
	}
}

// ModelSize is a speech model preset trading accuracy for compute cost.
type ModelSize string

const (
	ModelSizeSmall  ModelSize = "small"
	ModelSizeMedium ModelSize = "medium"
	ModelSizeLarge  ModelSize = "large"
)

// ModelSizes lists tiers in increasing accuracy and resource cost.
var ModelSizes = []ModelSize{ModelSizeSmall, ModelSizeMedium, ModelSizeLarge}

// ParseModelSize validates a tier name.
func ParseModelSize(raw string) (ModelSize, error) {
	size := ModelSize(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ModelSizes {
		if size == known {
			return size, nil
		}
	}
	return "", fmt.Errorf("unsupported model size: %q", raw)
}

// DeviceKind selects where model computation runs.
type DeviceKind string

const (
	DeviceCPU  DeviceKind = "cpu"
	DeviceCUDA DeviceKind = "cuda"
)

// Device is the compute device chosen once at startup.
type Device struct {
	Kind DeviceKind `json:"kind"`
	Name string     `json:"name,omitempty"`
}

// Accelerated reports whether inference runs on a GPU.
func (d Device) Accelerated() bool {
	return d.Kind == DeviceCUDA
}

// Label renders the device for display.
func (d Device) Label() string {
	if !d.Accelerated() {
		return "Using CPU"
	}
	if d.Name == "" {
		return "Using GPU"
	}
	return "Using GPU: " + d.Name
}

// Session is a read-only snapshot of the user's current configuration and last result.
type Session struct {
	URL             string    `json:"url"`
	LocalPath       string    `json:"localPath"`
	Language        Language  `json:"language"`
	ModelSize       ModelSize `json:"modelSize"`
	Transcript      string    `json:"transcript"`
	Device          Device    `json:"device"`
	DeviceLabel     string    `json:"deviceLabel"`
	ShowProgress    bool      `json:"showProgress"`
	ProgressVisible bool      `json:"progressVisible"`
	Job             Job       `json:"job"`
}
