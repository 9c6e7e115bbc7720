package transcribe

import (
	"os"
	"path/filepath"

	"yt2text/internal/domain"
)

var whisperModelCatalog = []domain.WhisperModelOption{
	{
		Size:        domain.ModelSizeSmall,
		Name:        "Small (Multilingual)",
		FileName:    "ggml-small.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SizeLabel:   "~466 MB",
		Description: "Fastest tier, lower accuracy.",
	},
	{
		Size:        domain.ModelSizeMedium,
		Name:        "Medium (Multilingual)",
		FileName:    "ggml-medium.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SizeLabel:   "~1.5 GB",
		Description: "Balanced speed and quality.",
	},
	{
		Size:        domain.ModelSizeLarge,
		Name:        "Large v3",
		FileName:    "ggml-large-v3.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SizeLabel:   "~2.9 GB",
		Description: "Highest quality, slowest.",
	},
}

// ModelForSize returns the whisper.cpp catalog entry for a tier.
func ModelForSize(size domain.ModelSize) (domain.WhisperModelOption, bool) {
	for _, model := range whisperModelCatalog {
		if model.Size == size {
			return model, true
		}
	}
	return domain.WhisperModelOption{}, false
}

// ModelCatalog lists the tiers and marks those already present in modelDir.
func ModelCatalog(modelDir string) []domain.WhisperModelOption {
	models := make([]domain.WhisperModelOption, len(whisperModelCatalog))
	copy(models, whisperModelCatalog)

	if modelDir == "" {
		return models
	}
	for i := range models {
		candidate := filepath.Join(modelDir, models[i].FileName)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		models[i].Downloaded = true
		models[i].LocalPath = candidate
	}
	return models
}
