// Package session holds the user's input selection and last transcript.
// A State is owned by exactly one goroutine; it has no locking of its own.
package session

import (
	"strings"

	"yt2text/internal/domain"
)

const (
	DefaultLanguage  = domain.LanguageEnglish
	DefaultModelSize = domain.ModelSizeMedium
)

// State is the mutable session.
type State struct {
	url          string
	localPath    string
	language     domain.Language
	modelSize    domain.ModelSize
	transcript   string
	showProgress bool
	running      bool
}

// New returns a state with startup defaults.
func New() *State {
	s := &State{showProgress: true}
	s.Reset()
	return s
}

// SetURL makes url the active input and clears any local file.
func (s *State) SetURL(url string) {
	s.url = strings.TrimSpace(url)
	if s.url != "" {
		s.localPath = ""
	}
}

// SetLocalPath makes path the active input and clears the URL.
func (s *State) SetLocalPath(path string) {
	s.localPath = path
	s.url = ""
}

func (s *State) SetLanguage(l domain.Language)   { s.language = l }
func (s *State) SetModelSize(m domain.ModelSize) { s.modelSize = m }
func (s *State) SetShowProgress(v bool)          { s.showProgress = v }
func (s *State) SetRunning(v bool)               { s.running = v }
func (s *State) SetTranscript(text string)       { s.transcript = text }

func (s *State) Language() domain.Language   { return s.language }
func (s *State) ModelSize() domain.ModelSize { return s.modelSize }
func (s *State) Transcript() string          { return s.transcript }

// ActiveInput returns the URL when set, else the local path, else "".
func (s *State) ActiveInput() string {
	if s.url != "" {
		return s.url
	}
	return s.localPath
}

// Reset restores every user field to its default. The progress toggle is a
// preference and survives.
func (s *State) Reset() {
	s.url = ""
	s.localPath = ""
	s.language = DefaultLanguage
	s.modelSize = DefaultModelSize
	s.transcript = ""
}

// Snapshot copies the state for readers on other goroutines.
func (s *State) Snapshot(device domain.Device, job domain.Job) domain.Session {
	return domain.Session{
		URL:             s.url,
		LocalPath:       s.localPath,
		Language:        s.language,
		ModelSize:       s.modelSize,
		Transcript:      s.transcript,
		Device:          device,
		DeviceLabel:     device.Label(),
		ShowProgress:    s.showProgress,
		ProgressVisible: s.running && s.showProgress,
		Job:             job,
	}
}
