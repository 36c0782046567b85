// Package store persists voice samples and generated audio as files and
// derives the listing history from the output directory.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Antique3e/voice-generator/internal/core"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// previewSeparator splits the generation id from the text preview inside a
// generated filename: <uuid>__<preview>.wav.
const previewSeparator = "__"

const wavExtension = ".wav"

// HistoryLimit is the fixed page size of the history listing.
const HistoryLimit = 20

// Static errors.
var (
	ErrUnsupportedAudioType = errors.New("unsupported audio format")
	ErrEmptyFile            = errors.New("uploaded file is empty")
)

// allowedMIMETypes maps accepted upload content types to a storage extension.
var allowedMIMETypes = map[string]string{
	"audio/wav":    wavExtension,
	"audio/x-wav":  wavExtension,
	"audio/wave":   wavExtension,
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/ogg":    ".ogg",
}

// allowedExtensions is the fallback when the upload carries no usable
// content type.
var allowedExtensions = map[string]struct{}{
	wavExtension: {},
	".mp3":       {},
	".flac":      {},
	".ogg":       {},
}

// HistoryEntry is a read-only projection of one generated file.
type HistoryEntry struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	TextPreview string `json:"text_preview"`
	Timestamp   string `json:"timestamp"`
}

// VoiceStore persists uploaded voice samples.
type VoiceStore struct {
	dir string
}

// NewVoiceStore creates the store and its directory.
func NewVoiceStore(dir string) (*VoiceStore, error) {
	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice input directory: %w", err)
	}

	return &VoiceStore{dir: dir}, nil
}

// SaveSample validates the upload against the MIME allow-list and stores it
// under a freshly minted id. Every call yields a new id, even for identical
// content.
func (s *VoiceStore) SaveSample(filename, contentType string, data []byte) (id, storedName string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: %w", core.ErrValidation, ErrEmptyFile)
	}

	ext, err := resolveExtension(filename, contentType)
	if err != nil {
		return "", "", err
	}

	id = uuid.NewString()
	storedName = id + ext

	writeErr := os.WriteFile(filepath.Join(s.dir, storedName), data, filePermissions)
	if writeErr != nil {
		return "", "", fmt.Errorf("failed to store voice sample: %w", writeErr)
	}

	return id, storedName, nil
}

// Resolve returns the stored path for a sample id. A missing id yields
// core.ErrNotFound; callers that treat the sample as optional ignore it.
func (s *VoiceStore) Resolve(id string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read voice input directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasPrefix(entry.Name(), id) {
			return filepath.Join(s.dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: voice sample %q", core.ErrNotFound, id)
}

// AudioStore persists generated audio and serves the history listing.
type AudioStore struct {
	dir string
}

// NewAudioStore creates the store and its directory.
func NewAudioStore(dir string) (*AudioStore, error) {
	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio output directory: %w", err)
	}

	return &AudioStore{dir: dir}, nil
}

// SaveGeneration writes one synthesis result. The filename embeds the id and
// the text preview so history can be rebuilt from the directory alone.
func (s *AudioStore) SaveGeneration(id, preview string, data []byte) (string, error) {
	filename := id + wavExtension
	if preview != "" {
		filename = id + previewSeparator + preview + wavExtension
	}

	err := os.WriteFile(filepath.Join(s.dir, filename), data, filePermissions)
	if err != nil {
		return "", fmt.Errorf("failed to store generated audio: %w", err)
	}

	return filename, nil
}

// Path returns the on-disk location for a generated filename. The name is
// reduced to its base to keep lookups inside the output directory.
func (s *AudioStore) Path(filename string) (string, error) {
	safeName := filepath.Base(filename)
	path := filepath.Join(s.dir, safeName)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: file %q", core.ErrNotFound, safeName)
	}

	return path, nil
}

// History scans the output directory and returns the newest entries by
// modification time, capped at limit.
func (s *AudioStore) History(limit int) ([]HistoryEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio output directory: %w", err)
	}

	type fileInfo struct {
		name    string
		modTime time.Time
	}

	files := make([]fileInfo, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), wavExtension) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		files = append(files, fileInfo{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	if len(files) > limit {
		files = files[:limit]
	}

	history := make([]HistoryEntry, 0, len(files))

	for _, file := range files {
		id, preview := splitGeneratedName(file.name)

		history = append(history, HistoryEntry{
			ID:          id,
			Filename:    file.name,
			TextPreview: preview,
			Timestamp:   file.modTime.Format(time.RFC3339),
		})
	}

	return history, nil
}

// splitGeneratedName recovers the id and preview from a generated filename.
func splitGeneratedName(filename string) (id, preview string) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	parts := strings.SplitN(base, previewSeparator, 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}

	return base, ""
}

// resolveExtension maps the upload's content type, or failing that its
// extension, to a storage extension.
func resolveExtension(filename, contentType string) (string, error) {
	if ext, ok := allowedMIMETypes[strings.ToLower(contentType)]; ok {
		return ext, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; ok {
		return ext, nil
	}

	return "", fmt.Errorf("%w: %w: %q (%q)",
		core.ErrValidation, ErrUnsupportedAudioType, filename, contentType)
}
