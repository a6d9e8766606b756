package delivery

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/services"
	"mouthpiece/internal/textutil"
	"mouthpiece/internal/timeline"
)

// FileType tags an upload for the runtime.
type FileType string

const (
	FileTypeAudio   FileType = "audio"
	FileTypeLipSync FileType = "lipsync"
)

// ParseFileType validates a user supplied file type.
func ParseFileType(raw string) (FileType, error) {
	switch FileType(strings.ToLower(strings.TrimSpace(raw))) {
	case FileTypeAudio:
		return FileTypeAudio, nil
	case FileTypeLipSync:
		return FileTypeLipSync, nil
	default:
		return "", fmt.Errorf("unknown file type %q (want audio or lipsync)", raw)
	}
}

// Request is one upload to the runtime.
type Request struct {
	Name        string
	FileType    FileType
	FileName    string
	ContentType string
	Content     []byte
}

// Bundle pairs the audio and lipsync uploads for one logical name.
type Bundle struct {
	Name    string
	Audio   Request
	LipSync Request
}

// Requests returns the uploads in delivery order.
func (b Bundle) Requests() []Request {
	return []Request{b.Audio, b.LipSync}
}

// NormalizeName turns a user supplied or file derived name into a logical
// name. It fails when nothing usable remains.
func NormalizeName(raw string) (string, error) {
	name := textutil.LogicalName(raw)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "package", "logical name",
			fmt.Sprintf("%q does not contain a usable name", raw), nil)
	}
	return name, nil
}

// NameFromPath derives a logical name from a file path's base name.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return textutil.LogicalName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Package builds the bundle for asset and tl under name. The timeline is
// serialized in the Rhubarb JSON shape whatever format the analyzer wrote.
func Package(asset audio.Asset, tl timeline.Timeline, name string) (Bundle, error) {
	logical, err := NormalizeName(name)
	if err != nil {
		return Bundle{}, err
	}
	content, err := asset.Bytes()
	if err != nil {
		return Bundle{}, services.Wrap(services.ErrDecode, "package", "read audio", asset.Path, err)
	}
	if len(content) == 0 {
		return Bundle{}, services.Wrap(services.ErrDecode, "package", "read audio", asset.Path+" is empty", nil)
	}
	ext := strings.ToLower(filepath.Ext(asset.Path))
	if ext == "" {
		ext = ".wav"
	}
	lipsync, err := timeline.EncodeJSON(tl, logical+ext)
	if err != nil {
		return Bundle{}, services.Wrap(services.ErrEncode, "package", "encode timeline", "", err)
	}

	return Bundle{
		Name: logical,
		Audio: Request{
			Name:        logical,
			FileType:    FileTypeAudio,
			FileName:    logical + ext,
			ContentType: contentType(ext),
			Content:     content,
		},
		LipSync: Request{
			Name:        logical,
			FileType:    FileTypeLipSync,
			FileName:    logical + ".json",
			ContentType: "application/json",
			Content:     lipsync,
		},
	}, nil
}

// FileRequest builds a single upload from a file on disk, as the manual
// upload command does.
func FileRequest(path string, fileType FileType, name string) (Request, error) {
	if strings.TrimSpace(name) == "" {
		name = NameFromPath(path)
	}
	logical, err := NormalizeName(name)
	if err != nil {
		return Request{}, err
	}
	asset := audio.NewAsset(path)
	content, err := asset.Bytes()
	if err != nil {
		return Request{}, services.Wrap(services.ErrDeliveryFailure, "upload", "read file", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return Request{
		Name:        logical,
		FileType:    fileType,
		FileName:    filepath.Base(path),
		ContentType: contentType(ext),
		Content:     content,
	}, nil
}

func contentType(ext string) string {
	switch ext {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".json":
		return "application/json"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
