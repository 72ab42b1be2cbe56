package filehandler

import (
	"time"

	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
)

// FileConfig configures a non-rotating File handler.
type FileConfig struct {
	// Name is the handler's identity; auto-generated when empty.
	Name string
	// Filename is the destination path, created (and its parent
	// directory) if it does not already exist.
	Filename string
	// Mode selects append or truncate-on-open. Default AppendMode.
	Mode OpenMode
	// OverrideExisting, when Mode is TruncateMode, allows truncating a
	// file that already exists. If false and the file exists, opening
	// fails.
	OverrideExisting bool
	Renderer         renderer.Renderer
	Processors       []processor.Processor
}

// File is a plain file handler with no rotation.
type File struct {
	*fileBase
}

// NewFile creates a File handler per cfg. The destination is opened
// lazily on the first successful write.
func NewFile(cfg FileConfig) *File {
	return &File{
		fileBase: newFileBase(cfg.Name, cfg.Filename, cfg.Mode, cfg.OverrideExisting, cfg.Renderer, cfg.Processors, 0, 0, 0),
	}
}

// RotatingConfig configures a Rotating file handler. At least one of
// MaxBytes or RotationInterval should be non-zero, or the handler
// behaves exactly like File.
type RotatingConfig struct {
	Name             string
	Filename         string
	Mode             OpenMode
	OverrideExisting bool
	Renderer         renderer.Renderer
	Processors       []processor.Processor
	// MaxBytes triggers a size-based rotation once the next write would
	// push the file strictly past this many bytes. Zero disables it.
	MaxBytes int64
	// BackupCount is how many rotated files to retain as filename.1,
	// filename.2, and so on. Zero means rotate by truncating in place
	// with no backups kept.
	BackupCount int
	// RotationInterval triggers a time-based rotation once this long
	// has elapsed since the file was last opened or rotated. Zero
	// disables it.
	RotationInterval time.Duration
}

// Rotating is a file handler that rotates by size and/or elapsed time.
type Rotating struct {
	*fileBase
}

// NewRotating creates a Rotating handler per cfg.
func NewRotating(cfg RotatingConfig) *Rotating {
	return &Rotating{
		fileBase: newFileBase(cfg.Name, cfg.Filename, cfg.Mode, cfg.OverrideExisting, cfg.Renderer, cfg.Processors, cfg.MaxBytes, cfg.BackupCount, cfg.RotationInterval),
	}
}
