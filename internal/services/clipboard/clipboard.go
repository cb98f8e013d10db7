// Package clipboard copies rendered trees and completion scripts to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const (
	clipboardUnavailableMessage = "system clipboard unavailable"
	copyErrorFormat             = "copy %d bytes to clipboard: %w"
)

// ErrClipboardUnavailable is returned when no clipboard utility exists on this system.
var ErrClipboardUnavailable = errors.New(clipboardUnavailableMessage)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	write       func(string) error
	unsupported func() bool
}

// NewService constructs a clipboard service bound to the system clipboard.
func NewService() *Service {
	return &Service{
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported() {
		return ErrClipboardUnavailable
	}
	if err := service.write(text); err != nil {
		return fmt.Errorf(copyErrorFormat, len(text), err)
	}
	return nil
}

// Recorder is a Copier that keeps copied text in memory.
type Recorder struct {
	Copies []string
}

// Copy records text.
func (recorder *Recorder) Copy(text string) error {
	recorder.Copies = append(recorder.Copies, text)
	return nil
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = (*Recorder)(nil)
)
