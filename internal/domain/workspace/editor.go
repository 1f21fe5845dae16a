package workspace

import (
	"context"
	"fmt"

	"github.com/rpggio/codepad/internal/domain/activity"
)

// EditorContent returns the text shown on the editing surface.
func (s *Service) EditorContent() string {
	return s.editor
}

// EditorEnabled reports whether edits are attributable to a file.
func (s *Service) EditorEnabled() bool {
	return s.CurrentFile() != nil
}

// Edit writes text into the active file and persists the store. With no
// active file the edit is ignored and Edit reports false.
func (s *Service) Edit(ctx context.Context, text string) (bool, error) {
	if s.currentFile.isZero() {
		s.logger.Debug("edit ignored: no active file")
		return false, nil
	}
	ref := s.currentFile
	file, err := s.store.UpdateContent(ctx, ref.projectID, ref.fileID, text)
	if err != nil {
		return false, fmt.Errorf("saving edit: %w", err)
	}
	s.editor = text
	s.emit(Event{Type: EventContentSaved, ProjectID: ref.projectID, FileID: file.ID})

	fileID := file.ID
	s.journal(ctx, &activity.Entry{
		ProjectID: ref.projectID,
		FileID:    &fileID,
		Type:      activity.TypeContentSaved,
		Summary:   fmt.Sprintf("saved %q (%d bytes)", file.Name, len(text)),
	})
	return true, nil
}
