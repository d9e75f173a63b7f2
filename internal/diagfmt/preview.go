package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"dioxide/internal/diag"
	"dioxide/internal/source"
)

type editPreview struct {
	before []string
	after  []string
}

// buildEditPreview returns the whole lines touched by edit, before and after it.
func buildEditPreview(fs *source.FileSet, edit diag.TextEdit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return editPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	endLine := max(endPos.Line, startPos.Line)

	blockStart := lineStartOffset(file, startPos.Line)
	lenContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return editPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	blockEnd := min(max(lineEndOffsetInclusive(file, endLine, lenContent), blockStart), lenContent)
	if edit.Span.Start < blockStart || edit.Span.End > blockEnd || edit.Span.Start > edit.Span.End {
		return editPreview{}, fmt.Errorf("edit span %d..%d out of range for preview block", edit.Span.Start, edit.Span.End)
	}

	original := file.Content[blockStart:blockEnd]
	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return editPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

// последний \n не открывает новую строку
func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if sp, ok := f.LineSpan(line); ok {
		return sp.Start
	}
	return 0
}

func lineEndOffsetInclusive(f *source.File, line, contentLen uint32) uint32 {
	sp, ok := f.LineSpan(line)
	if !ok {
		return contentLen
	}
	if sp.End < contentLen {
		return sp.End + 1
	}
	return sp.End
}
