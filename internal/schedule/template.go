package schedule

import (
	"context"
	"os"
)

// FileTemplateSource reads the template package from disk on every call so
// template edits take effect without a restart.
type FileTemplateSource struct {
	Path string
}

func (s *FileTemplateSource) Template(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}
