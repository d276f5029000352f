package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

// sanitizeFileName reduces an upload name to a safe character set.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// Upload writes the blob under a timestamped key and appends a metadata
// entry to the session. Uploads are never deduplicated or size-capped;
// they accumulate monotonically until whole-session deletion.
func (s *Service) Upload(ctx context.Context, linkID, fileName, label string, data []byte) (domain.UploadEntry, error) {
	if len(data) == 0 {
		return domain.UploadEntry{}, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if _, err := s.GetSession(ctx, linkID); err != nil {
		return domain.UploadEntry{}, err
	}

	clean := sanitizeFileName(fileName)
	key := fmt.Sprintf("uploads/%s/%d_%s", linkID, s.nowFn().UnixMilli(), clean)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return domain.UploadEntry{}, err
	}

	entry := domain.UploadEntry{
		Key:          key,
		OriginalName: fileName,
		SizeBytes:    int64(len(data)),
		Label:        strings.TrimSpace(label),
	}
	if _, err := s.mutate(ctx, linkID, func(session *domain.Session) error {
		session.Uploads = append(session.Uploads, entry)
		return nil
	}); err != nil {
		return domain.UploadEntry{}, err
	}
	return entry, nil
}
