package seed

import (
	"fmt"

	"agora/internal/service"
)

var fileKinds = []struct {
	ext  string
	mime string
}{
	{"png", "image/png"},
	{"jpg", "image/jpeg"},
	{"webp", "image/webp"},
	{"pdf", "application/pdf"},
	{"txt", "text/plain"},
	{"zip", "application/zip"},
}

// files returns up to MaxFilesPerPost attachment references hosted on a fake CDN.
func (s *Seeder) files() []service.FileInput {
	limit := s.opts.MaxFilesPerPost
	if limit <= 0 {
		return nil
	}
	n := s.rng.Intn(limit + 1)
	out := make([]service.FileInput, 0, n)
	for i := 0; i < n; i++ {
		kind := fileKinds[s.rng.Intn(len(fileKinds))]
		name := fmt.Sprintf("%s.%s", s.faker.Noun(), kind.ext)
		size := int64(s.faker.Number(1_000, 5_000_000))
		out = append(out, service.FileInput{
			URL:          fmt.Sprintf("https://cdn.agora.test/%s/%s", s.faker.UUID(), name),
			OriginalName: name,
			MimeType:     kind.mime,
			Size:         &size,
		})
	}
	return out
}
