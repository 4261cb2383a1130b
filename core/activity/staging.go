package activity

import "strings"

// IsStageable reports whether a declared content type may be attached to
// an activity: images and PDFs only.
func IsStageable(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.Contains(ct, "pdf")
}

// StagedFile is a file accepted into a Staging list. Nothing is uploaded
// at staging time; Content is held in memory until submission.
type StagedFile struct {
	StagingID   int    `json:"staging_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

func (f StagedFile) Size() int64 { return int64(len(f.Content)) }

// Staging accumulates the files offered for one submission, in offer
// order. Offering the same file name twice appends a second entry; each
// entry gets its own StagingID so it can be removed individually.
type Staging struct {
	nextID int
	files  []StagedFile
}

// Offer appends the file if its declared content type is stageable and
// reports whether it was accepted.
func (s *Staging) Offer(name, contentType string, content []byte) bool {
	if !IsStageable(contentType) {
		return false
	}
	s.nextID++
	s.files = append(s.files, StagedFile{
		StagingID:   s.nextID,
		Name:        name,
		ContentType: contentType,
		Content:     content,
	})
	return true
}

// Remove drops every staged entry with the given name.
func (s *Staging) Remove(name string) {
	kept := s.files[:0]
	for _, f := range s.files {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	s.files = kept
}

// RemoveID drops the single entry with the given staging id.
func (s *Staging) RemoveID(id int) {
	for i, f := range s.files {
		if f.StagingID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return
		}
	}
}

// Files returns the staged entries in offer order.
func (s *Staging) Files() []StagedFile {
	files := make([]StagedFile, len(s.files))
	copy(files, s.files)
	return files
}

func (s *Staging) Len() int { return len(s.files) }

func (s *Staging) Clear() {
	s.files = nil
}
