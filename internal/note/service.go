package note

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
	"context"
	defError "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	AddNote(ctx context.Context, setID uint64, author, text string) (*domain.Note, error)
	EditNote(ctx context.Context, noteID uint64, text string) (*domain.Note, error)
	ToggleRead(ctx context.Context, noteID uint64) (*domain.Note, error)
	AutoMarkRead(ctx context.Context, setID uint64, viewerRole string) (int, error)
	UnreadCountForSet(ctx context.Context, setID uint64, forRole string) (int64, error)
	DeleteNote(ctx context.Context, noteID uint64) error
	GetThread(ctx context.Context, setID uint64) ([]domain.Note, error)

	ListActivity(ctx context.Context, page, perPage int) ([]domain.ActivityFlag, error)
	MarkActivityRead(ctx context.Context, flagID uint64) error
	MarkSetActivityRead(ctx context.Context, setID uint64) error
}

// SetProvider verifies the set a note is attached to exists
type SetProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error)
}

// VersionCache bumps the version key invalidating per-work set list caches
type VersionCache interface {
	IncrementVersion(ctx context.Context, key string)
}

type DefaultService struct {
	repository NoteRepository
	sets       SetProvider
	cache      VersionCache
}

func NewService(repository NoteRepository, sets SetProvider, cache VersionCache) Service {
	return &DefaultService{repository: repository, sets: sets, cache: cache}
}

func (s *DefaultService) AddNote(ctx context.Context, setID uint64, author, text string) (*domain.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("text", "Note text can't be empty")
	}
	if author != domain.AuthorLab && author != domain.AuthorDoctor {
		return nil, errors.Validation("author", "Author must be lab or doctor")
	}

	set, err := s.sets.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	n := &domain.Note{
		SetID:  setID,
		Author: author,
		Text:   text,
		IsRead: false,
	}
	if err := s.repository.Create(ctx, n); err != nil {
		return nil, err
	}

	// doctor notes raise an activity flag for the badge feed; written in the
	// same request so a badge event is never dropped
	if author == domain.AuthorDoctor {
		flag := &domain.ActivityFlag{SetID: setID, NoteID: n.ID}
		if err := s.repository.CreateFlag(ctx, flag); err != nil {
			return nil, err
		}
	}

	s.bumpWorkVersion(ctx, set.WorkID)
	return n, nil
}

func (s *DefaultService) EditNote(ctx context.Context, noteID uint64, text string) (*domain.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("text", "Note text can't be empty")
	}

	n, err := s.repository.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Note not found", err)
		}
		return nil, err
	}

	// doctor notes are read-only on this side
	if n.Author != domain.AuthorLab {
		return nil, errors.EditForbidden(n.Author)
	}

	now := time.Now().UTC()
	n.Text = text
	n.IsEdited = true
	n.EditedAt = &now

	if err := s.repository.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *DefaultService) ToggleRead(ctx context.Context, noteID uint64) (*domain.Note, error) {
	n, err := s.repository.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Note not found", err)
		}
		return nil, err
	}

	n.IsRead = !n.IsRead
	if err := s.repository.Update(ctx, n); err != nil {
		return nil, err
	}

	s.bumpWorkVersionForSet(ctx, n.SetID)
	return n, nil
}

// AutoMarkRead marks every unread note authored by the other role as read,
// one update per note so downstream audit sees each transition. Returns how
// many notes were marked.
func (s *DefaultService) AutoMarkRead(ctx context.Context, setID uint64, viewerRole string) (int, error) {
	if viewerRole != domain.AuthorLab && viewerRole != domain.AuthorDoctor {
		return 0, errors.Validation("viewer_role", "Viewer role must be lab or doctor")
	}

	unread, err := s.repository.ListUnreadByAuthor(ctx, setID, otherRole(viewerRole))
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range unread {
		n := unread[i]
		n.IsRead = true
		if err := s.repository.Update(ctx, &n); err != nil {
			return marked, err
		}
		marked++
	}

	// the lab reading doctor notes also clears their badge flags
	if viewerRole == domain.AuthorLab && marked > 0 {
		if err := s.repository.MarkSetFlagsRead(ctx, setID); err != nil {
			return marked, err
		}
	}

	if marked > 0 {
		s.bumpWorkVersionForSet(ctx, setID)
	}

	return marked, nil
}

// UnreadCountForSet is the badge number: notes from the other party still
// unread by the given role.
func (s *DefaultService) UnreadCountForSet(ctx context.Context, setID uint64, forRole string) (int64, error) {
	return s.repository.UnreadCount(ctx, setID, otherRole(forRole))
}

func (s *DefaultService) DeleteNote(ctx context.Context, noteID uint64) error {
	n, err := s.repository.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Note not found", err)
		}
		return err
	}

	if err := s.repository.Delete(ctx, noteID); err != nil {
		return err
	}

	s.bumpWorkVersionForSet(ctx, n.SetID)
	return nil
}

func (s *DefaultService) GetThread(ctx context.Context, setID uint64) ([]domain.Note, error) {
	if _, err := s.sets.FindByID(ctx, setID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}
	return s.repository.ListBySet(ctx, setID)
}

func (s *DefaultService) ListActivity(ctx context.Context, page, perPage int) ([]domain.ActivityFlag, error) {
	return s.repository.ListUnreadFlags(ctx, perPage, (page-1)*perPage)
}

func (s *DefaultService) MarkActivityRead(ctx context.Context, flagID uint64) error {
	return s.repository.MarkFlagRead(ctx, flagID)
}

func (s *DefaultService) MarkSetActivityRead(ctx context.Context, setID uint64) error {
	return s.repository.MarkSetFlagsRead(ctx, setID)
}

func otherRole(role string) string {
	if role == domain.AuthorLab {
		return domain.AuthorDoctor
	}
	return domain.AuthorLab
}

// unread counts feed the cached per-work set summaries, so every read-state
// change invalidates them
func (s *DefaultService) bumpWorkVersionForSet(ctx context.Context, setID uint64) {
	set, err := s.sets.FindByID(ctx, setID)
	if err != nil {
		return
	}
	s.bumpWorkVersion(ctx, set.WorkID)
}

func (s *DefaultService) bumpWorkVersion(ctx context.Context, workID uint64) {
	if s.cache == nil {
		return
	}
	s.cache.IncrementVersion(ctx, fmt.Sprintf("work:%d:sets:version", workID))
}
