package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/media"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn    func(context.Context, models.PostFilter) ([]*models.Post, error)
	getByIDFn func(context.Context, uint) (*models.Post, error)
	createFn  func(context.Context, *models.Post, []string) (*models.Post, error)
	updateFn  func(context.Context, uint, string, string) (*models.Post, error)
	deleteFn  func(context.Context, uint) error
	likeFn    func(context.Context, uint) (int, error)
}

func (s *postRepoStub) List(ctx context.Context, f models.PostFilter) ([]*models.Post, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, p *models.Post, tags []string) (*models.Post, error) {
	return s.createFn(ctx, p, tags)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, title, content string) (*models.Post, error) {
	return s.updateFn(ctx, id, title, content)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, id uint) (int, error) {
	return s.likeFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:    func(context.Context, models.PostFilter) ([]*models.Post, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		createFn: func(_ context.Context, p *models.Post, _ []string) (*models.Post, error) {
			p.ID = 1
			return p, nil
		},
		updateFn: func(_ context.Context, id uint, title, content string) (*models.Post, error) {
			return &models.Post{ID: id, Title: title, Content: content}, nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
		likeFn:   func(context.Context, uint) (int, error) { return 1, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	createFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
	likeFn       func(context.Context, uint) (int, error)
	dislikeFn    func(context.Context, uint) (int, error)
}

func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Like(ctx context.Context, id uint) (int, error) {
	return s.likeFn(ctx, id)
}
func (s *commentRepoStub) Dislike(ctx context.Context, id uint) (int, error) {
	return s.dislikeFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		deleteFn:  func(context.Context, uint) error { return nil },
		likeFn:    func(context.Context, uint) (int, error) { return 1, nil },
		dislikeFn: func(context.Context, uint) (int, error) { return 1, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:     func(context.Context, *models.User) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) { return &models.User{ID: 1, Email: email}, nil },
	}
}

// memoryStore is an in-memory media.Store.
type memoryStore struct {
	objects map[string][]byte
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Save(_ context.Context, u media.Upload) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	name := media.GenerateName(u.Filename, time.Now())
	m.objects[name] = u.Data
	return media.URL(name), nil
}

func (m *memoryStore) Open(_ context.Context, name string) (*media.Object, error) {
	data, ok := m.objects[name]
	if !ok {
		return nil, media.ErrNotFound
	}
	return &media.Object{Data: data}, nil
}

func (m *memoryStore) Remove(_ context.Context, name string) error {
	if _, ok := m.objects[name]; !ok {
		return media.ErrNotFound
	}
	delete(m.objects, name)
	return nil
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
