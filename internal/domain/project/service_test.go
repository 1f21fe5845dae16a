package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/codepad/internal/clock"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateProjectPersists(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil).Once()

	svc := project.NewService(repo, nil, project.WithIDs(project.Sequence("p")))
	proj, err := svc.CreateProject(ctx, "  Demo  ")
	require.NoError(t, err)
	require.Equal(t, "p1", proj.ID)
	require.Equal(t, "Demo", proj.Name)
	require.Empty(t, proj.Files)
	require.Len(t, svc.Projects(), 1)

	saved := repo.Calls[0].Arguments.Get(1).([]*project.Project)
	require.Len(t, saved, 1)
	require.Equal(t, "Demo", saved[0].Name)
	repo.AssertExpectations(t)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil)

	_, err := svc.CreateProject(ctx, "")
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, err = svc.CreateProject(ctx, "   ")
	require.ErrorIs(t, err, project.ErrInvalidInput)
	require.Empty(t, svc.Projects())

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProjectService_CreateFile(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, nil, project.WithIDs(project.Sequence("id")))
	proj, err := svc.CreateProject(ctx, "Demo")
	require.NoError(t, err)

	a, err := svc.CreateFile(ctx, proj.ID, "a.txt")
	require.NoError(t, err)
	b, err := svc.CreateFile(ctx, proj.ID, "b.txt")
	require.NoError(t, err)

	require.Equal(t, "", a.Content)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, []*project.File{a, b}, proj.Files)
	require.Same(t, b, svc.FindFile(proj, b.ID))
	require.Nil(t, svc.FindFile(proj, "missing"))
	repo.AssertNumberOfCalls(t, "Save", 3)

	_, err = svc.CreateFile(ctx, proj.ID, " ")
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, err = svc.CreateFile(ctx, "missing", "c.txt")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	require.Len(t, proj.Files, 2)
	repo.AssertNumberOfCalls(t, "Save", 3)
}

func TestProjectService_IDsStayUniqueWhenGeneratorRepeats(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	ids := []string{"same", "same", "same", "other"}
	next := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	svc := project.NewService(repo, nil, project.WithIDs(next))
	first, err := svc.CreateProject(ctx, "one")
	require.NoError(t, err)
	second, err := svc.CreateProject(ctx, "two")
	require.NoError(t, err)

	require.Equal(t, "same", first.ID)
	require.Equal(t, "other", second.ID)
}

func TestProjectService_IDsPairwiseDistinct(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	fake := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	svc := project.NewService(repo, nil, project.WithIDs(project.Timestamps(fake)))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		proj, err := svc.CreateProject(ctx, "p")
		require.NoError(t, err)
		require.False(t, seen[proj.ID], "duplicate project id %s", proj.ID)
		seen[proj.ID] = true
	}

	proj := svc.Projects()[0]
	fileIDs := map[string]bool{}
	for i := 0; i < 20; i++ {
		file, err := svc.CreateFile(ctx, proj.ID, "f")
		require.NoError(t, err)
		require.False(t, fileIDs[file.ID], "duplicate file id %s", file.ID)
		fileIDs[file.ID] = true
	}
}

func TestProjectService_UpdateContent(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, nil, project.WithIDs(project.Sequence("id")))
	proj, err := svc.CreateProject(ctx, "Demo")
	require.NoError(t, err)
	file, err := svc.CreateFile(ctx, proj.ID, "a.txt")
	require.NoError(t, err)

	updated, err := svc.UpdateContent(ctx, proj.ID, file.ID, "hello")
	require.NoError(t, err)
	require.Same(t, file, updated)
	require.Equal(t, "hello", file.Content)

	_, err = svc.UpdateContent(ctx, proj.ID, "missing", "x")
	require.ErrorIs(t, err, project.ErrFileNotFound)
	_, err = svc.UpdateContent(ctx, "missing", file.ID, "x")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_LoadDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Load", ctx).Return(nil, errors.New("disk on fire"))

	svc := project.NewService(repo, nil)
	require.Empty(t, svc.Load(ctx))
	require.Empty(t, svc.Projects())
}

func TestProjectService_LoadNormalizesFiles(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Load", ctx).Return([]*project.Project{{ID: "1", Name: "Demo"}, nil}, nil)

	svc := project.NewService(repo, nil)
	loaded := svc.Load(ctx)
	require.Len(t, loaded, 1)
	require.NotNil(t, loaded[0].Files)
	require.Same(t, loaded[0], svc.FindProject("1"))
	require.Nil(t, svc.FindProject("2"))
}

func TestProjectService_LoadDropsNilFiles(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Load", ctx).Return([]*project.Project{{
		ID:    "1",
		Name:  "Demo",
		Files: []*project.File{nil, {ID: "f", Name: "a.txt", Content: "x"}, nil},
	}}, nil)

	svc := project.NewService(repo, nil)
	loaded := svc.Load(ctx)
	require.Len(t, loaded, 1)
	require.Len(t, loaded[0].Files, 1)
	require.Equal(t, "f", loaded[0].Files[0].ID)
	require.NotNil(t, svc.FindFileIn("1", "f"))
	require.Nil(t, svc.FindFileIn("1", "missing"))
}

func TestProjectService_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil).Once()
	repo.On("Save", ctx, mock.Anything).Return(errors.New("read-only"))

	svc := project.NewService(repo, nil, project.WithIDs(project.Sequence("id")))
	proj, err := svc.CreateProject(ctx, "Demo")
	require.NoError(t, err)

	_, err = svc.CreateFile(ctx, proj.ID, "a.txt")
	require.Error(t, err)
	require.Empty(t, proj.Files)

	_, err = svc.CreateProject(ctx, "Other")
	require.Error(t, err)
	require.Len(t, svc.Projects(), 1)
}

func TestProjectService_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Save", ctx, mock.Anything).Return(errors.New("read-only"))

	svc := project.NewService(repo, nil)
	_, err := svc.CreateProject(ctx, "Demo")
	require.Error(t, err)
	require.Contains(t, err.Error(), "saving projects")
}
