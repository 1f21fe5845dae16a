package workspace_test

import (
	"context"
	"testing"

	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestEditor_EditMutatesFileInPlaceAndPersists(t *testing.T) {
	ctx := context.Background()
	ws, store, repo := newWorkspace(t)

	proj, err := ws.CreateProject(ctx, "Demo")
	require.NoError(t, err)
	f, err := ws.CreateFile(ctx, "a.txt")
	require.NoError(t, err)
	savesBefore := repo.saves

	applied, err := ws.Edit(ctx, "package main")
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "package main", f.Content)
	require.Same(t, f, store.FindProject(proj.ID).FindFile(f.ID))
	require.Equal(t, "package main", ws.EditorContent())
	require.Equal(t, savesBefore+1, repo.saves)

	reloaded := project.NewService(repo, nil)
	reloaded.Load(ctx)
	require.Equal(t, "package main", reloaded.FindProject(proj.ID).FindFile(f.ID).Content)
}

func TestEditor_SwitchingTabsShowsFileContent(t *testing.T) {
	ctx := context.Background()
	ws, _, _ := newWorkspace(t)

	_, err := ws.CreateProject(ctx, "Demo")
	require.NoError(t, err)
	a, err := ws.CreateFile(ctx, "a")
	require.NoError(t, err)
	_, err = ws.Edit(ctx, "from a")
	require.NoError(t, err)
	b, err := ws.CreateFile(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "", ws.EditorContent())

	require.True(t, ws.SetActiveTab(a.ID))
	require.Equal(t, "from a", ws.EditorContent())
	require.True(t, ws.SetActiveTab(b.ID))
	require.Equal(t, "", ws.EditorContent())
}
