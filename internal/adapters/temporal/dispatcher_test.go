package temporaladapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	temporaladapter "github.com/samirrijal/scenedraw/internal/adapters/temporal"
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/workflows"
)

func testScene() *domain.StoredScene {
	return &domain.StoredScene{
		ID:      "s1",
		Title:   "London",
		SavedAt: time.Unix(1700000000, 42).UTC(),
		Record:  []byte(`{"title":"London"}`),
	}
}

func TestDispatchImport(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("scene-import-s1-1700000000000000042")
	run.On("GetRunID").Return("run-1")

	scene := testScene()
	c.On("ExecuteWorkflow", mock.Anything,
		client.StartWorkflowOptions{ID: "scene-import-s1-1700000000000000042", TaskQueue: "scene-import"},
		mock.Anything,
		workflows.SceneImportInput{SceneID: "s1", Title: "London", SavedAt: scene.SavedAt, Record: scene.Record},
	).Return(run, nil)

	d := temporaladapter.NewDispatcher(c, "scene-import")
	require.NoError(t, d.DispatchImport(context.Background(), scene))
	c.AssertExpectations(t)
}

func TestDispatchImport_Error(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("frontend unavailable"))

	d := temporaladapter.NewDispatcher(c, "scene-import")
	err := d.DispatchImport(context.Background(), testScene())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frontend unavailable")
}

func TestWorkflowID_PerSave(t *testing.T) {
	a := testScene()
	b := testScene()
	b.SavedAt = b.SavedAt.Add(time.Second)
	assert.NotEqual(t, temporaladapter.WorkflowID(a), temporaladapter.WorkflowID(b))
}
