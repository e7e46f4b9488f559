package workflows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/workflows"
)

// ---- Mock publisher ----

type mockPublisher struct {
	calls    int
	importFn func(ctx context.Context, req *domain.ImportRequest) error
	requests []domain.ImportRequest
}

func (m *mockPublisher) PublishSceneSaved(ctx context.Context, scene *domain.StoredScene) error {
	return nil
}

func (m *mockPublisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	m.calls++
	if m.importFn != nil {
		if err := m.importFn(ctx, req); err != nil {
			return err
		}
	}
	m.requests = append(m.requests, *req)
	return nil
}

const londonRecord = `{
	"title": "London",
	"area": {
		"southWest": {"lat": 51.5, "lng": -0.12},
		"northEast": {"lat": 51.52, "lng": -0.06},
		"areaSqMeters": 10475354.72
	},
	"origin": {"lat": 51.505, "lng": -0.09}
}`

func TestSceneImportWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	pub := &mockPublisher{}
	env.RegisterActivity(&workflows.ImportActivities{Publisher: pub})

	env.ExecuteWorkflow(workflows.SceneImportWorkflow, workflows.SceneImportInput{
		SceneID: "s1",
		Title:   "London",
		Record:  []byte(londonRecord),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Len(t, pub.requests, 1)

	req := pub.requests[0]
	assert.Equal(t, "s1", req.SceneID)
	assert.Equal(t, "London", req.Title)
	assert.Equal(t, domain.LatLng{Lat: 51.505, Lng: -0.09}, req.Origin)
	assert.Equal(t, "SRID=4326;POLYGON((-0.120000 51.500000,-0.060000 51.500000,-0.060000 51.520000,-0.120000 51.520000,-0.120000 51.500000))", req.EWKT)
	assert.True(t, req.Flags.Terrain, "record defaults apply")
}

func TestSceneImportWorkflow_InvalidSceneNotRetried(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	pub := &mockPublisher{}
	env.RegisterActivity(&workflows.ImportActivities{Publisher: pub})

	env.ExecuteWorkflow(workflows.SceneImportWorkflow, workflows.SceneImportInput{
		SceneID: "s2",
		Record:  []byte(`{"title": "no geometry"}`),
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, workflows.ErrTypeInvalidScene, appErr.Type())
	assert.Zero(t, pub.calls)
}

func TestSceneImportWorkflow_PublishRetried(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	pub := &mockPublisher{}
	pub.importFn = func(ctx context.Context, req *domain.ImportRequest) error {
		if pub.calls < 3 {
			return errors.New("nats: timeout")
		}
		return nil
	}
	env.RegisterActivity(&workflows.ImportActivities{Publisher: pub})

	env.ExecuteWorkflow(workflows.SceneImportWorkflow, workflows.SceneImportInput{
		SceneID: "s3",
		Record:  []byte(londonRecord),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 3, pub.calls)
	assert.Len(t, pub.requests, 1)
}

func TestValidateScene(t *testing.T) {
	acts := &workflows.ImportActivities{}

	tests := []struct {
		name   string
		record string
		ok     bool
	}{
		{"complete", londonRecord, true},
		{"malformed", `{"area": 5}`, false},
		{"no origin", `{"area": {"southWest": {"lat": 1, "lng": 1}, "northEast": {"lat": 2, "lng": 2}}}`, false},
		{"no stage", `{"area": {"southWest": {"lat": 1, "lng": 1}, "northEast": {"lat": 2, "lng": 2}},
			"origin": {"lat": 1.5, "lng": 1.5},
			"importFlags": {"terrain": false, "buildings": false, "trees": false}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts testsuite.WorkflowTestSuite
			env := ts.NewTestActivityEnvironment()
			env.RegisterActivity(acts)

			_, err := env.ExecuteActivity(acts.ValidateScene, workflows.SceneImportInput{
				SceneID: "v",
				Record:  []byte(tt.record),
			})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var appErr *temporal.ApplicationError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.True(t, appErr.NonRetryable())
		})
	}
}
