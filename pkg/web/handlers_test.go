package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence/file"
	"github.com/raglinehq/ragline/pkg/registry"
	"github.com/raglinehq/ragline/pkg/services"
	"github.com/raglinehq/ragline/pkg/web"
	"github.com/raglinehq/ragline/pkg/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestApp(t *testing.T) (*fiber.App, *services.Workflow) {
	t.Helper()

	logger := testLogger()
	persistence := file.NewPersistence(t.TempDir())

	registryInstance := registry.NewRegistry(logger)
	registryInstance.RegisterDefaultNodes(nil, nil)

	executor := workflow.NewExecutor(logger, registryInstance, persistence)
	workflowService := services.NewWorkflow(persistence)
	executionService := services.NewExecution(executor, persistence)

	handlers := web.NewAPIHandlers(
		workflowService,
		executionService,
		validator.New(validator.WithRequiredStructEnabled()),
		registryInstance,
	)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/activate", handlers.ActivateWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	app.Get("/executions/:id", handlers.GetExecution)
	app.Get("/health", handlers.HealthCheck)

	return app, workflowService
}

func standardNodes() []web.NodeRequest {
	return []web.NodeRequest{
		{Kind: "input", Name: "Input", Position: 1, Enabled: true},
		{Kind: "router", Name: "Router", Position: 2, Enabled: true},
		{Kind: "retriever", Name: "Retriever", Position: 3, Enabled: true},
		{Kind: "generator", Name: "Generator", Position: 4, Enabled: true},
		{Kind: "output", Name: "Output", Position: 5, Enabled: true},
	}
}

func createWorkflow(t *testing.T, app *fiber.App, name, mode string) models.Workflow {
	t.Helper()

	body, err := json.Marshal(web.CreateWorkflowRequest{
		Name:  name,
		Mode:  mode,
		Nodes: standardNodes(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	return created
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name: "successful creation",
			requestBody: web.CreateWorkflowRequest{
				Name:        "Fast Pipeline",
				Description: "Low latency answering",
				Mode:        "fast",
				Nodes:       standardNodes(),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing name",
			requestBody: web.CreateWorkflowRequest{
				Mode:  "fast",
				Nodes: standardNodes(),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid mode",
			requestBody: web.CreateWorkflowRequest{
				Name:  "Fast Pipeline",
				Mode:  "turbo",
				Nodes: standardNodes(),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "no nodes",
			requestBody: web.CreateWorkflowRequest{
				Name: "Fast Pipeline",
				Mode: "fast",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			var body []byte
			if raw, ok := tt.requestBody.(string); ok {
				body = []byte(raw)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_GetWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	req := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.Equal(t, created.ID, loaded.ID)
	assert.Len(t, loaded.Nodes, 5)
}

func TestAPIHandlers_GetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "workflow_not_found")
}

func TestAPIHandlers_ActivateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	first := createWorkflow(t, app, "First Fast", "fast")
	second := createWorkflow(t, app, "Second Fast", "fast")

	for _, id := range []string{first.ID, second.ID} {
		req := httptest.NewRequest(http.MethodPost, "/workflows/"+id+"/activate", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// The first workflow lost the active slot to the second.
	req := httptest.NewRequest(http.MethodGet, "/workflows/"+first.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var loaded models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.False(t, loaded.Active)
}

func TestAPIHandlers_ExecuteWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	body, err := json.Marshal(web.ExecuteWorkflowRequest{TestInput: "What is a trace?"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/execute", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// The execute endpoint renders the run with its own field names; the
	// persisted layout is only visible through the executions endpoints.
	assert.Contains(t, string(raw), `"execution_flow"`)
	assert.Contains(t, string(raw), `"total_time"`)
	assert.NotContains(t, string(raw), `"node_outputs"`)

	var run web.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(raw, &run))
	assert.Equal(t, models.ExecutionStatusSuccess, run.Status)
	assert.Len(t, run.ExecutionFlow, 5)
	assert.NotEmpty(t, run.ExecutionID)

	// The trace is retrievable through the executions endpoint.
	req = httptest.NewRequest(http.MethodGet, "/executions/"+run.ExecutionID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.ExecutionTrace
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	assert.Equal(t, run.ExecutionID, stored.ExecutionID)
	assert.Len(t, stored.NodeOutputs, 5)
}

func TestAPIHandlers_ExecuteWorkflow_StopAtNode(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	stopAt := created.Nodes[1].ID

	body, err := json.Marshal(web.ExecuteWorkflowRequest{
		TestInput:  "What is a partial run?",
		StopAtNode: stopAt,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/execute", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run web.ExecuteWorkflowResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, models.ExecutionStatusPartial, run.Status)
	assert.Len(t, run.ExecutionFlow, 2)
	assert.Nil(t, run.FinalOutput)
}

func TestAPIHandlers_ExecuteWorkflow_EmptyInput(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/execute", bytes.NewBufferString(`{"test_input":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GetWorkflowExecutions(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	for range 3 {
		body, err := json.Marshal(web.ExecuteWorkflowRequest{TestInput: "What happened?"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/execute", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID+"/executions?limit=2", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Executions []models.ExecutionTrace `json:"executions"`
		Count      int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 2, payload.Count)
	assert.Len(t, payload.Executions, 2)
}

func TestAPIHandlers_DeleteWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app, "Fast Pipeline", "fast")

	req := httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
