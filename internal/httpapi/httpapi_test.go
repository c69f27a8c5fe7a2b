package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/logger"
	"github.com/HendryAvila/promptforge/internal/metrics"
	"github.com/HendryAvila/promptforge/internal/session"
	"github.com/HendryAvila/promptforge/internal/storage"
	"github.com/HendryAvila/promptforge/internal/templates"
)

type nopClipboard struct{}

func (nopClipboard) WriteAll(string) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *session.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := logger.Discard()
	store := templates.New(storage.NewMemorySlot(), templates.DefaultKey, log, m)
	exp := export.NewExporter(nopClipboard{}, t.TempDir(), log, m)
	sess := session.New(store, exp, log, m)

	return NewRouter(sess, Options{Version: "1.0.0", Gatherer: reg, Logger: log}), sess
}

type envelope struct {
	OK       bool               `json:"ok"`
	Error    string             `json:"error"`
	State    session.State      `json:"state"`
	Template templates.Template `json:"template"`
	Updated  bool               `json:"updated"`
	Notice   string             `json:"notice"`
	Deleted  bool               `json:"deleted"`
	Content  string             `json:"content"`
	Format   string             `json:"format"`
	Panel    string             `json:"panel"`
	Awaiting bool               `json:"awaitingCustomValue"`

	Templates []templates.Template `json:"templates"`
	Options   session.FieldOptions `json:"options"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rr.Body.Bytes(), &env)
	}
	return rr, env
}

func setField(t *testing.T, r http.Handler, field, value string) {
	t.Helper()
	rr, env := do(t, r, http.MethodPut, "/api/v1/form/fields/"+field, gin.H{"value": value})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.True(t, env.OK)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "promptforge", resp.Service)
		assert.Equal(t, "1.0.0", resp.Version)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	setField(t, r, "language", "Go")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `promptforge_field_changes_total{field="language"} 1`)
}

func TestForm_DomainChangeClearsDependents(t *testing.T) {
	r, _ := newTestRouter(t)
	setField(t, r, "projectDomain", "Backend")
	setField(t, r, "language", "Go")
	setField(t, r, "framework", "Gin")

	_, env := do(t, r, http.MethodPut, "/api/v1/form/fields/projectDomain", gin.H{"value": "Frontend"})
	require.True(t, env.OK)
	assert.Equal(t, "Frontend", env.State.Spec.ProjectDomain)
	assert.Empty(t, env.State.Spec.Language)
	assert.Empty(t, env.State.Spec.Framework)
}

func TestForm_UnknownField(t *testing.T) {
	r, _ := newTestRouter(t)
	rr, env := do(t, r, http.MethodPut, "/api/v1/form/fields/colour", gin.H{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.OK)
}

func TestForm_OtherCapture(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := do(t, r, http.MethodPut, "/api/v1/form/fields/language", gin.H{"other": true})
	require.True(t, env.OK)
	assert.True(t, env.Awaiting)

	_, env = do(t, r, http.MethodPost, "/api/v1/form/other/confirm", gin.H{"value": "  Zig  "})
	require.True(t, env.OK)
	assert.Equal(t, "Zig", env.State.Spec.Language)
	assert.False(t, env.State.Awaiting)

	rr, _ := do(t, r, http.MethodPost, "/api/v1/form/other/confirm", gin.H{"value": "again"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestForm_OtherOnDomainRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	rr, _ := do(t, r, http.MethodPut, "/api/v1/form/fields/projectDomain", gin.H{"other": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestForm_ToggleConfigFile(t *testing.T) {
	r, _ := newTestRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/v1/form/config-files/toggle", gin.H{"value": "Dockerfile"})
	require.True(t, env.OK)
	assert.Equal(t, []string{"Dockerfile"}, env.State.Spec.ConfigFiles)

	_, env = do(t, r, http.MethodPost, "/api/v1/form/config-files/toggle", gin.H{"value": "Dockerfile"})
	assert.Empty(t, env.State.Spec.ConfigFiles)

	rr, _ := do(t, r, http.MethodPost, "/api/v1/form/config-files/toggle", gin.H{"value": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestForm_OptionsAndReset(t *testing.T) {
	r, _ := newTestRouter(t)
	setField(t, r, "language", "Go")

	_, env := do(t, r, http.MethodGet, "/api/v1/form/options/framework", nil)
	require.True(t, env.OK)
	assert.Contains(t, env.Options.Options, "Gin")
	assert.True(t, env.Options.Enabled)

	_, env = do(t, r, http.MethodPost, "/api/v1/form/reset", nil)
	require.True(t, env.OK)
	assert.Empty(t, env.State.Spec.Language)
}

func TestTemplates_SaveListLoad(t *testing.T) {
	r, _ := newTestRouter(t)
	setField(t, r, "language", "Go")

	rr, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "Go API"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, session.NoticeSaved, env.Notice)
	id := env.Template.ID

	_, env = do(t, r, http.MethodGet, "/api/v1/templates", nil)
	require.Len(t, env.Templates, 1)
	assert.Equal(t, "Go API", env.Templates[0].Name)

	do(t, r, http.MethodPost, "/api/v1/form/reset", nil)
	_, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/load", id), nil)
	require.True(t, env.OK)
	assert.Equal(t, "Go", env.State.Spec.Language)

	_, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d", id), nil)
	assert.Equal(t, "Go API", env.Template.Name)
}

func TestTemplates_SaveEmptyName(t *testing.T) {
	r, sess := newTestRouter(t)
	rr, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.OK)
	assert.Empty(t, sess.Templates())
}

func TestTemplates_EditThenSaveUpdates(t *testing.T) {
	r, sess := newTestRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "orig"})
	id := env.Template.ID

	_, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/edit", id), nil)
	require.True(t, env.OK)
	assert.True(t, env.State.IsEditing)

	setField(t, r, "projectScale", "Small")
	rr, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "renamed"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Updated)
	assert.Equal(t, session.NoticeUpdated, env.Notice)

	list := sess.Templates()
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Name)
	assert.Equal(t, "Small", list[0].Data.ProjectScale)
	assert.False(t, sess.State().IsEditing)
}

func TestTemplates_CancelEdit(t *testing.T) {
	r, _ := newTestRouter(t)
	rr, _ := do(t, r, http.MethodPost, "/api/v1/templates/edit/cancel", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	_, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "a"})
	do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/edit", env.Template.ID), nil)
	_, env = do(t, r, http.MethodPost, "/api/v1/templates/edit/cancel", nil)
	require.True(t, env.OK)
	assert.False(t, env.State.IsEditing)
}

func TestTemplates_Clone(t *testing.T) {
	r, sess := newTestRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "src"})
	src := env.Template

	rr, env := do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/clone", src.ID), gin.H{"name": "copy"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEqual(t, src.ID, env.Template.ID)
	assert.Equal(t, "copy", env.Template.Name)
	assert.Len(t, sess.Templates(), 2)

	rr, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/clone", src.ID), nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestTemplates_DeleteNeedsConfirm(t *testing.T) {
	r, sess := newTestRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/v1/templates", gin.H{"name": "doomed"})
	id := env.Template.ID

	rr, _ := do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/templates/%d", id), nil)
	assert.Equal(t, http.StatusPreconditionRequired, rr.Code)
	assert.Len(t, sess.Templates(), 1)

	_, env = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/templates/%d?confirm=true", id), nil)
	assert.True(t, env.OK)
	assert.True(t, env.Deleted)
	assert.Empty(t, sess.Templates())

	_, env = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/templates/%d?confirm=true", id), nil)
	assert.True(t, env.OK)
	assert.False(t, env.Deleted)
}

func TestTemplates_NotFoundAndBadID(t *testing.T) {
	r, _ := newTestRouter(t)
	rr, _ := do(t, r, http.MethodPost, "/api/v1/templates/99/load", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = do(t, r, http.MethodPost, "/api/v1/templates/abc/load", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPrompt_RenderAndPanel(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := do(t, r, http.MethodGet, "/api/v1/prompt", nil)
	require.True(t, env.OK)
	assert.Equal(t, "natural", env.Format)
	assert.Contains(t, env.Content, "Fill out the form")

	_, env = do(t, r, http.MethodPut, "/api/v1/prompt/panel", gin.H{"panel": "structured"})
	require.True(t, env.OK)
	assert.Equal(t, "structured", env.Panel)

	_, env = do(t, r, http.MethodGet, "/api/v1/prompt", nil)
	assert.Equal(t, "structured", env.Format)
	assert.True(t, json.Valid([]byte(env.Content)))

	rr, _ := do(t, r, http.MethodGet, "/api/v1/prompt?format=yaml", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPrompt_Download(t *testing.T) {
	r, _ := newTestRouter(t)
	setField(t, r, "language", "Go")

	rr, _ := do(t, r, http.MethodGet, "/api/v1/prompt/download?format=structured", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="prompt.json"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), `"language": "Go"`)

	rr, _ = do(t, r, http.MethodGet, "/api/v1/prompt/download", nil)
	assert.Equal(t, `attachment; filename="prompt.md"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/markdown"))
}

func TestForm_SentinelValue(t *testing.T) {
	r, sess := newTestRouter(t)
	setField(t, r, "projectDomain", "Backend")

	_, env := do(t, r, http.MethodPut, "/api/v1/form/fields/language", gin.H{"value": "Other"})
	require.True(t, env.OK)
	assert.True(t, env.Awaiting)
	assert.Empty(t, env.State.Spec.Language)

	rr, _ := do(t, r, http.MethodPut, "/api/v1/form/fields/projectDomain", gin.H{"value": "Other"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Backend", sess.Spec().ProjectDomain)

	_, env = do(t, r, http.MethodPost, "/api/v1/form/config-files/toggle", gin.H{"value": "Other"})
	require.True(t, env.OK)
	assert.True(t, env.Awaiting)
	assert.Empty(t, env.State.Spec.ConfigFiles)
}
