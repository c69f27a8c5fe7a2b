package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/session"
	"github.com/HendryAvila/promptforge/internal/templates"
)

// Handler serves the session over JSON.
type Handler struct {
	sess   *session.Session
	logger *slog.Logger
}

// NewHandler creates a Handler. A nil logger uses slog.Default().
func NewHandler(sess *session.Session, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sess: sess, logger: logger}
}

// status maps core errors onto HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, templates.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotEditing), errors.Is(err, form.ErrNoCapture):
		return http.StatusConflict
	case errors.Is(err, templates.ErrEmptyName),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrCustomNotAllowed),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"ok": false, "error": err.Error()})
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid template id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) stateOK(c *gin.Context, extra gin.H) {
	body := gin.H{"ok": true, "state": h.sess.State()}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// --- Form ---

func (h *Handler) getForm(c *gin.Context) {
	h.stateOK(c, nil)
}

func (h *Handler) options(c *gin.Context) {
	opts, err := h.sess.Options(c.Param("field"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "options": opts})
}

type setFieldReq struct {
	Value string `json:"value"`
	Other bool   `json:"other"`
}

func (h *Handler) setField(c *gin.Context) {
	var req setFieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	choice := form.Known(req.Value)
	if req.Other {
		choice = form.Other()
	}
	awaiting, err := h.sess.Select(c.Param("field"), choice)
	if err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, gin.H{"awaitingCustomValue": awaiting})
}

type valueReq struct {
	Value string `json:"value"`
}

func (h *Handler) toggleConfigFile(c *gin.Context) {
	var req valueReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Value) == "" {
		badBody(c)
		return
	}
	awaiting, err := h.sess.ToggleConfigFile(req.Value)
	if err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, gin.H{"awaitingCustomValue": awaiting})
}

func (h *Handler) confirmOther(c *gin.Context) {
	var req valueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if err := h.sess.ConfirmOther(req.Value); err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, nil)
}

func (h *Handler) cancelOther(c *gin.Context) {
	h.sess.CancelOther()
	h.stateOK(c, nil)
}

func (h *Handler) reset(c *gin.Context) {
	h.sess.Reset()
	h.stateOK(c, nil)
}

// --- Templates ---

func (h *Handler) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": h.sess.Templates()})
}

func (h *Handler) getTemplate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, found := h.sess.PeekTemplate(id)
	if !found {
		fail(c, fmt.Errorf("%w: %d", templates.ErrNotFound, id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "template": t})
}

type nameReq struct {
	Name string `json:"name"`
}

func (h *Handler) saveTemplate(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	res, err := h.sess.SaveTemplate(req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	code := http.StatusCreated
	if res.Updated {
		code = http.StatusOK
	}
	c.JSON(code, gin.H{"ok": true, "template": res.Template, "updated": res.Updated, "notice": res.Notice})
}

func (h *Handler) loadTemplate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.sess.LoadTemplate(id)
	if err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, gin.H{"template": t})
}

func (h *Handler) editTemplate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.sess.EditTemplate(id)
	if err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, gin.H{"template": t})
}

func (h *Handler) cancelEdit(c *gin.Context) {
	if err := h.sess.CancelEdit(); err != nil {
		fail(c, err)
		return
	}
	h.stateOK(c, nil)
}

func (h *Handler) cloneTemplate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	// The body is optional; an absent or blank name keeps the source name.
	var req nameReq
	_ = c.ShouldBindJSON(&req)
	t, err := h.sess.CloneTemplate(id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "template": t})
}

func (h *Handler) deleteTemplate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		t, found := h.sess.PeekTemplate(id)
		if !found {
			c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": false})
			return
		}
		c.JSON(http.StatusPreconditionRequired, gin.H{
			"ok":       false,
			"error":    "deletion requires confirm=true",
			"template": t,
		})
		return
	}
	t, deleted := h.sess.DeleteTemplate(id)
	if deleted {
		h.logger.Info("template deleted", "id", t.ID, "name", t.Name)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// --- Prompt ---

func (h *Handler) renderPrompt(c *gin.Context) {
	f, out, err := h.sess.Render(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "format": f, "content": out})
}

type panelReq struct {
	Panel string `json:"panel"`
}

func (h *Handler) selectPanel(c *gin.Context) {
	var req panelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	f, err := h.sess.SelectPanel(req.Panel)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "panel": f})
}

// downloadPrompt streams the rendered prompt as an attachment. Nothing is
// written on the server.
func (h *Handler) downloadPrompt(c *gin.Context) {
	f, out, err := h.sess.Render(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(f)))
	c.Data(http.StatusOK, export.MIMEType(f), []byte(out))
}
