package session

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/logger"
	"github.com/HendryAvila/promptforge/internal/prompt"
	"github.com/HendryAvila/promptforge/internal/storage"
	"github.com/HendryAvila/promptforge/internal/templates"
)

type fakeClipboard struct{ text string }

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeClipboard, string) {
	t.Helper()
	dir := t.TempDir()
	cb := &fakeClipboard{}
	log := logger.Discard()
	store := templates.New(storage.NewMemorySlot(), templates.DefaultKey, log, nil)
	exp := export.NewExporter(cb, dir, log, nil)
	return New(store, exp, log, nil), cb, dir
}

func fillGoAPI(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SetField("projectDomain", "Backend"))
	require.NoError(t, s.SetField("language", "Go"))
	require.NoError(t, s.SetField("projectType", "API Service"))
	require.NoError(t, s.SetField("framework", "Gin"))
	require.NoError(t, s.SetField("packageManager", "Go Modules"))
	require.NoError(t, s.SetField("projectScale", "Large"))
}

func toggle(t *testing.T, s *Session, value string) {
	t.Helper()
	awaiting, err := s.ToggleConfigFile(value)
	require.NoError(t, err)
	require.False(t, awaiting)
}

// --- Form edits ---

func TestSession_SetFieldCascade(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)

	require.NoError(t, s.SetField("language", "Rust"))
	spec := s.Spec()
	assert.Equal(t, "Rust", spec.Language)
	assert.Empty(t, spec.Framework)
	assert.Empty(t, spec.PackageManager)
}

func TestSession_UnknownField(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.ErrorIs(t, s.SetField("color", "blue"), form.ErrUnknownField)
	_, err := s.Options("color")
	assert.ErrorIs(t, err, form.ErrUnknownField)
}

func TestSession_OtherCapture(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)

	awaiting, err := s.Select("framework", form.Other())
	require.NoError(t, err)
	assert.True(t, awaiting)

	st := s.State()
	assert.True(t, st.Awaiting)
	assert.Equal(t, form.FieldFramework, st.Pending)

	require.NoError(t, s.ConfirmOther("Chi"))
	assert.Equal(t, "Chi", s.Spec().Framework)
	assert.False(t, s.State().Awaiting)

	_, err = s.Select("framework", form.Other())
	require.NoError(t, err)
	s.CancelOther()
	assert.Equal(t, "Chi", s.Spec().Framework)
}

func TestSession_ToggleConfigFile(t *testing.T) {
	s, _, _ := newTestSession(t)
	toggle(t, s, "Dockerfile")
	toggle(t, s, "README.md")
	assert.Equal(t, []string{"Dockerfile", "README.md"}, s.Spec().ConfigFiles)

	toggle(t, s, "Dockerfile")
	assert.Equal(t, []string{"README.md"}, s.Spec().ConfigFiles)

	_, err := s.ToggleConfigFile("  ")
	assert.Error(t, err)
}

func TestSession_Options(t *testing.T) {
	s, _, _ := newTestSession(t)
	opts, err := s.Options("language")
	require.NoError(t, err)
	assert.False(t, opts.Enabled)
	assert.Empty(t, opts.Options)
	assert.NotNil(t, opts.Options)

	require.NoError(t, s.SetField("projectDomain", "Full-Stack"))
	opts, err = s.Options("language")
	require.NoError(t, err)
	assert.True(t, opts.Enabled)
	assert.True(t, opts.AllowsCustom)
	assert.Contains(t, opts.Options, "Python")

	opts, err = s.Options("projectDomain")
	require.NoError(t, err)
	assert.Equal(t, "Full-Stack", opts.Current)
	assert.False(t, opts.AllowsCustom)
}

// --- Templates ---

func TestSession_SaveCreatesAndSnapshots(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)

	res, err := s.SaveTemplate("Go API")
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, NoticeSaved, res.Notice)

	// Later edits do not reach the saved template.
	require.NoError(t, s.SetField("projectScale", "Small"))
	saved, ok := s.PeekTemplate(res.Template.ID)
	require.True(t, ok)
	assert.Equal(t, "Large", saved.Data.ProjectScale)
}

func TestSession_SaveEmptyNameChangesNothing(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.SaveTemplate("  ")
	assert.ErrorIs(t, err, templates.ErrEmptyName)
	assert.Empty(t, s.Templates())
}

func TestSession_LoadReplacesRecordWithCopy(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)
	toggle(t, s, "Dockerfile")
	res, err := s.SaveTemplate("Go API")
	require.NoError(t, err)

	s.Reset()
	_, err = s.LoadTemplate(res.Template.ID)
	require.NoError(t, err)
	assert.True(t, s.Spec().Equal(res.Template.Data))

	// Editing the loaded record leaves the template alone.
	toggle(t, s, "Makefile")
	saved, _ := s.PeekTemplate(res.Template.ID)
	assert.Equal(t, []string{"Dockerfile"}, saved.Data.ConfigFiles)

	_, err = s.LoadTemplate(999)
	assert.ErrorIs(t, err, templates.ErrNotFound)
}

func TestSession_EditModeUpdatesInPlace(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)
	res, err := s.SaveTemplate("Go API")
	require.NoError(t, err)

	s.Reset()
	_, err = s.EditTemplate(res.Template.ID)
	require.NoError(t, err)
	st := s.State()
	assert.True(t, st.IsEditing)
	assert.Equal(t, res.Template.ID, st.EditingID)

	require.NoError(t, s.SetField("projectScale", "Enterprise"))
	upd, err := s.SaveTemplate("Go API v2")
	require.NoError(t, err)
	assert.True(t, upd.Updated)
	assert.Equal(t, NoticeUpdated, upd.Notice)
	assert.Equal(t, res.Template.ID, upd.Template.ID)
	assert.Equal(t, res.Template.CreatedAt, upd.Template.CreatedAt)

	list := s.Templates()
	require.Len(t, list, 1)
	assert.Equal(t, "Go API v2", list[0].Name)
	assert.Equal(t, "Enterprise", list[0].Data.ProjectScale)
	assert.False(t, s.State().IsEditing)
}

func TestSession_CancelEdit(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.ErrorIs(t, s.CancelEdit(), ErrNotEditing)

	fillGoAPI(t, s)
	res, _ := s.SaveTemplate("a")
	_, err := s.EditTemplate(res.Template.ID)
	require.NoError(t, err)
	require.NoError(t, s.CancelEdit())

	// Saving now creates a second template.
	created, err := s.SaveTemplate("b")
	require.NoError(t, err)
	assert.False(t, created.Updated)
	assert.Len(t, s.Templates(), 2)
}

func TestSession_CloneKeepsEditMode(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)
	res, _ := s.SaveTemplate("a")
	_, err := s.EditTemplate(res.Template.ID)
	require.NoError(t, err)

	dup, err := s.CloneTemplate(res.Template.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, res.Template.ID, dup.ID)

	st := s.State()
	assert.True(t, st.IsEditing)
	assert.Equal(t, res.Template.ID, st.EditingID)
}

func TestSession_DeleteEditedTemplateLeavesEditMode(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)
	res, _ := s.SaveTemplate("a")
	_, err := s.EditTemplate(res.Template.ID)
	require.NoError(t, err)

	removed, ok := s.DeleteTemplate(res.Template.ID)
	require.True(t, ok)
	assert.Equal(t, "a", removed.Name)
	assert.False(t, s.State().IsEditing)

	_, ok = s.DeleteTemplate(res.Template.ID)
	assert.False(t, ok)
}

func TestSession_ResetLeavesEditMode(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)
	res, _ := s.SaveTemplate("a")
	_, _ = s.EditTemplate(res.Template.ID)

	s.Reset()
	st := s.State()
	assert.False(t, st.IsEditing)
	assert.True(t, st.Spec.Equal(form.ProjectSpec{ConfigFiles: []string{}}))
}

func TestSession_FindTemplate(t *testing.T) {
	s, _, _ := newTestSession(t)
	res, _ := s.SaveTemplate("Go API")

	byID, ok := s.FindTemplate(formatID(res.Template.ID))
	require.True(t, ok)
	assert.Equal(t, res.Template.ID, byID.ID)

	byName, ok := s.FindTemplate("go api")
	require.True(t, ok)
	assert.Equal(t, res.Template.ID, byName.ID)

	_, ok = s.FindTemplate("nope")
	assert.False(t, ok)
}

// --- Panels and export ---

func TestSession_RenderUsesActivePanel(t *testing.T) {
	s, _, _ := newTestSession(t)
	fillGoAPI(t, s)

	f, out, err := s.Render("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatNatural, f)
	assert.Equal(t, prompt.Document(s.Spec()), out)

	_, err = s.SelectPanel("structured")
	require.NoError(t, err)
	f, out, err = s.Render("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatStructured, f)
	want, _ := prompt.StructuredJSON(s.Spec())
	assert.Equal(t, want, out)

	_, _, err = s.Render("pdf")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)

	_, err = s.SelectPanel("pdf")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
	assert.Equal(t, export.FormatStructured, s.Panel())
}

func TestSession_RenderReflectsLatestRecord(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, first, _ := s.Render("natural")
	assert.Contains(t, first, prompt.Placeholder)

	fillGoAPI(t, s)
	_, second, _ := s.Render("natural")
	assert.Contains(t, second, "Microservices architecture")
}

func TestSession_CopyAndDownload(t *testing.T) {
	s, cb, dir := newTestSession(t)
	fillGoAPI(t, s)

	res, err := s.Export("", export.ActionCopy)
	require.NoError(t, err)
	assert.Equal(t, prompt.Document(s.Spec()), cb.text)
	assert.Equal(t, cb.text, res.Content)

	res, err = s.Export("structured", export.ActionDownload)
	require.NoError(t, err)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	want, _ := prompt.StructuredJSON(s.Spec())
	assert.Equal(t, want, string(data))
	assert.Contains(t, res.Path, dir)
}

func TestSession_ExportWithoutExporter(t *testing.T) {
	store := templates.New(storage.NewMemorySlot(), "", logger.Discard(), nil)
	s := New(store, nil, logger.Discard(), nil)
	_, err := s.Export("", export.ActionCopy)
	assert.Error(t, err)
}

func TestSession_ConcurrentEdits(t *testing.T) {
	s, _, _ := newTestSession(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.SetField("projectDomain", "Backend")
				_ = s.SetField("language", "Go")
			} else {
				_, _, _ = s.Render("")
				_ = s.State()
			}
		}(i)
	}
	wg.Wait()

	spec := s.Spec()
	assert.Equal(t, "Backend", spec.ProjectDomain)
	if spec.Language != "" {
		assert.Equal(t, "Go", spec.Language)
	}
}

func TestSession_ConfirmWithoutCapture(t *testing.T) {
	s, _, _ := newTestSession(t)
	err := s.ConfirmOther("x")
	assert.True(t, errors.Is(err, form.ErrNoCapture))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestSession_SentinelValueNeverStored(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.SetField("projectDomain", "Backend"))

	awaiting, err := s.Select("language", form.Known("Other"))
	require.NoError(t, err)
	assert.True(t, awaiting)
	assert.Empty(t, s.Spec().Language)
	s.CancelOther()

	err = s.SetField("projectDomain", "Other")
	assert.ErrorIs(t, err, form.ErrCustomNotAllowed)
	assert.Equal(t, "Backend", s.Spec().ProjectDomain)
	assert.NotContains(t, prompt.SummarySentence(s.Spec()), "other")

	awaiting, err = s.ToggleConfigFile("Other")
	require.NoError(t, err)
	assert.True(t, awaiting)
	assert.Empty(t, s.Spec().ConfigFiles)
	assert.Equal(t, form.FieldConfigFiles, s.State().Pending)

	require.NoError(t, s.ConfirmOther("renovate.json"))
	assert.Equal(t, []string{"renovate.json"}, s.Spec().ConfigFiles)
}
