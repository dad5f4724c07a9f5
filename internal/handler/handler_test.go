package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docforge/internal/domain"

	"github.com/gorilla/mux"
)

// Mock config used by handler package tests.
type mockConfig struct{}

func (mockConfig) GetServerPort() string   { return "8080" }
func (mockConfig) GetLogLevel() string     { return "info" }
func (mockConfig) GetTemplatePath() string { return "./templates" }
func (mockConfig) GetMaxSpecSize() int64   { return 1 << 20 }
func (mockConfig) GetMaxBatchWorkers() int { return 2 }
func (mockConfig) GetSupabaseURL() string  { return "" }
func (mockConfig) GetSupabaseKey() string  { return "" }
func (mockConfig) GetAssetBucket() string  { return "assets" }

type mockGenerator struct {
	out      *domain.Output
	err      error
	lastOpts domain.GenerateOptions
	lastSrc  []byte
	lastFmt  domain.SourceFormat
}

func (m *mockGenerator) GenerateSpec(_ context.Context, _ *domain.Specification, opts domain.GenerateOptions) (*domain.Output, error) {
	m.lastOpts = opts
	return m.out, m.err
}

func (m *mockGenerator) GenerateSource(_ context.Context, source []byte, format domain.SourceFormat, opts domain.GenerateOptions) (*domain.Output, error) {
	m.lastSrc = source
	m.lastFmt = format
	m.lastOpts = opts
	return m.out, m.err
}

type mockInspector struct {
	info *domain.DocumentInfo
	err  error
}

func (m *mockInspector) Inspect([]byte) (*domain.DocumentInfo, error) { return m.info, m.err }

type mockRewriter struct {
	out   []byte
	count int
	err   error
	vars  map[string]string
}

func (m *mockRewriter) Replace(_ []byte, vars map[string]string) ([]byte, int, error) {
	m.vars = vars
	return m.out, m.count, m.err
}

type mockBatch struct {
	result *domain.BatchResult
	err    error
}

func (m *mockBatch) Run(context.Context, []domain.BatchItem) (*domain.BatchResult, error) {
	return m.result, m.err
}

func testOutput() *domain.Output {
	return &domain.Output{
		Filename:         "report.docx",
		ContentType:      contentTypeDocx,
		Data:             []byte("doc-bytes"),
		OpenPlaceholders: []string{"CLIENT", "DATE"},
	}
}

func TestGenerate_Success(t *testing.T) {
	gen := &mockGenerator{out: testOutput()}
	h := NewGenerateHandler(gen, mockConfig{}, NewMockHandlerLogger())

	body := `{"title":"Report","sections":[]}`
	req := httptest.NewRequest(http.MethodPost, "/generate?format=docx&var=NAME=Ada&var=CITY=Oslo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report.docx"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get("X-Open-Placeholders"); got != "CLIENT,DATE" {
		t.Errorf("unexpected open placeholders header %q", got)
	}
	if rec.Body.String() != "doc-bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if gen.lastFmt != domain.FormatJSON {
		t.Errorf("expected JSON parse, got %s", gen.lastFmt)
	}
	if gen.lastOpts.Variables["NAME"] != "Ada" || gen.lastOpts.Variables["CITY"] != "Oslo" {
		t.Errorf("var params not parsed: %v", gen.lastOpts.Variables)
	}
	if gen.lastOpts.Format != "docx" {
		t.Errorf("format query not passed: %q", gen.lastOpts.Format)
	}
}

func TestGenerate_YAMLContentType(t *testing.T) {
	gen := &mockGenerator{out: testOutput()}
	h := NewGenerateHandler(gen, mockConfig{}, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("title: X"))
	req.Header.Set("Content-Type", "application/x-yaml")
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if gen.lastFmt != domain.FormatYAML {
		t.Errorf("expected YAML parse, got %s", gen.lastFmt)
	}
}

func TestGenerate_EmptyBody(t *testing.T) {
	h := NewGenerateHandler(&mockGenerator{}, mockConfig{}, NewMockHandlerLogger())
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(""))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGenerate_ValidationErrorStatus(t *testing.T) {
	gen := &mockGenerator{err: &domain.SpecValidationError{Path: "sections[0].type", Message: "missing"}}
	h := NewGenerateHandler(gen, mockConfig{}, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("validation failures should map to 400, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
}

func TestGenerate_CompilationErrorStatus(t *testing.T) {
	gen := &mockGenerator{err: &domain.CompilationError{Section: 2, Field: "data[1]", Message: "bad row"}}
	h := NewGenerateHandler(gen, mockConfig{}, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("compilation failures should map to 422, got %d", rec.Code)
	}
}

func multipartBody(t *testing.T, files, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".bin")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		fmt.Fprint(fw, content)
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("writing field: %v", err)
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestGenerateWithTemplate(t *testing.T) {
	gen := &mockGenerator{out: testOutput()}
	h := NewGenerateHandler(gen, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t,
		map[string]string{"template": "base-docx-bytes", "spec": `{"title":"X"}`},
		nil)
	req := httptest.NewRequest(http.MethodPost, "/generate-with-template", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.GenerateWithTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(gen.lastOpts.BaseDocument) != "base-docx-bytes" {
		t.Error("uploaded template not passed as base document")
	}
	if gen.lastFmt != domain.FormatJSON {
		t.Errorf("JSON-looking spec should sniff as JSON, got %s", gen.lastFmt)
	}
}

func TestGenerateWithTemplate_MissingTemplate(t *testing.T) {
	h := NewGenerateHandler(&mockGenerator{}, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t, nil, map[string]string{"spec": "title: X"})
	req := httptest.NewRequest(http.MethodPost, "/generate-with-template", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.GenerateWithTemplate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestInspect(t *testing.T) {
	ins := &mockInspector{info: &domain.DocumentInfo{Title: "X", Paragraphs: 3}}
	h := NewDocumentHandler(ins, &mockRewriter{}, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t, map[string]string{"file": "docx-bytes"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/inspect", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Inspect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info domain.DocumentInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if info.Title != "X" || info.Paragraphs != 3 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestInspect_MissingFile(t *testing.T) {
	h := NewDocumentHandler(&mockInspector{}, &mockRewriter{}, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t, nil, map[string]string{"other": "x"})
	req := httptest.NewRequest(http.MethodPost, "/inspect", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Inspect(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestReplace(t *testing.T) {
	rw := &mockRewriter{out: []byte("rewritten"), count: 4}
	h := NewDocumentHandler(&mockInspector{}, rw, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t,
		map[string]string{"file": "docx-bytes"},
		map[string]string{"replacements": `{"NAME":"Ada"}`})
	req := httptest.NewRequest(http.MethodPost, "/replace", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Replace(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Replacements-Made"); got != "4" {
		t.Errorf("unexpected replacement count header %q", got)
	}
	if rec.Body.String() != "rewritten" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if rw.vars["NAME"] != "Ada" {
		t.Errorf("replacements not parsed: %v", rw.vars)
	}
}

func TestReplace_BadReplacements(t *testing.T) {
	h := NewDocumentHandler(&mockInspector{}, &mockRewriter{}, mockConfig{}, NewMockHandlerLogger())

	body, ct := multipartBody(t,
		map[string]string{"file": "docx-bytes"},
		map[string]string{"replacements": "not-json"})
	req := httptest.NewRequest(http.MethodPost, "/replace", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Replace(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatchGenerate(t *testing.T) {
	batch := &mockBatch{result: &domain.BatchResult{
		Archive:   []byte("zip-bytes"),
		Succeeded: []string{"a.docx"},
		Failed:    []*domain.BatchItemError{{Filename: "b.docx", Err: fmt.Errorf("boom")}},
	}}
	h := NewBatchHandler(batch, mockConfig{}, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/batch/generate",
		strings.NewReader(`{"items":[{"spec":{"title":"A"}}]}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/zip" {
		t.Errorf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("X-Batch-Failed"); got != "1" {
		t.Errorf("unexpected failed header %q", got)
	}
	if rec.Body.String() != "zip-bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestBatchGenerate_InvalidJSON(t *testing.T) {
	h := NewBatchHandler(&mockBatch{}, mockConfig{}, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/batch/generate", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTemplateList(t *testing.T) {
	h := NewTemplateHandler(NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Templates []domain.TemplateInfo `json:"templates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(payload.Templates) == 0 {
		t.Error("template list should not be empty")
	}
}

func TestTemplateGet(t *testing.T) {
	h := NewTemplateHandler(NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/templates/report", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "report"})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var detail map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if detail["name"] != "report" || detail["margins"] != "moderate" {
		t.Errorf("unexpected detail %v", detail)
	}
}

func TestTemplateGet_Unknown(t *testing.T) {
	h := NewTemplateHandler(NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/templates/fancy", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "fancy"})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestID(r)
	})
	mw := RequestIDMiddleware(inner)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if seen != "caller-id" {
		t.Errorf("caller-supplied id not propagated, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != "caller-id" {
		t.Error("id not echoed in response header")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if seen == "" || seen == "caller-id" {
		t.Errorf("expected a generated id, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("generated id not echoed in response header")
	}
}

func TestParseVarParams(t *testing.T) {
	vars := parseVarParams([]string{"A=1", "B=x=y", "novalue", "C="})
	if vars["A"] != "1" {
		t.Errorf("unexpected A: %q", vars["A"])
	}
	// Only the first '=' splits.
	if vars["B"] != "x=y" {
		t.Errorf("unexpected B: %q", vars["B"])
	}
	if _, ok := vars["novalue"]; ok {
		t.Error("entries without '=' should be ignored")
	}
	if v, ok := vars["C"]; !ok || v != "" {
		t.Errorf("empty value should be kept, got %q ok=%v", v, ok)
	}
	if parseVarParams(nil) != nil {
		t.Error("no params should return nil")
	}
}

func TestSourceFormat(t *testing.T) {
	cases := []struct {
		ct   string
		want domain.SourceFormat
	}{
		{"application/json", domain.FormatJSON},
		{"application/x-yaml", domain.FormatYAML},
		{"text/yaml; charset=utf-8", domain.FormatYAML},
		{"application/yml", domain.FormatYAML},
		{"", domain.FormatJSON},
	}
	for _, tc := range cases {
		if got := sourceFormat(tc.ct); got != tc.want {
			t.Errorf("sourceFormat(%q) = %s, want %s", tc.ct, got, tc.want)
		}
	}
}
