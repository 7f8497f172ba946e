package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findorigin/findorigin/internal/config"
	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/internal/pipeline"
	"github.com/findorigin/findorigin/pkg/telegram"
)

type fakeAnalyzer struct {
	result   *model.AnalysisResult
	err      error
	lastText string
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (*model.AnalysisResult, error) {
	f.calls++
	f.lastText = text
	return f.result, f.err
}

type fakeUpdateHandler struct {
	err     error
	updates []*telegram.Update
}

func (f *fakeUpdateHandler) HandleUpdate(_ context.Context, update *telegram.Update) error {
	f.updates = append(f.updates, update)
	return f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Input.MinChars = 10
	cfg.Input.MaxChars = 5000
	cfg.Pipeline.TimeoutSecs = 60
	cfg.Server.Port = 8080
	return cfg
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestWebhookProbe(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/telegram", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST")
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	t.Parallel()

	handler := &fakeUpdateHandler{}
	srv := New(testConfig(), &fakeAnalyzer{}, handler)

	body := `{"update_id": 1, "message": {"message_id": 5, "chat": {"id": 42}, "text": "Илон Маск летит на Марс в 2026 году."}}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, handler.updates, 1)
	assert.Equal(t, "Илон Маск летит на Марс в 2026 году.", handler.updates[0].Message.Text)
}

func TestWebhook_HandlerFailureStillOK(t *testing.T) {
	t.Parallel()

	handler := &fakeUpdateHandler{err: assert.AnError}
	srv := New(testConfig(), &fakeAnalyzer{}, handler)

	body := `{"update_id": 1, "message": {"message_id": 5, "chat": {"id": 42}, "text": "текст"}}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestWebhook_NoMessageIgnored(t *testing.T) {
	t.Parallel()

	handler := &fakeUpdateHandler{}
	srv := New(testConfig(), &fakeAnalyzer{}, handler)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id": 1}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, handler.updates)
}

func TestWebhook_BadJSON(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{broken`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiniPage(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mini", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/analyze")
}

func postAnalyze(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_BadJSON(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := postAnalyze(t, srv, `{broken`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Неверный JSON"}`, rec.Body.String())
}

func TestAnalyze_LengthValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"too short", "мало", "Введите текст не менее 10 символов"},
		{"whitespace only", "   \n\n   ", "Введите текст не менее 10 символов"},
		{"too long", strings.Repeat("а", 5001), "Текст не должен превышать 5000 символов"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeAnalyzer{}
			srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

			body, err := json.Marshal(map[string]string{"text": tt.text})
			require.NoError(t, err)
			rec := postAnalyze(t, srv, string(body))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
			assert.Zero(t, analyzer.calls)
		})
	}
}

func TestAnalyze_NormalizesBeforeValidation(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{result: &model.AnalysisResult{Mode: model.ModeNoResults}}
	srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

	rec := postAnalyze(t, srv, `{"text": "  Илон Маск   летит на Марс.  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Илон Маск летит на Марс.", analyzer.lastText)
}

func TestAnalyze_SearchThrottled(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{err: pipeline.ErrSearchThrottled}
	srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

	rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Превышен лимит запросов к поиску")
}

func TestAnalyze_UnexpectedErrorIs500(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{err: assert.AnError}
	srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

	rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Внутренняя ошибка")
}

func TestAnalyze_Ranked(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{result: &model.AnalysisResult{
		Mode: model.ModeRanked,
		Ranking: &model.RankingResult{
			Sources: []model.RankedSource{
				{URL: "https://spacex.com", Title: "SpaceX", Confidence: model.ConfidenceHigh},
				{URL: "https://news.ru/1", Title: "Новость", Confidence: model.ConfidenceMedium},
			},
			Summary: "Заявление подтверждается официальным сайтом.",
		},
	}}
	srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

	rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "Заявление подтверждается официальным сайтом.", *resp.Summary)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "высокая", resp.Sources[0].Confidence)
	assert.Equal(t, "средняя", resp.Sources[1].Confidence)
	assert.Empty(t, resp.Message)
}

func TestAnalyze_RankedWithoutSummary(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{result: &model.AnalysisResult{
		Mode: model.ModeRanked,
		Ranking: &model.RankingResult{
			Sources: []model.RankedSource{
				{URL: "https://spacex.com", Title: "SpaceX", Confidence: model.ConfidenceLow},
			},
		},
	}}
	srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

	rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["summary"]))
}

func TestAnalyze_FallbackModes(t *testing.T) {
	t.Parallel()

	candidates := []model.CandidateSource{
		{URL: "https://news.ru/1", Title: "Новость", Category: model.CategoryNews},
		{URL: "https://spacex.com", Title: "SpaceX", Category: model.CategoryOfficial},
	}

	tests := []struct {
		name        string
		mode        model.Mode
		wantMessage string
	}{
		{"quota exhausted", model.ModeQuotaExhausted, "Квота OpenAI исчерпана. Показаны все найденные кандидаты."},
		{"ai declined", model.ModeFallback, "AI не использован. Показаны все найденные кандидаты."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeAnalyzer{result: &model.AnalysisResult{
				Mode:       tt.mode,
				Candidates: candidates,
			}}
			srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

			rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp analyzeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Nil(t, resp.Summary)
			assert.Equal(t, tt.wantMessage, resp.Message)
			require.Len(t, resp.Sources, 2)
			// Fixed category order puts official sources first.
			assert.Equal(t, "Официальные", resp.Sources[0].Confidence)
			assert.Equal(t, "https://spacex.com", resp.Sources[0].URL)
			assert.Equal(t, "Новости", resp.Sources[1].Confidence)
		})
	}
}

func TestAnalyze_EmptyModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mode        model.Mode
		wantMessage string
	}{
		{"search unconfigured", model.ModeSearchUnconfigured, "Поиск не настроен."},
		{"no results", model.ModeNoResults, "По запросу ничего не найдено."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeAnalyzer{result: &model.AnalysisResult{Mode: tt.mode}}
			srv := New(testConfig(), analyzer, &fakeUpdateHandler{})

			rec := postAnalyze(t, srv, `{"text": "Илон Маск летит на Марс."}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp analyzeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Empty(t, resp.Sources)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestAnalyze_CORSPreflight(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), &fakeAnalyzer{}, &fakeUpdateHandler{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://mini.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
