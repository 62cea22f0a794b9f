package server

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/queue"
	"github.com/jonathan/resume-matcher/internal/storage"
	"github.com/jonathan/resume-matcher/internal/types"
)

func TestHandleEvaluate(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
		"resume_text":     testResume,
		"job_description": testJD,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[EvaluateResponse](t, w)
	require.NotNil(t, resp.Evaluation)
	assert.Equal(t, 66.67, resp.Match.MatchPercentage)
	assert.Equal(t, []string{"docker", "python"}, resp.Match.MatchedSkills)
	assert.Equal(t, []string{"sql"}, resp.Match.MissingSkills)
	assert.Equal(t, "tfidf", resp.Semantic.Method)
	assert.Nil(t, resp.HistoryID)
	assert.Empty(t, resp.Warning)
}

func TestHandleEvaluate_JobURL(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
		"resume_text": testResume,
		"job_url":     "https://jobs.example.com/1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"sql"}, decodeBody[EvaluateResponse](t, w).Match.MissingSkills)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
		"resume_text": testResume,
		"job_url":     "https://jobs.example.com/missing",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleEvaluate_JobURLInternalAddress(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<main>INTERNAL ADMIN PAGE: docker kubernetes postgresql terraform sql python</main>"))
	}))
	defer internal.Close()

	s := newTestServer(t, func(c *Config) { c.Fetcher = nil })

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
		"resume_text": testResume,
		"job_url":     internal.URL,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decodeBody[errorBody](t, w)
	assert.Equal(t, types.KindInput, body.Kind)
	assert.Contains(t, body.Error, "blocked address")
	assert.NotContains(t, w.Body.String(), "sql")
}

func TestHandleEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantKind   types.ErrorKind
		wantError  string
	}{
		{
			name:       "malformed JSON",
			body:       `{"resume_text": `,
			wantStatus: http.StatusBadRequest,
			wantKind:   types.KindInput,
			wantError:  "invalid JSON",
		},
		{
			name:       "missing resume",
			body:       map[string]any{"job_description": testJD},
			wantStatus: http.StatusBadRequest,
			wantKind:   types.KindInput,
			wantError:  "resume_text",
		},
		{
			name:       "missing job description and url",
			body:       map[string]any{"resume_text": testResume},
			wantStatus: http.StatusBadRequest,
			wantKind:   types.KindInput,
			wantError:  "job_description",
		},
		{
			name:       "save without email",
			body:       map[string]any{"resume_text": testResume, "job_description": testJD, "save": true},
			wantStatus: http.StatusBadRequest,
			wantKind:   types.KindInput,
			wantError:  "user_email",
		},
		{
			name:       "input too large",
			body:       map[string]any{"resume_text": strings.Repeat("a", 1<<20+1), "job_description": testJD},
			wantStatus: http.StatusBadRequest,
			wantKind:   types.KindInput,
			wantError:  "byte limit",
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeBody[errorBody](t, w)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

func TestHandleEvaluate_Save(t *testing.T) {
	history := &fakeHistory{}
	s := newTestServer(t, func(c *Config) { c.History = history })

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
		"resume_text":     testResume,
		"job_description": testJD,
		"user_email":      "dev@example.com",
		"save":            true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[EvaluateResponse](t, w)
	require.NotNil(t, resp.HistoryID)
	require.Len(t, history.entries, 1)
	assert.Equal(t, *resp.HistoryID, history.entries[0].ID)
	assert.Equal(t, 66.67, history.entries[0].MatchScore)
	assert.Equal(t, []string{"sql"}, history.entries[0].MissingSkills)
}

func TestHandleEvaluate_SaveWarnings(t *testing.T) {
	tests := []struct {
		name    string
		history HistoryStore
		warning string
	}{
		{name: "no database", history: nil, warning: "no database configured"},
		{name: "store failure", history: &fakeHistory{err: errors.New("connection refused")}, warning: "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *Config) { c.History = tt.history })
			w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate", map[string]any{
				"resume_text":     testResume,
				"job_description": testJD,
				"user_email":      "dev@example.com",
				"save":            true,
			})
			require.Equal(t, http.StatusOK, w.Code)
			resp := decodeBody[EvaluateResponse](t, w)
			assert.Nil(t, resp.HistoryID)
			assert.Contains(t, resp.Warning, tt.warning)
		})
	}
}

// readSSE returns the event names and data lines of a stream, in order.
func readSSE(t *testing.T, body string) (events []string, data []string) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			events = append(events, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	require.NoError(t, scanner.Err())
	return events, data
}

func TestHandleEvaluateStream(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate/stream", map[string]any{
		"resume_text":     testResume,
		"job_description": testJD,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events, data := readSSE(t, w.Body.String())
	require.Len(t, events, 3)
	assert.ElementsMatch(t, []string{"step", "step"}, events[:2])
	assert.Equal(t, "complete", events[2])
	assert.Contains(t, data[2], `"match_percentage":66.67`)

	steps := data[0] + data[1]
	assert.Contains(t, steps, `"step":"skills"`)
	assert.Contains(t, steps, `"step":"semantic"`)
}

func TestHandleEvaluateStream_ValidationIsJSON(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate/stream", map[string]any{"job_description": testJD})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestHandleEvaluateStream_ErrorEvent(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluate/stream", map[string]any{
		"resume_text":     strings.Repeat("a", 1<<20+1),
		"job_description": testJD,
	})
	require.Equal(t, http.StatusOK, w.Code)
	events, data := readSSE(t, w.Body.String())
	require.Equal(t, []string{"error"}, events)
	assert.Contains(t, data[0], `"kind":"input"`)
}

func TestHandleCompare(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/compare", map[string]any{
		"resume_a":        "Python developer",
		"resume_b":        "Python and SQL developer",
		"job_description": testJD,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cmp := decodeBody[types.Comparison](t, w)
	require.NotNil(t, cmp.A)
	require.NotNil(t, cmp.B)
	assert.Equal(t, 33.33, cmp.A.Match.MatchPercentage)
	assert.Equal(t, 66.67, cmp.B.Match.MatchPercentage)
	assert.Equal(t, 33.34, cmp.MatchDelta)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/compare", map[string]any{"resume_a": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExtractSkills(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/skills/extract", map[string]any{"text": "SQL, Docker and PYTHON"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string][]string](t, w)
	assert.Equal(t, []string{"docker", "python", "sql"}, resp["skills"])

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/skills/extract", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleVocabulary(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/vocabulary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[struct {
		Version string   `json:"version"`
		Size    int      `json:"size"`
		Skills  []string `json:"skills"`
	}](t, w)
	assert.Equal(t, "test-v1", resp.Version)
	assert.Equal(t, 3, resp.Size)
	assert.Equal(t, []string{"python", "sql", "docker"}, resp.Skills)
}

func TestHandleEvaluateUpload(t *testing.T) {
	s := newTestServer(t)

	w := doMultipart(t, s.Handler(), "/api/evaluate/upload",
		map[string]string{"job_description": testJD},
		map[string][2]string{"resume": {"resume.txt", testResume}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 66.67, decodeBody[EvaluateResponse](t, w).Match.MatchPercentage)
}

func TestHandleEvaluateUpload_JobFile(t *testing.T) {
	s := newTestServer(t)

	w := doMultipart(t, s.Handler(), "/api/evaluate/upload", nil,
		map[string][2]string{
			"resume":   {"resume.md", testResume},
			"job_file": {"job.txt", testJD},
		})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"sql"}, decodeBody[EvaluateResponse](t, w).Match.MissingSkills)
}

func TestHandleEvaluateUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		files      map[string][2]string
		wantStatus int
	}{
		{
			name:       "no resume",
			fields:     map[string]string{"job_description": testJD},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported file type",
			fields:     map[string]string{"job_description": testJD},
			files:      map[string][2]string{"resume": {"resume.png", "\x89PNG\r\n\x1a\n\x00\x00"}},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "corrupt pdf",
			fields:     map[string]string{"job_description": testJD},
			files:      map[string][2]string{"resume": {"resume.pdf", "%PDF-1.4 garbage"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad save flag",
			fields:     map[string]string{"job_description": testJD, "save": "maybe"},
			files:      map[string][2]string{"resume": {"resume.txt", testResume}},
			wantStatus: http.StatusBadRequest,
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doMultipart(t, s.Handler(), "/api/evaluate/upload", tt.fields, tt.files)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleEvaluateUpload_TooLarge(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.MaxUploadBytes = 1024 })
	w := doMultipart(t, s.Handler(), "/api/evaluate/upload",
		map[string]string{"job_description": testJD},
		map[string][2]string{"resume": {"resume.txt", strings.Repeat("python ", 1000)}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleEvaluateAsync(t *testing.T) {
	publisher := &fakePublisher{}
	objects := storage.NewMemory()
	s := newTestServer(t, func(c *Config) {
		c.Publisher = publisher
		c.Objects = objects
		c.RequestQueue = "resume.evaluate"
	})

	w := doMultipart(t, s.Handler(), "/api/evaluate/async",
		map[string]string{"job_url": "https://jobs.example.com/1", "user_email": "dev@example.com", "save": "true"},
		map[string][2]string{"resume": {"../My Resume.txt", testResume}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	resp := decodeBody[map[string]string](t, w)
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "resume.evaluate", publisher.queue)

	msg, ok := publisher.messages[0].(queue.Request)
	require.True(t, ok)
	assert.Equal(t, resp["id"], msg.ID)
	assert.Equal(t, testJD, msg.JobDescription)
	assert.Empty(t, msg.ResumeText)
	assert.Equal(t, "resumes/"+msg.ID+"/My_Resume.txt", msg.ResumeObjectKey)
	assert.True(t, msg.Save)

	obj, err := objects.Get(context.Background(), msg.ResumeObjectKey)
	require.NoError(t, err)
	assert.Equal(t, testResume, string(obj.Data))
}

func TestHandleEvaluateAsync_InlineText(t *testing.T) {
	publisher := &fakePublisher{}
	s := newTestServer(t, func(c *Config) { c.Publisher = publisher })

	w := doMultipart(t, s.Handler(), "/api/evaluate/async",
		map[string]string{"resume_text": testResume, "job_description": testJD}, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	msg := publisher.messages[0].(queue.Request)
	assert.Equal(t, testResume, msg.ResumeText)
	assert.Empty(t, msg.ResumeObjectKey)
}

func TestHandleEvaluateAsync_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		files  map[string][2]string
	}{
		{name: "no queue", mutate: func(*Config) {}},
		{
			name:   "file without object storage",
			mutate: func(c *Config) { c.Publisher = &fakePublisher{} },
			files:  map[string][2]string{"resume": {"resume.txt", testResume}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.mutate)
			w := doMultipart(t, s.Handler(), "/api/evaluate/async",
				map[string]string{"resume_text": testResume, "job_description": testJD}, tt.files)
			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Equal(t, types.KindConfiguration, decodeBody[errorBody](t, w).Kind)
		})
	}
}

func TestHandleEvaluateAsync_PublishFailure(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.Publisher = &fakePublisher{err: errors.New("channel closed")} })
	w := doMultipart(t, s.Handler(), "/api/evaluate/async",
		map[string]string{"resume_text": testResume, "job_description": testJD}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	history := &fakeHistory{}
	s := newTestServer(t, func(c *Config) { c.History = history })
	h := s.Handler()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, missing := range [][]string{{"sql", "aws"}, {"sql"}, {"docker", "sql"}} {
		_, err := history.SaveHistory(context.Background(), types.HistoryEntry{
			UserEmail:     "dev@example.com",
			MatchScore:    float64(40 + 10*i),
			MissingSkills: missing,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	t.Run("save", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/history", map[string]any{
			"user_email":     "other@example.com",
			"match_score":    75.5,
			"semantic_score": 40,
			"missing_skills": []string{"go"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "other@example.com", decodeBody[types.HistoryEntry](t, w).UserEmail)

		w = doJSON(t, h, http.MethodPost, "/api/history", map[string]any{"user_email": "nope", "match_score": 120})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/history/dev@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[struct {
			Count   int                  `json:"count"`
			Entries []types.HistoryEntry `json:"entries"`
		}](t, w)
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, 60.0, resp.Entries[0].MatchScore)
	})

	t.Run("missing skills", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/history/dev@example.com/missing-skills?limit=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[struct {
			Scans  int                `json:"scans"`
			Skills []types.SkillCount `json:"skills"`
		}](t, w)
		assert.Equal(t, 3, resp.Scans)
		assert.Equal(t, []types.SkillCount{{Skill: "sql", Count: 3}, {Skill: "aws", Count: 1}}, resp.Skills)

		w = doJSON(t, h, http.MethodGet, "/api/history/dev@example.com/missing-skills?limit=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("trend", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/history/dev@example.com/trend", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[map[string][]types.TrendPoint](t, w)
		require.Len(t, resp["points"], 3)
		assert.Equal(t, 40.0, resp["points"][0].MatchScore)
		assert.Equal(t, 60.0, resp["points"][2].MatchScore)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/history/not-an-email", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, "/api/history/dev@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 3, decodeBody[map[string]int](t, w)["deleted"])

		w = doJSON(t, h, http.MethodGet, "/api/history/dev@example.com", nil)
		assert.EqualValues(t, 0, decodeBody[map[string]any](t, w)["count"])
	})
}

func TestHistoryEndpoints_NoDatabase(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/history"},
		{http.MethodGet, "/api/history/dev@example.com"},
		{http.MethodGet, "/api/history/dev@example.com/missing-skills"},
		{http.MethodGet, "/api/history/dev@example.com/trend"},
		{http.MethodDelete, "/api/history/dev@example.com"},
	} {
		w := doJSON(t, s.Handler(), tc.method, tc.path, map[string]any{"user_email": "dev@example.com"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)
	}
}
