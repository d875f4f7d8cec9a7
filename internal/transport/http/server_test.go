package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func getJSON(t *testing.T, url string) (int, apiEnvelope) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode, env
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer(t)
	status, env := getJSON(t, server.URL+"/healthz")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("unexpected health response %d %+v", status, env)
	}
}

func TestDifficultiesEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	status, env := getJSON(t, server.URL+"/api/difficulties")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var views []difficultyView
	if err := json.Unmarshal(env.Data, &views); err != nil {
		t.Fatalf("decode difficulties: %v", err)
	}
	if len(views) != 3 || views[0].Name != "facile" || views[2].TimeBudgetMs != 5000 {
		t.Fatalf("unexpected difficulties %+v", views)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, _, service := newTestServer(t)
	ctx := context.Background()

	for _, tc := range []struct {
		initials string
		answers  int
	}{{"aaa", 1}, {"bbb", 2}} {
		session, err := service.StartSessionByName(ctx, "default", "facile")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		for i := 0; ; i++ {
			q, ok := session.NextQuestion()
			if !ok {
				break
			}
			letter := q.Correct()
			if i >= tc.answers {
				letter = ""
			}
			if _, err := session.RecordAnswer(q, letter, time.Second); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
		if _, err := service.SaveResult(ctx, session, tc.initials); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	status, env := getJSON(t, server.URL+"/api/leaderboard?limit=1")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var lb leaderboardPayload
	if err := json.Unmarshal(env.Data, &lb); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].Initials != "BBB" {
		t.Fatalf("unexpected leaderboard %+v", lb)
	}

	for _, q := range []string{"0", "-3", "ten"} {
		status, env := getJSON(t, server.URL+"/api/leaderboard?limit="+q)
		if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "invalid_limit" {
			t.Fatalf("limit=%s: unexpected response %d %+v", q, status, env)
		}
	}
}
