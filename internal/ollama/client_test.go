package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// tagsJSON builds a /api/tags response with the given model names.
func tagsJSON(names ...string) []byte {
	type entry struct {
		Name string `json:"name"`
	}
	type resp struct {
		Models []entry `json:"models"`
	}
	r := resp{}
	for _, n := range names {
		r.Models = append(r.Models, entry{Name: n})
	}
	b, _ := json.Marshal(r)
	return b
}

func TestIsRunning_Up(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tagsJSON("gemma3:1b"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if !c.IsRunning(context.Background()) {
		t.Error("IsRunning() = false, want true")
	}
}

func TestIsRunning_Down(t *testing.T) {
	// Point at a closed server to simulate connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL)
	if c.IsRunning(context.Background()) {
		t.Error("IsRunning() = true, want false")
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(tagsJSON("gemma3:1b", "mistral-nemo:latest"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "gemma3:1b" || models[1] != "mistral-nemo:latest" {
		t.Errorf("ListModels = %v", models)
	}
}

func TestListModels_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.ListModels(context.Background()); err == nil {
		t.Error("expected error on 500")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model   string `json:"model"`
			Prompt  string `json:"prompt"`
			Stream  bool   `json:"stream"`
			Options struct {
				Temperature float64 `json:"temperature"`
				TopP        float64 `json:"top_p"`
			} `json:"options"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "gemma3:1b" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Prompt != "Summarize hello in 5 words" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		if req.Stream {
			t.Error("stream = true, want false")
		}
		if req.Options.Temperature != 0.6 || req.Options.TopP != 0.9 {
			t.Errorf("options = %+v", req.Options)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "hi there"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Generate(context.Background(), "gemma3:1b", "Summarize hello in 5 words", Options{Temperature: 0.6, TopP: 0.9})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hi there" {
		t.Errorf("Generate = %q", got)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Generate(context.Background(), "gemma3:1b", "x", Options{}); err == nil {
		t.Error("expected error on 400")
	}
}
