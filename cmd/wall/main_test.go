package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sharewall/backend/internal/model"
)

func TestRender_OldestFirstWithImage(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, []model.Share{
		{ID: 2, Name: "Dana", Message: "line1\nline2", ImageURL: "https://img.example/a.jpg"},
		{ID: 1, Name: "Noa", Message: "hi"},
	})

	out := buf.String()
	first := strings.Index(out, "#1 Noa")
	second := strings.Index(out, "#2 Dana")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected #1 before #2, got:\n%s", out)
	}
	for _, want := range []string{"   line1\n", "   line2\n", "[image] https://img.example/a.jpg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
