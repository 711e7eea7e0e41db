package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRenderRoom(t *testing.T) {
	tests := map[string]struct {
		view RoomView
		exp  string
	}{
		"with connections": {
			view: RoomView{
				Name:        "Library",
				Description: "Dusty shelves line the walls.",
				Connections: []string{"entrance", "vault"},
			},
			exp: "Library\nDusty shelves line the walls.\nPassages lead to: entrance, vault",
		},
		"dead end": {
			view: RoomView{
				Name:        "Vault",
				Description: "A sealed chamber.",
			},
			exp: "Vault\nA sealed chamber.",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := RenderRoom(tc.view)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", got, tc.exp)
		})
	}
}

func TestRenderRoomWraps(t *testing.T) {
	got, err := RenderRoom(RoomView{
		Name:        "Hall",
		Description: strings.Repeat("very long description ", 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, line := range strings.Split(got, "\n") {
		if len(line) > DefaultWidth {
			t.Errorf("line longer than %d: %q", DefaultWidth, line)
		}
	}
}

func TestRenderQuestion(t *testing.T) {
	got, err := RenderQuestion(QuestionView{
		Prompt:     "Which came first?",
		Category:   "ancient history",
		Difficulty: "easy",
		Answers:    []string{"The chicken", "The egg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "[Ancient History / Easy] Which came first?\n  1. The chicken\n  2. The egg"
	testutil.AssertEqual(t, "output", got, exp)
}

func TestRenderQuestionNoCategory(t *testing.T) {
	got, err := RenderQuestion(QuestionView{
		Prompt:  "Which?",
		Answers: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "Which?\n  1. a\n  2. b"
	testutil.AssertEqual(t, "output", got, exp)
}

func TestExpandTemplateError(t *testing.T) {
	if _, err := ExpandTemplate("{{ .Broken", nil); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"lower":    {in: "ancient history", exp: "Ancient History"},
		"already":  {in: "Easy", exp: "Easy"},
		"empty":    {in: "", exp: ""},
		"all caps": {in: "SCIENCE", exp: "Science"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "title", TitleCase(tc.in), tc.exp)
		})
	}
}
