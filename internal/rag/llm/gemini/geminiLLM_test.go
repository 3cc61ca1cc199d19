package gemini

import (
	"testing"

	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"google.golang.org/genai"
)

func TestToContentsMapsRoles(t *testing.T) {
	contents := toContents(llm.Prompt{
		History: []chatModel.Message{
			{Role: chatModel.RoleUser, Content: "q1"},
			{Role: chatModel.RoleAssistant, Content: "a1"},
		},
		User: "q2",
	})

	want := []struct {
		role genai.Role
		text string
	}{
		{genai.RoleUser, "q1"},
		{genai.RoleModel, "a1"},
		{genai.RoleUser, "q2"},
	}
	if len(contents) != len(want) {
		t.Fatalf("got %d contents", len(contents))
	}
	for i, w := range want {
		if contents[i].Role != string(w.role) || contents[i].Parts[0].Text != w.text {
			t.Errorf("content %d = %s/%s, want %s/%s", i, contents[i].Role, contents[i].Parts[0].Text, w.role, w.text)
		}
	}
}

func TestSupports(t *testing.T) {
	c := &llmClient{models: map[string]bool{"gemini-2.5-flash": true}}
	if !c.Supports("gemini-2.5-flash") || c.Supports("gpt-4o") {
		t.Fatal("Supports mismatch")
	}
}
