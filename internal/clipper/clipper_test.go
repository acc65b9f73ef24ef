package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type MockTextGenerator struct {
	Response    string
	ShouldError bool
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if m.ShouldError {
		return "", fmt.Errorf("mock ai error")
	}
	return m.Response, nil
}

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>200 g flour</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	cleanText, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "200 g flour") {
		t.Error("Expected to find body content")
	}
}

func TestClipURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	t.Run("Success", func(t *testing.T) {
		aiResponse := `{"recipe": "Mock Pie", "ingredients": [
			{"ingredient": "Apple", "quantity": "5", "unit": ""},
			{"ingredient": "Sugar", "quantity": "to taste", "unit": ""}
		]}`
		c := NewClipper(&MockTextGenerator{Response: aiResponse})

		lines, err := c.ClipURL(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("ClipURL failed: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("Expected 2 lines, got %d", len(lines))
		}
		if lines[0].Recipe != "Mock Pie" || lines[0].Ingredient != "Apple" {
			t.Errorf("Unexpected first line: %+v", lines[0])
		}
		if lines[1].Quantity != "to taste" {
			t.Errorf("Expected raw quantity text to survive, got '%s'", lines[1].Quantity)
		}
	})

	t.Run("NoIngredients", func(t *testing.T) {
		c := NewClipper(&MockTextGenerator{Response: `{"recipe": "Empty", "ingredients": []}`})
		if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected error for recipe without ingredients")
		}
	})

	t.Run("BadAIResponse", func(t *testing.T) {
		c := NewClipper(&MockTextGenerator{Response: "not json"})
		if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected error for unparsable AI response")
		}
	})

	t.Run("AIError", func(t *testing.T) {
		c := NewClipper(&MockTextGenerator{ShouldError: true})
		if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected error when the AI call fails")
		}
	})
}
