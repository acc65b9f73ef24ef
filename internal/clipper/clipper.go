// Package clipper imports recipes from web pages: it fetches a URL, strips
// the page down to its text and asks an LLM to extract catalog rows.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mealweek/internal/catalog"
	"mealweek/internal/llm"
)

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// extractedRecipe is the shape the LLM is asked to return.
type extractedRecipe struct {
	Recipe      string `json:"recipe"`
	Ingredients []struct {
		Ingredient string `json:"ingredient"`
		Quantity   string `json:"quantity"`
		Unit       string `json:"unit"`
	} `json:"ingredients"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts one recipe's ingredient lines,
// ready for Catalog.ImportBulk. Quantities come back as text and are never
// trusted to be numeric.
func (c *Clipper) ClipURL(ctx context.Context, url string) ([]catalog.Line, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe name and its ingredient
list from the following page text. Return the result strictly as a JSON object
with this structure:
{
  "recipe": "Recipe Name",
  "ingredients": [
    {"ingredient": "tomato", "quantity": "200", "unit": "g"},
    {"ingredient": "salt", "quantity": "to taste", "unit": ""}
  ]
}
Keep quantities exactly as written on the page; do not convert units.
Return ONLY the raw JSON string, without markdown code blocks.

Page text:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(resp), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp)
	}
	if strings.TrimSpace(extracted.Recipe) == "" {
		return nil, fmt.Errorf("no recipe name found at %s", url)
	}

	var lines []catalog.Line
	for _, ing := range extracted.Ingredients {
		if strings.TrimSpace(ing.Ingredient) == "" {
			continue
		}
		lines = append(lines, catalog.Line{
			Recipe:     strings.TrimSpace(extracted.Recipe),
			Ingredient: strings.TrimSpace(ing.Ingredient),
			Quantity:   strings.TrimSpace(ing.Quantity),
			Unit:       strings.TrimSpace(ing.Unit),
		})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no ingredients found at %s", url)
	}
	return lines, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
