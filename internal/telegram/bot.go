// Package telegram is the webhook bot surface over the meal planner. It
// renders the plan grid and the composed shopping list as Markdown and
// routes commands to the core operations.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mealweek/internal/app"
	"mealweek/internal/config"
	"mealweek/internal/plan"
)

// Bot wraps the Telegram API and the application core.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram bot and sets the webhook.
func NewBot(cfg *config.Config, application *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{api: api, app: application, cfg: cfg}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}
	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "http://"), strings.HasPrefix(text, "https://"):
		b.handleClip(msg.Chat.ID, text)
	case text == "/recipes":
		b.reply(msg.Chat.ID, b.renderRecipes())
	case text == "/plan":
		b.reply(msg.Chat.ID, b.renderPlan())
	case strings.HasPrefix(text, "/set "):
		b.handleSet(msg.Chat.ID, strings.TrimPrefix(text, "/set "))
	case text == "/clear":
		b.handleClear(msg.Chat.ID)
	case text == "/shop":
		b.reply(msg.Chat.ID, b.renderShoppingList())
	default:
		b.reply(msg.Chat.ID, "Commands:\n/recipes — list recipes\n/plan — show the week\n/set <day> <meal> <recipe> — assign a meal\n/clear — clear the plan\n/shop — shopping list\nSend a recipe URL to import it.")
	}
}

// handleSet parses "/set Monday Lunch Tomato Soup". The recipe name may
// contain spaces; "-" unassigns the slot.
func (b *Bot) handleSet(chatID int64, args string) {
	parts := strings.SplitN(args, " ", 3)
	if len(parts) < 3 {
		b.reply(chatID, "Usage: /set <day> <meal> <recipe>")
		return
	}
	day, meal, recipe := plan.Day(parts[0]), plan.Meal(parts[1]), parts[2]

	if err := b.app.Grid.Set(day, meal, recipe); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ %s %s → %s", day, meal, recipe))
}

func (b *Bot) handleClear(chatID int64) {
	if err := b.app.Grid.ClearAll(); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v", err))
		return
	}
	b.reply(chatID, "🔄 Plan cleared.")
}

func (b *Bot) handleClip(chatID int64, url string) {
	b.reply(chatID, "✂️ *Clipping recipe...*")

	lines, err := b.app.ClipRecipe(context.Background(), url)
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		b.reply(chatID, fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr))
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ *Recipe saved:* %s (%d ingredients)", lines[0].Recipe, len(lines)))
}

func (b *Bot) renderRecipes() string {
	names := b.app.Catalog.RecipeNames()
	if len(names) == 0 {
		return "No recipes yet. Send a recipe URL to import one."
	}
	var sb strings.Builder
	sb.WriteString("🍽 *Recipes*\n\n")
	for _, name := range names {
		sb.WriteString("• " + name + "\n")
	}
	return sb.String()
}

func (b *Bot) renderPlan() string {
	var sb strings.Builder
	sb.WriteString("📅 *Weekly Meal Plan*\n\n")
	for _, day := range b.app.Grid.Days() {
		sb.WriteString(fmt.Sprintf("*%s*\n", day))
		for _, meal := range b.app.Grid.Meals() {
			recipe := b.app.Grid.Get(day, meal)
			if recipe == plan.Unassigned {
				recipe = "—"
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", meal, recipe))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) renderShoppingList() string {
	items, report := b.app.ShoppingList()
	if len(items) == 0 {
		return "🛒 Nothing to buy. Assign some meals first."
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	for _, item := range items {
		sb.WriteString("• " + item.Ingredient)
		if item.Quantity != "" {
			sb.WriteString(" — " + item.Quantity)
			if item.Unit != "" {
				sb.WriteString(" " + item.Unit)
			}
		}
		sb.WriteString("\n")
	}
	if report.CoercionFailures > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ %d ingredient(s) have non-numeric quantities and count as 0.", report.CoercionFailures))
	}
	return sb.String()
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
