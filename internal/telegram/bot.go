package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cookplanner/internal/config"
	"cookplanner/internal/metrics"
	"cookplanner/internal/planner"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shared"
	"cookplanner/internal/shopping"
	"cookplanner/internal/webimport"
)

const defaultPlanOptions = 2

// Bot serves the family chat: plan options, shopping lists, catalog
// browsing and recipe imports from URLs.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.Config
	planner      *planner.Planner
	planRepo     *planner.Repository
	recipeRepo   *recipe.Repository
	shoppingGen  *shopping.Generator
	consolidator *shopping.Consolidator
	importer     *webimport.Importer
	metricsStore *metrics.Store
}

// NewBot initializes the Telegram bot and registers the webhook.
func NewBot(
	cfg *config.Config,
	dinnerPlanner *planner.Planner,
	planRepo *planner.Repository,
	recipeRepo *recipe.Repository,
	shoppingGen *shopping.Generator,
	consolidator *shopping.Consolidator,
	importer *webimport.Importer,
	metricsStore *metrics.Store,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          api,
		cfg:          cfg,
		planner:      dinnerPlanner,
		planRepo:     planRepo,
		recipeRepo:   recipeRepo,
		shoppingGen:  shoppingGen,
		consolidator: consolidator,
		importer:     importer,
		metricsStore: metricsStore,
	}, nil
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

	if update.CallbackQuery != nil {
		if update.CallbackQuery.From.ID != b.cfg.TelegramAllowUserID {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	if update.Message.From.ID != b.cfg.TelegramAllowUserID {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)",
			update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/plan"):
		b.handlePlanRequest(msg)
	case strings.HasPrefix(text, "/shopping"):
		b.handleShoppingRequest(msg)
	case strings.HasPrefix(text, "/recipes"):
		b.handleRecipesRequest(msg)
	case text == "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleImportRequest(msg)
	default:
		help := "Commands:\n" +
			"/plan [days] [preferences] - generate dinner plan options\n" +
			"/shopping <id,id,...> - shopping list for recipes\n" +
			"/recipes [tag] - browse the catalog\n" +
			"Send a recipe URL to import it."
		b.send(tgbotapi.NewMessage(msg.Chat.ID, help))
	}
}

// handlePlanRequest generates plan options and offers them as inline
// buttons so the chosen one feeds future planning.
func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.sendStatus(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Choosing recipes for your week)")
	if !ok {
		return
	}

	numDays, preferences := parsePlanArgs(strings.TrimPrefix(msg.Text, "/plan"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	req := planner.Request{
		UserID:      strconv.FormatInt(msg.From.ID, 10),
		NumDays:     numDays,
		Servings:    2,
		Preferences: preferences,
	}
	result, err := b.planner.CreatePlanOptions(ctx, req, defaultPlanOptions)
	if result != nil {
		b.recordMetas(ctx, result.Meta)
	}
	if err != nil {
		b.editError(msg.Chat.ID, sentMsg.MessageID, "generating plan", err)
		return
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, formatPlanOptions(result.Plans))
	edit.ParseMode = "Markdown"

	var buttons []tgbotapi.InlineKeyboardButton
	for i := range result.Plans {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Choose option %d", i+1),
			fmt.Sprintf("choose|%d|%d", result.RequestID, i),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	edit.ReplyMarkup = &keyboard
	b.send(edit)
}

// handleCallbackQuery records the chosen plan option and replies with its
// shopping list.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	parts := strings.Split(query.Data, "|")
	if len(parts) != 3 || parts[0] != "choose" {
		return
	}
	requestID, err1 := strconv.ParseInt(parts[1], 10, 64)
	optionIndex, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return
	}

	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := b.planRepo.UpdateChosenOption(ctx, requestID, optionIndex); err != nil {
		log.Printf("Failed to record chosen option: %v", err)
		return
	}

	// The button may belong to an older /plan message, so load the request
	// it carries rather than the user's latest one.
	stored, err := b.planRepo.Get(ctx, requestID)
	if err != nil {
		log.Printf("Failed to reload chosen plan: %v", err)
		return
	}
	if stored == nil {
		b.send(tgbotapi.NewMessage(query.Message.Chat.ID, "That plan is gone. Run /plan for a fresh one."))
		return
	}
	var chosen *planner.DinnerPlan
	for _, opt := range stored.Options {
		if opt.OptionIndex == optionIndex {
			plan := opt.Plan
			chosen = &plan
		}
	}
	if chosen == nil {
		return
	}

	confirm := tgbotapi.NewMessage(query.Message.Chat.ID,
		fmt.Sprintf("✅ Option %d it is. Building your shopping list...", optionIndex+1))
	b.send(confirm)

	b.sendShoppingList(ctx, query.Message.Chat.ID, chosen.RecipeIDs(), nil)
}

// handleShoppingRequest builds a shopping list for explicit recipe IDs,
// e.g. "/shopping 3,7,12".
func (b *Bot) handleShoppingRequest(msg *tgbotapi.Message) {
	args := strings.TrimSpace(strings.TrimPrefix(msg.Text, "/shopping"))
	if args == "" {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Usage: /shopping 3,7,12"))
		return
	}

	var ids []int64
	for _, part := range strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' }) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Not a recipe ID: %s", part)))
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	b.sendShoppingList(ctx, msg.Chat.ID, ids, nil)
}

func (b *Bot) sendShoppingList(ctx context.Context, chatID int64, ids []int64, scaleServings map[int64]int) {
	list, err := b.shoppingGen.FromRecipeIDs(ctx, ids, scaleServings)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Error building shopping list: %v", err)))
		return
	}
	if list.Len() == 0 {
		b.send(tgbotapi.NewMessage(chatID, "No ingredients found for those recipes."))
		return
	}

	text, meta, err := b.consolidator.Consolidate(ctx, list)
	if err != nil {
		// Fall back to the mechanical list when the LLM is unavailable.
		log.Printf("Consolidation failed, sending raw list: %v", err)
		text = list.Format()
	} else {
		b.recordMetas(ctx, []shared.CallMeta{meta})
	}

	reply := tgbotapi.NewMessage(chatID, "🛒 *Shopping List*\n\n"+text)
	reply.ParseMode = "Markdown"
	b.send(reply)
}

func (b *Bot) handleRecipesRequest(msg *tgbotapi.Message) {
	tag := strings.TrimSpace(strings.TrimPrefix(msg.Text, "/recipes"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recipes, err := b.recipeRepo.List(ctx, tag, 20)
	if err != nil {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("❌ Error listing recipes: %v", err)))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, formatRecipeList(recipes, tag))
	reply.ParseMode = "Markdown"
	b.send(reply)
}

func (b *Bot) handleImportRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.sendStatus(msg.Chat.ID, "✂️ *Importing recipe...*")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	id, extract, err := b.importer.ImportURL(ctx, msg.Text)
	if err != nil {
		b.editError(msg.Chat.ID, sentMsg.MessageID, "importing recipe", err)
		return
	}

	finalText := fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*ID:* %d", extract.TitleEN, id)
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.send(edit)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DataDir)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	reply := tgbotapi.NewMessage(chatID, sb.String())
	reply.ParseMode = "Markdown"
	b.send(reply)
}

func (b *Bot) recordMetas(ctx context.Context, metas []shared.CallMeta) {
	for _, m := range metas {
		if err := b.metricsStore.RecordMeta(ctx, m); err != nil {
			log.Printf("Failed to record metrics: %v", err)
		}
	}
}

func (b *Bot) sendStatus(chatID int64, text string) (tgbotapi.Message, bool) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = "Markdown"
	sent, err := b.api.Send(reply)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (b *Bot) editError(chatID int64, messageID int, action string, err error) {
	log.Printf("Error %s: %v", action, err)
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	edit := tgbotapi.NewEditMessageText(chatID, messageID,
		fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr))
	edit.ParseMode = "Markdown"
	b.send(edit)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

// parsePlanArgs reads an optional leading day count out of the /plan
// arguments, e.g. "/plan 5 vegetarian" plans 5 days of vegetarian dinners.
func parsePlanArgs(args string) (int, string) {
	numDays := 7
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 && n <= 14 {
			numDays = n
			fields = fields[1:]
		}
	}
	return numDays, strings.Join(fields, " ")
}

func formatPlanOptions(plans []planner.DinnerPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Dinner Plan Options*\n")

	for i, plan := range plans {
		fmt.Fprintf(&sb, "\n*Option %d*\n", i+1)
		for _, d := range plan.Dinners {
			fmt.Fprintf(&sb, "%s: %s\n", d.Day, d.RecipeTitle)
		}
		if plan.Reasoning != "" {
			fmt.Fprintf(&sb, "_%s_\n", plan.Reasoning)
		}
	}
	return sb.String()
}

func formatRecipeList(recipes []recipe.Recipe, tag string) string {
	if len(recipes) == 0 {
		if tag != "" {
			return fmt.Sprintf("No recipes tagged '%s'.", tag)
		}
		return "No recipes yet. Sync and extract your cookbooks first."
	}

	var sb strings.Builder
	if tag != "" {
		fmt.Fprintf(&sb, "📖 *Recipes tagged '%s'*\n\n", tag)
	} else {
		sb.WriteString("📖 *Recipes*\n\n")
	}
	for _, r := range recipes {
		fmt.Fprintf(&sb, "• *%d*: %s", r.ID, r.TitleEN)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, " _(%s)_", strings.Join(r.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
