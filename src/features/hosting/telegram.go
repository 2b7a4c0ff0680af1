package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/src/features/config"
	"finsight/src/features/stats"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot answers stats queries over Telegram. Allowed telegram
// usernames are mapped to host user ids in the configuration.
type TelegramBot struct {
	bot          *tgbotapi.BotAPI
	config       *config.Manager
	statsService *stats.Service
	updates      tgbotapi.UpdatesChannel
	stopChan     chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(cfg *config.Manager, statsService *stats.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := bot.GetUpdatesChan(updateConfig)

	return &TelegramBot{
		bot:          bot,
		config:       cfg,
		statsService: statsService,
		updates:      updates,
		stopChan:     make(chan struct{}),
	}, nil
}

// Start begins listening for Telegram updates.
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			return
		}
	}
}

// Stop gracefully stops the bot.
func (t *TelegramBot) Stop() {
	close(t.stopChan)
}

// handleMessage processes incoming messages.
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	userID, ok := t.resolveUser(message.From.UserName)
	if !ok {
		slog.Warn("Unauthorized telegram user", "username", message.From.UserName, "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return
	}

	if !message.IsCommand() {
		t.sendMessage(chatID, "Try /mystats or /topartists")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch message.Command() {
	case "start", "help":
		t.sendMessage(chatID, "Commands:\n/mystats [year] — your listening stats\n/topartists [year] — your most played artists")
	case "mystats":
		t.handleMyStats(ctx, chatID, userID, message.CommandArguments())
	case "topartists":
		t.handleTopArtists(ctx, chatID, userID, message.CommandArguments())
	default:
		t.sendMessage(chatID, "Unknown command, try /help")
	}
}

// resolveUser maps a telegram username to a host user id via the config.
func (t *TelegramBot) resolveUser(username string) (string, bool) {
	userID, ok := t.config.Get().Telegram.Users[username]
	return userID, ok && userID != ""
}

func (t *TelegramBot) handleMyStats(ctx context.Context, chatID int64, userID, args string) {
	year := parseYearArg(args)

	result, err := t.statsService.GetUserYearStats(ctx, userID, year)
	if err != nil {
		slog.Error("Telegram mystats failed", "userId", userID, "year", year, "error", err)
		t.sendMessage(chatID, "Failed to load your stats, try again later")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎧 Your %d in review\n\n", result.Year)
	fmt.Fprintf(&sb, "Songs played: %d\n", result.TotalSongsPlayed)
	fmt.Fprintf(&sb, "Minutes listened: %d\n", result.TotalMinutesListened)
	if len(result.TopArtists) > 0 {
		fmt.Fprintf(&sb, "\nTop artist: %s (%d plays)\n", result.TopArtists[0].ArtistName, result.TopArtists[0].PlayCount)
	}
	if len(result.TopGenres) > 0 {
		fmt.Fprintf(&sb, "Top genre: %s\n", result.TopGenres[0])
	}
	t.sendMessage(chatID, sb.String())
}

func (t *TelegramBot) handleTopArtists(ctx context.Context, chatID int64, userID, args string) {
	var year *int
	if args != "" {
		y := parseYearArg(args)
		year = &y
	}

	artists, err := t.statsService.GetUserArtistsWithStats(ctx, userID, year)
	if err != nil {
		slog.Error("Telegram topartists failed", "userId", userID, "error", err)
		t.sendMessage(chatID, "Failed to load your artists, try again later")
		return
	}
	if len(artists) == 0 {
		t.sendMessage(chatID, "No listening activity recorded yet")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎤 Your top artists\n\n")
	for i, artist := range artists {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s — %d plays\n", i+1, artist.ArtistName, artist.PlayCount)
	}
	t.sendMessage(chatID, sb.String())
}

// parseYearArg parses an optional year argument, defaulting to the current
// UTC year.
func parseYearArg(args string) int {
	args = strings.TrimSpace(args)
	if args == "" {
		return time.Now().UTC().Year()
	}
	var year int
	if _, err := fmt.Sscanf(args, "%d", &year); err != nil || year < 1970 || year > 9999 {
		return time.Now().UTC().Year()
	}
	return year
}

func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send telegram message", "chat_id", chatID, "error", err)
	}
}
