package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	policyService "github.com/subonly/gate/internal/modules/policy/service"
	settingsDomain "github.com/subonly/gate/internal/modules/settings/domain"
	settingsService "github.com/subonly/gate/internal/modules/settings/service"
	userService "github.com/subonly/gate/internal/modules/user/service"
	"github.com/subonly/gate/internal/shared/config"
)

// Handler turns bot commands into gate management operations: the same
// toggle / channel / schedule actions the HTTP API exposes, for users who
// prefer chat.
type Handler struct {
	cfg      *config.Config
	settings *settingsService.Service
	engine   *policyService.Engine
	users    *userService.Service
}

// New creates a new Telegram handler.
func New(cfg *config.Config, settings *settingsService.Service, engine *policyService.Engine, users *userService.Service) *Handler {
	return &Handler{
		cfg:      cfg,
		settings: settings,
		engine:   engine,
		users:    users,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/toggle", bot.MatchTypeExact, h.handleToggle)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addchannel", bot.MatchTypePrefix, h.handleAddChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/removechannel", bot.MatchTypePrefix, h.handleRemoveChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/listchannels", bot.MatchTypeExact, h.handleListChannels)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, h.handleSchedule)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/check", bot.MatchTypePrefix, h.handleCheck)
}

// HandleUpdate is the default handler for anything that is not a registered
// command. It records the contact and points the sender at /help.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	h.users.Touch(msg.From.ID, msg.From.Username)

	if strings.HasPrefix(msg.Text, "/") {
		h.reply(ctx, b, msg, "Unknown command. Use /help to see what I can do.")
	}
}

// authorize replies with a refusal and returns false when the sender is not
// on the allowed-users list. It also records the contact.
func (h *Handler) authorize(ctx context.Context, b *bot.Bot, msg *models.Message) bool {
	if msg == nil || msg.From == nil {
		return false
	}

	h.users.Touch(msg.From.ID, msg.From.Username)

	if !h.users.IsAuthorized(msg.From.ID, h.cfg.AllowedUsers) {
		slog.Warn("Unauthorized bot command", "user_id", msg.From.ID)
		h.reply(ctx, b, msg, "You are not authorized to manage this gate.")
		return false
	}
	return true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}
	h.reply(ctx, b, update.Message,
		"Subonly gate is running. Use /help to see what I can do.")
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}
	h.reply(ctx, b, update.Message, strings.Join([]string{
		"/status - gate state and allow-list size",
		"/toggle - flip the master switch",
		"/addchannel @handle - allow a channel",
		"/removechannel @handle - remove a channel",
		"/listchannels - show the allow-list",
		"/schedule - show schedule rules",
		"/check <url> - ask the gate about a URL",
	}, "\n"))
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	settings, err := h.settings.Get()
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}

	state := "disabled"
	if settings.Enabled {
		state = "enabled"
	}
	active := "inactive"
	if h.engine.IsBlockingActive(settings, time.Now()) {
		active = "active"
	}

	scheduleNote := "no schedule, gating whenever enabled"
	if settings.Schedule != nil && settings.Schedule.Enabled {
		scheduleNote = fmt.Sprintf("schedule on, %d rule(s)", len(settings.Schedule.Rules))
	}

	h.reply(ctx, b, update.Message, fmt.Sprintf(
		"Gate %s, blocking currently %s.\n%d channel(s) on the allow-list.\n%s",
		state, active, len(settings.Channels), scheduleNote))
}

func (h *Handler) handleToggle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	settings, err := h.settings.Toggle()
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}

	if settings.Enabled {
		h.reply(ctx, b, update.Message, "Gating enabled.")
	} else {
		h.reply(ctx, b, update.Message, "Gating disabled. Everything is allowed.")
	}
}

func (h *Handler) handleAddChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	arg := commandArgument(update.Message.Text)
	if arg == "" {
		h.reply(ctx, b, update.Message, "Usage: /addchannel @handle")
		return
	}

	channel := settingsDomain.Channel{Handle: arg}
	if strings.HasPrefix(arg, "UC") && !strings.HasPrefix(arg, "@") {
		channel = settingsDomain.Channel{ID: arg}
	}

	settings, err := h.settings.AddChannel(ctx, channel)
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}

	added := settings.Channels[len(settings.Channels)-1]
	h.reply(ctx, b, update.Message, fmt.Sprintf("Added %s. Allow-list now has %d channel(s).", added.Name, len(settings.Channels)))
}

func (h *Handler) handleRemoveChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	arg := commandArgument(update.Message.Text)
	if arg == "" {
		h.reply(ctx, b, update.Message, "Usage: /removechannel @handle")
		return
	}

	settings, err := h.settings.RemoveChannel(strings.TrimPrefix(arg, "@"))
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}
	h.reply(ctx, b, update.Message, fmt.Sprintf("Removed. Allow-list now has %d channel(s).", len(settings.Channels)))
}

func (h *Handler) handleListChannels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	settings, err := h.settings.Get()
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}
	if len(settings.Channels) == 0 {
		h.reply(ctx, b, update.Message, "The allow-list is empty. Everything on the platform is blocked while gating is active.")
		return
	}

	lines := lo.Map(settings.Channels, func(ch settingsDomain.Channel, i int) string {
		key := ch.Handle
		if key == "" {
			key = ch.AnyID()
		}
		return fmt.Sprintf("%d. %s (%s)", i+1, ch.Name, key)
	})
	h.reply(ctx, b, update.Message, strings.Join(lines, "\n"))
}

func (h *Handler) handleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	settings, err := h.settings.Get()
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}

	sched := settings.Schedule
	if sched == nil || len(sched.Rules) == 0 {
		h.reply(ctx, b, update.Message, "No schedule rules. Gating is active whenever the master switch is on.")
		return
	}

	state := "off"
	if sched.Enabled {
		state = "on"
	}
	lines := []string{fmt.Sprintf("Schedule is %s:", state)}
	for i, rule := range sched.Rules {
		days := lo.Map(rule.Days, func(d int, _ int) string { return dayName(d) })
		lines = append(lines, fmt.Sprintf("%d. %s %s-%s", i+1, strings.Join(days, ","), rule.StartTime, rule.EndTime))
	}
	h.reply(ctx, b, update.Message, strings.Join(lines, "\n"))
}

func (h *Handler) handleCheck(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update.Message) {
		return
	}

	arg := commandArgument(update.Message.Text)
	if arg == "" {
		h.reply(ctx, b, update.Message, "Usage: /check <url>")
		return
	}

	settings, err := h.settings.Get()
	if err != nil {
		h.replyError(ctx, b, update.Message, err)
		return
	}

	verdict := h.engine.Decide(settings, arg, time.Now())
	h.reply(ctx, b, update.Message, fmt.Sprintf("%s (%s)", verdict.Decision, verdict.Page))
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	})
	if err != nil {
		slog.Error("Failed to send Telegram reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (h *Handler) replyError(ctx context.Context, b *bot.Bot, msg *models.Message, err error) {
	slog.Error("Bot command failed", "error", err)
	h.reply(ctx, b, msg, fmt.Sprintf("That did not work: %v", err))
}

// commandArgument returns everything after the command word.
func commandArgument(text string) string {
	_, arg, _ := strings.Cut(text, " ")
	return strings.TrimSpace(arg)
}

func dayName(d int) string {
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if d < 0 || d >= len(names) {
		return strconv.Itoa(d)
	}
	return names[d]
}
