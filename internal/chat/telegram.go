// Package chat connects the coffee room on Telegram to the command dispatcher
// and delivers announcements back into that room.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"coffeebot/internal/dispatcher"
	"coffeebot/internal/logger"
	"coffeebot/internal/models"
	"coffeebot/internal/utils"
)

const (
	TextReady       = "🔔 Coffee should be ready! ☕"
	TextBrewStarted = "☕⏲️"

	sendAttempts   = 3
	sendRetryDelay = time.Second
)

var ErrNoRoom = errors.New("chat room not configured")

// Handler is the dispatcher side of the chat transport.
type Handler interface {
	HandleChat(ctx context.Context, ev models.ChatEvent) (dispatcher.Reply, bool)
}

// Sender is the part of the Telegram client used to talk back.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SetMessageReaction(ctx context.Context, params *bot.SetMessageReactionParams) (bool, error)
}

type Config struct {
	Token         string
	RoomID        string
	RatePerSecond int
}

// Telegram is a long-polling chat transport.
type Telegram struct {
	bot     *bot.Bot
	sender  Sender
	handler Handler
	roomID  string
	limiter *rate.Limiter
	log     *logger.Logger
}

// New connects to the Bot API. The handler receives every text message.
func New(cfg Config, h Handler, log *logger.Logger) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	t := newTelegram(nil, h, cfg, log)
	b, err := bot.New(cfg.Token, bot.WithDefaultHandler(t.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	t.bot = b
	t.sender = b
	return t, nil
}

func newTelegram(sender Sender, h Handler, cfg Config, log *logger.Logger) *Telegram {
	if log == nil {
		log = logger.Nop()
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Telegram{
		sender:  sender,
		handler: h,
		roomID:  strings.TrimSpace(cfg.RoomID),
		limiter: rate.NewLimiter(rate.Limit(float64(perSecond)), perSecond),
		log:     log,
	}
}

// Run polls for updates until ctx is cancelled.
func (t *Telegram) Run(ctx context.Context) {
	t.log.Infow("chat_started", "room_id", t.roomID)
	t.bot.Start(ctx)
	t.log.Infow("chat_stopped")
}

func (t *Telegram) onUpdate(ctx context.Context, _ *bot.Bot, u *tgmodels.Update) {
	ev, ok := ToChatEvent(u)
	if !ok {
		return
	}
	reply, ok := t.handler.HandleChat(ctx, ev)
	if !ok {
		return
	}
	if err := t.Respond(ctx, ev, reply); err != nil {
		t.log.Warnw("chat_reply_failed", "room_id", ev.RoomID, "event_id", ev.EventID, "err", err)
	}
}

// ToChatEvent validates an update at the transport boundary. Only text
// messages with a chat, a sender and a date are accepted.
func ToChatEvent(u *tgmodels.Update) (models.ChatEvent, bool) {
	if u == nil || u.Message == nil {
		return models.ChatEvent{}, false
	}
	m := u.Message
	if m.Text == "" || m.Date == 0 || m.ID == 0 || m.From == nil {
		return models.ChatEvent{}, false
	}
	if m.From.IsBot {
		return models.ChatEvent{}, false
	}
	return models.ChatEvent{
		RoomID:          strconv.FormatInt(m.Chat.ID, 10),
		SenderID:        strconv.FormatInt(m.From.ID, 10),
		Body:            m.Text,
		OriginTimestamp: time.Unix(int64(m.Date), 0).UTC(),
		EventID:         strconv.Itoa(m.ID),
	}, true
}

// Respond sends the reply text and the reactions to the triggering message.
// Reactions are cosmetic; their failures are only logged.
func (t *Telegram) Respond(ctx context.Context, ev models.ChatEvent, reply dispatcher.Reply) error {
	msgID, err := strconv.Atoi(ev.EventID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", ev.EventID, err)
	}
	chatID := chatIDOf(ev.RoomID)

	for _, emoji := range reply.Reactions {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("telegram rate limit: %w", err)
		}
		_, err := t.sender.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
			ChatID:    chatID,
			MessageID: msgID,
			Reaction: []tgmodels.ReactionType{{
				Type: tgmodels.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &tgmodels.ReactionTypeEmoji{
					Type:  tgmodels.ReactionTypeTypeEmoji,
					Emoji: emoji,
				},
			}},
		})
		if err != nil {
			t.log.Infow("chat_reaction_failed", "emoji", emoji, "err", err)
		}
	}

	if reply.Text == "" {
		return nil
	}
	return t.send(ctx, chatID, reply.Text)
}

// Announce posts an announcement into the configured room.
func (t *Telegram) Announce(ctx context.Context, a models.Announcement) error {
	if t.roomID == "" {
		return ErrNoRoom
	}
	return t.send(ctx, chatIDOf(t.roomID), AnnouncementText(a))
}

// AnnouncementText is the room message for an announcement.
func AnnouncementText(a models.Announcement) string {
	if a.Kind == models.AnnounceBrewStarted {
		return TextBrewStarted
	}
	return TextReady
}

func (t *Telegram) send(ctx context.Context, chatID any, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}
	return utils.Retry(ctx, t.log, sendAttempts, sendRetryDelay, func() error {
		if _, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		}); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %v: %w", chatID, err)
		}
		t.log.Infow("chat_sent", "chat_id", chatID, "text", text)
		return nil
	})
}

// chatIDOf returns a numeric chat id when possible, else the raw "@channel" form.
func chatIDOf(room string) any {
	if id, err := strconv.ParseInt(room, 10, 64); err == nil {
		return id
	}
	return room
}
