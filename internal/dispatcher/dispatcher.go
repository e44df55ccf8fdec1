// Package dispatcher turns chat messages and HTTP actions into calls on the
// brew state machine and shapes the per-transport responses.
package dispatcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"coffeebot/internal/logger"
	"coffeebot/internal/metrics"
	"coffeebot/internal/models"
	"coffeebot/internal/repository"
	"coffeebot/internal/service"
)

// Chat command prefixes. Matching is case-sensitive and by prefix.
const (
	CmdCoffee = "!coffee"
	CmdReset  = "!reset"
	CmdHelp   = "!help"
	CmdFresh  = "!fresh"
	CmdBrew   = "!brew"
)

const (
	TextHelp    = "I'll let you know when I'm told coffee has been brewed! Otherwise, you can type \"!coffee\" to query how long it's been since the last brew."
	TextReset   = "I know nothing... 🤐"
	TextFailure = "Sorry, something went wrong ☹️"

	textAlreadyBrewing = "Already brewing! "

	// Telegram bots may set one reaction per message, from a fixed emoji set
	// that has neither ☕ nor ⏲️.
	ReactionBrew  = "👍"
	ReactionFresh = "👌"
)

// Reply is what the chat transport sends back for one message.
type Reply struct {
	Text      string
	Reactions []string
}

// Deps collects the collaborators of a Dispatcher.
type Deps struct {
	Coffee service.Coffee
	Store  repository.KVStore
	// RoomID, when set, restricts chat commands to one room.
	RoomID string
	// AnnounceOnStart makes HTTP brews request the brew-started announcement.
	AnnounceOnStart bool
	Metrics         metrics.Recorder
	Log             *logger.Logger
	Now             func() time.Time
}

type Dispatcher struct {
	coffee          service.Coffee
	store           repository.KVStore
	roomID          string
	announceOnStart bool
	metrics         metrics.Recorder
	log             *logger.Logger
	now             func() time.Time

	// mu makes the watermark check-and-advance atomic.
	mu sync.Mutex
}

func New(d Deps) *Dispatcher {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NoopRecorder{}
	}
	return &Dispatcher{
		coffee:          d.Coffee,
		store:           d.Store,
		roomID:          d.RoomID,
		announceOnStart: d.AnnounceOnStart,
		metrics:         d.Metrics,
		log:             d.Log,
		now:             d.Now,
	}
}

// HandleChat processes one inbound chat message. ok is false when the message
// produced no response: not a command, another room, or dropped by the watermark.
func (d *Dispatcher) HandleChat(ctx context.Context, ev models.ChatEvent) (reply Reply, ok bool) {
	body := ev.Body
	if !strings.HasPrefix(body, "!") {
		return Reply{}, false
	}
	if d.roomID != "" && ev.RoomID != d.roomID {
		d.metrics.IncDroppedCommand("foreign_room")
		d.log.Debugw("chat_foreign_room", "room_id", ev.RoomID)
		return Reply{}, false
	}

	fresh, err := d.admit(ctx, ev)
	if err != nil {
		d.log.Errorw("watermark_failed", "err", err, "event_id", ev.EventID)
		return Reply{Text: TextFailure}, true
	}
	if !fresh {
		return Reply{}, false
	}

	d.log.Infow("chat_command", "room_id", ev.RoomID, "sender", ev.SenderID, "body", body)

	switch {
	case strings.HasPrefix(body, CmdCoffee):
		d.metrics.IncCommand(string(models.SourceChat), "coffee")
		st, err := d.coffee.Query(ctx)
		if err != nil {
			return d.failed("coffee", err)
		}
		return Reply{Text: st.Description.Text}, true

	case strings.HasPrefix(body, CmdReset):
		d.metrics.IncCommand(string(models.SourceChat), "reset")
		if err := d.coffee.Reset(ctx, models.SourceChat); err != nil {
			return d.failed("reset", err)
		}
		return Reply{Text: TextReset}, true

	case strings.HasPrefix(body, CmdHelp):
		d.metrics.IncCommand(string(models.SourceChat), "help")
		return Reply{Text: TextHelp}, true

	case strings.HasPrefix(body, CmdFresh):
		d.metrics.IncCommand(string(models.SourceChat), "fresh")
		when := strings.TrimSpace(strings.TrimPrefix(body, CmdFresh))
		if _, err := d.coffee.MarkFresh(ctx, when, models.SourceChat); err != nil {
			return d.failed("fresh", err)
		}
		return Reply{Reactions: []string{ReactionFresh}}, true

	case strings.HasPrefix(body, CmdBrew):
		d.metrics.IncCommand(string(models.SourceChat), "brew")
		res, err := d.coffee.Brew(ctx, models.SourceChat, false)
		if err != nil {
			return d.failed("brew", err)
		}
		if res.Outcome == models.BrewConflict {
			desc := describe(res.ReadyAt, d.now())
			return Reply{Text: textAlreadyBrewing + desc}, true
		}
		return Reply{Reactions: []string{ReactionBrew}}, true
	}
	return Reply{}, false
}

func (d *Dispatcher) failed(cmd string, err error) (Reply, bool) {
	d.log.Errorw("chat_command_failed", "command", cmd, "err", err)
	return Reply{Text: TextFailure}, true
}
