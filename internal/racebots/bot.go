package racebots

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/pkg/logger"
)

const inboxSize = 64

// frame is one server notice with its payload left encoded.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type keystroke struct {
	Index int    `json:"index"`
	Char  string `json:"char"`
}

// Bot is one scripted player.
type Bot struct {
	Name string

	conn   *websocket.Conn
	inbox  chan frame
	locked atomic.Bool

	sent     atomic.Int64
	mistakes atomic.Int64
	rejected atomic.Int64

	logger logger.Logger
}

// Dial connects a bot named name to the session at baseURL.
func Dial(ctx context.Context, baseURL, name string) (*Bot, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"user_id": {name}}.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}

	b := &Bot{
		Name:   name,
		conn:   conn,
		inbox:  make(chan frame, inboxSize),
		logger: logger.Get().Named("bot").With(logger.String("bot", name)),
	}
	go b.readLoop()
	return b, nil
}

// Close disconnects the bot.
func (b *Bot) Close() error {
	return b.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (b *Bot) readLoop() {
	defer close(b.inbox)
	ctx := context.Background()
	for {
		var f frame
		if err := wsjson.Read(ctx, b.conn, &f); err != nil {
			return
		}
		switch f.Type {
		case model.NoticeText:
			b.locked.Store(false)
		case model.NoticeLockTyping:
			b.locked.Store(true)
		case model.NoticeError:
			// Errors are counted, not queued.
			b.rejected.Add(1)
			var body model.ErrorBody
			_ = json.Unmarshal(f.Data, &body)
			b.logger.Debug(ctx, "message rejected", logger.String("code", body.Code))
			continue
		}
		b.inbox <- f
	}
}

// await returns the next notice of kind, skipping any other.
func (b *Bot) await(ctx context.Context, kind string) (frame, error) {
	for {
		select {
		case <-ctx.Done():
			return frame{}, fmt.Errorf("%s waiting for %s: %w", b.Name, kind, ctx.Err())
		case f, ok := <-b.inbox:
			if !ok {
				return frame{}, fmt.Errorf("%s waiting for %s: connection closed", b.Name, kind)
			}
			if f.Type == kind {
				return f, nil
			}
		}
	}
}

// AwaitHost returns whether the session made this bot the host.
func (b *Bot) AwaitHost(ctx context.Context) (bool, error) {
	f, err := b.await(ctx, model.NoticeYouAreHost)
	if err != nil {
		return false, err
	}
	var st model.HostStatus
	if err := json.Unmarshal(f.Data, &st); err != nil {
		return false, fmt.Errorf("decode host notice: %w", err)
	}
	return st.IsHost, nil
}

// AwaitPrompt waits for the next round's text.
func (b *Bot) AwaitPrompt(ctx context.Context) (string, error) {
	f, err := b.await(ctx, model.NoticeText)
	if err != nil {
		return "", err
	}
	var prompt string
	if err := json.Unmarshal(f.Data, &prompt); err != nil {
		return "", fmt.Errorf("decode text notice: %w", err)
	}
	return prompt, nil
}

// AwaitResult waits for the round result broadcast.
func (b *Bot) AwaitResult(ctx context.Context) (model.RoundResult, error) {
	f, err := b.await(ctx, model.NoticeRounds)
	if err != nil {
		return model.RoundResult{}, err
	}
	var res model.RoundResult
	if err := json.Unmarshal(f.Data, &res); err != nil {
		return model.RoundResult{}, fmt.Errorf("decode rounds notice: %w", err)
	}
	return res, nil
}

// Restart asks the session for a new round. Only the host may.
func (b *Bot) Restart(ctx context.Context) error {
	return b.send(ctx, "restart", nil)
}

// Race types prompt with mistakes at errorRate and then submits. Typing
// stops early once the round is locked.
func (b *Bot) Race(ctx context.Context, prompt string, errorRate float64, delay time.Duration, rng *rand.Rand) error {
	index := 0
	for _, want := range prompt {
		if b.locked.Load() {
			break
		}
		char := want
		if rng.Float64() < errorRate {
			char = wrongRune(want)
			b.mistakes.Add(1)
		}
		if err := b.send(ctx, "typed_char", keystroke{Index: index, Char: string(char)}); err != nil {
			return err
		}
		b.sent.Add(1)
		index++

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if !b.locked.Load() {
		if err := b.send(ctx, "finished_typing", nil); err != nil {
			return err
		}
	}
	return b.send(ctx, "finish", nil)
}

func (b *Bot) send(ctx context.Context, kind string, data any) error {
	msg := map[string]any{"type": kind}
	if data != nil {
		msg["data"] = data
	}
	if err := wsjson.Write(ctx, b.conn, msg); err != nil {
		return fmt.Errorf("%s send %s: %w", b.Name, kind, err)
	}
	return nil
}

func wrongRune(r rune) rune {
	if r == '#' {
		return '*'
	}
	return '#'
}
