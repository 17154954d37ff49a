// Package discordbot is the Discord front end of the faucet: it posts the
// faucet message, opens the wallet modal and replies with the outcome.
package discordbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"golang.org/x/sync/errgroup"

	"libdb.so/fogo-faucet/internal/faucet"
)

// DefaultTimeout bounds the handling of one request.
const DefaultTimeout = 30 * time.Second

// Handler is implemented by *faucet.Faucet.
type Handler interface {
	Handle(ctx context.Context, req faucet.Request) faucet.Notification
}

var _ Handler = (*faucet.Faucet)(nil)

// Client is the part of the Discord API the bot calls. *state.State
// implements it.
type Client interface {
	RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error
	EditInteractionResponse(appID discord.AppID, token string, data api.EditInteractionResponseData) (*discord.Message, error)
	Roles(guildID discord.GuildID) ([]discord.Role, error)
	SendMessageComplex(channelID discord.ChannelID, data api.SendMessageData) (*discord.Message, error)
}

var _ Client = (*state.State)(nil)

// Config configures a Bot.
type Config struct {
	ChannelID discord.ChannelID
	Variant   Variant
	Terms     Terms
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Bot serves the faucet in one channel.
type Bot struct {
	client  Client
	handler Handler
	cfg     Config
	wg      sync.WaitGroup
	// posted is only touched by the Run loop.
	posted bool
}

// New creates a Bot.
func New(client Client, handler Handler, cfg Config) *Bot {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Variant.ButtonID == "" {
		cfg.Variant = MainVariant
	}
	return &Bot{client: client, handler: handler, cfg: cfg}
}

// Post sends the faucet message to the bot's channel.
func (b *Bot) Post() (*discord.Message, error) {
	return Post(b.client, b.cfg.ChannelID, b.cfg.Variant, b.cfg.Terms)
}

// Post sends the faucet message of variant to channelID.
func Post(client Client, channelID discord.ChannelID, variant Variant, terms Terms) (*discord.Message, error) {
	msg, err := client.SendMessageComplex(channelID, variant.FaucetMessage(terms, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("send faucet message to %v: %w", channelID, err)
	}
	return msg, nil
}

// Run connects s to the gateway and serves until ctx is done. The faucet
// message is posted the first time the bot becomes ready. Later READY events
// from reconnects do not post it again.
func Run(ctx context.Context, s *state.State, b *Bot) error {
	s.AddIntents(gateway.IntentGuilds)

	readyCh := make(chan *gateway.ReadyEvent)
	interactionCh := make(chan *gateway.InteractionCreateEvent)

	rmReady := s.AddHandler(readyCh)
	defer rmReady()
	rmInteraction := s.AddHandler(interactionCh)
	defer rmInteraction()

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		defer b.wg.Wait()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case ev := <-readyCh:
				b.onReady(ev)

			case ev := <-interactionCh:
				b.Dispatch(ctx, &ev.InteractionEvent)
			}
		}
	})

	errg.Go(func() error {
		b.cfg.Logger.Debug("Bot is now connecting to Discord.")
		return s.Connect(ctx)
	})

	return errg.Wait()
}

func (b *Bot) onReady(ev *gateway.ReadyEvent) {
	if b.posted {
		b.cfg.Logger.Info(
			"This bot has reconnected. The faucet message is already posted.",
			"bot_id", ev.User.ID)
		return
	}

	b.cfg.Logger.Info(
		"This bot is online. It is posting the faucet message.",
		"bot_id", ev.User.ID,
		"bot_name", ev.User.Tag(),
		"channel_id", b.cfg.ChannelID)

	if _, err := b.Post(); err != nil {
		b.cfg.Logger.Error(
			"Bot has failed to post the faucet message.",
			"channel_id", b.cfg.ChannelID,
			"err", err)
		return
	}
	b.posted = true
}

// Dispatch handles ev on its own goroutine.
func (b *Bot) Dispatch(ctx context.Context, ev *discord.InteractionEvent) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.HandleInteraction(ctx, ev)
	}()
}

// Wait blocks until every dispatched interaction is handled.
func (b *Bot) Wait() { b.wg.Wait() }

// HandleInteraction handles a button click or modal submission. Interactions
// outside of the bot's channel are ignored.
func (b *Bot) HandleInteraction(ctx context.Context, ev *discord.InteractionEvent) {
	if ev.ChannelID != b.cfg.ChannelID {
		return
	}

	logger := b.cfg.Logger.With("interaction_id", ev.ID)

	defer func() {
		if v := recover(); v != nil {
			logger.Error(
				"Bot has panicked while handling an interaction.",
				"panic", v)
			b.respond(ev, faucet.UnexpectedError())
		}
	}()

	switch data := ev.Data.(type) {
	case *discord.ButtonInteraction:
		if data.CustomID != b.cfg.Variant.ButtonID {
			return
		}
		if err := b.client.RespondInteraction(ev.ID, ev.Token, b.cfg.Variant.WalletModal()); err != nil {
			logger.Error(
				"Bot has failed to open the wallet modal.",
				"err", err)
		}

	case *discord.ModalInteraction:
		if data.CustomID != b.cfg.Variant.ModalID {
			return
		}
		b.handleModal(ctx, logger, ev, data)
	}
}

func (b *Bot) handleModal(ctx context.Context, logger *slog.Logger, ev *discord.InteractionEvent, data *discord.ModalInteraction) {
	// Transfers can take longer than the few seconds Discord waits for a
	// reply, so the reply is deferred and edited afterwards.
	deferred := api.InteractionResponse{
		Type: api.DeferredMessageInteractionWithSource,
		Data: &api.InteractionResponseData{Flags: discord.EphemeralMessage},
	}
	if err := b.client.RespondInteraction(ev.ID, ev.Token, deferred); err != nil {
		logger.Error(
			"Bot has failed to acknowledge the wallet modal.",
			"err", err)
		return
	}

	req, err := b.request(ev, data)
	if err != nil {
		logger.Error(
			"Bot has failed to build the request from the interaction.",
			"err", err)
		b.edit(logger, ev, faucet.Unavailable())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	logger.Info(
		"Bot has received a token request.",
		"user_id", req.RequesterID,
		"user_tag", req.RequesterTag,
		"wallet_address", req.WalletAddress)

	b.edit(logger, ev, b.handler.Handle(ctx, req))
}

func (b *Bot) request(ev *discord.InteractionEvent, data *discord.ModalInteraction) (faucet.Request, error) {
	var req faucet.Request

	sender := ev.Sender()
	if sender == nil {
		return req, fmt.Errorf("interaction has no sender")
	}
	req.RequesterID = sender.ID.String()
	req.RequesterTag = sender.Tag()
	req.WalletAddress = walletAddress(data)

	if ev.Member != nil && len(ev.Member.RoleIDs) > 0 {
		roles, err := b.client.Roles(ev.GuildID)
		if err != nil {
			return req, fmt.Errorf("list roles of %v: %w", ev.GuildID, err)
		}
		for _, role := range roles {
			for _, id := range ev.Member.RoleIDs {
				if role.ID == id {
					req.RoleNames = append(req.RoleNames, role.Name)
				}
			}
		}
	}

	return req, nil
}

func walletAddress(data *discord.ModalInteraction) string {
	input, ok := data.Components.Find(WalletInputID).(*discord.TextInputComponent)
	if !ok {
		return ""
	}
	return strings.TrimSpace(input.Value)
}

func (b *Bot) edit(logger *slog.Logger, ev *discord.InteractionEvent, n faucet.Notification) {
	embeds := []discord.Embed{NotificationEmbed(n, time.Now())}
	if _, err := b.client.EditInteractionResponse(ev.AppID, ev.Token, api.EditInteractionResponseData{
		Embeds: &embeds,
	}); err != nil {
		logger.Error(
			"Bot has failed to deliver the reply.",
			"title", n.Title,
			"err", err)
	}
}

// respond replies to an interaction that has not been acknowledged yet. If it
// already was, the reply is edited instead.
func (b *Bot) respond(ev *discord.InteractionEvent, n faucet.Notification) {
	embeds := []discord.Embed{NotificationEmbed(n, time.Now())}
	err := b.client.RespondInteraction(ev.ID, ev.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Embeds: &embeds,
			Flags:  discord.EphemeralMessage,
		},
	})
	if err != nil {
		b.edit(b.cfg.Logger, ev, n)
	}
}
