package discordbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/shopspring/decimal"

	"libdb.so/fogo-faucet/internal/faucet"
)

// WalletInputID is the custom ID of the wallet address text input.
const WalletInputID discord.ComponentID = "wallet_address"

const (
	colorMain    discord.Color = 0x0099FF
	colorTest    discord.Color = 0xFFA500
	colorSuccess discord.Color = 0x00FF00
	colorFailure discord.Color = 0xFF0000
)

// Variant is one flavor of the faucet: the real one or the test one that
// never transfers.
type Variant struct {
	Name     string
	ButtonID discord.ComponentID
	ModalID  discord.ComponentID

	title      string
	modalTitle string
	color      discord.Color
	button     string
	emoji      string
	style      discord.ButtonComponentStyle
	footer     string
}

var (
	// MainVariant sends real tokens.
	MainVariant = Variant{
		Name:       "main",
		ButtonID:   "request_tokens",
		ModalID:    "wallet_modal",
		title:      "🎉 FOGO(Native) Faucet",
		modalTitle: "Request FOGO(Native) Tokens",
		color:      colorMain,
		button:     "Request FOGO Tokens",
		emoji:      "🎁",
		style:      discord.PrimaryButtonStyle(),
		footer:     "Powered by Fogo Network",
	}
	// TestVariant simulates transfers.
	TestVariant = Variant{
		Name:       "test",
		ButtonID:   "test_request_tokens",
		ModalID:    "test_wallet_modal",
		title:      "🧪 Test FOGO(Native) Faucet",
		modalTitle: "Test FOGO(Native) Token Request",
		color:      colorTest,
		button:     "Test Request FOGO Tokens",
		emoji:      "🧪",
		style:      discord.SecondaryButtonStyle(),
		footer:     "TEST MODE - No real transfers",
	}
)

// VariantByName returns the variant called name.
func VariantByName(name string) (Variant, bool) {
	switch strings.ToLower(name) {
	case MainVariant.Name:
		return MainVariant, true
	case TestVariant.Name:
		return TestVariant, true
	default:
		return Variant{}, false
	}
}

// Terms are the numbers shown in the faucet post.
type Terms struct {
	Amount   decimal.Decimal
	Cooldown time.Duration
}

func (t Terms) cooldownText() string {
	hours := int(t.Cooldown.Round(time.Hour) / time.Hour)
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// FaucetEmbed builds the embed of the faucet post.
func (v Variant) FaucetEmbed(terms Terms, now time.Time) discord.Embed {
	amount := terms.Amount.String()
	cooldown := terms.cooldownText()

	var desc string
	amountField := amount + " FOGO(Native)"

	if v.Name == TestVariant.Name {
		desc = "Welcome to the **TEST** FOGO(Native) Faucet!\n\n" +
			"**How it works:**\n" +
			"• Click the button below to test token requests\n" +
			"• Enter your Fogo wallet address\n" +
			"• Simulate receiving " + amount + " FOGO(Native) tokens\n" +
			"• One test request per " + cooldown + "\n\n" +
			"**⚠️ This is a TEST - No real tokens are sent!**"
		amountField += " (Test)"
	} else {
		desc = "Welcome to the FOGO(Native) Faucet!\n\n" +
			"**How it works:**\n" +
			"• Click the button below to request tokens\n" +
			"• Enter your Fogo wallet address\n" +
			"• Receive " + amount + " FOGO(Native) tokens\n" +
			"• One request per " + cooldown + "\n\n" +
			"**Requirements:**\n" +
			"• Valid Solana wallet address\n" +
			"• Wallet must not already have " + amount + "+ FOGO tokens\n" +
			"• " + cooldown + " cooldown between requests"
	}

	return discord.Embed{
		Title:       v.title,
		Description: desc,
		Color:       v.color,
		Fields: []discord.EmbedField{
			{Name: "💰 Token Amount", Value: amountField, Inline: true},
			{Name: "⏰ Cooldown", Value: cooldown, Inline: true},
			{Name: "🌐 Network", Value: "Fogo Testnet", Inline: true},
		},
		Footer:    &discord.EmbedFooter{Text: v.footer},
		Timestamp: discord.NewTimestamp(now),
	}
}

// FaucetMessage builds the faucet post with its request button.
func (v Variant) FaucetMessage(terms Terms, now time.Time) api.SendMessageData {
	return api.SendMessageData{
		Embeds: []discord.Embed{v.FaucetEmbed(terms, now)},
		Components: discord.Components(
			&discord.ButtonComponent{
				Style:    v.style,
				CustomID: v.ButtonID,
				Label:    v.button,
				Emoji:    &discord.ComponentEmoji{Name: v.emoji},
			},
		),
	}
}

// WalletModal builds the modal asking for a wallet address.
func (v Variant) WalletModal() api.InteractionResponse {
	return api.InteractionResponse{
		Type: api.ModalResponse,
		Data: &api.InteractionResponseData{
			CustomID: option.NewNullableString(string(v.ModalID)),
			Title:    option.NewNullableString(v.modalTitle),
			Components: discord.ComponentsPtr(
				&discord.TextInputComponent{
					CustomID:     WalletInputID,
					Style:        discord.TextInputShortStyle,
					Label:        "Your Fogo Wallet Address",
					Placeholder:  "Enter your Solana wallet address...",
					Required:     true,
					LengthLimits: [2]int{32, 44},
				},
			),
		},
	}
}

// NotificationEmbed renders a faucet notification.
func NotificationEmbed(n faucet.Notification, now time.Time) discord.Embed {
	color := colorFailure
	if n.Kind == faucet.Success {
		color = colorSuccess
	}
	return discord.Embed{
		Title:       n.Title,
		Description: n.Description,
		Color:       color,
		Timestamp:   discord.NewTimestamp(now),
	}
}
