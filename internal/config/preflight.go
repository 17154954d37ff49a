package config

import (
	"fmt"
	"os"
	"strings"
)

// PreflightItem is one line of the faucet bot's startup self-check.
type PreflightItem struct {
	Name   string
	Value  string
	OK     bool
	Advice string
}

// Preflight inspects the faucet bot's configuration without touching the
// network. Secret values are masked.
func (c *Config) Preflight() []PreflightItem {
	items := []PreflightItem{
		envItem("DISCORD_TOKEN", c.Discord.Token, false),
		envItem("FOGO_RPC_URL", c.Ledger.RPCURL, false),
		envItem("BOT_WALLET_PRIVATE_KEY", c.Ledger.PrivateKey, true),
		{
			Name:  "TARGET_CHANNEL_ID",
			Value: c.Discord.TargetChannelID.String(),
			OK:    c.Discord.TargetChannelID.IsValid(),
		},
	}

	dbItem := PreflightItem{Name: "DATABASE_PATH", Value: c.Store.Path, OK: true}
	switch c.Store.Driver {
	case "redis":
		dbItem = PreflightItem{Name: "REDIS_URL", Value: c.Store.RedisURL, OK: c.Store.RedisURL != ""}
	default:
		if _, err := os.Stat(c.Store.Path); err != nil {
			dbItem.Advice = "will be created on first start"
		}
	}
	items = append(items, dbItem)

	// Discord bot tokens are three dot-separated segments well over 50
	// characters long.
	tokenItem := PreflightItem{Name: "token format", OK: len(c.Discord.Token) > 50}
	if !tokenItem.OK {
		tokenItem.Advice = "bot token appears invalid or missing"
	}
	items = append(items, tokenItem)

	return items
}

// PreflightOK reports whether every item passed.
func PreflightOK(items []PreflightItem) bool {
	for _, item := range items {
		if !item.OK {
			return false
		}
	}
	return true
}

func envItem(name, value string, secret bool) PreflightItem {
	item := PreflightItem{Name: name, Value: value, OK: value != ""}
	switch {
	case !item.OK:
		item.Value = "NOT SET"
	case secret:
		item.Value = "***SET***"
	}
	return item
}

// String formats the item the way the preflight command prints it.
func (i PreflightItem) String() string {
	mark := "✅"
	if !i.OK {
		mark = "❌"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", mark, i.Name)
	if i.Value != "" {
		fmt.Fprintf(&b, ": %s", i.Value)
	}
	if i.Advice != "" {
		fmt.Fprintf(&b, " (%s)", i.Advice)
	}
	return b.String()
}
