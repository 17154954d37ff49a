package main

import (
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
)

// botSettings holds the settings of the faucet bot that are not read from the
// environment.
type botSettings struct {
	// Device is reported to the gateway when identifying.
	Device string
	// Presence is shown in the member list.
	Presence gateway.UpdatePresenceCommand
	// InteractionTimeout bounds the handling of one token request.
	InteractionTimeout time.Duration
}

var settings = botSettings{
	Device: "fogo-faucet",

	Presence: gateway.UpdatePresenceCommand{
		Status: discord.OnlineStatus,
		Activities: []discord.Activity{
			{Name: "the faucet", Type: discord.WatchingActivity},
		},
	},

	InteractionTimeout: 30 * time.Second,
}
