package main

// usernames are the members given the Pyronauts role.
var usernames = []string{
	"drt__", "johnconnor0929", "sslowlybot", ".vika75", "0xdewa_",
	"dfwdora", "smartcoded", "defiwoman456_19581", "nomicast", "sunapana",
}
