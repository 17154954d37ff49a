package faucet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the tone of a notification.
type Kind int

const (
	Failure Kind = iota
	Success
)

// Outcome identifies the terminal state a request ended in.
type Outcome string

const (
	OutcomeInvalidAddress Outcome = "invalid_address"
	OutcomeCooldown       Outcome = "cooldown"
	OutcomeFunded         Outcome = "already_funded"
	OutcomeTransferFailed Outcome = "transfer_failed"
	OutcomeUnavailable    Outcome = "unavailable"
	OutcomeSent           Outcome = "sent"
	OutcomeUnexpected     Outcome = "unexpected"
)

// Notification is the reply shown to the requester.
type Notification struct {
	Kind        Kind
	Title       string
	Description string
	Outcome     Outcome
}

const unit = "FOGO(Native)"

func invalidAddress() Notification {
	return Notification{
		Kind:        Failure,
		Title:       "❌ Invalid Wallet Address",
		Description: "Please provide a valid Solana wallet address.",
		Outcome:     OutcomeInvalidAddress,
	}
}

func cooldownActive(hours int) Notification {
	return Notification{
		Kind:        Failure,
		Title:       "⏰ Cooldown Active",
		Description: fmt.Sprintf("You can request tokens again in %d hours.", hours),
		Outcome:     OutcomeCooldown,
	}
}

func alreadyFunded(threshold decimal.Decimal) Notification {
	return Notification{
		Kind:        Failure,
		Title:       "💰 Already Has Tokens",
		Description: fmt.Sprintf("This wallet already has %s or more %s tokens.", threshold, unit),
		Outcome:     OutcomeFunded,
	}
}

// Unavailable is the reply when a collaborator could not be reached. Nothing
// has been sent when it is returned.
func Unavailable() Notification {
	return Notification{
		Kind:        Failure,
		Title:       "🚧 Service Unavailable",
		Description: "The faucet could not reach one of its services. No tokens were sent; please try again later.",
		Outcome:     OutcomeUnavailable,
	}
}

func (f *Faucet) transferFailed(reason string) Notification {
	n := Notification{
		Kind:        Failure,
		Title:       "❌ Transfer Failed",
		Description: "Failed to send tokens: " + reason,
		Outcome:     OutcomeTransferFailed,
	}
	if f.dryRun {
		n.Title = "❌ Test Transfer Failed"
		n.Description = "Failed to simulate transfer: " + reason
	}
	return n
}

func (f *Faucet) sent(wallet, reference string, bypass bool) Notification {
	n := Notification{
		Kind:        Success,
		Title:       "🎉 Tokens Sent Successfully!",
		Description: fmt.Sprintf("%s %s token has been sent to `%s`\nTransaction: `%s`", f.amount, unit, wallet, reference),
		Outcome:     OutcomeSent,
	}
	if f.dryRun {
		n.Title = "🎉 Test Transfer Successful!"
		n.Description = fmt.Sprintf("%s %s token would be sent to `%s`\nTest Transaction: `%s`\n\n⚠️ This was a test - no actual tokens were transferred.", f.amount, unit, wallet, reference)
	}
	if bypass {
		n.Description += "\n🛡️ **Team Member Request**"
	}
	return n
}

// UnexpectedError is the reply for a request whose handling broke down
// outside of the faucet's own states.
func UnexpectedError() Notification {
	return Notification{
		Kind:        Failure,
		Title:       "❌ Unexpected Error",
		Description: "An unexpected error occurred. Please try again later.",
		Outcome:     OutcomeUnexpected,
	}
}
