package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/config"
	"libdb.so/fogo-faucet/internal/ledger"
)

const help = `FOGO wallet utilities

Usage: wallet-utils [command]

Commands:
  generate           Generate a new wallet keypair
  balance <address>  Check the balance of a wallet address
  bot                Check the custodial wallet's status
  validate <address> Validate a wallet address
  test               Test the network connection
  help               Show this help message

Examples:
  wallet-utils generate
  wallet-utils balance 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  wallet-utils validate 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  wallet-utils bot
  wallet-utils test
`

func init() {
	cli.Usage("wallet-utils generate|balance|bot|validate|test|help [address]",
		"FOGO_RPC_URL", "the ledger RPC endpoint",
		"FOGO_TOKEN_MINT", "the mint whose balance is checked",
		"BOT_WALLET_PRIVATE_KEY", "the custodial wallet's base58 secret key",
	)
}

func main() {
	flag.Parse()
	cli.Main(run)
}

func run(ctx context.Context) int {
	command, arg := flag.Arg(0), flag.Arg(1)

	switch command {
	case "generate":
		return generate(os.Stdout)
	case "validate":
		if arg == "" {
			fmt.Println("Please provide a wallet address.")
			fmt.Println("Usage: wallet-utils validate <address>")
			return 0
		}
		validate(os.Stdout, arg)
		return 0
	case "balance", "bot", "test":
		// These need the network.
	default:
		fmt.Print(help)
		return 0
	}

	if command == "balance" && arg == "" {
		fmt.Println("Please provide a wallet address.")
		fmt.Println("Usage: wallet-utils balance <address>")
		return 0
	}

	cfg, err := cli.Load()
	if err != nil {
		return cli.ExitCode(err)
	}
	if err := cfg.RequireLedger(); err != nil {
		return cli.ExitCode(err)
	}

	u := utils{
		out:    os.Stdout,
		rpc:    ledger.Dial(cfg.Ledger.RPCURL),
		ledger: cfg.Ledger,
	}

	switch command {
	case "balance":
		err = u.balance(ctx, arg)
	case "bot":
		if err := cfg.RequireCustody(); err != nil {
			return cli.ExitCode(err)
		}
		err = u.bot(ctx)
	case "test":
		err = u.test(ctx)
	}
	return cli.ExitCode(err)
}

func generate(out io.Writer) int {
	w, err := ledger.GenerateWallet()
	if err != nil {
		return cli.ExitCode(err)
	}
	fmt.Fprintln(out, "New wallet generated:")
	fmt.Fprintln(out, "Public Key:", w.PublicKey)
	fmt.Fprintln(out, "Private Key (base58):", w.Secret)
	fmt.Fprintln(out, "\nSave the private key securely!")
	return 0
}

func validate(out io.Writer, address string) bool {
	if _, err := ledger.ParseAddress(address); err != nil {
		fmt.Fprintln(out, "❌ Invalid Solana address:", address)
		return false
	}
	fmt.Fprintln(out, "✅ Valid Solana address:", address)
	return true
}

type utils struct {
	out    io.Writer
	rpc    ledger.RPC
	ledger config.LedgerConfig
}

func (u utils) mint() (solana.PublicKey, error) {
	if u.ledger.IsNative() {
		return solana.PublicKey{}, nil
	}
	mint, err := solana.PublicKeyFromBase58(u.ledger.TokenMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse $FOGO_TOKEN_MINT: %w", err)
	}
	return mint, nil
}

func (u utils) balance(ctx context.Context, address string) error {
	mint, err := u.mint()
	if err != nil {
		return err
	}

	oracle := ledger.NewOracle(u.rpc, mint, decimal.Zero)
	if oracle.Native() {
		fmt.Fprintln(u.out, "Checking FOGO(Native) balance for wallet:", address)
	} else {
		fmt.Fprintln(u.out, "Checking token balance for wallet:", address)
		fmt.Fprintln(u.out, "Token mint:", mint)
	}

	snap, err := oracle.Balance(ctx, address)
	if err != nil {
		return err
	}

	if oracle.Native() {
		fmt.Fprintf(u.out, "✅ FOGO(Native) balance: %s FOGO\n", snap.Amount)
	} else {
		fmt.Fprintf(u.out, "✅ Token balance: %s tokens\n", snap.Amount)
	}
	return nil
}

func (u utils) bot(ctx context.Context) error {
	wallet, err := ledger.NewWallet(u.rpc, u.ledger.PrivateKey)
	if err != nil {
		return err
	}

	fmt.Fprintln(u.out, "Bot wallet status:")
	fmt.Fprintln(u.out, "Public Key:", wallet.PublicKey())

	native := ledger.NewOracle(u.rpc, solana.PublicKey{}, decimal.Zero)
	snap, err := native.Balance(ctx, wallet.PublicKey().String())
	if err != nil {
		return err
	}
	fmt.Fprintf(u.out, "FOGO(Native) Balance: %s FOGO\n", snap.Amount)

	if u.ledger.IsNative() {
		fmt.Fprintln(u.out, "✅ Using native FOGO, no separate token account needed")
		return nil
	}
	return u.balance(ctx, wallet.PublicKey().String())
}

func (u utils) test(ctx context.Context) error {
	fmt.Fprintln(u.out, "Testing Fogo network connection...")
	info, err := ledger.Ping(ctx, u.rpc)
	if err != nil {
		return fmt.Errorf("connect to Fogo network: %w", err)
	}
	fmt.Fprintln(u.out, "✅ Connected to Fogo network")
	fmt.Fprintln(u.out, "Version:", info.Version)
	fmt.Fprintln(u.out, "Current slot:", info.Slot)
	return nil
}
