// Package wallet loads the signing key and reads on-chain balances.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
)

// PrivateKeyEnv names the env var carrying the base58-encoded signing key.
const PrivateKeyEnv = "SOLANA_PRIVATE_KEY_BASE58"

const lamportsPerSol = 1e9

// LoadPrivateKey reads the signing key from the environment, consulting a
// local .env file first.
func LoadPrivateKey() (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv(PrivateKeyEnv)
	if b58 == "" {
		return nil, errors.New(PrivateKeyEnv + " not set")
	}
	return solana.PrivateKeyFromBase58(b58)
}

// Wallet reads SOL and SPL token balances for one owner.
type Wallet struct {
	rpc    *rpc.Client
	owner  solana.PublicKey
	commit rpc.CommitmentType
}

func New(rpcURL string, owner solana.PublicKey) *Wallet {
	return &Wallet{
		rpc:    rpc.New(rpcURL),
		owner:  owner,
		commit: rpc.CommitmentConfirmed,
	}
}

// SOLBalance returns the owner's native balance in SOL.
func (w *Wallet) SOLBalance(ctx context.Context) (float64, error) {
	out, err := w.rpc.GetBalance(ctx, w.owner, w.commit)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return float64(out.Value) / lamportsPerSol, nil
}

// TokenBalance returns the owner's aggregate balance of mint across its
// token accounts, in UI units.
func (w *Wallet) TokenBalance(ctx context.Context, mint solana.PublicKey) (float64, error) {
	out, err := w.rpc.GetTokenAccountsByOwner(ctx, w.owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{Commitment: w.commit, Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return 0, fmt.Errorf("get token accounts: %w", err)
	}

	var total float64
	for _, acc := range out.Value {
		parsed, err := parseTokenAmount(acc.Account.Data.GetRawJSON())
		if err != nil {
			return 0, err
		}
		total += parsed
	}
	return total, nil
}

type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			TokenAmount struct {
				UIAmount float64 `json:"uiAmount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

func parseTokenAmount(raw json.RawMessage) (float64, error) {
	var acc parsedTokenAccount
	if err := json.Unmarshal(raw, &acc); err != nil {
		return 0, fmt.Errorf("parse token account: %w", err)
	}
	return acc.Parsed.Info.TokenAmount.UIAmount, nil
}
