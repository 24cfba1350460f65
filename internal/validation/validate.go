// Package validation checks incoming bridge requests before they reach the
// aggregation core, returning field-level validation errors.
package validation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

// MaxSlippageBps bounds the caller-supplied slippage at 100%.
const MaxSlippageBps = 10000

// ParseAmount parses a decimal-string amount and rejects anything that is
// not a non-negative decimal. The returned value preserves the input's
// precision exactly.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, errs.Validation("amount", "amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.Validation("amount", "amount must be a decimal number")
	}
	if d.IsNegative() {
		return decimal.Zero, errs.Validation("amount", "amount must not be negative")
	}
	return d, nil
}

// ValidateRecipient checks that the recipient is a well-formed hex address
// for an EVM destination chain. IsHexAddress alone tolerates a missing 0x
// prefix, so the prefix is required explicitly.
func ValidateRecipient(recipient string) error {
	if recipient == "" {
		return errs.Validation("recipient", "recipient is required")
	}
	if !strings.HasPrefix(recipient, "0x") || !common.IsHexAddress(recipient) {
		return errs.Validation("recipient", "recipient must be a 0x-prefixed hex address")
	}
	return nil
}

// ValidateRequest checks the cross-field invariants of a normalized request.
// The recipient is only validated when present; route discovery does not
// need one, transaction building does (enforced by RequireRecipient).
func ValidateRequest(req model.BridgeRequest) error {
	if req.FromChain == req.ToChain {
		return errs.Validation("toChain", "source and destination chain must differ")
	}
	if req.Token == "" {
		return errs.Validation("token", "token is required")
	}
	if req.Amount.IsNegative() {
		return errs.Validation("amount", "amount must not be negative")
	}
	if req.SlippageBps < 0 || req.SlippageBps > MaxSlippageBps {
		return errs.Validation("slippageBps", "slippage must be between 0 and 10000 basis points")
	}
	if req.Recipient != "" {
		if err := ValidateRecipient(req.Recipient); err != nil {
			return err
		}
	}
	return nil
}

// RequireRecipient validates a request for transaction building, where a
// recipient is mandatory.
func RequireRecipient(req model.BridgeRequest) error {
	if err := ValidateRequest(req); err != nil {
		return err
	}
	return ValidateRecipient(req.Recipient)
}

// ValidateTxHash checks that a transaction hash is a 32-byte hex hash.
func ValidateTxHash(txHash string) error {
	if txHash == "" {
		return errs.Validation("txHash", "txHash is required")
	}
	raw, err := hexutil.Decode(txHash)
	if err != nil || len(raw) != common.HashLength {
		return errs.Validation("txHash", "txHash must be a 0x-prefixed 32-byte hex hash")
	}
	return nil
}
