// =============================
// File: internal/auctionhouse/plan.go
// =============================
package auctionhouse

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

// ExecuteSalePlan is a fully prepared execute-sale instruction. It is a value:
// submitting it does not change it, so a failed submission can be retried
// with the same plan.
type ExecuteSalePlan struct {
	Program  solana.PublicKey
	Args     ExecuteSaleArgs
	Accounts ExecuteSaleAccounts
	Creators []Creator
	Derived  Derived
}

// Prepare derives and assembles the instruction without any I/O. A
// derivation failure is returned before any account is assembled.
func Prepare(d *pda.Deriver, p ExecuteSaleParams) (*ExecuteSalePlan, error) {
	derived, err := Derive(d, p)
	if err != nil {
		return nil, err
	}

	accounts, err := BuildExecuteSaleAccounts(d.Programs(), p, derived)
	if err != nil {
		return nil, err
	}

	creators := make([]Creator, len(p.Creators))
	copy(creators, p.Creators)

	return &ExecuteSalePlan{
		Program: d.Programs().Auctioneer,
		Args: ExecuteSaleArgs{
			EscrowPaymentBump:       derived.EscrowPaymentBump,
			FreeTradeStateBump:      derived.FreeTradeStateBump,
			ProgramAsSignerBump:     derived.ProgramAsSignerBump,
			AuctioneerAuthorityBump: derived.AuctioneerAuthorityBump,
			BuyerPrice:              p.Participants.BuyerPrice,
			TokenSize:               p.Participants.TokenSize,
		},
		Accounts: accounts,
		Creators: creators,
		Derived:  derived,
	}, nil
}

// AccountMetas returns the named accounts followed by the creator accounts.
// Each call builds a fresh slice.
func (p *ExecuteSalePlan) AccountMetas() solana.AccountMetaSlice {
	metas := p.Accounts.Metas()
	return append(metas, CreatorMetas(p.Creators)...)
}

// Instruction encodes the plan for the auctioneer program.
func (p *ExecuteSalePlan) Instruction() (solana.Instruction, error) {
	return NewExecuteSaleInstruction(p.Program, p.Args, p.AccountMetas())
}
