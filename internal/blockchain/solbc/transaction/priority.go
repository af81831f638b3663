// internal/blockchain/solbc/transaction/priority.go
package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

type PriorityLevel string

const (
	PriorityNone    PriorityLevel = "none"
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
	PriorityCustom  PriorityLevel = "custom"
)

type PriorityConfig struct {
	ComputeUnits uint32 // Number of compute units
	PriorityFee  uint64 // Priority fee in micro-lamports
	HeapSize     uint32 // Additional heap memory (optional)
}

var priorityProfiles = map[PriorityLevel]PriorityConfig{
	PriorityNone: {},
	PriorityLow: {
		ComputeUnits: 200_000,
		PriorityFee:  1_000, // 0.000001 SOL in micro-lamports
	},
	PriorityMedium: {
		ComputeUnits: 400_000,
		PriorityFee:  5_000,
	},
	PriorityHigh: {
		ComputeUnits: 800_000,
		PriorityFee:  10_000,
	},
	PriorityExtreme: {
		ComputeUnits: 1_000_000,
		PriorityFee:  50_000,
		HeapSize:     32 * 1024, // 32KB
	},
}

// ResolvePriority returns the profile for level. PriorityCustom returns custom unchanged.
func ResolvePriority(level PriorityLevel, custom PriorityConfig) (PriorityConfig, error) {
	if level == "" || level == PriorityCustom {
		return custom, nil
	}
	cfg, ok := priorityProfiles[level]
	if !ok {
		return PriorityConfig{}, fmt.Errorf("unknown priority level: %s", level)
	}
	return cfg, nil
}

// Instructions builds the compute budget prefix for a transaction. Zero fields are skipped.
func (c PriorityConfig) Instructions() []solana.Instruction {
	var instructions []solana.Instruction

	// Set compute unit limit
	if c.ComputeUnits > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(c.ComputeUnits).Build())
	}

	// Set compute unit price
	if c.PriorityFee > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(c.PriorityFee).Build())
	}

	// Request heap frame
	if c.HeapSize > 0 {
		instructions = append(instructions, computebudget.NewRequestHeapFrameInstruction(c.HeapSize).Build())
	}

	return instructions
}
