// =============================
// File: internal/auctionhouse/instruction.go
// =============================
package auctionhouse

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ExecuteSaleDiscriminator is the Anchor sighash of the auctioneer's execute_sale.
var ExecuteSaleDiscriminator = anchorDiscriminator("global", "execute_sale")

func anchorDiscriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// ExecuteSaleArgs are the instruction arguments in wire order.
type ExecuteSaleArgs struct {
	EscrowPaymentBump       uint8
	FreeTradeStateBump      uint8
	ProgramAsSignerBump     uint8
	AuctioneerAuthorityBump uint8
	BuyerPrice              uint64
	TokenSize               uint64
}

// ExecuteSaleArgsSize is the encoded length including the discriminator.
const ExecuteSaleArgsSize = 8 + 4 + 8 + 8

// Encode returns discriminator followed by the borsh encoded arguments.
func (a ExecuteSaleArgs) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(ExecuteSaleArgsSize)
	buf.Write(ExecuteSaleDiscriminator[:])

	if err := bin.NewBorshEncoder(buf).Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode execute sale args: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeExecuteSaleArgs reverses Encode.
func DecodeExecuteSaleArgs(data []byte) (ExecuteSaleArgs, error) {
	var a ExecuteSaleArgs
	if len(data) < 8 || !bytes.Equal(data[:8], ExecuteSaleDiscriminator[:]) {
		return a, fmt.Errorf("not an execute sale instruction")
	}
	if err := bin.NewBorshDecoder(data[8:]).Decode(&a); err != nil {
		return a, fmt.Errorf("failed to decode execute sale args: %w", err)
	}
	return a, nil
}

// NewExecuteSaleInstruction builds the instruction for the auctioneer program.
func NewExecuteSaleInstruction(program solana.PublicKey, args ExecuteSaleArgs, accounts solana.AccountMetaSlice) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts, data), nil
}
