package pda

import "github.com/gagliardetto/solana-go"

// Seed tags shared with the on-chain programs.
const (
	PrefixSeed              = "auction_house"
	SignerSeed              = "signer"
	FeePayerSeed            = "fee_payer"
	TreasurySeed            = "treasury"
	AuctioneerSeed          = "auctioneer"
	AuctioneerAuthoritySeed = "auctioneer-authority"
	ListingConfigSeed       = "listing_config"
	MetadataSeed            = "metadata"
)

// Mainnet deployments.
var (
	AuctionHouseProgramID  = solana.MustPublicKeyFromBase58("hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk")
	AuctioneerProgramID    = solana.MustPublicKeyFromBase58("GrZrqXcE3nwRZ7eaoXocKvBRioYEoeZR4hQShJ5VN2oZ")
	TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Programs names the program deployments every derivation is evaluated against.
// Passing it explicitly lets the same code target mainnet and local fixtures.
type Programs struct {
	AuctionHouse    solana.PublicKey
	Auctioneer      solana.PublicKey
	TokenMetadata   solana.PublicKey
	Token           solana.PublicKey
	AssociatedToken solana.PublicKey
	System          solana.PublicKey
	Rent            solana.PublicKey
}

// DefaultPrograms returns the mainnet program set.
func DefaultPrograms() Programs {
	return Programs{
		AuctionHouse:    AuctionHouseProgramID,
		Auctioneer:      AuctioneerProgramID,
		TokenMetadata:   TokenMetadataProgramID,
		Token:           solana.TokenProgramID,
		AssociatedToken: solana.SPLAssociatedTokenAccountProgramID,
		System:          solana.SystemProgramID,
		Rent:            solana.SysVarRentPubkey,
	}
}

// WithDefaults fills zero entries from DefaultPrograms.
func (p Programs) WithDefaults() Programs {
	def := DefaultPrograms()
	fill := func(dst *solana.PublicKey, v solana.PublicKey) {
		if dst.IsZero() {
			*dst = v
		}
	}
	fill(&p.AuctionHouse, def.AuctionHouse)
	fill(&p.Auctioneer, def.Auctioneer)
	fill(&p.TokenMetadata, def.TokenMetadata)
	fill(&p.Token, def.Token)
	fill(&p.AssociatedToken, def.AssociatedToken)
	fill(&p.System, def.System)
	fill(&p.Rent, def.Rent)
	return p
}
