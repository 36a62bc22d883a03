package domain

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000
