package auth

import "waterline/internal/utils"

// ResetTokenLength is the size of a password-reset token. Tokens are
// single-use: the store clears them when a reset completes.
const ResetTokenLength = 32

func NewResetToken() string {
	return utils.NanoIDSize(ResetTokenLength)
}
