// Package domain defines payload encryption errors and abstractions.
package domain

import (
	"context"

	"github.com/allisson/rewardsync/internal/errors"
)

var (
	// ErrDecryptionFailed indicates a stored payload could not be decrypted with the configured keeper.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrEncryptionFailed indicates a payload could not be encrypted before persisting.
	ErrEncryptionFailed = errors.Wrap(errors.ErrUnavailable, "encryption failed")

	// ErrUnsupportedKeeper indicates PAYLOAD_KEEPER_URI names a provider the app cannot open.
	ErrUnsupportedKeeper = errors.Wrap(errors.ErrInvalidInput, "unsupported payload keeper")
)

// Keeper is the subset of *secrets.Keeper used to protect queued payloads.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
