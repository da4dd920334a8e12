package service

import (
	"context"

	cryptoDomain "github.com/allisson/rewardsync/internal/crypto/domain"
	"github.com/allisson/rewardsync/internal/errors"
)

// PayloadCipher protects mutation payloads while they sit in the local queue.
type PayloadCipher interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// KeeperCipher encrypts payloads with a secrets keeper.
type KeeperCipher struct {
	keeper cryptoDomain.Keeper
}

// NewKeeperCipher creates a cipher backed by keeper.
func NewKeeperCipher(keeper cryptoDomain.Keeper) *KeeperCipher {
	return &KeeperCipher{keeper: keeper}
}

// Encrypt seals plaintext.
func (c *KeeperCipher) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	ciphertext, err := c.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrEncryptionFailed, err.Error())
	}
	return ciphertext, nil
}

// Decrypt opens ciphertext produced by Encrypt.
func (c *KeeperCipher) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	plaintext, err := c.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrDecryptionFailed, err.Error())
	}
	return plaintext, nil
}

// Close releases the keeper.
func (c *KeeperCipher) Close() error {
	return c.keeper.Close()
}

// PlaintextCipher stores payloads unchanged. It is used when no keeper URI is configured.
type PlaintextCipher struct{}

// Encrypt returns plaintext unchanged.
func (PlaintextCipher) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

// Decrypt returns ciphertext unchanged.
func (PlaintextCipher) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	return ciphertext, nil
}
