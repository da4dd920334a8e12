// Package service opens gocloud.dev secrets keepers and applies them to queued payloads.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/rewardsync/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperSchemes lists the PAYLOAD_KEEPER_URI schemes the app links drivers for.
var KeeperSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

// KeeperOpener turns PAYLOAD_KEEPER_URI into a keeper.
type KeeperOpener interface {
	Open(ctx context.Context, keeperURI string) (cryptoDomain.Keeper, error)
}

type keeperOpener struct{}

// NewKeeperOpener returns the gocloud.dev backed KeeperOpener.
func NewKeeperOpener() KeeperOpener {
	return keeperOpener{}
}

// Open rejects URIs for drivers the app does not link before asking gocloud.dev.
// Errors never quote the URI past its scheme.
func (keeperOpener) Open(ctx context.Context, keeperURI string) (cryptoDomain.Keeper, error) {
	scheme, _, ok := strings.Cut(keeperURI, "://")
	if !ok || !slices.Contains(KeeperSchemes, scheme) {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrUnsupportedKeeper, RedactKeeperURI(keeperURI))
	}

	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper %s: %w", RedactKeeperURI(keeperURI), redactCause(err, keeperURI))
	}
	return keeper, nil
}

// RedactKeeperURI keeps only the scheme, so key material stays out of logs.
func RedactKeeperURI(keeperURI string) string {
	if scheme, _, ok := strings.Cut(keeperURI, "://"); ok {
		return scheme + "://***"
	}
	return "***"
}

// redactCause strips the URI, and the key material after its scheme, from
// driver errors, which often echo them.
func redactCause(err error, keeperURI string) error {
	msg := err.Error()
	if _, secret, ok := strings.Cut(keeperURI, "://"); ok && secret != "" {
		msg = strings.ReplaceAll(msg, secret, "***")
	}
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}
