package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keeperSchemes lists the key URI schemes a store keeper can be opened with.
var keeperSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

// keeperCheck is sealed and opened once when a keeper is opened.
var keeperCheck = []byte(`{"revision":0,"records":[]}`)

// KMSService opens the keeper that seals stored collections at rest.
type KMSService interface {
	// OpenKeeper opens the keeper for keyURI and checks it can seal and open a
	// collection before returning it.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a gocloud.dev keeper. A key the process cannot use is reported
// here, at startup, instead of on the first secret write.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	u, err := url.Parse(keyURI)
	if err != nil || !slices.Contains(keeperSchemes, u.Scheme) {
		return nil, fmt.Errorf("failed to open KMS keeper: unsupported key URI scheme, expected one of %v", keeperSchemes)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}

	if err := verifyKeeper(ctx, keeper); err != nil {
		_ = keeper.Close()
		return nil, err
	}
	return keeper, nil
}

func verifyKeeper(ctx context.Context, keeper cryptoDomain.KMSKeeper) error {
	sealed, err := keeper.Encrypt(ctx, keeperCheck)
	if err != nil {
		return fmt.Errorf("KMS keeper cannot seal collections: %w", err)
	}
	opened, err := keeper.Decrypt(ctx, sealed)
	if err != nil {
		return fmt.Errorf("KMS keeper cannot open sealed collections: %w", err)
	}
	if !bytes.Equal(opened, keeperCheck) {
		return fmt.Errorf("KMS keeper returned a different collection than it sealed")
	}
	return nil
}
