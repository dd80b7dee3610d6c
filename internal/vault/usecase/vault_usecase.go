package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// DefaultListConcurrency bounds parallel record decryption in ListAll.
const DefaultListConcurrency = 4

// Config holds the algorithms applied to newly saved records.
type Config struct {
	Algorithm       cryptoDomain.Algorithm
	KDF             cryptoDomain.KDFParams
	ListConcurrency int
}

// vaultUseCase implements the VaultUseCase interface.
type vaultUseCase struct {
	records         RecordRepository
	aeadManager     cryptoService.AEADManager
	kdfManager      cryptoService.KDFManager
	deriver         cryptoService.KeyDeriver
	algorithm       cryptoDomain.Algorithm
	listConcurrency int
	logger          *slog.Logger
	now             func() time.Time
}

// NewVaultUseCase creates a VaultUseCase. It fails when cfg names an unsupported
// algorithm or invalid KDF parameters.
func NewVaultUseCase(
	records RecordRepository,
	aeadManager cryptoService.AEADManager,
	kdfManager cryptoService.KDFManager,
	cfg Config,
	logger *slog.Logger,
) (VaultUseCase, error) {
	deriver, err := kdfManager.CreateDeriver(cfg.KDF)
	if err != nil {
		return nil, err
	}

	switch cfg.Algorithm {
	case cryptoDomain.AESGCM, cryptoDomain.XChaCha20:
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	listConcurrency := cfg.ListConcurrency
	if listConcurrency <= 0 {
		listConcurrency = DefaultListConcurrency
	}

	return &vaultUseCase{
		records:         records,
		aeadManager:     aeadManager,
		kdfManager:      kdfManager,
		deriver:         deriver,
		algorithm:       cfg.Algorithm,
		listConcurrency: listConcurrency,
		logger:          logger,
		now:             time.Now,
	}, nil
}

// Save derives a new key and salt, encrypts the secret and appends the record.
// Nothing touches the store until the record is fully built, and the append is a
// single atomic write.
func (v *vaultUseCase) Save(
	ctx context.Context,
	userID string,
	secret vaultDomain.Secret,
) (*vaultDomain.SaveResult, error) {
	if userID == "" {
		return nil, vaultDomain.ErrInvalidUserID
	}
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	record, err := v.seal(userID, secret)
	if err != nil {
		return nil, err
	}

	index, revision, err := v.records.AppendOne(ctx, userID, *record)
	if err != nil {
		return nil, err
	}

	v.logger.Info("secret saved",
		slog.String("user_id", userID),
		slog.String("record_id", record.ID.String()),
		slog.Int("index", index),
		slog.String("algorithm", string(record.Algorithm)),
	)

	return &vaultDomain.SaveResult{
		RecordID:  record.ID,
		Index:     index,
		Revision:  revision,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (v *vaultUseCase) seal(userID string, secret vaultDomain.Secret) (*vaultDomain.EncryptedRecord, error) {
	plaintext, err := secret.Marshal()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode secret")
	}
	defer cryptoDomain.Zero(plaintext)

	key, salt, err := v.deriver.Derive(userID, nil)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := v.aeadManager.CreateCipher(key, v.algorithm)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate record id")
	}

	record := &vaultDomain.EncryptedRecord{
		ID:        id,
		Algorithm: v.algorithm,
		KDF:       v.deriver.Params(),
		Salt:      salt,
		CreatedAt: v.now().UTC(),
	}

	record.Ciphertext, record.Nonce, err = cipher.Encrypt(plaintext, record.AAD(userID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt secret")
	}
	return record, nil
}

type openResult struct {
	secret vaultDomain.Secret
	err    error
}

// ListAll decrypts records in parallel. The collection snapshot is taken under the
// user's read lock, so it never reflects a half-applied write.
func (v *vaultUseCase) ListAll(ctx context.Context, userID string) (*vaultDomain.Listing, error) {
	if userID == "" {
		return nil, vaultDomain.ErrInvalidUserID
	}

	collection, err := v.records.ReadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]openResult, collection.Len())

	var g errgroup.Group
	g.SetLimit(v.listConcurrency)
	for i := range collection.Records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			secret, err := v.open(userID, &collection.Records[i])
			results[i] = openResult{secret: secret, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, "listing canceled")
	}

	listing := &vaultDomain.Listing{
		Revision: collection.Revision,
		Entries:  make([]vaultDomain.Entry, 0, len(results)),
		Failures: []vaultDomain.RecordFailure{},
	}
	for i, result := range results {
		record := &collection.Records[i]
		if result.err != nil {
			v.logger.Warn("secret could not be decrypted",
				slog.String("user_id", userID),
				slog.String("record_id", record.ID.String()),
				slog.Int("index", i),
				slog.Any("error", result.err),
			)
			listing.Failures = append(listing.Failures, vaultDomain.RecordFailure{
				Index:    i,
				RecordID: record.ID,
				Err:      result.err,
			})
			continue
		}
		listing.Entries = append(listing.Entries, vaultDomain.Entry{
			Index:     i,
			RecordID:  record.ID,
			Secret:    result.secret,
			CreatedAt: record.CreatedAt,
		})
	}

	return listing, nil
}

// open re-derives the record key from its stored salt and decrypts it.
func (v *vaultUseCase) open(userID string, record *vaultDomain.EncryptedRecord) (vaultDomain.Secret, error) {
	if err := record.DecodeErr(); err != nil {
		return vaultDomain.Secret{}, err
	}
	// An empty salt would make Derive generate a new one.
	if len(record.Salt) == 0 {
		return vaultDomain.Secret{}, cryptoDomain.ErrAuthenticationFailed
	}

	deriver, err := v.kdfManager.CreateDeriver(record.KDF)
	if err != nil {
		return vaultDomain.Secret{}, err
	}

	key, _, err := deriver.Derive(userID, record.Salt)
	if err != nil {
		return vaultDomain.Secret{}, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := v.aeadManager.CreateCipher(key, record.Algorithm)
	if err != nil {
		return vaultDomain.Secret{}, err
	}

	plaintext, err := cipher.Decrypt(record.Ciphertext, record.Nonce, record.AAD(userID))
	if err != nil {
		return vaultDomain.Secret{}, err
	}
	defer cryptoDomain.Zero(plaintext)

	return vaultDomain.UnmarshalSecret(plaintext)
}

// DeleteAt removes the record at index without a revision check.
func (v *vaultUseCase) DeleteAt(ctx context.Context, userID string, index int) error {
	return v.DeleteAtRevision(ctx, userID, index, vaultDomain.AnyRevision)
}

// DeleteAtRevision removes the record at index if the collection revision matches.
func (v *vaultUseCase) DeleteAtRevision(ctx context.Context, userID string, index int, revision uint64) error {
	if userID == "" {
		return vaultDomain.ErrInvalidUserID
	}

	if err := v.records.DeleteAt(ctx, userID, index, revision); err != nil {
		return err
	}

	v.logger.Info("secret deleted",
		slog.String("user_id", userID),
		slog.Int("index", index),
	)
	return nil
}

// DeleteAll removes every record of the user.
func (v *vaultUseCase) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return vaultDomain.ErrInvalidUserID
	}

	if err := v.records.DeleteAll(ctx, userID); err != nil {
		return err
	}

	v.logger.Info("all secrets deleted", slog.String("user_id", userID))
	return nil
}
