package app

import (
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	"github.com/allisson/keyvault/internal/keylock"
	vaultHTTP "github.com/allisson/keyvault/internal/vault/http"
	vaultRepository "github.com/allisson/keyvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

type vaultComponents struct {
	aeadManager   cryptoService.AEADManager
	kdfManager    cryptoService.KDFManager
	kmsService    cryptoService.KMSService
	locker        *keylock.Locker
	recordStore   *vaultRepository.RecordStore
	vaultUseCase  vaultUseCase.VaultUseCase
	secretHandler *vaultHTTP.SecretHandler

	aeadManagerInit   sync.Once
	kdfManagerInit    sync.Once
	kmsServiceInit    sync.Once
	lockerInit        sync.Once
	recordStoreInit   sync.Once
	vaultUseCaseInit  sync.Once
	secretHandlerInit sync.Once
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KDFManager returns the key derivation manager service.
func (c *Container) KDFManager() cryptoService.KDFManager {
	c.kdfManagerInit.Do(func() {
		c.kdfManager = cryptoService.NewKDFManager()
	})
	return c.kdfManager
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// Locker returns the per-user lock table shared by every collection operation.
func (c *Container) Locker() *keylock.Locker {
	c.lockerInit.Do(func() {
		c.locker = keylock.New(keylock.DefaultMaxReaders)
	})
	return c.locker
}

// RecordStore returns the per-user collection store.
func (c *Container) RecordStore() (*vaultRepository.RecordStore, error) {
	var err error
	c.recordStoreInit.Do(func() {
		c.recordStore, err = c.initRecordStore()
		if err != nil {
			c.initErrors["recordStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordStore"]; exists {
		return nil, storedErr
	}
	return c.recordStore, nil
}

// VaultUseCase returns the vault use case wrapped with business metrics.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vaultUseCase, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultUseCase, nil
}

// SecretHandler returns the HTTP handler for API key operations.
func (c *Container) SecretHandler() (*vaultHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// initRecordStore creates the record store on top of the durable store.
func (c *Container) initRecordStore() (*vaultRepository.RecordStore, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for record store: %w", err)
	}

	return vaultRepository.NewRecordStore(
		store,
		c.Locker(),
		c.config.StoreNamespace,
		c.config.StoreTimeout,
	), nil
}

// initVaultUseCase creates the vault use case with all its dependencies.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	recordStore, err := c.RecordStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get record store for vault use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
	}

	useCase, err := vaultUseCase.NewVaultUseCase(
		recordStore,
		c.AEADManager(),
		c.KDFManager(),
		vaultUseCase.Config{
			Algorithm:       cryptoDomain.Algorithm(c.config.CipherAlgorithm),
			KDF:             c.config.KDFParams(),
			ListConcurrency: c.config.ListConcurrency,
		},
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault use case: %w", err)
	}

	return vaultUseCase.NewVaultUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initSecretHandler creates the secret HTTP handler.
func (c *Container) initSecretHandler() (*vaultHTTP.SecretHandler, error) {
	useCase, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for secret handler: %w", err)
	}
	return vaultHTTP.NewSecretHandler(useCase, c.Logger()), nil
}
