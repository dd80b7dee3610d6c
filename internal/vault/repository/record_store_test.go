package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/keylock"
	"github.com/allisson/keyvault/internal/storage"
	storageMocks "github.com/allisson/keyvault/internal/storage/mocks"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

func newTestRecord() vaultDomain.EncryptedRecord {
	return vaultDomain.EncryptedRecord{
		ID:         uuid.New(),
		Algorithm:  cryptoDomain.AESGCM,
		KDF:        cryptoDomain.DefaultArgon2idParams(),
		Salt:       []byte("0123456789abcdef"),
		Nonce:      []byte("0123456789abcdef"),
		Ciphertext: []byte("ciphertext-with-tag"),
		CreatedAt:  time.Now().UTC(),
	}
}

func newMemoryRecordStore() (*RecordStore, *storage.MemoryStore) {
	backend := storage.NewMemoryStore()
	return NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second), backend
}

func recordIDs(c *vaultDomain.Collection) []uuid.UUID {
	ids := make([]uuid.UUID, 0, c.Len())
	for _, r := range c.Records {
		ids = append(ids, r.ID)
	}
	return ids
}

// corruptSalt replaces the base64 salt of the record at index with invalid text.
func corruptSalt(t *testing.T, backend *storage.MemoryStore, userID string, index int) {
	t.Helper()
	ctx := context.Background()

	data, err := backend.Get(ctx, DefaultNamespace, userID)
	require.NoError(t, err)

	var wire struct {
		Revision uint64           `json:"revision"`
		Records  []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	wire.Records[index]["salt"] = "!!notbase64!!"

	data, err = json.Marshal(wire)
	require.NoError(t, err)
	require.NoError(t, backend.Put(ctx, DefaultNamespace, userID, data))
}

func TestRecordStore_ReadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EmptyWhenAbsent", func(t *testing.T) {
		store, _ := newMemoryRecordStore()

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.NotNil(t, c.Records)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, uint64(0), c.Revision)
	})

	t.Run("Error_EmptyUserID", func(t *testing.T) {
		store, _ := newMemoryRecordStore()

		_, err := store.ReadAll(ctx, "")
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidUserID)
	})

	t.Run("Success_UndecodableRecordDoesNotHideOthers", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		records := []vaultDomain.EncryptedRecord{newTestRecord(), newTestRecord(), newTestRecord()}
		for _, record := range records {
			_, _, err := store.AppendOne(ctx, "alice", record)
			require.NoError(t, err)
		}
		corruptSalt(t, backend, "alice", 1)

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 3, c.Len())
		assert.Equal(t, records[0].ID, c.Records[0].ID)
		assert.ErrorIs(t, c.Records[1].DecodeErr(), vaultDomain.ErrCorruptRecord)
		assert.Equal(t, records[2].ID, c.Records[2].ID)
	})

	t.Run("Error_CorruptedCollection", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		require.NoError(t, backend.Put(ctx, DefaultNamespace, "alice", []byte("{not json")))

		_, err := store.ReadAll(ctx, "alice")
		assert.ErrorIs(t, err, vaultDomain.ErrCorruptCollection)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		backend := &storageMocks.MockStore{}
		driverErr := errors.New("connection refused")
		backend.On("Get", mock.Anything, DefaultNamespace, "alice").Return(nil, driverErr)
		store := NewRecordStore(backend, keylock.New(0), "", time.Second)

		_, err := store.ReadAll(ctx, "alice")
		assert.ErrorIs(t, err, vaultDomain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, driverErr)
		backend.AssertExpectations(t)
	})
}

func TestRecordStore_AppendOne(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AppendsInOrder", func(t *testing.T) {
		store, _ := newMemoryRecordStore()
		first, second := newTestRecord(), newTestRecord()

		index, revision, err := store.AppendOne(ctx, "alice", first)
		require.NoError(t, err)
		assert.Equal(t, 0, index)
		assert.Equal(t, uint64(1), revision)

		index, revision, err = store.AppendOne(ctx, "alice", second)
		require.NoError(t, err)
		assert.Equal(t, 1, index)
		assert.Equal(t, uint64(2), revision)

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first.ID, second.ID}, recordIDs(c))
	})

	t.Run("Success_UsersAreIsolated", func(t *testing.T) {
		store, _ := newMemoryRecordStore()

		_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
		require.NoError(t, err)

		c, err := store.ReadAll(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Success_ConcurrentAppendsAreNotLost", func(t *testing.T) {
		store, _ := newMemoryRecordStore()

		const writers = 25
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, writers, c.Len())
		assert.Equal(t, uint64(writers), c.Revision)
	})

	t.Run("Error_WriteFailureLeavesCollection", func(t *testing.T) {
		backend := &storageMocks.MockStore{}
		backend.On("Get", mock.Anything, DefaultNamespace, "alice").Return(nil, storage.ErrKeyNotFound)
		backend.On("Put", mock.Anything, DefaultNamespace, "alice", mock.Anything).
			Return(fmt.Errorf("timeout: %w", context.DeadlineExceeded))
		store := NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second)

		_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
		assert.ErrorIs(t, err, vaultDomain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		backend.AssertExpectations(t)
	})

	t.Run("Success_WriteOutlivesCallerCancellation", func(t *testing.T) {
		backend := &storageMocks.MockStore{}
		callerCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		backend.On("Get", mock.Anything, DefaultNamespace, "alice").
			Run(func(args mock.Arguments) { cancel() }).
			Return(nil, storage.ErrKeyNotFound)
		backend.On("Put", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
			DefaultNamespace, "alice", mock.Anything).
			Return(nil)
		store := NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second)

		_, _, err := store.AppendOne(callerCtx, "alice", newTestRecord())
		require.NoError(t, err)
		backend.AssertExpectations(t)
	})

	t.Run("Error_CanceledWhileWaitingForLock", func(t *testing.T) {
		locks := keylock.New(0)
		backend := &storageMocks.MockStore{}
		store := NewRecordStore(backend, locks, DefaultNamespace, time.Second)

		unlock, err := locks.Lock(ctx, "alice")
		require.NoError(t, err)
		defer unlock()

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, _, err = store.AppendOne(waitCtx, "alice", newTestRecord())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		backend.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		backend.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordStore_DeleteAt(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, n int) (*RecordStore, []vaultDomain.EncryptedRecord) {
		t.Helper()
		store, _ := newMemoryRecordStore()
		records := make([]vaultDomain.EncryptedRecord, 0, n)
		for i := 0; i < n; i++ {
			r := newTestRecord()
			_, _, err := store.AppendOne(ctx, "alice", r)
			require.NoError(t, err)
			records = append(records, r)
		}
		return store, records
	}

	t.Run("Success_RemovesMiddle", func(t *testing.T) {
		store, records := seed(t, 3)

		require.NoError(t, store.DeleteAt(ctx, "alice", 1, vaultDomain.AnyRevision))

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{records[0].ID, records[2].ID}, recordIDs(c))
	})

	t.Run("Error_OutOfRangeLeavesCollectionUnchanged", func(t *testing.T) {
		store, records := seed(t, 2)

		for _, index := range []int{5, 2, -1} {
			err := store.DeleteAt(ctx, "alice", index, vaultDomain.AnyRevision)
			assert.ErrorIs(t, err, vaultDomain.ErrIndexOutOfRange)
		}

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{records[0].ID, records[1].ID}, recordIDs(c))
		assert.Equal(t, uint64(2), c.Revision)
	})

	t.Run("Success_RemovesUndecodableRecord", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		records := []vaultDomain.EncryptedRecord{newTestRecord(), newTestRecord(), newTestRecord()}
		for _, record := range records {
			_, _, err := store.AppendOne(ctx, "alice", record)
			require.NoError(t, err)
		}
		corruptSalt(t, backend, "alice", 1)

		_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
		require.NoError(t, err)
		require.NoError(t, store.DeleteAt(ctx, "alice", 1, vaultDomain.AnyRevision))

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 3, c.Len())
		for _, record := range c.Records {
			assert.NoError(t, record.DecodeErr())
		}
		assert.Equal(t, records[0].ID, c.Records[0].ID)
		assert.Equal(t, records[2].ID, c.Records[1].ID)
	})

	t.Run("Error_OutOfRangeOnEmpty", func(t *testing.T) {
		store, _ := newMemoryRecordStore()

		err := store.DeleteAt(ctx, "alice", 0, vaultDomain.AnyRevision)
		assert.ErrorIs(t, err, vaultDomain.ErrIndexOutOfRange)
	})

	t.Run("Success_MatchingRevision", func(t *testing.T) {
		store, _ := seed(t, 2)

		require.NoError(t, store.DeleteAt(ctx, "alice", 0, 2))
	})

	t.Run("Error_StaleRevision", func(t *testing.T) {
		store, records := seed(t, 2)

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		staleRevision := c.Revision

		_, _, err = store.AppendOne(ctx, "alice", newTestRecord())
		require.NoError(t, err)

		err = store.DeleteAt(ctx, "alice", 0, staleRevision)
		assert.ErrorIs(t, err, vaultDomain.ErrStaleRevision)

		c, err = store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, records[0].ID, c.Records[0].ID)
		assert.Equal(t, 3, c.Len())
	})
}

func TestRecordStore_DeleteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ClearsAndIsIdempotent", func(t *testing.T) {
		store, _ := newMemoryRecordStore()
		for i := 0; i < 3; i++ {
			_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
			require.NoError(t, err)
		}

		require.NoError(t, store.DeleteAll(ctx, "alice"))
		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, uint64(4), c.Revision)

		require.NoError(t, store.DeleteAll(ctx, "alice"))
		c, err = store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(4), c.Revision)
	})

	t.Run("Success_RevisionsStayMonotonic", func(t *testing.T) {
		store, _ := newMemoryRecordStore()
		_, revision, err := store.AppendOne(ctx, "alice", newTestRecord())
		require.NoError(t, err)

		require.NoError(t, store.DeleteAll(ctx, "alice"))

		_, newRevision, err := store.AppendOne(ctx, "alice", newTestRecord())
		require.NoError(t, err)
		assert.Greater(t, newRevision, revision+1)

		// A delete prepared before the clear must not hit the new record.
		err = store.DeleteAt(ctx, "alice", 0, revision)
		assert.ErrorIs(t, err, vaultDomain.ErrStaleRevision)
	})

	t.Run("Success_ClearsCollectionWithUndecodableRecord", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		for i := 0; i < 3; i++ {
			_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
			require.NoError(t, err)
		}
		corruptSalt(t, backend, "alice", 1)

		require.NoError(t, store.DeleteAll(ctx, "alice"))

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, uint64(4), c.Revision)
	})

	t.Run("Success_ReplacesUnreadableCollection", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		require.NoError(t, backend.Put(ctx, DefaultNamespace, "alice", []byte(`{"revision":6,"records":"oops"}`)))

		require.NoError(t, store.DeleteAll(ctx, "alice"))

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, uint64(7), c.Revision)
	})

	t.Run("Success_ReplacesValueThatIsNotJSON", func(t *testing.T) {
		store, backend := newMemoryRecordStore()
		require.NoError(t, backend.Put(ctx, DefaultNamespace, "alice", []byte("{not json")))

		require.NoError(t, store.DeleteAll(ctx, "alice"))

		c, err := store.ReadAll(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, uint64(1), c.Revision)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		backend := &storageMocks.MockStore{}
		driverErr := errors.New("connection refused")
		backend.On("Get", mock.Anything, DefaultNamespace, "alice").Return(nil, driverErr)
		store := NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second)

		err := store.DeleteAll(ctx, "alice")
		assert.ErrorIs(t, err, vaultDomain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, driverErr)
		backend.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_EmptyUserID", func(t *testing.T) {
		store, _ := newMemoryRecordStore()
		assert.ErrorIs(t, store.DeleteAll(ctx, ""), vaultDomain.ErrInvalidUserID)
	})

	t.Run("Success_NoWriteWhenNothingStored", func(t *testing.T) {
		backend := &storageMocks.MockStore{}
		backend.On("Get", mock.Anything, DefaultNamespace, "alice").Return(nil, storage.ErrKeyNotFound)
		store := NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second)

		require.NoError(t, store.DeleteAll(ctx, "alice"))
		backend.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// blockingStore holds every Put until released.
type blockingStore struct {
	*storage.MemoryStore
	putStarted chan struct{}
	releasePut chan struct{}
}

func (b *blockingStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	close(b.putStarted)
	<-b.releasePut
	return b.MemoryStore.Put(ctx, namespace, key, value)
}

func TestRecordStore_ReadBlocksBehindWrite(t *testing.T) {
	ctx := context.Background()
	backend := &blockingStore{
		MemoryStore: storage.NewMemoryStore(),
		putStarted:  make(chan struct{}),
		releasePut:  make(chan struct{}),
	}
	store := NewRecordStore(backend, keylock.New(0), DefaultNamespace, time.Second)

	appendDone := make(chan error, 1)
	go func() {
		_, _, err := store.AppendOne(ctx, "alice", newTestRecord())
		appendDone <- err
	}()
	<-backend.putStarted

	readDone := make(chan *vaultDomain.Collection, 1)
	go func() {
		c, err := store.ReadAll(ctx, "alice")
		assert.NoError(t, err)
		readDone <- c
	}()

	select {
	case <-readDone:
		t.Fatal("read completed while a write was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(backend.releasePut)
	require.NoError(t, <-appendDone)
	c := <-readDone
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Len())
}
