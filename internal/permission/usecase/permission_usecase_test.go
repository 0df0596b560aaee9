package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// fakeStore scripts grant state and records mutations.
type fakeStore struct {
	granted  map[string]bool
	grants   []string
	revokes  []string
	storeErr error
}

func (f *fakeStore) IsGranted(name string) bool { return f.granted[name] }

func (f *fakeStore) Grant(name string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.grants = append(f.grants, name)
	return nil
}

func (f *fakeStore) Revoke(name string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.revokes = append(f.revokes, name)
	return nil
}

// recorderSpy collects recorded security events.
type recorderSpy struct {
	events []auditDomain.SecurityEvent
}

func (r *recorderSpy) Record(_ context.Context, event auditDomain.SecurityEvent) {
	r.events = append(r.events, event)
}

func testActor() Actor {
	return Actor{ClientID: "admin-cli", SourceIP: "127.0.0.1", RequestID: "req-9"}
}

func TestPermissionUseCase_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_GrantedState", func(t *testing.T) {
		store := &fakeStore{granted: map[string]bool{"network.weather": true}}
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(store, recorder)

		grant, err := useCase.Check(ctx, testActor(), "network.weather")

		require.NoError(t, err)
		assert.Equal(t, "network.weather", grant.Name)
		assert.True(t, grant.Granted)

		require.Len(t, recorder.events, 1)
		event := recorder.events[0]
		assert.Equal(t, auditDomain.EventPermissionRequested, event.Type)
		assert.Equal(t, "admin-cli", event.ClientID)
		assert.Equal(t, "network.weather", event.Details["permission"])
		assert.Equal(t, true, event.Details["granted"])
	})

	t.Run("Success_UngrantedState", func(t *testing.T) {
		store := &fakeStore{}
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(store, recorder)

		grant, err := useCase.Check(ctx, testActor(), "smart_home.lights")

		require.NoError(t, err)
		assert.False(t, grant.Granted)
		require.Len(t, recorder.events, 1)
		assert.Equal(t, false, recorder.events[0].Details["granted"])
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(&fakeStore{}, recorder)

		_, err := useCase.Check(ctx, testActor(), "Not A Permission!")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Empty(t, recorder.events)
	})
}

func TestPermissionUseCase_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PersistsAndRecords", func(t *testing.T) {
		store := &fakeStore{}
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(store, recorder)

		require.NoError(t, useCase.Grant(ctx, testActor(), "network.weather"))

		assert.Equal(t, []string{"network.weather"}, store.grants)
		require.Len(t, recorder.events, 1)
		assert.Equal(t, auditDomain.EventPermissionGranted, recorder.events[0].Type)
		assert.Equal(t, "network.weather", recorder.events[0].Details["permission"])
	})

	t.Run("Error_StoreFailureRecordsNothing", func(t *testing.T) {
		store := &fakeStore{storeErr: apperrors.New("disk full")}
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(store, recorder)

		err := useCase.Grant(ctx, testActor(), "network.weather")

		require.Error(t, err)
		assert.Empty(t, recorder.events)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		store := &fakeStore{}
		useCase := NewPermissionUseCase(store, &recorderSpy{})

		err := useCase.Grant(ctx, testActor(), "")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Empty(t, store.grants)
	})
}

func TestPermissionUseCase_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PersistsAndRecords", func(t *testing.T) {
		store := &fakeStore{granted: map[string]bool{"network.weather": true}}
		recorder := &recorderSpy{}
		useCase := NewPermissionUseCase(store, recorder)

		require.NoError(t, useCase.Revoke(ctx, testActor(), "network.weather"))

		assert.Equal(t, []string{"network.weather"}, store.revokes)
		require.Len(t, recorder.events, 1)
		assert.Equal(t, auditDomain.EventPermissionRevoked, recorder.events[0].Type)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		useCase := NewPermissionUseCase(&fakeStore{}, &recorderSpy{})

		err := useCase.Revoke(ctx, testActor(), "UPPER.case")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
