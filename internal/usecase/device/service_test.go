package device

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainDevice "eld-compliance/internal/domain/device"
)

type memoryDeviceRepo struct {
	devices map[uuid.UUID]*domainDevice.Device
}

func newMemoryDeviceRepo() *memoryDeviceRepo {
	return &memoryDeviceRepo{devices: make(map[uuid.UUID]*domainDevice.Device)}
}

func (r *memoryDeviceRepo) Create(_ context.Context, d *domainDevice.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *memoryDeviceRepo) GetByID(_ context.Context, id uuid.UUID) (*domainDevice.Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return nil, domainDevice.ErrDeviceNotFound
	}
	return d, nil
}

func (r *memoryDeviceRepo) GetBySerial(_ context.Context, serial string) (*domainDevice.Device, error) {
	for _, d := range r.devices {
		if d.SerialNumber == serial {
			return d, nil
		}
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (r *memoryDeviceRepo) GetByProviderDeviceID(_ context.Context, provider domainDevice.Provider, providerDeviceID string) (*domainDevice.Device, error) {
	for _, d := range r.devices {
		if d.Provider == provider && d.ProviderDeviceID == providerDeviceID {
			return d, nil
		}
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (r *memoryDeviceRepo) UpsertBySerial(_ context.Context, d *domainDevice.Device) error {
	for _, existing := range r.devices {
		if existing.SerialNumber == d.SerialNumber {
			d.ID = existing.ID
			d.SyncTokenHash = existing.SyncTokenHash
			r.devices[d.ID] = d
			return nil
		}
	}
	d.ID = uuid.New()
	r.devices[d.ID] = d
	return nil
}

func (r *memoryDeviceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domainDevice.DeviceStatus) error {
	d, ok := r.devices[id]
	if !ok {
		return domainDevice.ErrDeviceNotFound
	}
	d.Status = status
	return nil
}

func (r *memoryDeviceRepo) UpdateSyncTokenHash(_ context.Context, id uuid.UUID, hash string) error {
	d, ok := r.devices[id]
	if !ok {
		return domainDevice.ErrDeviceNotFound
	}
	d.SyncTokenHash = &hash
	return nil
}

func (r *memoryDeviceRepo) TouchLastSync(_ context.Context, _ uuid.UUID) error { return nil }

func (r *memoryDeviceRepo) List(_ context.Context, _ uuid.UUID, _ *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	return nil, 0, nil
}

func TestRegisterMobileDeviceScopesToCompany(t *testing.T) {
	repo := newMemoryDeviceRepo()
	svc := NewService(repo)
	companyID := uuid.New()

	resp, err := svc.RegisterMobileDevice(context.Background(), companyID, &RegisterDeviceRequest{
		SerialNumber: "phone-serial-1",
	})
	require.NoError(t, err)
	require.Equal(t, companyID, resp.Device.CompanyID)
	require.NotEmpty(t, resp.SyncToken)

	dev, err := svc.Authenticate(context.Background(), resp.Device.ID, resp.SyncToken)
	require.NoError(t, err)
	require.Equal(t, companyID, dev.CompanyID)
}

func TestRegisterMobileDeviceRefusesForeignSerial(t *testing.T) {
	repo := newMemoryDeviceRepo()
	svc := NewService(repo)

	owner := uuid.New()
	first, err := svc.RegisterMobileDevice(context.Background(), owner, &RegisterDeviceRequest{
		SerialNumber: "phone-serial-1",
	})
	require.NoError(t, err)

	// Another company claiming the same serial must not take over the
	// device or rotate its token.
	_, err = svc.RegisterMobileDevice(context.Background(), uuid.New(), &RegisterDeviceRequest{
		SerialNumber: "phone-serial-1",
	})
	require.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	dev, err := svc.Authenticate(context.Background(), first.Device.ID, first.SyncToken)
	require.NoError(t, err)
	require.Equal(t, owner, dev.CompanyID)
	require.Len(t, repo.devices, 1)
}

func TestRegisterMobileDeviceRotatesOwnToken(t *testing.T) {
	repo := newMemoryDeviceRepo()
	svc := NewService(repo)
	companyID := uuid.New()

	first, err := svc.RegisterMobileDevice(context.Background(), companyID, &RegisterDeviceRequest{
		SerialNumber: "phone-serial-1",
	})
	require.NoError(t, err)

	second, err := svc.RegisterMobileDevice(context.Background(), companyID, &RegisterDeviceRequest{
		SerialNumber: "phone-serial-1",
	})
	require.NoError(t, err)
	require.Equal(t, first.Device.ID, second.Device.ID)
	require.NotEqual(t, first.SyncToken, second.SyncToken)

	_, err = svc.Authenticate(context.Background(), first.Device.ID, first.SyncToken)
	require.Error(t, err)
	_, err = svc.Authenticate(context.Background(), first.Device.ID, second.SyncToken)
	require.NoError(t, err)
}
