package recordsink

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mruput.io/application/services/verification"
	"mruput.io/infrastructure/geolocation"
	iptypes "mruput.io/infrastructure/ipresolver/types"
	queue_tasks "mruput.io/infrastructure/message_queue/tasks"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

type fakeBroker struct {
	tasks []mq_types.QueueTask
	err   error
}

func (b *fakeBroker) Start() {}

func (b *fakeBroker) Enqueue(task mq_types.QueueTask) error {
	if b.err != nil {
		return b.err
	}
	b.tasks = append(b.tasks, task)
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ConnectToDB(string) error { return nil }

func (fakeResolver) LookUp(ip string) (*iptypes.IPResult, error) {
	return &iptypes.IPResult{IPAddress: ip, CountryCode: "ID", City: "Jakarta"}, nil
}

func decided(reason verification.ReasonCode, mocked bool) *verification.Record {
	similarity := 0.8
	outcome := verification.Rejected
	if reason == verification.ReasonAccepted {
		outcome = verification.Accepted
	}
	return &verification.Record{
		Decision: &verification.Decision{
			ID:         "d1",
			AttemptID:  "a1",
			UserID:     "u1",
			Outcome:    outcome,
			ReasonCode: reason,
			Similarity: &similarity,
			BlinkCount: 1,
			WorkMode:   geolocation.WorkFromOffice,
			Location:   &geolocation.GeoFix{Latitude: -6.2, Longitude: 106.8, IsMocked: mocked},
			DecidedAt:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		},
		Metadata: verification.AttemptMetadata{
			DeviceID:  "device-1",
			UserAgent: "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36",
			IPAddress: "103.10.10.10",
		},
		Still: []byte("\xff\xd8\xff\xe0still"),
	}
}

func TestToEntity(t *testing.T) {
	entity := ToEntity(decided(verification.ReasonAccepted, false), fakeResolver{})
	assert.Equal(t, "d1", entity.ID)
	assert.Equal(t, "accepted", entity.Outcome)
	assert.Equal(t, "ACCEPTED", entity.ReasonCode)
	assert.False(t, entity.SpoofFlagged)
	require.NotNil(t, entity.Device)
	assert.Equal(t, "device-1", entity.Device.DeviceID)
	assert.True(t, entity.Device.Mobile)
	require.NotNil(t, entity.IP)
	assert.Equal(t, "ID", entity.IP.Country)
	assert.Equal(t, "Jakarta", entity.IP.City)
}

func TestQueueSink_PersistsAndAlertsOnSpoof(t *testing.T) {
	broker := &fakeBroker{}
	sink := &QueueSink{Broker: broker, StoreStills: true}

	require.NoError(t, sink.Record(context.Background(), decided(verification.ReasonLocationMocked, true)))
	require.Len(t, broker.tasks, 2)
	assert.Equal(t, queue_tasks.HandlePersistAttendanceTaskName, broker.tasks[0].Name)
	assert.Equal(t, queue_tasks.HandleSpoofAlertTaskName, broker.tasks[1].Name)

	var payload queue_tasks.PersistAttendancePayload
	require.NoError(t, json.Unmarshal(broker.tasks[0].Payload, &payload))
	assert.True(t, payload.Record.SpoofFlagged)
	assert.Equal(t, "image/jpeg", payload.StillContentType)
	assert.NotEmpty(t, payload.Still)
}

func TestQueueSink_NoStillWhenDisabled(t *testing.T) {
	broker := &fakeBroker{}
	sink := &QueueSink{Broker: broker}

	require.NoError(t, sink.Record(context.Background(), decided(verification.ReasonAccepted, false)))
	require.Len(t, broker.tasks, 1)
	var payload queue_tasks.PersistAttendancePayload
	require.NoError(t, json.Unmarshal(broker.tasks[0].Payload, &payload))
	assert.Empty(t, payload.Still)
}

func TestQueueSink_EnqueueFailure(t *testing.T) {
	sink := &QueueSink{Broker: &fakeBroker{err: errors.New("redis down")}}
	err := sink.Record(context.Background(), decided(verification.ReasonAccepted, false))
	assert.EqualError(t, err, "redis down")
}

func TestJournal(t *testing.T) {
	journal, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	ctx := context.Background()
	require.NoError(t, journal.Record(ctx, decided(verification.ReasonIdentityMismatch, false)))
	require.NoError(t, journal.Record(ctx, decided(verification.ReasonIdentityMismatch, false)), "same attempt replaces")

	records, err := journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "IDENTITY_MISMATCH", records[0].ReasonCode)
	assert.Equal(t, 0.8, *records[0].Similarity)
}
