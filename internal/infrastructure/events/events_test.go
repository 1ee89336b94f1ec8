package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := new(mockWriter)
	p := newKafkaPublisher(w, logger.NewNoopLogger())
	event := models.NewDomainEvent(constants.EventObservationsReplaced, "c1", map[string]string{"rows": "3"})

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "c1" {
			return false
		}
		var got models.DomainEvent
		if err := json.Unmarshal(msgs[0].Value, &got); err != nil {
			return false
		}
		return got.Type == constants.EventObservationsReplaced && got.Payload["rows"] == "3"
	})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), event))
	w.AssertExpectations(t)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := new(mockWriter)
	p := newKafkaPublisher(w, logger.NewNoopLogger())
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	w.On("Close").Return(nil)

	err := p.Publish(context.Background(), models.NewDomainEvent(constants.EventInterventionRecorded, "c1", nil))
	assert.EqualError(t, err, "broker down")
	assert.NoError(t, p.Close())
}

// fakeReader replays a fixed set of messages, then reports io.EOF.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type recordingInvalidator struct {
	colleges []string
}

func (r *recordingInvalidator) InvalidateLocal(collegeID string) {
	r.colleges = append(r.colleges, collegeID)
}

func TestCacheInvalidationConsumer(t *testing.T) {
	encode := func(e models.DomainEvent) []byte {
		b, err := json.Marshal(e)
		require.NoError(t, err)
		return b
	}
	reader := &fakeReader{msgs: []kafka.Message{
		{Value: encode(models.NewDomainEvent(constants.EventObservationsReplaced, "c1", nil))},
		{Value: []byte("not json")},
		{Value: encode(models.NewDomainEvent(constants.EventInterventionRecorded, "c2", nil))},
	}}
	inv := &recordingInvalidator{}
	c := newCacheInvalidationConsumer(reader, inv, logger.NewNoopLogger())

	c.Start(context.Background())

	assert.Equal(t, []string{"c1", "c2"}, inv.colleges)
	assert.Len(t, reader.committed, 3)

	c.Stop()
	assert.True(t, reader.closed)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.NewNoopLogger())
	assert.NoError(t, p.Publish(context.Background(), models.DomainEvent{}))
	assert.NoError(t, p.Close())
}
