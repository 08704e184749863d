package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeChannel struct {
	closed    bool
	err       error
	published []amqp.Publishing
	keys      []string
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, msg)
	c.keys = append(c.keys, key)
	return nil
}

func (c *fakeChannel) IsClosed() bool {
	return c.closed
}

// fakeDialer выдает каналы по очереди и считает закрытые сессии
type fakeDialer struct {
	channels []*fakeChannel
	dials    int
	closes   int
	err      error
}

func (d *fakeDialer) dial(_, _ string) (*session, error) {
	if d.err != nil {
		return nil, d.err
	}
	ch := d.channels[d.dials]
	d.dials++
	return &session{channel: ch, close: func() { d.closes++ }}, nil
}

func newTestNotifier(t *testing.T, d *fakeDialer) *RabbitNotifier {
	t.Helper()
	n, err := newRabbitNotifier("amqp://test", "notifications", d.dial, logger.NewNop())
	require.NoError(t, err)
	return n
}

var testNotification = domain.Notification{
	Audience: domain.SingleUser(7),
	Type:     domain.NotifyReservationCreated,
	Title:    "New reservation",
}

func TestRabbitNotifier_Publish(t *testing.T) {
	first := &fakeChannel{}
	d := &fakeDialer{channels: []*fakeChannel{first}}
	n := newTestNotifier(t, d)

	require.NoError(t, n.Notify(context.Background(), testNotification))

	require.Len(t, first.published, 1)
	assert.Equal(t, "notification.user", first.keys[0])
	assert.Equal(t, "application/json", first.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, first.published[0].DeliveryMode)
	assert.Equal(t, 1, d.dials)
}

func TestRabbitNotifier_ReconnectsOnClosedChannel(t *testing.T) {
	first := &fakeChannel{err: amqp.ErrClosed}
	second := &fakeChannel{}
	d := &fakeDialer{channels: []*fakeChannel{first, second}}
	n := newTestNotifier(t, d)

	require.NoError(t, n.Notify(context.Background(), testNotification))

	assert.Equal(t, 2, d.dials)
	assert.Equal(t, 1, d.closes)
	assert.Empty(t, first.published)
	assert.Len(t, second.published, 1)
}

func TestRabbitNotifier_ReconnectsWhenBrokerClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	d := &fakeDialer{channels: []*fakeChannel{first, second}}
	n := newTestNotifier(t, d)

	require.NoError(t, n.Notify(context.Background(), testNotification))
	first.closed = true
	require.NoError(t, n.Notify(context.Background(), testNotification))

	assert.Equal(t, 2, d.dials)
	assert.Len(t, first.published, 1)
	assert.Len(t, second.published, 1)
}

func TestRabbitNotifier_ReconnectFailure(t *testing.T) {
	first := &fakeChannel{closed: true}
	d := &fakeDialer{channels: []*fakeChannel{first}}
	n := newTestNotifier(t, d)
	d.err = fmt.Errorf("%w: dial: connection refused", ErrConnect)

	err := n.Notify(context.Background(), testNotification)
	assert.ErrorIs(t, err, ErrConnect)

	// Брокер поднялся, следующая публикация проходит
	d.err = nil
	d.channels = append(d.channels, &fakeChannel{})
	require.NoError(t, n.Notify(context.Background(), testNotification))
	assert.Len(t, d.channels[1].published, 1)
}

func TestRabbitNotifier_OtherPublishErrorsAreNotRetried(t *testing.T) {
	first := &fakeChannel{err: errors.New("frame too large")}
	d := &fakeDialer{channels: []*fakeChannel{first}}
	n := newTestNotifier(t, d)

	err := n.Notify(context.Background(), testNotification)
	assert.ErrorIs(t, err, ErrPublish)
	assert.Equal(t, 1, d.dials)
}

func TestRabbitNotifier_Closed(t *testing.T) {
	d := &fakeDialer{channels: []*fakeChannel{{}}}
	n := newTestNotifier(t, d)

	n.Close()
	assert.Equal(t, 1, d.closes)

	err := n.Notify(context.Background(), testNotification)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, d.dials)
}
