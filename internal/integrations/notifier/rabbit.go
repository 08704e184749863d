package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

const exchangeKind = "topic"

// channel часть *amqp.Channel, которой пользуется нотификатор
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// session открытые соединение и канал
type session struct {
	channel channel
	close   func()
}

type dialFunc func(url, exchange string) (*session, error)

// RabbitNotifier публикует уведомления в topic exchange RabbitMQ
// Доставку (email, push, telegram) выполняет отдельный сервис
// Если брокер закрыл канал или соединение, следующая публикация переподключается
type RabbitNotifier struct {
	mu       sync.Mutex
	session  *session
	closed   bool
	url      string
	exchange string
	dial     dialFunc
	log      Logger
	now      func() time.Time
}

// NewRabbitNotifier подключается к брокеру и объявляет exchange
func NewRabbitNotifier(url, exchange string, log Logger) (*RabbitNotifier, error) {
	return newRabbitNotifier(url, exchange, dialRabbit, log)
}

func newRabbitNotifier(url, exchange string, dial dialFunc, log Logger) (*RabbitNotifier, error) {
	s, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	return &RabbitNotifier{
		session:  s,
		url:      url,
		exchange: exchange,
		dial:     dial,
		log:      log,
		now:      time.Now,
	}, nil
}

func dialRabbit(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}

	return &session{
		channel: ch,
		close: func() {
			_ = ch.Close()
			_ = conn.Close()
		},
	}, nil
}

// Notify публикует уведомление
// При закрытом канале соединение открывается заново, публикация повторяется один раз
func (n *RabbitNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	event := newEvent(uuid.NewString(), notification, n.now())

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	routingKey := RoutingKey(notification.Audience)
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}

	if err := n.ensureSession(); err != nil {
		return err
	}

	err = n.session.channel.PublishWithContext(ctx, n.exchange, routingKey, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		n.log.Warn("Notify: channel closed, reconnecting: %v", err)
		n.dropSession()
		if err := n.ensureSession(); err != nil {
			return err
		}
		err = n.session.channel.PublishWithContext(ctx, n.exchange, routingKey, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("%w: routing_key=%s: %v", ErrPublish, routingKey, err)
	}

	n.log.Info("Notify: published event_id=%s, type=%s, audience=%s", event.EventID, event.Type, notification.Audience)
	return nil
}

// ensureSession переподключается, если канала нет или брокер его закрыл
// Вызывается под n.mu
func (n *RabbitNotifier) ensureSession() error {
	if n.session != nil && !n.session.channel.IsClosed() {
		return nil
	}
	n.dropSession()

	s, err := n.dial(n.url, n.exchange)
	if err != nil {
		n.log.Error("Notify: reconnect to exchange %s failed: %v", n.exchange, err)
		return err
	}

	n.log.Info("Notify: reconnected to exchange %s", n.exchange)
	n.session = s
	return nil
}

func (n *RabbitNotifier) dropSession() {
	if n.session != nil {
		n.session.close()
		n.session = nil
	}
}

// Close закрывает канал и соединение
func (n *RabbitNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	n.dropSession()
}
