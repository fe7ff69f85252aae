package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/jitter"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	notificationWait     = 30 * time.Second
	reconnectBaseDelay   = 2 * time.Second
	reconnectMaxDelay    = 30 * time.Second
	staleProcessingAfter = 5 * time.Minute
)

// OutboxWorker переносит события из outbox_events в Kafka.
// Пачки запускаются по NOTIFY и по таймеру, на случай потерянного уведомления.
type OutboxWorker struct {
	repo         usecase.OutboxRepository
	logger       logger.Logger
	producer     usecase.MessageProducer
	stop         chan struct{}
	kick         chan struct{}
	wg           sync.WaitGroup
	stopOnce     sync.Once
	dbConnStr    string
	channel      string
	batchSize    int
	pollInterval time.Duration
}

// NewOutboxWorker создаёт воркер. channel канал NOTIFY, в который пишет репозиторий outbox.
// Пустой dbConnStr отключает LISTEN, остаётся только опрос.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
	channel string,
	batchSize int,
	pollInterval time.Duration,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:         repo,
		logger:       logger,
		producer:     producer,
		stop:         make(chan struct{}),
		kick:         make(chan struct{}, 1),
		dbConnStr:    dbConnStr,
		channel:      channel,
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dbConnStr == "" || w.channel == "" {
		return
	}

	// Запускаем слушатель уведомлений
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения текущей пачки.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Возвращаем события, брошенные упавшим процессом
	if n, err := w.repo.ResetStale(ctx, staleProcessingAfter); err != nil {
		w.logger.Warnf("reset stale outbox events failed: %v", err)
	} else if n > 0 {
		w.logger.Infof("returned %d stale outbox events to pending", n)
	}

	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	var tick <-chan time.Time
	if w.pollInterval > 0 {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Worker stopped")
			return
		case <-w.kick:
			w.drain(ctx)
		case <-tick:
			w.drain(ctx)
		}
	}
}

// notify будит цикл обработки, не блокируясь, если он уже разбужен.
func (w *OutboxWorker) notify() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
			c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", w.channel)
		return nil
	}

	defer func() {
		if conn != nil {
			conn.Close(context.Background())
		}
	}()

	for attempt := 0; ; {
		if conn == nil {
			if err := connect(); err != nil {
				delay := jitter.ExponentialBackoff(reconnectBaseDelay, reconnectMaxDelay, attempt, jitter.DefaultJitter)
				w.logger.Warnf("Reconnect failed: %v. Next attempt in %s", err, delay)
				attempt++
				if !w.sleep(ctx, delay) {
					return
				}
				continue
			}
			attempt = 0
			// за время переподключения могли прийти события
			w.notify()
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, notificationWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == w.channel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.notify()
		}
	}
}

// sleep ждёт d и возвращает false, если воркер останавливают.
func (w *OutboxWorker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	case <-timer.C:
		return true
	}
}

// processBatch отправляет одну пачку. hasMore == true, если пачка была полной.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	for i, event := range events {
		err := w.processEvent(ctx, event)
		if err == nil {
			if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
				w.logger.Warnf("mark processed failed: %v", err)
			}
			continue
		}

		if !isRetryableError(err) {
			// повтор не поможет: убираем событие из очереди, иначе оно навсегда её заблокирует
			w.logger.Errorf(err, "event %s (%s) rejected, marking as failed", event.EventID, event.EventType)
			if err := w.repo.MarkAsFailed(ctx, event.ID, err.Error()); err != nil {
				w.logger.Warnf("mark failed failed: %v", err)
			}
			continue
		}

		w.logger.Warnf("event %s (%s) not sent, will retry: %v", event.EventID, event.EventType, err)

		// остаток пачки тоже возвращаем, чтобы не нарушить порядок событий заказа
		for _, rest := range events[i:] {
			if err := w.repo.ReturnToPending(ctx, rest.ID); err != nil {
				w.logger.Warnf("return to pending failed: %v", err)
			}
		}
		return false, err
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID.String(), event.EventType, event.Payload))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
