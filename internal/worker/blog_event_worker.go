package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"goblog-api/internal/model"
	"goblog-api/internal/platform/rabbitmq"
	"goblog-api/internal/repository"
)

// BlogEventWorker drains the blog event queue into the event repository.
type BlogEventWorker struct {
	conn      *amqp.Connection
	repo      repository.BlogEventRepository
	queueName string
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBlogEventWorker(conn *amqp.Connection, repo repository.BlogEventRepository, queueName string, log zerolog.Logger) *BlogEventWorker {
	return &BlogEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log.With().Str("component", "blog_event_worker").Logger(),
	}
}

func (w *BlogEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Error().Err(err).Msg("drop blog event")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *BlogEventWorker) handle(ctx context.Context, body []byte) error {
	var event model.BlogEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode blog event failed: %w", err)
	}
	if event.PostID == 0 || event.Action == "" {
		return fmt.Errorf("decode blog event failed: missing post id or action")
	}
	event.ID = 0
	if err := w.repo.Create(ctx, &event); err != nil {
		return err
	}
	return nil
}

func (w *BlogEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
