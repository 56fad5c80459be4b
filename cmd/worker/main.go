package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/servihub/marketplace/internal/config"
	"github.com/servihub/marketplace/internal/db"
	"github.com/servihub/marketplace/internal/models"
	"github.com/servihub/marketplace/internal/notify"
	"github.com/servihub/marketplace/internal/store/rabbitmq"
)

const maxAttempts = 3

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func attempts(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	switch n := d.Headers["x-attempts"].(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := notify.NewRepo(gdb)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	mainQ := cfg.RabbitQueue
	retryQ := cfg.RabbitQueue + ".retry"
	dlqQ := cfg.RabbitQueue + ".dlq"

	// same topology the publisher declares; declare is idempotent so either
	// side can start first
	if _, err := ch.QueueDeclare(dlqQ, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare %s: %v", dlqQ, err)
	}
	if _, err := ch.QueueDeclare(retryQ, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": mainQ,
	}); err != nil {
		log.Fatalf("queue declare %s: %v", retryQ, err)
	}
	if _, err := ch.QueueDeclare(mainQ, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlqQ,
	}); err != nil {
		log.Fatalf("queue declare %s: %v", mainQ, err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(mainQ, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", mainQ, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var job rabbitmq.NotificationJob
				if err := json.Unmarshal(d.Body, &job); err != nil || job.JobID == "" || job.UserID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleJob(ctx, repo, job); err != nil {
					tried := attempts(d) + 1
					log.Printf("worker=%d job %s attempt=%d cost=%s err=%v", workerID, job.JobID, tried, time.Since(start), err)
					if tried >= maxAttempts {
						// exhausted, dead-letter to the DLQ
						_ = d.Nack(false, false)
						continue
					}
					if err := requeue(ctx, ch, retryQ, d.Body, tried); err != nil {
						log.Printf("worker=%d requeue job=%s failed: %v", workerID, job.JobID, err)
						_ = d.Nack(false, false)
						continue
					}
					_ = d.Ack(false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, job.JobID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleJob(ctx context.Context, repo *notify.Repo, job rabbitmq.NotificationJob) error {
	return repo.Insert(ctx, &models.Notification{
		UserID:  job.UserID,
		Message: job.Message,
	})
}

// requeue parks the message on the retry queue; its TTL dead-letters it back
// to the main queue.
func requeue(ctx context.Context, ch *amqp.Channel, retryQ string, body []byte, tried int) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(cctx, "", retryQ, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Expiration:   "5000",
		Headers:      amqp.Table{"x-attempts": int32(tried)},
	})
}
