package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/queue"
)

// silentBroker accepts TCP connections and never answers the AMQP
// handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				<-done
				_ = conn.Close()
			}()
		}
	}()
	return ln.Addr().String()
}

func TestAMQPPublisher_TimeoutBoundsHandshake(t *testing.T) {
	addr := silentBroker(t)
	p := NewAMQPPublisher("amqp://guest:guest@"+addr+"/", "", logger.Discard())
	p.Timeout = 200 * time.Millisecond

	ev := queue.NewReservationEvent(queue.TypeCreated, model.Reservation{ID: 1, SeatID: 1, Status: model.StatusActive}, time.Now())
	start := time.Now()
	err := p.Publish(context.Background(), ev)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAMQPPublisher_Defaults(t *testing.T) {
	p := NewAMQPPublisher("amqp://localhost/", "", logger.Discard())
	assert.Equal(t, queue.DefaultQueue, p.Queue)
	assert.Equal(t, 3*time.Second, p.Timeout)
}
