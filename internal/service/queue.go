package service

import (
	"context"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TranslateQueue decouples sync responses from oracle latency: the
// receiver acknowledges the push immediately and translation runs on a
// single background worker. When the buffer is full the post is
// dropped, re-queueing it is a manual /translate call away.
type TranslateQueue struct {
	translator *Translator
	ch         chan int64
	wg         sync.WaitGroup
}

func NewTranslateQueue(translator *Translator, size int) *TranslateQueue {
	if size <= 0 {
		size = 64
	}
	return &TranslateQueue{
		translator: translator,
		ch:         make(chan int64, size),
	}
}

// Start launches the worker; it exits when ctx is cancelled.
func (q *TranslateQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case postID := <-q.ch:
				if err := q.translator.TranslatePost(ctx, postID); err != nil {
					logutil.GetLogger(ctx).Error("queued translation failed",
						zap.Int64("post_id", postID),
						zap.Error(err),
					)
				}
			}
		}
	}()
}

// Enqueue never blocks; it reports whether the post was accepted.
func (q *TranslateQueue) Enqueue(ctx context.Context, postID int64) bool {
	select {
	case q.ch <- postID:
		return true
	default:
		logutil.GetLogger(ctx).Warn("translate queue full, dropping post",
			zap.Int64("post_id", postID),
		)
		return false
	}
}

// Wait blocks until the worker has exited after Start's ctx cancels.
func (q *TranslateQueue) Wait() {
	q.wg.Wait()
}
