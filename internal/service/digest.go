package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/content-engine/pkg/logger"
)

// Mailer 外发邮件投递，实现方负责真正的发送
type Mailer interface {
	Send(ctx context.Context, template, recipient string, data map[string]any) error
}

// NotificationEvent 通知事件，按类型映射到邮件模板
type NotificationEvent struct {
	Type      string
	Recipient string
	Data      map[string]any
	enqAt     time.Time
}

// 通知类型 -> 模板 id，未登记的类型直接跳过
var notificationTemplates = map[string]string{
	"article_new_comment":   "post-commented",
	"comment_reply":         "comment-replied",
	"post_upvote_milestone": "post-upvoted",
	"member_joined_squad":   "squad-member-joined",
	"weekly_digest":         "weekly-digest",
	"submission_accepted":   "submission-accepted",
	"submission_rejected":   "submission-rejected",
}

// TemplateFor 查通知类型对应的模板 id
func TemplateFor(notificationType string) (string, bool) {
	t, ok := notificationTemplates[notificationType]
	return t, ok
}

// DigestDispatcher 有界队列 + 固定 worker 的邮件分发器
// 队列满时丢弃并告警，发送经限速器兜底
type DigestDispatcher struct {
	mailer  Mailer
	limiter *rate.Limiter
	ch      chan NotificationEvent
}

func NewDigestDispatcher(mailer Mailer, queueSize int, perSec float64) *DigestDispatcher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if perSec <= 0 {
		perSec = 20
	}
	return &DigestDispatcher{
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Limit(perSec), int(perSec)),
		ch:      make(chan NotificationEvent, queueSize),
	}
}

func (d *DigestDispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case ev := <-d.ch:
					d.dispatch(ev)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(d.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (d *DigestDispatcher) Enqueue(ev NotificationEvent) {
	ev.enqAt = time.Now()
	select {
	case d.ch <- ev:
	default:
		logger.Warn("digest queue full, drop notification",
			zap.String("type", ev.Type),
			zap.String("recipient", ev.Recipient))
	}
}

// QueueLen 当前队列长度（采样值）
func (d *DigestDispatcher) QueueLen() int { return len(d.ch) }

func (d *DigestDispatcher) dispatch(ev NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	template, ok := TemplateFor(ev.Type)
	if !ok {
		logger.Info("no template for notification type", zap.String("type", ev.Type))
		return
	}
	if err := d.limiter.Wait(ctx); err != nil {
		logger.Warn("rate limit wait aborted", zap.Error(err))
		return
	}
	if err := d.mailer.Send(ctx, template, ev.Recipient, ev.Data); err != nil {
		logger.Error("notification email failed",
			zap.String("type", ev.Type),
			zap.String("template", template),
			zap.String("recipient", ev.Recipient),
			zap.Error(err))
	}
}
