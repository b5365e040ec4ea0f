package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// auditBufferSize bounds the number of queued audit rows before events are dropped.
const auditBufferSize = 1000

// AuditLog 审计日志表 GORM 模型
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	EventType string    `gorm:"column:event_type;type:varchar(50);not null;index"`
	SubjectID string    `gorm:"column:subject_id;type:varchar(100);not null;index"`
	ActorID   string    `gorm:"column:actor_id;type:varchar(100);not null"` // empty = system
	Details   string    `gorm:"column:details;type:json"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "enrollment_audit_logs"
}

// AuditLoggerImpl implements biz.AuditLogger. Rows are written by a background goroutine
// and recording never blocks the caller.
type AuditLoggerImpl struct {
	db      *gorm.DB
	logChan chan *AuditLog
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	logger  *log.Helper
}

// NewAuditLogger creates a new audit logger and starts its writer.
// The cleanup drains queued rows before returning.
func NewAuditLogger(data *Data, logger log.Logger) (*AuditLoggerImpl, func()) {
	al := &AuditLoggerImpl{
		db:      data.DB(),
		logChan: make(chan *AuditLog, auditBufferSize),
		done:    make(chan struct{}),
		logger:  log.NewHelper(logger),
	}

	go al.start()

	return al, al.Close
}

func (a *AuditLoggerImpl) start() {
	defer close(a.done)
	for row := range a.logChan {
		if err := a.db.WithContext(context.Background()).Create(row).Error; err != nil {
			a.logger.Errorw("msg", "failed to write audit log",
				"event_type", row.EventType,
				"subject_id", row.SubjectID,
				"error", err)
			continue
		}
		a.logger.Debugw("msg", "audit log written",
			"event_type", row.EventType,
			"subject_id", row.SubjectID)
	}
}

// Record 将审计记录加入队列，缓冲区满时丢弃并记录警告
func (a *AuditLoggerImpl) Record(_ context.Context, entry *model.AuditEntry) {
	details := "{}"
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			a.logger.Errorw("msg", "failed to marshal audit log details", "error", err)
			return
		}
		details = string(raw)
	}

	row := &AuditLog{
		EventType: entry.EventType,
		SubjectID: entry.SubjectID,
		ActorID:   entry.ActorID,
		Details:   details,
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.logger.Warnw("msg", "audit logger closed, dropping event", "event_type", row.EventType)
		return
	}

	select {
	case a.logChan <- row:
	default:
		a.logger.Warnw("msg", "audit log channel full, dropping event",
			"event_type", row.EventType,
			"subject_id", row.SubjectID)
	}
}

// Close 停止接收新记录，等待队列中的记录写入完成
func (a *AuditLoggerImpl) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.logChan)
	}
	a.mu.Unlock()
	<-a.done
}
