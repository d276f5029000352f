package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

type auditEventModel struct {
	AuditID    string    `gorm:"primaryKey;column:audit_id"`
	Action     string    `gorm:"column:action;index"`
	LinkID     string    `gorm:"column:link_id;index"`
	ActorIP    string    `gorm:"column:actor_ip"`
	Detail     string    `gorm:"column:detail"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
}

func (auditEventModel) TableName() string { return "onboarding_audit_events" }

// AuditRepository appends admin actions and CRM push attempts to the
// durable audit table.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, event domain.AuditEvent) error {
	row := auditEventModel{
		AuditID:    event.AuditID,
		Action:     event.Action,
		LinkID:     event.LinkID,
		ActorIP:    event.ActorIP,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
