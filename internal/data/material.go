package data

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// Material 课程资料表 GORM 模型
type Material struct {
	ID        string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	CourseID  string    `gorm:"column:course_id;type:char(36);not null;index" json:"courseId"`
	Title     string    `gorm:"column:title;size:200;not null" json:"title"`
	URL       string    `gorm:"column:url;size:500;not null" json:"url"`
	Position  int32     `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName 指定表名
func (Material) TableName() string {
	return "course_materials"
}

// MaterialRepo implements biz.MaterialRepo.
type MaterialRepo struct {
	db     *gorm.DB
	logger *log.Helper
}

// NewMaterialRepo 创建课程资料 Repository
func NewMaterialRepo(data *Data, logger log.Logger) *MaterialRepo {
	return &MaterialRepo{
		db:     data.DB(),
		logger: log.NewHelper(logger),
	}
}

// ListByCourse 按 position 顺序返回课程资料
func (r *MaterialRepo) ListByCourse(ctx context.Context, courseID string) ([]*Material, error) {
	var materials []*Material
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position, id").
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}
