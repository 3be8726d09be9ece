package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/internal/resource"
)

type VideoJobDAO struct {
	db *gorm.DB
}

func NewVideoJobDAO() *VideoJobDAO {
	return &VideoJobDAO{db: resource.DefaultMysqlResource().MainDB()}
}

// NewVideoJobDAOWithDB is used by tests that supply their own connection.
func NewVideoJobDAOWithDB(db *gorm.DB) *VideoJobDAO {
	return &VideoJobDAO{db: db}
}

func (d *VideoJobDAO) Create(ctx context.Context, job *po.VideoJob) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Create(job).Error
}

func (d *VideoJobDAO) FindByID(ctx context.Context, id uint64) (*po.VideoJob, error) {
	var job po.VideoJob
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (d *VideoJobDAO) Update(ctx context.Context, job *po.VideoJob) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Where("id = ?", job.Id).Updates(job).Error
}

func (d *VideoJobDAO) UpdateColumns(ctx context.Context, id uint64, update map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Where("id = ?", id).Updates(update).Error
}

func (d *VideoJobDAO) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Where("id = ?", id).Update("status", status).Error
}

func (d *VideoJobDAO) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	update := map[string]interface{}{
		"progress":            progress,
		"estimated_time_left": estimatedTimeLeft,
		"job_time":            jobTime,
	}
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Where("id = ?", id).Updates(update).Error
}

func (d *VideoJobDAO) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&po.VideoJob{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (d *VideoJobDAO) CountByStatusAndGenerator(ctx context.Context, status, generator string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&po.VideoJob{}).
		Where("status = ? AND generator = ?", status, generator).Count(&count).Error
	return count, err
}

// MarkStaleProcessing flips processing rows untouched since cutoff to error in one statement.
func (d *VideoJobDAO) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.VideoJob{}).
		Where("status = ? AND updated_at < ?", "processing", cutoff).
		Update("status", "error")
	return res.RowsAffected, res.Error
}
